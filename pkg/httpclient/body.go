package httpclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Encoding selects how request fields are serialized.
type Encoding string

const (
	EncodingJSON       Encoding = "json"
	EncodingURLEncoded Encoding = "urlencoded"

	jsonMediaType = "application/json"
	formMediaType = "application/x-www-form-urlencoded"
)

// ParseEncoding maps a config value onto an Encoding. Unknown values fall back to JSON.
func ParseEncoding(raw string) Encoding {
	if strings.EqualFold(strings.TrimSpace(raw), string(EncodingURLEncoded)) {
		return EncodingURLEncoded
	}
	return EncodingJSON
}

// encodeBody serializes fields and reports the media type of the result.
func encodeBody(fields map[string]any, enc Encoding) ([]byte, string, error) {
	if enc == EncodingURLEncoded {
		form, err := encodeForm(fields)
		if err != nil {
			return nil, "", err
		}
		return []byte(form), formMediaType, nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return raw, jsonMediaType, nil
}

// encodeForm renders fields as a query string. Nested maps and slices use
// bracket notation (a[b]=1, list[0]=x); map keys are sorted; nil values are skipped.
func encodeForm(fields map[string]any) (string, error) {
	pairs := make([]string, 0, len(fields))
	for _, key := range sortedKeys(fields) {
		encoded, err := appendFormValue(nil, key, fields[key])
		if err != nil {
			return "", err
		}
		pairs = append(pairs, encoded...)
	}
	return strings.Join(pairs, "&"), nil
}

func appendFormValue(dst []string, key string, value any) ([]string, error) {
	if value == nil {
		return dst, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return dst, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("form field %q: map keys must be strings", key)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			var err error
			dst, err = appendFormValue(dst, key+"["+k+"]", rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case reflect.Slice, reflect.Array:
		if b, ok := rv.Interface().([]byte); ok {
			return append(dst, url.QueryEscape(key)+"="+url.QueryEscape(string(b))), nil
		}
		for i := 0; i < rv.Len(); i++ {
			var err error
			dst, err = appendFormValue(dst, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case reflect.Bool:
		// PHP-style booleans: true -> 1, false -> 0.
		v := "0"
		if rv.Bool() {
			v = "1"
		}
		return append(dst, url.QueryEscape(key)+"="+v), nil
	}

	s, err := cast.ToStringE(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("form field %q: %w", key, err)
	}
	return append(dst, url.QueryEscape(key)+"="+url.QueryEscape(s)), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
