package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeResponse parses the last response body as JSON. With assoc set the
// result is a generic value (map[string]any, []any, json.Number, ...) with
// numbers kept exact; otherwise
// it is a gjson.Result for path-style access. A failed request yields
// ErrRequestFailed without looking at the stored text.
func (c *RequestClient) DecodeResponse(assoc bool) (any, error) {
	if !c.success {
		return nil, ErrRequestFailed
	}

	if !assoc {
		if !gjson.Valid(c.result) {
			return nil, fmt.Errorf("%w: %s", ErrMalformedJSON, snippet(c.result))
		}
		return gjson.Parse(c.result), nil
	}

	var out any
	if err := decodeJSON(c.result, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeInto unmarshals the last response body into v.
func (c *RequestClient) DecodeInto(v any) error {
	if !c.success {
		return ErrRequestFailed
	}
	return decodeJSON(c.result, v)
}

// decodeJSON decodes exactly one JSON value from s, keeping numbers as
// json.Number where v leaves the type open.
func decodeJSON(s string, v any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformedJSON)
	}
	return nil
}

func snippet(s string) string {
	const maxLen = 128
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
