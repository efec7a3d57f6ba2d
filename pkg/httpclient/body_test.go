package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm_NestedValues(t *testing.T) {
	got, err := encodeForm(map[string]any{
		"name":   "ada lovelace",
		"tags":   []string{"x", "y"},
		"meta":   map[string]any{"k": 1, "on": false},
		"skip":   nil,
		"amount": 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"amount=1.5&meta%5Bk%5D=1&meta%5Bon%5D=0&name=ada+lovelace&tags%5B0%5D=x&tags%5B1%5D=y",
		got)
}

func TestEncodeForm_RejectsUnconvertible(t *testing.T) {
	_, err := encodeForm(map[string]any{"bad": struct{ A int }{1}})
	assert.Error(t, err)
}

func TestEncodeBody_MediaTypes(t *testing.T) {
	raw, mediaType, err := encodeBody(map[string]any{"a": 1}, EncodingJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", mediaType)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	raw, mediaType, err = encodeBody(map[string]any{"a": 1}, EncodingURLEncoded)
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", mediaType)
	assert.Equal(t, "a=1", string(raw))
}

func TestParseEncoding(t *testing.T) {
	assert.Equal(t, EncodingURLEncoded, ParseEncoding(" URLENCODED "))
	assert.Equal(t, EncodingJSON, ParseEncoding("json"))
	assert.Equal(t, EncodingJSON, ParseEncoding("xml"))
}
