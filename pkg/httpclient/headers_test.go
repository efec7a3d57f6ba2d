package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders_SetKeepsPositionOnOverwrite(t *testing.T) {
	h := NewHeaders()
	h.Set(SlotAuthorization, "Authorization: Bearer a")
	h.Set(SlotContentType, "Content-Type: application/json")
	h.Set(SlotAuthorization, "Authorization: Bearer b")

	assert.Equal(t, []int{1, 0}, h.Slots())
	assert.Equal(t, []string{"Authorization: Bearer b", "Content-Type: application/json"}, h.Lines())
	assert.Equal(t, 2, h.Len())
}

func TestHeaders_AppendUsesNextIndex(t *testing.T) {
	h := NewHeaders()
	assert.Equal(t, 0, h.Append("X-A: 1"))

	h.Set(5, "X-B: 2")
	assert.Equal(t, 6, h.Append("X-C: 3"))

	line, ok := h.Get(6)
	assert.True(t, ok)
	assert.Equal(t, "X-C: 3", line)
}

func TestHeaders_ClearResetsCounter(t *testing.T) {
	h := NewHeaders()
	h.Set(3, "X-A: 1")
	h.Clear()

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Lines())
	assert.Equal(t, 0, h.Append("X-B: 2"))
}

func TestHeaders_CloneIsIndependent(t *testing.T) {
	h := NewHeaders()
	h.Set(SlotContentType, "Content-Type: application/json")

	cp := h.Clone()
	cp.Append("X-Extra: 1")

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 2, cp.Len())
	assert.Equal(t, map[int]string{0: "Content-Type: application/json"}, h.Map())
}

func TestSplitHeaderLine(t *testing.T) {
	name, value, ok := splitHeaderLine("X-Trace:  abc:def ")
	assert.True(t, ok)
	assert.Equal(t, "X-Trace", name)
	assert.Equal(t, "abc:def", value)

	_, _, ok = splitHeaderLine("no-colon-here")
	assert.False(t, ok)

	_, _, ok = splitHeaderLine(": value")
	assert.False(t, ok)
}

func TestIsHeaderKind(t *testing.T) {
	for _, k := range []string{HeaderKindJSON, HeaderKindMultipartForm, HeaderKindBasicAuth, HeaderKindBearerAuth} {
		assert.True(t, IsHeaderKind(k), k)
	}
	assert.False(t, IsHeaderKind("multipartform"))
	assert.False(t, IsHeaderKind("JSON"))
}
