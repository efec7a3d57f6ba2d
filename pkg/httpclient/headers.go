package httpclient

import "strings"

const (
	// SlotContentType holds the Content-Type line set by the json/multipart presets.
	SlotContentType = 0
	// SlotAuthorization holds the Authorization line set by the auth presets.
	SlotAuthorization = 1
)

const (
	HeaderKindJSON          = "json"
	HeaderKindBasicAuth     = "authorization"
	HeaderKindBearerAuth    = "authorizationbearer"
	HeaderKindMultipartForm = "multipart-form"

	jsonContentTypeLine      = "Content-Type: application/json"
	multipartContentTypeLine = "Content-Type: multipart/form-data"
)

// HeaderKinds lists the SetHeader presets in documentation order.
var HeaderKinds = []string{HeaderKindJSON, HeaderKindMultipartForm, HeaderKindBasicAuth, HeaderKindBearerAuth}

// IsHeaderKind reports whether kind names a SetHeader preset.
func IsHeaderKind(kind string) bool {
	for _, k := range HeaderKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Headers is an ordered collection of raw header lines keyed by slot index.
// Overwriting a slot keeps its original position; appended lines take the
// index after the largest one stored since the last Clear.
type Headers struct {
	lines map[int]string
	order []int
	next  int
}

// NewHeaders returns an empty collection.
func NewHeaders() *Headers {
	return &Headers{lines: make(map[int]string)}
}

// Set stores line at slot, replacing any previous value in place.
func (h *Headers) Set(slot int, line string) {
	if h.lines == nil {
		h.lines = make(map[int]string)
	}
	if _, exists := h.lines[slot]; !exists {
		h.order = append(h.order, slot)
	}
	h.lines[slot] = line
	if slot >= h.next {
		h.next = slot + 1
	}
}

// Append stores line at the next free index and returns that index.
func (h *Headers) Append(line string) int {
	slot := h.next
	h.Set(slot, line)
	return slot
}

// Get returns the line stored at slot.
func (h *Headers) Get(slot int) (string, bool) {
	if h == nil || h.lines == nil {
		return "", false
	}
	line, ok := h.lines[slot]
	return line, ok
}

// Len returns the number of stored lines.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// Slots returns the stored indexes in insertion order.
func (h *Headers) Slots() []int {
	if h == nil {
		return nil
	}
	out := make([]int, len(h.order))
	copy(out, h.order)
	return out
}

// Lines returns the stored header lines in insertion order.
func (h *Headers) Lines() []string {
	if h == nil {
		return nil
	}
	out := make([]string, 0, len(h.order))
	for _, slot := range h.order {
		out = append(out, h.lines[slot])
	}
	return out
}

// Clear drops every line and resets the append counter.
func (h *Headers) Clear() {
	h.lines = make(map[int]string)
	h.order = nil
	h.next = 0
}

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	out := NewHeaders()
	if h == nil {
		return out
	}
	for _, slot := range h.order {
		out.lines[slot] = h.lines[slot]
	}
	out.order = append([]int(nil), h.order...)
	out.next = h.next
	return out
}

// Map returns the lines keyed by slot.
func (h *Headers) Map() map[int]string {
	out := make(map[int]string, h.Len())
	if h == nil {
		return out
	}
	for slot, line := range h.lines {
		out[slot] = line
	}
	return out
}

// splitHeaderLine turns "Name: value" into its parts. Lines without a name are rejected.
func splitHeaderLine(line string) (string, string, bool) {
	name, value, found := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}
