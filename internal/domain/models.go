package domain

import "time"

// Outcome records what happened when one planned request was issued.
type Outcome struct {
	RequestID   string            `json:"request_id"`
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Success     bool              `json:"success"`
	StatusCode  int               `json:"status_code,omitempty"`
	Error       string            `json:"error,omitempty"`
	BodySnippet string            `json:"body_snippet,omitempty"`
	Captures    map[string]string `json:"captures,omitempty"`
	ElapsedMs   int64             `json:"elapsed_ms"`
	CompletedAt time.Time         `json:"completed_at"`
}
