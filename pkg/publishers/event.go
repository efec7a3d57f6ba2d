package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/webapi/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"request_id"`
	Outcome     domain.Outcome `json:"outcome"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEvent wraps a request outcome in a uniquely identified event.
func NewEvent(out domain.Outcome) Event {
	return Event{
		ID:          uuid.NewString(),
		RequestID:   out.RequestID,
		Outcome:     out,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached by queue-style sinks.
func (e Event) attributes() map[string]string {
	success := "false"
	if e.Outcome.Success {
		success = "true"
	}
	return map[string]string{
		"event_id":   e.ID,
		"request_id": e.RequestID,
		"success":    success,
	}
}
