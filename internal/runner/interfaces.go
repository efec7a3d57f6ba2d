package runner

import (
	"context"

	"github.com/samvad-hq/webapi/internal/domain"
	"github.com/samvad-hq/webapi/pkg/publishers"
)

// OutcomeRecorder keeps outcomes for later inspection.
type OutcomeRecorder interface {
	Record(out domain.Outcome) error
}

// EventPublisher publishes outcome events downstream. It reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
