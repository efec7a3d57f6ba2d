package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/webapi/internal/domain"
	"github.com/samvad-hq/webapi/internal/logger"
	"github.com/samvad-hq/webapi/pkg/publishers"
	"github.com/samvad-hq/webapi/pkg/requests"
)

// Service executes planned requests one after another.
type Service struct {
	defaults  requests.Defaults
	recorder  OutcomeRecorder
	publisher EventPublisher
	log       logger.Logger
}

// NewService wires a runner. recorder and publisher may be nil.
func NewService(defaults requests.Defaults, recorder OutcomeRecorder, publisher EventPublisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if defaults.Logger == nil {
		defaults.Logger = log
	}
	return &Service{
		defaults:  defaults,
		recorder:  recorder,
		publisher: publisher,
		log:       log,
	}
}

// Run executes every spec in order and returns their outcomes. Failed requests
// are reported through the joined error; a cancelled context ends the pass
// early and is not itself an error.
func (s *Service) Run(ctx context.Context, specs []requests.Spec) ([]domain.Outcome, error) {
	if s == nil {
		return nil, fmt.Errorf("runner service is not initialized")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no requests configured")
	}

	outcomes := make([]domain.Outcome, 0, len(specs))
	var errs []error
	for _, spec := range specs {
		if ctx.Err() != nil {
			s.log.WarnObj("run cancelled", "run_state", map[string]any{
				"completed": len(outcomes),
				"remaining": len(specs) - len(outcomes),
			})
			break
		}

		out, err := s.RunOne(ctx, spec)
		outcomes = append(outcomes, out)
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("planned request failed", "request_error", map[string]any{
				"request_id": spec.ID,
				"error":      err.Error(),
			})
		}
	}
	return outcomes, errors.Join(errs...)
}

// RunOne issues a single planned request, records it and publishes the outcome.
func (s *Service) RunOne(ctx context.Context, spec requests.Spec) (domain.Outcome, error) {
	client, opts := spec.Build(s.defaults)

	start := time.Now()
	client.Request(ctx, spec.Method, spec.Fields, opts...)
	res := client.Outcome()

	out := domain.Outcome{
		RequestID:   spec.ID,
		Method:      spec.Method,
		URL:         spec.URL,
		Success:     res.Success,
		StatusCode:  res.StatusCode,
		ElapsedMs:   time.Since(start).Milliseconds(),
		CompletedAt: time.Now().UTC(),
	}

	var errs []error
	if !res.Success {
		out.Error = res.Result
		errs = append(errs, fmt.Errorf("request %s: %s", spec.ID, res.Result))
	} else {
		out.BodySnippet = snippet(res.Result)
		captures, err := extractCaptures([]byte(res.Result), spec.Captures)
		if len(captures) > 0 {
			out.Captures = captures
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("request %s: %w", spec.ID, err))
		}
	}

	if s.recorder != nil {
		if err := s.recorder.Record(out); err != nil {
			errs = append(errs, fmt.Errorf("record outcome %s: %w", spec.ID, err))
		}
	}

	if s.publisher != nil {
		delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(out))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish outcome %s: %w", spec.ID, err))
		}
		s.log.DebugObj("outcome published", "publish_result", map[string]any{
			"request_id": spec.ID,
			"delivered":  delivered,
		})
	}

	s.log.InfoObj("planned request completed", "request_result", map[string]any{
		"request_id":  out.RequestID,
		"method":      out.Method,
		"success":     out.Success,
		"status_code": out.StatusCode,
		"captures":    len(out.Captures),
		"elapsed_ms":  out.ElapsedMs,
	})
	return out, errors.Join(errs...)
}
