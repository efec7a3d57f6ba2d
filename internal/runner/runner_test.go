package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/webapi/internal/domain"
	"github.com/samvad-hq/webapi/pkg/publishers"
	"github.com/samvad-hq/webapi/pkg/requests"
)

type memoryRecorder struct {
	outcomes []domain.Outcome
	err      error
}

func (m *memoryRecorder) Record(out domain.Outcome) error {
	m.outcomes = append(m.outcomes, out)
	return m.err
}

type capturePublisher struct {
	events []publishers.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	c.events = append(c.events, evt)
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			body, _ := io.ReadAll(r.Body)
			var payload map[string]any
			_ = json.Unmarshal(body, &payload)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":42,"name":"` + payload["name"].(string) + `"}}`))
		case "/status":
			_, _ = w.Write([]byte(`<html><head><title> All good </title></head><body><a class="more" href="/incidents">x</a></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestServiceRunCapturesRecordsAndPublishes(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	rec := &memoryRecorder{}
	pub := &capturePublisher{}
	svc := NewService(requests.Defaults{Timeout: 2 * time.Second}, rec, pub, nil)

	specs := []requests.Spec{
		{
			ID:       "create-user",
			URL:      srv.URL + "/users",
			Method:   http.MethodPost,
			Headers:  []string{"json"},
			Fields:   map[string]any{"name": "ada"},
			Encoding: "json",
			Captures: map[string]requests.Capture{
				"user_id": {JSON: "data.id"},
				"name":    {JSON: "data.name"},
				"missing": {JSON: "data.email"},
			},
		},
		{
			ID:     "status-page",
			URL:    srv.URL + "/status",
			Method: http.MethodGet,
			Captures: map[string]requests.Capture{
				"title": {HTML: "title"},
				"link":  {HTML: "a.more", Attr: "href"},
			},
		},
	}

	outcomes, err := svc.Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	user := outcomes[0]
	if !user.Success || user.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected user outcome %+v", user)
	}
	if user.Captures["user_id"] != "42" || user.Captures["name"] != "ada" {
		t.Fatalf("unexpected json captures %#v", user.Captures)
	}
	if _, ok := user.Captures["missing"]; ok {
		t.Fatalf("absent paths should not be captured")
	}

	status := outcomes[1]
	if status.Captures["title"] != "All good" || status.Captures["link"] != "/incidents" {
		t.Fatalf("unexpected html captures %#v", status.Captures)
	}

	if len(rec.outcomes) != 2 || rec.outcomes[0].RequestID != "create-user" {
		t.Fatalf("expected both outcomes recorded, got %#v", rec.outcomes)
	}
	if len(pub.events) != 2 || pub.events[1].RequestID != "status-page" {
		t.Fatalf("expected both outcomes published, got %#v", pub.events)
	}
	if pub.events[0].ID == pub.events[1].ID {
		t.Fatalf("event ids should be unique")
	}
}

func TestServiceRunReportsTransportFailures(t *testing.T) {
	srv := newAPIServer(t)
	url := srv.URL
	srv.Close()

	rec := &memoryRecorder{}
	svc := NewService(requests.Defaults{Timeout: time.Second}, rec, nil, nil)

	outcomes, err := svc.Run(context.Background(), []requests.Spec{
		{ID: "down", URL: url + "/users", Method: http.MethodGet},
	})
	if err == nil {
		t.Fatalf("expected joined error for failed request")
	}
	if len(outcomes) != 1 || outcomes[0].Success || outcomes[0].Error == "" {
		t.Fatalf("expected failed outcome with error text, got %+v", outcomes)
	}
	if len(rec.outcomes) != 1 {
		t.Fatalf("failed outcomes should still be recorded")
	}
}

func TestServiceRunNon2xxIsNotAFailure(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	svc := NewService(requests.Defaults{Timeout: time.Second}, nil, nil, nil)
	outcomes, err := svc.Run(context.Background(), []requests.Spec{
		{ID: "missing", URL: srv.URL + "/nope", Method: http.MethodGet},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcomes[0].Success || outcomes[0].StatusCode != http.StatusNotFound {
		t.Fatalf("expected completed 404 outcome, got %+v", outcomes[0])
	}
	if !strings.Contains(outcomes[0].BodySnippet, "not found") {
		t.Fatalf("unexpected body snippet %q", outcomes[0].BodySnippet)
	}
}

func TestServiceRunCollectsSinkErrors(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	rec := &memoryRecorder{err: errors.New("disk full")}
	pub := &capturePublisher{err: errors.New("queue down")}
	svc := NewService(requests.Defaults{Timeout: time.Second}, rec, pub, nil)

	_, err := svc.Run(context.Background(), []requests.Spec{
		{ID: "status", URL: srv.URL + "/status", Method: http.MethodGet},
	})
	if err == nil {
		t.Fatalf("expected sink errors to surface")
	}
	if !strings.Contains(err.Error(), "disk full") || !strings.Contains(err.Error(), "queue down") {
		t.Fatalf("expected both sink errors, got %v", err)
	}
}

func TestServiceRunCaptureOnNonJSONBody(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	svc := NewService(requests.Defaults{Timeout: time.Second}, nil, nil, nil)
	outcomes, err := svc.Run(context.Background(), []requests.Spec{
		{ID: "status", URL: srv.URL + "/status", Method: http.MethodGet,
			Captures: map[string]requests.Capture{"id": {JSON: "id"}}},
	})
	if err == nil {
		t.Fatalf("expected capture error for html body")
	}
	if !outcomes[0].Success {
		t.Fatalf("request itself should still count as completed")
	}
}

func TestServiceRunStopsOnCancelledContext(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(requests.Defaults{Timeout: time.Second}, nil, nil, nil)
	outcomes, err := svc.Run(ctx, []requests.Spec{
		{ID: "a", URL: srv.URL + "/status", Method: http.MethodGet},
		{ID: "b", URL: srv.URL + "/status", Method: http.MethodGet},
	})
	if err != nil {
		t.Fatalf("cancelled pass should not error, got %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes after cancellation, got %d", len(outcomes))
	}
}

func TestServiceRunRequiresSpecs(t *testing.T) {
	svc := NewService(requests.Defaults{}, nil, nil, nil)
	if _, err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty plan")
	}
}
