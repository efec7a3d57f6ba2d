package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/webapi/internal/config"
	"github.com/samvad-hq/webapi/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T, dir, plan string) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "webapi",
		PublicRoot:             dir,
		UserAgent:              "AP-WEBAPI/1.0",
		BasicUserPrefix:        "user: ",
		RequestTimeout:         2 * time.Second,
		RequestsFile:           writeFile(t, dir, "requests.yaml", plan),
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "history.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestRunnerSinglePassRecordsAndPublishes(t *testing.T) {
	var hookHits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hook" {
			hookHits.Add(1)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"id":"abc"}`))
	}))
	defer api.Close()

	dir := t.TempDir()
	cfg := testConfig(t, dir, `
requests:
  - id: ping
    url: `+api.URL+`/ping
    captures:
      id: {json: id}
  - id: off
    url: `+api.URL+`/off
    enabled: false
`)
	cfg.PublishersFile = writeFile(t, dir, "publishers.yaml", `
publishers:
  - id: hook
    type: http
    http:
      url: `+api.URL+`/hook
`)

	r, err := NewRunner(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := hookHits.Load(); got != 1 {
		t.Fatalf("expected 1 published event, got %d", got)
	}

	store, err := storage.NewStore("bbolt", cfg.BBoltPath, storage.Options{})
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	out, found, err := store.Last("ping")
	if err != nil || !found {
		t.Fatalf("expected recorded outcome, found=%v err=%v", found, err)
	}
	if out.StatusCode != http.StatusOK || out.Captures["id"] != "abc" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if _, found, _ := store.Last("off"); found {
		t.Fatalf("disabled request should not run")
	}
}

func TestRunnerLoopStopsOnCancel(t *testing.T) {
	var hits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	dir := t.TempDir()
	cfg := testConfig(t, dir, "requests:\n  - {id: ping, url: "+api.URL+"}\n")
	cfg.StorageType = "none"
	cfg.RunInterval = 20 * time.Millisecond

	r, err := NewRunner(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if hits.Load() < 2 {
		t.Fatalf("expected repeated passes, got %d", hits.Load())
	}
}

func TestNewRunnerErrors(t *testing.T) {
	if _, err := NewRunner(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	dir := t.TempDir()
	cfg := testConfig(t, dir, "requests:\n  - {id: a, url: https://example.com}\n")
	cfg.RequestsFile = filepath.Join(dir, "missing.yaml")
	if _, err := NewRunner(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing plan")
	}

	cfg = testConfig(t, dir, "requests:\n  - {id: a, url: https://example.com}\n")
	cfg.StorageType = "redis"
	if _, err := NewRunner(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported storage")
	}
}
