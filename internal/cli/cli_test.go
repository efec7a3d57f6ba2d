package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/webapi/internal/domain"
	"github.com/samvad-hq/webapi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	noColorFlag = false
	root := NewRootCommand(BuildInfo{Version: "1.2.3", BuildTime: "today"})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "webapi version 1.2.3")
	assert.Contains(t, out, "Built: today")
}

func TestRequestCommandSendsFieldsAndHeaders(t *testing.T) {
	var gotBody, gotCT, gotAuth, gotTrace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotTrace = r.Header.Get("X-Trace")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	out, err := execute(t, "request",
		"-X", "post",
		"--url", srv.URL,
		"-H", "json",
		"-H", "AuthorizationBearer",
		"--credential", "tok",
		"--custom-header", "X-Trace: abc",
		"-f", "name=ada",
		"-f", "tags[]=x",
		"-f", "tags[]=y",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "201 POST "+srv.URL)
	assert.Contains(t, out, `{"id":7}`)

	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "Bearer dG9r", gotAuth)
	assert.Equal(t, "abc", gotTrace)
	assert.JSONEq(t, `{"name":"ada","tags":["x","y"]}`, gotBody)
}

func TestRequestCommandDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	out, err := execute(t, "request", "--url", srv.URL, "--decode")
	require.NoError(t, err)
	assert.Contains(t, out, "\"data\": {\n    \"ok\": true\n  }")
}

func TestRequestCommandDecodeRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	_, err := execute(t, "request", "--url", srv.URL, "--decode")
	require.Error(t, err)
}

func TestRequestCommandReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	out, err := execute(t, "request", "--url", url, "--timeout", "500ms")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED GET")
	assert.True(t, strings.HasPrefix(err.Error(), "request failed:"))
}

func TestRequestCommandRequiresURL(t *testing.T) {
	_, err := execute(t, "request")
	require.Error(t, err)
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"b=2", "list[]=1", "list[]=2"}, `{"a":1,"b":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), fields["a"])
	assert.Equal(t, "2", fields["b"])
	assert.Equal(t, []any{"1", "2"}, fields["list"])

	empty, err := parseFields(nil, "")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = parseFields([]string{"novalue"}, "")
	require.Error(t, err)

	_, err = parseFields(nil, "[1,2]")
	require.Error(t, err)
}

func TestLastCommandPrintsRecordedOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := storage.NewStore("bbolt", path, storage.Options{})
	require.NoError(t, err)
	require.NoError(t, store.Record(domain.Outcome{
		RequestID:   "ping",
		Method:      http.MethodGet,
		URL:         "https://example.com/ping",
		Success:     true,
		StatusCode:  http.StatusOK,
		Captures:    map[string]string{"id": "abc"},
		CompletedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
	require.NoError(t, store.Close())

	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("BBOLT_PATH", path)

	out, err := execute(t, "last", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "ping at 2026-01-02 03:04:05Z")
	assert.Contains(t, out, "200 GET https://example.com/ping")
	assert.Contains(t, out, "id = abc")

	out, err = execute(t, "last", "ping", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status_code": 200`)

	_, err = execute(t, "last", "missing")
	require.Error(t, err)
}

func TestRunCommandExecutesPlan(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	plan := filepath.Join(dir, "requests.yaml")
	require.NoError(t, os.WriteFile(plan, []byte("requests:\n  - {id: ping, url: "+srv.URL+"}\n"), 0o644))

	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "run", "--requests", plan, "--interval", "0")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestRequestCommandRejectsUnknownPreset(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer srv.Close()

	_, err := execute(t, "request", "--url", srv.URL, "-H", "multipartform")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown header preset "multipartform"`)
	assert.Equal(t, 0, hits)
}

func TestRequestCommandMultipartPreset(t *testing.T) {
	var gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	_, err := execute(t, "request", "--url", srv.URL, "-H", "Multipart-Form")
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", gotCT)
}

func TestParsePresets(t *testing.T) {
	kinds, err := parsePresets([]string{" JSON ", "authorizationbearer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"json", "authorizationbearer"}, kinds)

	_, err = parsePresets([]string{"xml"})
	require.Error(t, err)
}
