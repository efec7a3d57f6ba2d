package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samvad-hq/webapi/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Package requests loads request plans (YAML/JSON) and turns entries into configured clients.

// Spec describes one planned request.
type Spec struct {
	ID             string             `json:"id" yaml:"id"`
	URL            string             `json:"url" yaml:"url"`
	Method         string             `json:"method" yaml:"method"`
	Credential     string             `json:"credential" yaml:"credential"`
	Headers        []string           `json:"headers" yaml:"headers"`
	CustomHeaders  []string           `json:"custom_headers" yaml:"custom_headers"`
	Fields         map[string]any     `json:"fields" yaml:"fields"`
	Encoding       string             `json:"encoding" yaml:"encoding"`
	TimeoutSeconds int                `json:"timeout_seconds" yaml:"timeout_seconds"`
	VerifyTLS      *bool              `json:"verify_tls" yaml:"verify_tls"`
	Debug          bool               `json:"debug" yaml:"debug"`
	Enabled        *bool              `json:"enabled" yaml:"enabled"`
	Captures       map[string]Capture `json:"captures" yaml:"captures"`
}

// Capture extracts one value from a response body: a gjson path for JSON
// bodies or a CSS selector (optionally reading Attr) for HTML bodies.
type Capture struct {
	JSON string `json:"json" yaml:"json"`
	HTML string `json:"html" yaml:"html"`
	Attr string `json:"attr" yaml:"attr"`
}

type planFile struct {
	Requests []Spec `json:"requests" yaml:"requests"`
}

// Registry holds the validated plan entries in file order.
type Registry struct {
	mu    sync.RWMutex
	specs []Spec
	idx   map[string]Spec
}

// LoadRegistry loads a request plan from a local YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	return newRegistry(raw, filepath.Ext(path))
}

// LoadRegistryFrom loads a plan from a local path or, for http(s) sources,
// downloads it with client.
func LoadRegistryFrom(ctx context.Context, client httpclient.Client, source string) (*Registry, error) {
	source = strings.TrimSpace(source)
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return LoadRegistry(source)
	}

	if client == nil {
		client = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	resp, err := client.Get(ctx, source, map[string]string{"Accept": "application/json, application/yaml, text/yaml"})
	if err != nil {
		return nil, fmt.Errorf("fetch requests plan: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("requests plan returned status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	return newRegistry(resp.Body(), filepath.Ext(u.Path))
}

func newRegistry(raw []byte, ext string) (*Registry, error) {
	plan, err := parsePlan(raw, ext)
	if err != nil {
		return nil, err
	}
	if len(plan.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	reg := &Registry{
		specs: make([]Spec, len(plan.Requests)),
		idx:   make(map[string]Spec, len(plan.Requests)),
	}
	for i := range plan.Requests {
		spec := sanitizeSpec(plan.Requests[i])
		if err := validateSpec(spec); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := reg.idx[spec.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", spec.ID)
		}
		reg.specs[i] = spec
		reg.idx[spec.ID] = spec
	}
	return reg, nil
}

func parsePlan(data []byte, ext string) (planFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if plan, err := unmarshalPlan(d.name, data, d.fn); err == nil {
			return plan, nil
		}
	}

	return planFile{}, errors.New("requests file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalPlan(name string, data []byte, fn unmarshalFn) (planFile, error) {
	var plan planFile
	if err := fn(data, &plan); err != nil {
		return planFile{}, fmt.Errorf("decode %s requests: %w", name, err)
	}
	return plan, nil
}

func sanitizeSpec(s Spec) Spec {
	s.ID = strings.TrimSpace(s.ID)
	s.URL = strings.TrimSpace(s.URL)
	s.Method = strings.ToUpper(strings.TrimSpace(s.Method))
	if s.Method == "" {
		s.Method = http.MethodGet
	}
	s.Encoding = strings.ToLower(strings.TrimSpace(s.Encoding))
	if s.Encoding == "" {
		s.Encoding = string(httpclient.EncodingJSON)
	}

	kinds := make([]string, 0, len(s.Headers))
	for _, k := range s.Headers {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kinds = append(kinds, k)
		}
	}
	s.Headers = kinds

	custom := make([]string, 0, len(s.CustomHeaders))
	for _, line := range s.CustomHeaders {
		if line = strings.TrimSpace(line); line != "" {
			custom = append(custom, line)
		}
	}
	s.CustomHeaders = custom

	if s.Enabled == nil {
		def := true
		s.Enabled = &def
	}
	if s.TimeoutSeconds < 0 {
		s.TimeoutSeconds = 0
	}
	return s
}

func validateSpec(s Spec) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required for request %q", s.ID)
	}
	switch s.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("method %q is not supported for request %q", s.Method, s.ID)
	}
	if s.Encoding != string(httpclient.EncodingJSON) && s.Encoding != string(httpclient.EncodingURLEncoded) {
		return fmt.Errorf("encoding %q is not supported for request %q", s.Encoding, s.ID)
	}
	for _, k := range s.Headers {
		if !httpclient.IsHeaderKind(k) {
			return fmt.Errorf("unknown header preset %q for request %q", k, s.ID)
		}
	}
	for name, c := range s.Captures {
		if (c.JSON == "") == (c.HTML == "") {
			return fmt.Errorf("capture %q for request %q needs exactly one of json or html", name, s.ID)
		}
	}
	return nil
}

// All returns every plan entry in file order.
func (r *Registry) All() []Spec {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Enabled returns the entries that are not switched off.
func (r *Registry) Enabled() []Spec {
	all := r.All()
	out := make([]Spec, 0, len(all))
	for _, s := range all {
		if s.EnabledValue() {
			out = append(out, s)
		}
	}
	return out
}

// ByID returns the entry with the given id.
func (r *Registry) ByID(id string) (Spec, bool) {
	if r == nil {
		return Spec{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Spec{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// EnabledValue returns the enabled flag defaulting to true.
func (s Spec) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
