package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a request when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

type requestArgs struct {
	timeout   time.Duration
	verifyTLS bool
	encoding  Encoding
}

// RequestOption adjusts a single Request or Send call.
type RequestOption func(*requestArgs)

// WithTimeout bounds the whole round trip. Non-positive values keep the default.
func WithTimeout(d time.Duration) RequestOption {
	return func(a *requestArgs) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithVerifyTLS toggles host and peer certificate verification together.
func WithVerifyTLS(verify bool) RequestOption {
	return func(a *requestArgs) {
		a.verifyTLS = verify
	}
}

// WithEncoding selects how non-empty fields are serialized.
func WithEncoding(enc Encoding) RequestOption {
	return func(a *requestArgs) {
		a.encoding = enc
	}
}

// Result is the buffered response of one Send call.
type Result struct {
	Body       []byte
	StatusCode int
}

func (r *Result) String() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Send performs one request with the client's current configuration and
// returns the buffered response. Stored outcome fields are left untouched.
// Any HTTP status counts as a response; only transport failures return an error.
// Redirects are not followed: a 3xx is reported as received. Header lines are
// sent as given, so repeated names all reach the server; a User-Agent line
// replaces the default agent. When no Content-Type line is configured the
// body's own media type is sent (application/json for EncodingJSON), not the
// form type a bare curl POST would default to.
func (c *RequestClient) Send(ctx context.Context, method string, fields map[string]any, opts ...RequestOption) (*Result, error) {
	if !supportedMethod(method) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := requestArgs{timeout: DefaultTimeout, encoding: EncodingJSON}
	for _, opt := range opts {
		opt(&args)
	}

	client := newRestyBaseClient(args.timeout).
		SetAllowGetMethodPayload(true).
		SetLogger(restyLogger{log: c.log}).
		SetRedirectPolicy(resty.RedirectPolicyFunc(stopAtFirstResponse)).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !args.verifyTLS}) //nolint:gosec // verification is caller-controlled

	if c.debug {
		trace, err := openTrace(c.publicRoot)
		if err != nil {
			c.log.WarnObj("debug trace unavailable", "debug_error", map[string]any{
				"path":  DebugFilePath(c.publicRoot),
				"error": err.Error(),
			})
		} else {
			defer trace.Close()
			client.SetLogger(trace).SetDebug(true)
		}
	}

	req := client.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent)

	for _, line := range c.headers.Lines() {
		name, value, ok := splitHeaderLine(line)
		if !ok {
			c.log.WarnObj("skipping malformed header line", "header_line", line)
			continue
		}
		if http.CanonicalHeaderKey(name) == "User-Agent" {
			req.SetHeader(name, value)
			continue
		}
		req.Header.Add(name, value)
	}

	if len(fields) > 0 {
		body, mediaType, err := encodeBody(fields, args.encoding)
		if err != nil {
			return nil, err
		}
		if req.Header.Get("Content-Type") == "" {
			req.SetHeader("Content-Type", mediaType)
		}
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, c.url, err)
	}

	return &Result{Body: resp.Body(), StatusCode: resp.StatusCode()}, nil
}

// Request performs Send and stores its outcome. Errors never escape: on
// failure the error text becomes the stored response and Status reports false.
func (c *RequestClient) Request(ctx context.Context, method string, fields map[string]any, opts ...RequestOption) *RequestClient {
	res, err := c.Send(ctx, method, fields, opts...)
	if err != nil {
		c.result = err.Error()
		c.success = false
		c.statusCode = 0
		c.hasStatus = false
		c.log.WarnObj("request failed", "request_error", map[string]any{
			"method": method,
			"url":    c.url,
			"error":  err.Error(),
		})
		return c
	}

	c.result = string(res.Body)
	c.success = true
	c.statusCode = res.StatusCode
	c.hasStatus = true
	c.log.DebugObj("request completed", "request_result", map[string]any{
		"method":      method,
		"url":         c.url,
		"status_code": res.StatusCode,
		"body_bytes":  len(res.Body),
	})
	return c
}

// stopAtFirstResponse keeps the 3xx response instead of following Location.
func stopAtFirstResponse(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
