package httpclient

import (
	"encoding/base64"
	"errors"
)

const (
	// DefaultUserAgent is sent with every request issued by a RequestClient.
	DefaultUserAgent = "AP-WEBAPI/1.0"
	// DefaultBasicUserPrefix is prepended to the credential before Basic encoding.
	// It is a literal placeholder rather than a real user name; callers talking
	// to servers that expect "user:password" should override it.
	DefaultBasicUserPrefix = "user: "
)

var (
	// ErrUnsupportedMethod is recorded when Request is called with a verb other than GET, POST, PUT or DELETE.
	ErrUnsupportedMethod = errors.New("unsupported api request")
	// ErrRequestFailed is returned by the decode helpers when the last request did not succeed.
	ErrRequestFailed = errors.New("last request did not succeed")
	// ErrMalformedJSON is returned when a successful response body is not valid JSON.
	ErrMalformedJSON = errors.New("malformed json response")
)

// RequestClient issues one synchronous HTTP call at a time and keeps the
// outcome of the most recent call. It is not safe for concurrent use.
type RequestClient struct {
	url             string
	credential      string
	headers         *Headers
	debug           bool
	publicRoot      string
	userAgent       string
	basicUserPrefix string
	log             Logger

	result     string
	success    bool
	statusCode int
	hasStatus  bool
}

// Option customises a RequestClient at construction time.
type Option func(*RequestClient)

// WithPublicRoot sets the directory under which temp/curl.debug is written in debug mode.
func WithPublicRoot(root string) Option {
	return func(c *RequestClient) {
		c.publicRoot = root
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *RequestClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBasicUserPrefix overrides DefaultBasicUserPrefix for the "authorization" preset.
func WithBasicUserPrefix(prefix string) Option {
	return func(c *RequestClient) {
		c.basicUserPrefix = prefix
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log Logger) Option {
	return func(c *RequestClient) {
		c.log = ensureLogger(log)
	}
}

// NewRequestClient builds a client for url authenticated with credential.
// Either may be empty and set later.
func NewRequestClient(url, credential string, opts ...Option) *RequestClient {
	c := &RequestClient{
		url:             url,
		credential:      credential,
		headers:         NewHeaders(),
		userAgent:       DefaultUserAgent,
		basicUserPrefix: DefaultBasicUserPrefix,
		log:             discard{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RequestClient) SetURL(url string) *RequestClient {
	c.url = url
	return c
}

func (c *RequestClient) URL() string { return c.url }

func (c *RequestClient) SetCredential(credential string) *RequestClient {
	c.credential = credential
	return c
}

func (c *RequestClient) Credential() string { return c.credential }

func (c *RequestClient) SetDebug(debug bool) *RequestClient {
	c.debug = debug
	return c
}

func (c *RequestClient) Debug() bool { return c.debug }

type headerArgs struct {
	lengthHint string
	custom     bool
	slot       int
	hasSlot    bool
}

// HeaderOption adjusts a single SetHeader call.
type HeaderOption func(*headerArgs)

// WithLengthHint forces the JSON content type when hint is non-empty.
func WithLengthHint(hint string) HeaderOption {
	return func(a *headerArgs) {
		a.lengthHint = hint
	}
}

// AsCustom stores the kind argument verbatim as a header line.
func AsCustom() HeaderOption {
	return func(a *headerArgs) {
		a.custom = true
	}
}

// AtSlot places a custom line at slot instead of appending it.
func AtSlot(slot int) HeaderOption {
	return func(a *headerArgs) {
		a.slot = slot
		a.hasSlot = true
	}
}

// SetHeader applies the preset named by kind. The rules are independent, so
// one call may touch several slots: a custom "authorization" call fills the
// Authorization slot and also stores the raw line.
func (c *RequestClient) SetHeader(kind string, opts ...HeaderOption) *RequestClient {
	var args headerArgs
	for _, opt := range opts {
		opt(&args)
	}
	if c.headers == nil {
		c.headers = NewHeaders()
	}

	if kind == HeaderKindJSON {
		c.headers.Set(SlotContentType, jsonContentTypeLine)
	}
	if kind == HeaderKindBasicAuth {
		token := base64.StdEncoding.EncodeToString([]byte(c.basicUserPrefix + c.credential))
		c.headers.Set(SlotAuthorization, "Authorization: Basic "+token)
	}
	if kind == HeaderKindBearerAuth {
		token := base64.StdEncoding.EncodeToString([]byte(c.credential))
		c.headers.Set(SlotAuthorization, "Authorization: Bearer "+token)
	}
	if args.lengthHint != "" {
		c.headers.Set(SlotContentType, jsonContentTypeLine)
	}
	if kind == HeaderKindMultipartForm {
		c.headers.Set(SlotContentType, multipartContentTypeLine)
	}
	if args.custom {
		if args.hasSlot {
			c.headers.Set(args.slot, kind)
		} else {
			c.headers.Append(kind)
		}
	}
	return c
}

// Header returns a snapshot of the configured header lines.
func (c *RequestClient) Header() *Headers {
	return c.headers.Clone()
}

// ClearHeaders removes every configured header line.
func (c *RequestClient) ClearHeaders() *RequestClient {
	if c.headers == nil {
		c.headers = NewHeaders()
		return c
	}
	c.headers.Clear()
	return c
}

// Outcome is the state left behind by the most recent Request call.
type Outcome struct {
	Result     string
	Success    bool
	StatusCode int
	HasStatus  bool
}

// Outcome returns the stored result of the last Request call.
func (c *RequestClient) Outcome() Outcome {
	return Outcome{
		Result:     c.result,
		Success:    c.success,
		StatusCode: c.statusCode,
		HasStatus:  c.hasStatus,
	}
}

// Response returns the last response body, or the error text when the request failed.
func (c *RequestClient) Response() string { return c.result }

// Status reports whether the last request completed.
func (c *RequestClient) Status() bool { return c.success }

// ResponseCode returns the HTTP status of the last request. The second value is
// false when no response has been received.
func (c *RequestClient) ResponseCode() (int, bool) {
	return c.statusCode, c.hasStatus
}
