package httpclient

import "context"

// Response is the buffered result of a plain fetch.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client fetches documents such as remotely hosted request plans. RestyClient
// is the default; tests substitute their own.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
