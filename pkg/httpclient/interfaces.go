package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Non-2xx responses are returned, not treated as errors.
type Client interface {
	// Post sends body as JSON ([]byte bodies go out verbatim).
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
	// Do sends body as JSON with an arbitrary method.
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
