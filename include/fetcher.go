package include

import "context"

// Response is what a Fetcher returns for a fragment request.
type Response struct {
	StatusCode int
	Body       string
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Fetcher retrieves fragment markup. path is relative to the page, e.g.
// "html-includes/header.html". A non-nil error is a transport failure; HTTP
// error statuses are reported through Response.StatusCode.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, path string) (*Response, error) {
	return f(ctx, path)
}
