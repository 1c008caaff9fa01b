// Package fetch provides include.Fetcher implementations.
//
// HTTP works natively and in the browser: under GOOS=js the net/http client
// is backed by the Fetch API, so fragment requests from WASM go through the
// page's own fetch with the page's origin and cookies.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vcrobe/nojs-include/include"
)

// Compile-time assertion to ensure HTTP implements the include.Fetcher interface.
var _ include.Fetcher = (*HTTP)(nil)

// HTTP fetches fragments over HTTP, resolving paths against Base.
type HTTP struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Base is the page URL fragment paths are relative to. If nil, paths must
	// be absolute URLs.
	Base *url.URL
}

// NewHTTP creates an HTTP fetcher relative to the page at base.
func NewHTTP(base string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	return &HTTP{Client: client, Base: u}, nil
}

// Fetch implements include.Fetcher.
func (h *HTTP) Fetch(ctx context.Context, path string) (*include.Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid fragment path %q: %w", path, err)
	}
	target := ref
	if h.Base != nil {
		target = h.Base.ResolveReference(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return &include.Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
