package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jonwraymond/postsearch/post"
)

// HTTPFetcher queries the search endpoint of a postsearch server.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher returns a fetcher for the server at baseURL. A nil client
// uses http.DefaultClient.
func NewHTTPFetcher(baseURL string, c *http.Client) *HTTPFetcher {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPFetcher{base: baseURL, client: c}
}

// Fetch implements Fetcher with GET /search?query=.
func (f *HTTPFetcher) Fetch(ctx context.Context, query string) (post.Results, error) {
	u, err := url.Parse(f.base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u = u.JoinPath("search")
	if query != "" {
		u.RawQuery = url.Values{"query": {query}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, body)
	}

	var results post.Results
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}
	if results == nil {
		results = post.Results{}
	}
	return results, nil
}
