package client

import "errors"

// FailureMessage is the user-facing text shown when a fetch fails.
const FailureMessage = "Failed to load posts. Please try again."

var (
	// ErrNilFetcher is returned by NewSession without a fetcher.
	ErrNilFetcher = errors.New("client: nil fetcher")

	// ErrFetch wraps non-success responses from the search endpoint.
	ErrFetch = errors.New("client: fetch failed")
)
