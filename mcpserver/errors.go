package mcpserver

import "errors"

var (
	ErrNilService        = errors.New("mcpserver: nil search service")
	ErrLookupUnsupported = errors.New("mcpserver: store does not support slug lookup")
	ErrMissingSlug       = errors.New("mcpserver: slug is required")
)
