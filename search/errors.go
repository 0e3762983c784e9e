package search

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchFailure reports that no tier could query the store.
	ErrSearchFailure = errors.New("search failure")
	// ErrNilStore is returned by NewService when no store is given.
	ErrNilStore = errors.New("search: nil store")
)

// Error describes a search that could not be answered.
type Error struct {
	Term string
	Path Path
	Err  error
}

func (e *Error) Error() string {
	if e.Term == "" {
		return fmt.Sprintf("search: %s path failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("search %q: %s path failed: %v", e.Term, e.Path, e.Err)
}

// Unwrap reports both ErrSearchFailure and the store error.
func (e *Error) Unwrap() []error {
	return []error{ErrSearchFailure, e.Err}
}
