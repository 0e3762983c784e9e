package store

import (
	"errors"
	"strings"
)

// Error kinds reported by stores.
var (
	ErrUnavailable      = errors.New("store unavailable")
	ErrIndexUnavailable = errors.New("text index unavailable")
	ErrUnsupported      = errors.New("operation not supported")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrDuplicateSlug    = errors.New("duplicate slug")
	ErrNotFound         = errors.New("post not found")
	ErrClosed           = errors.New("store closed")
)

// OpError records a failed store operation.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

// NewOpError builds an OpError. A nil kind defaults to ErrUnavailable.
func NewOpError(op string, kind, err error) *OpError {
	if kind == nil {
		kind = ErrUnavailable
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString("store: ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil && e.Err != e.Kind {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil && e.Err != e.Kind {
		errs = append(errs, e.Err)
	}
	return errs
}
