package post

import "errors"

// ErrInvalidPost is returned when a post is missing a required field.
var ErrInvalidPost = errors.New("invalid post")
