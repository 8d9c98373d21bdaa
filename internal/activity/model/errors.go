package model

import "errors"

var (
	// ErrFileAccess means the backing store could not be read or written.
	ErrFileAccess = errors.New("file access error")
	// ErrParse means the backing store content is not a JSON array of activities.
	ErrParse = errors.New("parse error")
	// ErrMalformedInput means a request body is not a valid activity.
	ErrMalformedInput = errors.New("malformed input")
	ErrNotFound       = errors.New("activity not found")
)
