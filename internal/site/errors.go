package site

import "errors"

var (
	// ErrValidation wraps every input validation failure. Nothing is changed when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned for unknown record ids.
	ErrNotFound = errors.New("record not found")
)
