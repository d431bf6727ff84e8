package login

import "errors"

var (
	// ErrUnauthorized is returned for a wrong password.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPasswordRequired is returned for an empty password.
	ErrPasswordRequired = errors.New("password is required")
)
