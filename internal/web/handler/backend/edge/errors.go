package edge

import "errors"

var (
	// ErrUnknownAction is returned for an action the endpoint does not implement.
	ErrUnknownAction = errors.New("unknown_action")
	// ErrMissingValue is returned by save_settings without a value object.
	ErrMissingValue = errors.New("missing_value")
)
