package persist

import "errors"

var (
	// ErrCapacityExceeded is returned when a write would push the total slot size over the capacity.
	ErrCapacityExceeded = errors.New("local storage capacity exceeded")

	// ErrUnknownSlot is returned for slot names outside the managed set.
	ErrUnknownSlot = errors.New("unknown slot")
)
