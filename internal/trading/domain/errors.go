package domain

import "errors"

var (
	// ErrNotFound is returned when an order or position does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMissingField is returned when a required order field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidTransition is returned when an order status change is not
	// legal from the current status.
	ErrInvalidTransition = errors.New("invalid order state transition")
)
