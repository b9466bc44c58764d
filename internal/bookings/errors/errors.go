package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrNoActiveBooking = errors.New("no active booking for slot")

	ErrAlreadyResolved = errors.New("booking is already resolved")
)
