package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	ErrDuplicateSlotNumber = errors.New("slot number already exists")
)
