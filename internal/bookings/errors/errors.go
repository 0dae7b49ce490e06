package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrLockHeld = errors.New("property booking lock already held")

	ErrInvalidInterval = errors.New("end date must be after start date")
)
