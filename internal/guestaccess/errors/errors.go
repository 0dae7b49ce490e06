package errors

import "errors"

var (
	ErrNotFound = errors.New("guest token not found")
)
