package storage

import "errors"

// ErrInvalidInput is returned when store input validation fails.
var ErrInvalidInput = errors.New("invalid input")
