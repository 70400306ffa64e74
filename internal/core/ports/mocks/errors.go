package mocks

import "errors"

// ErrFileNotFound is returned when a screenshot file doesn't exist.
var ErrFileNotFound = errors.New("file not found")
