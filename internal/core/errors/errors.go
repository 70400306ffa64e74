// Package errors defines the failures the translation core reports.
//
// Sentinels are matched with errors.Is. The typed errors in types.go carry a
// Message code and parameters for API responses and match a sentinel too, so
// callers that only need the category never type-assert.
package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResponse is returned when a vendor answers without any content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrRateLimited is matched by RateLimitedError: every candidate provider is suspended.
	ErrRateLimited = errors.New("rate limited")

	// ErrTooManyRequests marks a vendor HTTP 429. It triggers a suspension and a retry.
	ErrTooManyRequests = errors.New("too many requests")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
