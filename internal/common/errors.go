// Package common defines shared sentinel errors and helpers used across the
// service layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	// ErrorInternal marks invariant violations: data known to exist failed to
	// decode, a verification references a product that is gone, etc. These are
	// always logged before being surfaced.
	ErrorInternal = errors.New("internal error")

	// Caller-supplied data that cannot be processed at all (as opposed to a
	// code that simply fails verification, which is a status, not an error).
	ErrorInvalidInput = errors.New("invalid input")

	// Key material that failed hex decoding or curve parsing.
	ErrorMalformedKey = errors.New("malformed key")

	// Failure reported by an external collaborator (reward ledger).
	ErrorExternal = errors.New("external service error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// RateLimitError reports that the caller exhausted the attempt budget for a
// resource. It is an expected, retryable condition: ResetTime tells the
// caller when the window opens again.
type RateLimitError struct {
	ResetTime time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, try again after %s", e.ResetTime.UTC().Format(time.RFC3339))
}

// IsRateLimited reports whether err is (or wraps) a RateLimitError and
// returns it if so.
func IsRateLimited(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
