// Package ratelimit implements fixed-window rate limiting for verification
// attempts. A window opens on the first attempt after the previous window
// expired; once MaxAttempts attempts land inside a window, further attempts
// are rejected until the window closes.
package ratelimit

import (
	"context"
	"time"

	"github.com/veritag/veritag/internal/server/models"
)

const (
	// MaxAttempts is the number of attempts allowed per window.
	MaxAttempts = 5
	// Window is the fixed window length.
	Window = 5 * time.Minute
)

// Key identifies one rate-limited principal/resource pair.
type Key struct {
	Principal  string
	ResourceID string
}

// Limiter tracks verification attempts per key.
//
// Check is read-only and never opens a window. RecordAttempt either admits
// the attempt and counts it, or rejects it with *common.RateLimitError
// without counting it. RecordSuccess only refreshes the last-attempt
// timestamp of the current window.
type Limiter interface {
	Check(ctx context.Context, key Key, now time.Time) (models.RateLimitInfo, error)
	RecordAttempt(ctx context.Context, key Key, now time.Time) error
	RecordSuccess(ctx context.Context, key Key, now time.Time) error
	Reset(ctx context.Context, key Key) error
	ResetAll(ctx context.Context) error
}

// expired reports whether a window that opened at start is over at now.
// A window is inclusive of its end instant.
func expired(start, now time.Time) bool {
	return now.After(start.Add(Window))
}

// info builds the limiter projection for a window with the given attempt
// count. A zero start means no window is open.
func info(start time.Time, attempts uint32, now time.Time) models.RateLimitInfo {
	if start.IsZero() || expired(start, now) {
		return models.RateLimitInfo{
			RemainingAttempts:  MaxAttempts,
			ResetTime:          now,
			CurrentWindowStart: now,
		}
	}
	remaining := uint32(0)
	if attempts < MaxAttempts {
		remaining = MaxAttempts - attempts
	}
	return models.RateLimitInfo{
		RemainingAttempts:  remaining,
		ResetTime:          start.Add(Window),
		CurrentWindowStart: start,
	}
}
