package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

type window struct {
	start       time.Time
	attempts    uint32
	lastAttempt time.Time
}

// MemoryLimiter is an in-process Limiter suitable for single-instance
// deployments and tests.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[Key]*window
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[Key]*window)}
}

var _ Limiter = (*MemoryLimiter)(nil)

func (l *MemoryLimiter) Check(ctx context.Context, key Key, now time.Time) (models.RateLimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return info(time.Time{}, 0, now), nil
	}
	return info(w.start, w.attempts, now), nil
}

func (l *MemoryLimiter) RecordAttempt(ctx context.Context, key Key, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || expired(w.start, now) {
		l.windows[key] = &window{start: now, attempts: 1, lastAttempt: now}
		return nil
	}
	if w.attempts >= MaxAttempts {
		return &common.RateLimitError{ResetTime: w.start.Add(Window)}
	}
	w.attempts++
	w.lastAttempt = now
	return nil
}

func (l *MemoryLimiter) RecordSuccess(ctx context.Context, key Key, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.windows[key]; ok && !expired(w.start, now) {
		w.lastAttempt = now
	}
	return nil
}

func (l *MemoryLimiter) Reset(ctx context.Context, key Key) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

func (l *MemoryLimiter) ResetAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[Key]*window)
	return nil
}
