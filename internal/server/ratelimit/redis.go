package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter is a Limiter backed by a Redis hash per key, for deployments
// that run more than one server instance. Window state expires from Redis
// one window length after it can no longer be current.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

var _ Limiter = (*RedisLimiter)(nil)

func redisKey(key Key) string {
	return fmt.Sprintf("%s%s:%s", redisKeyPrefix, key.Principal, key.ResourceID)
}

func (l *RedisLimiter) load(ctx context.Context, key Key) (*window, error) {
	fields, err := l.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorExternal, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	startNanos, err := strconv.ParseInt(fields["window_start"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad window_start: %s", common.ErrorExternal, err)
	}
	attempts, err := strconv.ParseUint(fields["attempts"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad attempts: %s", common.ErrorExternal, err)
	}
	w := &window{start: time.Unix(0, startNanos), attempts: uint32(attempts)}
	if v, ok := fields["last_attempt"]; ok {
		if nanos, err := strconv.ParseInt(v, 10, 64); err == nil {
			w.lastAttempt = time.Unix(0, nanos)
		}
	}
	return w, nil
}

func (l *RedisLimiter) store(ctx context.Context, key Key, w *window) error {
	k := redisKey(key)
	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, k,
		"window_start", w.start.UnixNano(),
		"attempts", w.attempts,
		"last_attempt", w.lastAttempt.UnixNano(),
	)
	pipe.Expire(ctx, k, 2*Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorExternal, err)
	}
	return nil
}

func (l *RedisLimiter) Check(ctx context.Context, key Key, now time.Time) (models.RateLimitInfo, error) {
	w, err := l.load(ctx, key)
	if err != nil {
		return models.RateLimitInfo{}, err
	}
	if w == nil {
		return info(time.Time{}, 0, now), nil
	}
	return info(w.start, w.attempts, now), nil
}

func (l *RedisLimiter) RecordAttempt(ctx context.Context, key Key, now time.Time) error {
	w, err := l.load(ctx, key)
	if err != nil {
		return err
	}
	if w == nil || expired(w.start, now) {
		return l.store(ctx, key, &window{start: now, attempts: 1, lastAttempt: now})
	}
	if w.attempts >= MaxAttempts {
		return &common.RateLimitError{ResetTime: w.start.Add(Window)}
	}
	w.attempts++
	w.lastAttempt = now
	return l.store(ctx, key, w)
}

func (l *RedisLimiter) RecordSuccess(ctx context.Context, key Key, now time.Time) error {
	w, err := l.load(ctx, key)
	if err != nil {
		return err
	}
	if w == nil || expired(w.start, now) {
		return nil
	}
	w.lastAttempt = now
	return l.store(ctx, key, w)
}

func (l *RedisLimiter) Reset(ctx context.Context, key Key) error {
	if err := l.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorExternal, err)
	}
	return nil
}

func (l *RedisLimiter) ResetAll(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: %s", common.ErrorExternal, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorExternal, err)
	}
	return nil
}
