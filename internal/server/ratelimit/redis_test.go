package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/common"
)

func newRedisLimiter(t *testing.T) *RedisLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client)
}

func TestRedisLimiter_ExhaustsAndRejects(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(t)
	key := Key{Principal: "u1", ResourceID: "s1"}
	start := time.Unix(1700000000, 0)

	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, l.RecordAttempt(ctx, key, start.Add(time.Duration(i)*time.Second)))
	}

	err := l.RecordAttempt(ctx, key, start.Add(10*time.Second))
	require.Error(t, err)
	rl, ok := common.IsRateLimited(err)
	require.True(t, ok)
	assert.Equal(t, start.Add(Window).UnixNano(), rl.ResetTime.UnixNano())

	info, err := l.Check(ctx, key, start.Add(11*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 0, info.RemainingAttempts)
	assert.Equal(t, start.UnixNano(), info.CurrentWindowStart.UnixNano())
}

func TestRedisLimiter_ExpiredWindowReopens(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(t)
	key := Key{Principal: "u1", ResourceID: "s1"}
	start := time.Unix(1700000000, 0)

	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, l.RecordAttempt(ctx, key, start))
	}

	later := start.Add(Window + time.Second)
	require.NoError(t, l.RecordAttempt(ctx, key, later))

	info, err := l.Check(ctx, key, later)
	require.NoError(t, err)
	assert.EqualValues(t, MaxAttempts-1, info.RemainingAttempts)
	assert.Equal(t, later.UnixNano(), info.CurrentWindowStart.UnixNano())
}

func TestRedisLimiter_CheckDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(t)
	key := Key{Principal: "u1", ResourceID: "s1"}
	now := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		info, err := l.Check(ctx, key, now)
		require.NoError(t, err)
		assert.EqualValues(t, MaxAttempts, info.RemainingAttempts)
	}
}

func TestRedisLimiter_ResetAll(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(t)
	start := time.Unix(1700000000, 0)

	k1 := Key{Principal: "u1", ResourceID: "s1"}
	k2 := Key{Principal: "u2", ResourceID: "s2"}
	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, l.RecordAttempt(ctx, k1, start))
		require.NoError(t, l.RecordAttempt(ctx, k2, start))
	}

	require.NoError(t, l.ResetAll(ctx))

	require.NoError(t, l.RecordAttempt(ctx, k1, start))
	require.NoError(t, l.RecordAttempt(ctx, k2, start))
}
