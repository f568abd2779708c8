package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	mr, rdb := newRedisClient(t)
	l := NewRedisLocker(rdb, WithLockTTL(time.Second), WithLockRetries(2, time.Millisecond))
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("fortytwo:lock:g1"))

	_, err = l.Lock(ctx, "g1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	// 其他游戏不受影响
	other, err := l.Lock(ctx, "g2")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("fortytwo:lock:g1"))
	assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)

	_, err = l.Lock(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestRedisLocker_ExpiredLockIsNotReleased(t *testing.T) {
	mr, rdb := newRedisClient(t)
	l := NewRedisLocker(rdb, WithLockTTL(time.Second), WithLockRetries(0, 0))
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "g1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	next, err := l.Lock(ctx, "g1")
	require.NoError(t, err)

	assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)
	assert.True(t, mr.Exists("fortytwo:lock:g1"), "stale unlock must not release the new holder")
	require.NoError(t, next(ctx))
}

func TestRedisLocker_ContextCanceled(t *testing.T) {
	_, rdb := newRedisClient(t)
	l := NewRedisLocker(rdb, WithLockRetries(100, 50*time.Millisecond))

	unlock, err := l.Lock(context.Background(), "g1")
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLocker_Serializes(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		running atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "g1")
			if !assert.NoError(t, err) {
				return
			}
			n := running.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			assert.NoError(t, unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Empty(t, l.locks)
}

func TestLocalLocker_Unlock(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "g1")
	require.NoError(t, err)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(timeout, "g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)

	again, err := l.Lock(ctx, "g1")
	require.NoError(t, err)
	require.NoError(t, again(ctx))

	_, err = l.Lock(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidGame)
}
