package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	// ErrLockTimeout 多次重试后仍未拿到锁
	ErrLockTimeout = errors.New("failed to acquire game lock after retries")
	// ErrLockNotHeld 锁已过期或被其他实例持有
	ErrLockNotHeld = errors.New("game lock not held or already expired")
)

// unlockScript 只有值匹配时才删除，避免释放别人的锁
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// Unlock 释放锁
type Unlock func(ctx context.Context) error

// Locker 保证同一场游戏同时只有一个操作在执行
type Locker interface {
	Lock(ctx context.Context, gameId string) (Unlock, error)
}

// LockOptions 获取锁的参数
type LockOptions struct {
	TTL        time.Duration // 锁的过期时间
	MaxRetries int           // 最大重试次数
	RetryDelay time.Duration // 重试间隔
}

type LockOption func(*LockOptions)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(o *LockOptions) {
		o.TTL = ttl
	}
}

func WithLockRetries(retries int, delay time.Duration) LockOption {
	return func(o *LockOptions) {
		o.MaxRetries = retries
		o.RetryDelay = delay
	}
}

func defaultLockOptions() LockOptions {
	return LockOptions{
		TTL:        3 * time.Second,
		MaxRetries: 20,
		RetryDelay: 50 * time.Millisecond,
	}
}

// RedisLocker 基于 SET NX PX 的分布式锁，多个进程共享一个 Redis 时使用
type RedisLocker struct {
	rdb    redis.Cmdable
	prefix string
	opts   LockOptions
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(rdb redis.Cmdable, opts ...LockOption) *RedisLocker {
	o := defaultLockOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisLocker{rdb: rdb, prefix: "fortytwo:lock:", opts: o}
}

func (l *RedisLocker) Lock(ctx context.Context, gameId string) (Unlock, error) {
	if gameId == "" {
		return nil, ErrInvalidGame
	}
	key := l.prefix + gameId
	value := uuid.NewString()

	for i := 0; i <= l.opts.MaxRetries; i++ {
		acquired, err := l.rdb.SetNX(ctx, key, value, l.opts.TTL).Result()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("key", key).Int("attempt", i+1).Msg("failed to setnx game lock")
			return nil, err
		}
		if acquired {
			log.Ctx(ctx).Trace().Str("key", key).Dur("ttl", l.opts.TTL).Msg("game lock acquired")
			return l.unlock(key, value), nil
		}
		if i == l.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.opts.RetryDelay):
		}
	}

	log.Ctx(ctx).Warn().Str("key", key).Int("max_retries", l.opts.MaxRetries).Msg("failed to acquire game lock")
	return nil, ErrLockTimeout
}

func (l *RedisLocker) unlock(key, value string) Unlock {
	return func(ctx context.Context) error {
		result, err := l.rdb.Eval(ctx, unlockScript, []string{key}, value).Result()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to execute unlock script")
			return err
		}
		if n, ok := result.(int64); ok && n == 1 {
			return nil
		}
		log.Ctx(ctx).Warn().Str("key", key).Msg("game lock expired before release")
		return ErrLockNotHeld
	}
}

// LocalLocker 单进程使用的按游戏加锁
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, gameId string) (Unlock, error) {
	if gameId == "" {
		return nil, ErrInvalidGame
	}

	l.mu.Lock()
	ll, ok := l.locks[gameId]
	if !ok {
		ll = &localLock{ch: make(chan struct{}, 1)}
		l.locks[gameId] = ll
	}
	ll.refs++
	l.mu.Unlock()

	select {
	case ll.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(gameId, ll)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		err := ErrLockNotHeld
		once.Do(func() {
			<-ll.ch
			l.release(gameId, ll)
			err = nil
		})
		return err
	}, nil
}

// release 没有等待者时删除锁
func (l *LocalLocker) release(gameId string, ll *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ll.refs--
	if ll.refs == 0 {
		delete(l.locks, gameId)
	}
}
