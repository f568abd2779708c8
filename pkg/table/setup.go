package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/fortytwo/pkg/config"
	"github.com/play/fortytwo/pkg/events"
	"github.com/play/fortytwo/pkg/history"
	"github.com/play/fortytwo/pkg/store"
)

// FromConfig 按配置组装服务
// 配置了 redis.addr 时使用 Redis 存储、分布式锁和事件队列，否则全部在进程内
// 配置了 history.dsn 时归档每一局；返回的 close 负责释放连接
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, func() error, error) {
	var (
		st      store.Store
		closers []func() error
	)
	base := []Option{WithGameOptions(cfg.GameOptions()...)}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		st = store.NewRedis(rdb,
			store.WithKeyPrefix(cfg.Store.KeyPrefix),
			store.WithExpiration(cfg.Store.TTL),
		)
		base = append(base,
			WithLocker(store.NewRedisLocker(rdb,
				store.WithLockTTL(cfg.Lock.TTL),
				store.WithLockRetries(cfg.Lock.MaxRetries, cfg.Lock.RetryDelay),
			)),
			WithPublisher(events.NewRedisPublisher(rdb,
				events.WithPrefix(cfg.Events.KeyPrefix),
				events.WithQueueSize(cfg.Events.QueueSize),
			)),
		)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis store")
	} else {
		st = store.NewMemory(store.WithSize(cfg.Store.Size), store.WithTTL(cfg.Store.TTL))
		log.Info().Int("size", cfg.Store.Size).Msg("using memory store")
	}

	if cfg.History.DSN != "" {
		db := history.Open(cfg.History.DSN, cfg.History.LogSlow)
		closers = append(closers, db.Close)
		archive := history.New(db)
		if err := archive.CreateSchema(ctx); err != nil {
			_ = closeAll(closers)
			return nil, nil, err
		}
		base = append(base, WithArchive(archive))
	}

	svc := New(st, append(base, opts...)...)
	return svc, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
