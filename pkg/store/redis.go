package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/fortytwo/pkg/fortytwo"
)

const (
	defaultKeyPrefix = "fortytwo:game:"
	defaultRedisTTL  = 7 * 24 * time.Hour
)

// RedisStore 以 JSON 保存在 Redis 中的游戏状态
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithKeyPrefix 设置 Redis 键前缀
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithExpiration 设置过期时间，0 表示不过期
func WithExpiration(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedis 创建 Redis 存储
func NewRedis(rdb redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: defaultKeyPrefix,
		ttl:    defaultRedisTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*fortytwo.GameState, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("game_id", id).Msg("failed to load game")
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, gs *fortytwo.GameState) error {
	data, err := Encode(gs)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(gs.Id), data, s.ttl).Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("game_id", gs.Id).Msg("failed to save game")
		return fmt.Errorf("redis set failed: %w", err)
	}
	log.Ctx(ctx).Trace().Str("game_id", gs.Id).Int("bytes", len(data)).Msg("game saved")
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}
