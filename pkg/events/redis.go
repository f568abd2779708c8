package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	ErrQueueFull        = errors.New("event queue is full")
	ErrSubscriberClosed = errors.New("subscriber is closed")
)

const (
	defaultKeyPrefix = "fortytwo:events:"
	defaultQueueSize = 1000
)

// RedisPublisher 把事件 RPUSH 到每场游戏各自的 Redis List
type RedisPublisher struct {
	rdb       redis.Cmdable
	prefix    string
	queueSize int
}

type Option func(*RedisPublisher)

// WithQueueSize 每场游戏的最大积压事件数，0 表示不限制
func WithQueueSize(size int) Option {
	return func(p *RedisPublisher) {
		if size >= 0 {
			p.queueSize = size
		}
	}
}

// WithPrefix 设置 Redis 键前缀
func WithPrefix(prefix string) Option {
	return func(p *RedisPublisher) {
		p.prefix = prefix
	}
}

// NewRedisPublisher 创建 Redis 事件发布者
func NewRedisPublisher(rdb redis.Cmdable, opts ...Option) *RedisPublisher {
	p := &RedisPublisher{
		rdb:       rdb,
		prefix:    defaultKeyPrefix,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key 游戏事件队列的键
func (p *RedisPublisher) Key(gameId string) string {
	return p.prefix + gameId
}

// Publish 按游戏分组批量发布
// 先检查所有涉及的队列，任一游戏超过上限时整批拒绝，一条都不写入
func (p *RedisPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	var order []string
	batches := make(map[string][]any)
	for i, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("game_id", e.GameId).Int("batch_index", i).Msg("failed to marshal event")
			return fmt.Errorf("json marshal failed for batch index %d: %w", i, err)
		}
		if _, ok := batches[e.GameId]; !ok {
			order = append(order, e.GameId)
		}
		batches[e.GameId] = append(batches[e.GameId], payload)
	}

	for _, gameId := range order {
		if err := p.checkQueue(ctx, p.Key(gameId), len(batches[gameId])); err != nil {
			return err
		}
	}

	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, gameId := range order {
			pipe.RPush(ctx, p.Key(gameId), batches[gameId]...)
		}
		return nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int("games", len(order)).Int("batch_size", len(events)).Msg("failed to publish events")
		return fmt.Errorf("redis RPush failed: %w", err)
	}
	log.Ctx(ctx).Trace().Int("games", len(order)).Int("batch_size", len(events)).Msg("events published")
	return nil
}

// checkQueue 写入 n 条后是否会超过该游戏的队列上限
func (p *RedisPublisher) checkQueue(ctx context.Context, key string, n int) error {
	if p.queueSize <= 0 {
		return nil
	}
	length, err := p.rdb.LLen(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to get event queue length")
		return fmt.Errorf("redis LLen failed: %w", err)
	}
	if length+int64(n) > int64(p.queueSize) {
		log.Ctx(ctx).Warn().Str("key", key).Int64("current_length", length).Int("batch_size", n).Int("queue_size_limit", p.queueSize).Msg("event batch would exceed queue size limit")
		return ErrQueueFull
	}
	return nil
}
