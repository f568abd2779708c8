package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	blpopTimeout        = time.Second // BLPOP 的阻塞超时时间
	defaultDataChanSize = 100
)

// Handler 处理一个事件
type Handler func(ctx context.Context, e Event)

// Subscriber 从一场游戏的事件队列 BLPOP 并分发给 worker
type Subscriber struct {
	rdb         redis.Cmdable
	key         string
	handler     Handler
	concurrency int  // 并发worker数量
	useRecovery bool // handler panic 时是否 recover

	dataChan chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
	started  bool
	mu       sync.Mutex
}

type SubscriberOption func(*Subscriber)

// WithConcurrency 处理函数的并发数，c <= 0 时为 1
func WithConcurrency(c int) SubscriberOption {
	return func(s *Subscriber) {
		if c <= 0 {
			c = 1
		}
		s.concurrency = c
	}
}

// WithRecovery handler panic 时记录日志并继续处理
func WithRecovery() SubscriberOption {
	return func(s *Subscriber) {
		s.useRecovery = true
	}
}

// NewSubscriber 订阅 key 对应的事件队列，key 通常来自 RedisPublisher.Key
func NewSubscriber(ctx context.Context, rdb redis.Cmdable, key string, handler Handler, opts ...SubscriberOption) *Subscriber {
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscriber{
		rdb:         rdb,
		key:         key,
		handler:     handler,
		concurrency: 1,
		dataChan:    make(chan []byte, defaultDataChanSize),
		ctx:         subCtx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loop 启动 BLPOP goroutine 和 worker
func (s *Subscriber) Loop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrSubscriberClosed
	}
	if s.started {
		return nil
	}
	s.started = true

	s.wg.Add(1)
	go s.blpopLoop()
	for i := 0; i < s.concurrency; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	log.Info().Str("key", s.key).Int("workers", s.concurrency).Msg("event subscriber started")
	return nil
}

func (s *Subscriber) blpopLoop() {
	defer s.wg.Done()
	for {
		if s.ctx.Err() != nil {
			return
		}
		results, err := s.rdb.BLPop(s.ctx, blpopTimeout, s.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || s.ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Str("key", s.key).Msg("blpop failed")
			select {
			case <-s.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if len(results) != 2 {
			log.Warn().Str("key", s.key).Int("results_len", len(results)).Msg("blpop returned unexpected result length")
			continue
		}
		select {
		case s.dataChan <- []byte(results[1]):
		case <-s.ctx.Done():
			log.Warn().Str("key", s.key).Msg("subscriber stopping, discarding event")
			return
		}
	}
}

func (s *Subscriber) worker(workerId int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case payload := <-s.dataChan:
			s.process(workerId, payload)
		}
	}
}

func (s *Subscriber) process(workerId int, payload []byte) {
	if s.useRecovery {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("key", s.key).Int("worker_id", workerId).Interface("panic", r).Msg("recovered panic in event handler")
			}
		}()
	}

	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		log.Error().Err(err).Str("key", s.key).Int("worker_id", workerId).Bytes("payload", payload).Msg("failed to unmarshal event")
		return
	}
	s.handler(s.ctx, e)
}

// Stop 停止订阅并等待 goroutine 退出
func (s *Subscriber) Stop() error {
	err := ErrSubscriberClosed
	s.once.Do(func() {
		s.cancel()
		err = nil
	})
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Str("key", s.key).Msg("event subscriber stopped")
	case <-time.After(10 * time.Second):
		log.Error().Str("key", s.key).Msg("event subscriber stop timed out")
	}
	return nil
}
