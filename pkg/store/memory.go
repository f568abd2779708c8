package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/play/fortytwo/pkg/fortytwo"
)

const (
	defaultMemorySize = 10000
	defaultMemoryTTL  = 24 * time.Hour
)

// MemoryStore 进程内存储，按序列化后的字节保存，避免与调用方共享内存
type MemoryStore struct {
	games *expirable.LRU[string, []byte]
}

type memoryOption func(*memoryOptions)

type memoryOptions struct {
	size int
	ttl  time.Duration
}

// WithSize 最多保存的游戏数
func WithSize(size int) memoryOption {
	return func(o *memoryOptions) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithTTL 游戏在最后一次保存后的存活时间
func WithTTL(ttl time.Duration) memoryOption {
	return func(o *memoryOptions) {
		o.ttl = ttl
	}
}

// NewMemory 创建内存存储
func NewMemory(opts ...memoryOption) *MemoryStore {
	o := &memoryOptions{size: defaultMemorySize, ttl: defaultMemoryTTL}
	for _, opt := range opts {
		opt(o)
	}
	onEvict := func(id string, _ []byte) {
		log.Trace().Str("game_id", id).Msg("memory store: game evicted")
	}
	return &MemoryStore{
		games: expirable.NewLRU[string, []byte](o.size, onEvict, o.ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*fortytwo.GameState, error) {
	data, ok := s.games.Get(id)
	if !ok {
		return nil, ErrGameNotFound
	}
	return Decode(data)
}

func (s *MemoryStore) Save(_ context.Context, gs *fortytwo.GameState) error {
	data, err := Encode(gs)
	if err != nil {
		return err
	}
	s.games.Add(gs.Id, data)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if !s.games.Remove(id) {
		return ErrGameNotFound
	}
	return nil
}

// Len 当前保存的游戏数
func (s *MemoryStore) Len() int {
	return s.games.Len()
}
