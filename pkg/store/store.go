// Package store 保存游戏状态，替代进程内的全局游戏表
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/play/fortytwo/pkg/fortytwo"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidGame  = errors.New("game id is required")
)

// Store 游戏状态存储，返回的状态与存储内容互不影响
type Store interface {
	Get(ctx context.Context, id string) (*fortytwo.GameState, error)
	Save(ctx context.Context, gs *fortytwo.GameState) error
	Delete(ctx context.Context, id string) error
}

// Encode 序列化游戏状态
func Encode(gs *fortytwo.GameState) ([]byte, error) {
	if gs == nil || gs.Id == "" {
		return nil, ErrInvalidGame
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", gs.Id, err)
	}
	return data, nil
}

// Decode 反序列化游戏状态
func Decode(data []byte) (*fortytwo.GameState, error) {
	gs := new(fortytwo.GameState)
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return gs, nil
}
