// Package events 游戏状态变化的事件流
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/play/fortytwo/pkg/fortytwo"
)

// Kind 事件类型
type Kind string

const (
	KindPlayerJoined    Kind = "player.joined"
	KindPlayerLeft      Kind = "player.left"
	KindHandDealt       Kind = "hand.dealt"
	KindBidPlaced       Kind = "bid.placed"
	KindBiddingComplete Kind = "bidding.complete"
	KindDominoPlayed    Kind = "domino.played"
	KindTrickWon        Kind = "trick.won"
	KindHandScored      Kind = "hand.scored"
	KindGameFinished    Kind = "game.finished"
)

// Event 一次状态变化
type Event struct {
	Kind       Kind            `json:"kind"`
	GameId     string          `json:"gameId"`
	HandNumber int             `json:"handNumber"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	At         time.Time       `json:"at"`
}

// New 创建事件，payload 序列化为 JSON
func New(kind Kind, gs *fortytwo.GameState, payload any) (Event, error) {
	e := Event{
		Kind:       kind,
		GameId:     gs.Id,
		HandNumber: gs.HandNumber,
		At:         time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return e, fmt.Errorf("marshal %s payload: %w", kind, err)
		}
		e.Payload = data
	}
	return e, nil
}

// Decode 把 payload 解析到 v
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.Kind)
	}
	return json.Unmarshal(e.Payload, v)
}

// PlayerPayload 入座和离开
type PlayerPayload struct {
	PlayerId string            `json:"playerId"`
	Position fortytwo.Position `json:"position"`
}

// DealtPayload 新一局发牌，手牌不随事件发布
type DealtPayload struct {
	Dealer fortytwo.Position `json:"dealer"`
	Opener string            `json:"opener"`
}

// BidPayload 叫牌
type BidPayload struct {
	Bid fortytwo.Bid `json:"bid"`
}

// ContractPayload 叫牌结束
type ContractPayload struct {
	Contract fortytwo.Bid  `json:"contract"`
	Team     fortytwo.Team `json:"team"`
}

// PlayPayload 出牌
type PlayPayload struct {
	Play fortytwo.Play `json:"play"`
}

// TrickPayload 一墩的结果
type TrickPayload struct {
	Index    int               `json:"index"`
	Winner   string            `json:"winner"`
	Position fortytwo.Position `json:"position"`
	Points   int               `json:"points"`
}

// HandPayload 一局的结算
type HandPayload struct {
	Score fortytwo.HandScore `json:"score"`
	Marks [2]int             `json:"marks"`
}

// FinishedPayload 整场结束
type FinishedPayload struct {
	Winner fortytwo.Team `json:"winner"`
	Marks  [2]int        `json:"marks"`
}

// Publisher 发布事件
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Discard 丢弃所有事件
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, ...Event) error { return nil }

// Buffer 把事件保存在内存中，单进程和测试使用
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

func (b *Buffer) Publish(_ context.Context, events ...Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

// Events 返回已发布事件的副本
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Kinds 已发布事件的类型序列
func (b *Buffer) Kinds() []Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Kind, len(b.events))
	for i, e := range b.events {
		out[i] = e.Kind
	}
	return out
}

// Reset 清空
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
