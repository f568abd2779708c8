// Package idgen 生成游戏ID和大厅码
package idgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// codeAlphabet 去掉了容易看错的字符 (0/O, 1/I/L)
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

// Generator 游戏桌服务使用的ID生成器
type Generator interface {
	GameId() string
	Code() string
}

// UUID 随机 v4 ID 和随机大厅码
type UUID struct{}

func (UUID) GameId() string {
	return uuid.NewString()
}

func (UUID) Code() string {
	var sb strings.Builder
	sb.Grow(codeLength)
	for range codeLength {
		sb.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return sb.String()
}

// Sequence 可预测的递增ID，测试和回放使用
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

// NewSequence 创建递增生成器，ID 形如 "<prefix>-1"
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) GameId() string {
	return fmt.Sprintf("%s-%d", s.Prefix, s.n.Add(1))
}

func (s *Sequence) Code() string {
	return fmt.Sprintf("%0*d", codeLength, s.n.Add(1))
}
