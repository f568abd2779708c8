package fortytwo

import (
	"fmt"
	"math/rand/v2"
)

const maxPip = 6

// Domino 骨牌，High >= Low
type Domino struct {
	High uint8 `json:"high"`
	Low  uint8 `json:"low"`
}

// NewDomino 创建骨牌，点数必须在 [0,6] 且 low <= high
func NewDomino(high, low int) (Domino, error) {
	if high < 0 || high > maxPip || low < 0 || low > maxPip || low > high {
		return Domino{}, fmt.Errorf("%w: %d-%d", ErrInvalidDomino, high, low)
	}
	return Domino{High: uint8(high), Low: uint8(low)}, nil
}

// MustDomino 同 NewDomino，非法时 panic
func MustDomino(high, low int) Domino {
	d, err := NewDomino(high, low)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid 检查骨牌是否合法（反序列化后的数据）
func (d Domino) Valid() bool {
	return d.High <= maxPip && d.Low <= d.High
}

// PointValue 分值：5-0、4-1、3-2 各 5 分，6-4、5-5 各 10 分
func (d Domino) PointValue() int {
	switch sum := d.High + d.Low; {
	case sum == 5:
		return 5
	case sum == 10 && d.Low >= 4:
		return 10
	default:
		return 0
	}
}

// IsCount 是否为分牌
func (d Domino) IsCount() bool {
	return d.PointValue() > 0
}

// IsDouble 是否为对子
func (d Domino) IsDouble() bool {
	return d.High == d.Low
}

// Has 是否包含指定点数
func (d Domino) Has(pip uint8) bool {
	return d.High == pip || d.Low == pip
}

// Other 返回另一端点数，d 不包含 pip 时返回 High
func (d Domino) Other(pip uint8) uint8 {
	if d.High == pip {
		return d.Low
	}
	return d.High
}

func (d Domino) String() string {
	return fmt.Sprintf("%d-%d", d.High, d.Low)
}

type Dominoes []Domino

// FullSet 按固定顺序返回 28 张骨牌，每次调用都是新的切片
func FullSet() Dominoes {
	ds := make(Dominoes, 0, 28)
	for high := uint8(0); high <= maxPip; high++ {
		for low := uint8(0); low <= high; low++ {
			ds = append(ds, Domino{High: high, Low: low})
		}
	}
	return ds
}

// Shuffled 用种子生成全套骨牌的一个排列，种子相同结果相同
func Shuffled(seed uint64) Dominoes {
	ds := FullSet()
	ds.Shuffle(rand.New(rand.NewPCG(seed, seed^0x42)))
	return ds
}

// Shuffle 原地洗牌，rng 为 nil 时使用全局随机源
func (ds Dominoes) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) {
		ds[i], ds[j] = ds[j], ds[i]
	}
	if rng == nil {
		rand.Shuffle(len(ds), swap)
		return
	}
	rng.Shuffle(len(ds), swap)
}

// Deal 按 north、east、south、west 顺序每人连续发 7 张
func (ds Dominoes) Deal() ([SeatCount]Dominoes, error) {
	var hands [SeatCount]Dominoes
	if len(ds) != SeatCount*HandSize {
		return hands, fmt.Errorf("%w: got %d", ErrInvalidBoneyard, len(ds))
	}
	for i := range hands {
		hands[i] = make(Dominoes, HandSize)
		copy(hands[i], ds[i*HandSize:(i+1)*HandSize])
	}
	return hands, nil
}

// Contains 是否包含指定骨牌
func (ds Dominoes) Contains(d Domino) bool {
	return ds.Index(d) >= 0
}

// Index 返回骨牌位置，不存在返回 -1
func (ds Dominoes) Index(d Domino) int {
	for i, x := range ds {
		if x == d {
			return i
		}
	}
	return -1
}

// Remove 返回移除 d 之后的新切片，不修改原切片
func (ds Dominoes) Remove(d Domino) (Dominoes, bool) {
	i := ds.Index(d)
	if i < 0 {
		return ds, false
	}
	out := make(Dominoes, 0, len(ds)-1)
	out = append(out, ds[:i]...)
	out = append(out, ds[i+1:]...)
	return out, true
}

// Points 分牌总分
func (ds Dominoes) Points() int {
	total := 0
	for _, d := range ds {
		total += d.PointValue()
	}
	return total
}

// Clone 复制
func (ds Dominoes) Clone() Dominoes {
	if ds == nil {
		return nil
	}
	out := make(Dominoes, len(ds))
	copy(out, ds)
	return out
}
