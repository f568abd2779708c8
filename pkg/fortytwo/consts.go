package fortytwo

import "fmt"

const (
	MinBid      = 30 // lowest legal bid
	MaxBid      = 42 // every point in the hand
	HandSize    = 7  // dominoes per player
	TricksCount = 7  // tricks per hand
	SeatCount   = 4
	CountTotal  = 35 // count points in a full set
	MarksToWin  = 7  // default game length
)

// Phase 游戏阶段
type Phase string

const (
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseScoring  Phase = "scoring"
	PhaseFinished Phase = "finished"
)

// Position 座位，按顺时针排列
type Position uint8

const (
	North Position = iota
	East
	South
	West
)

var positionNames = [SeatCount]string{"north", "east", "south", "west"}

// Positions 返回出牌顺序的所有座位
func Positions() [SeatCount]Position {
	return [SeatCount]Position{North, East, South, West}
}

// Next 顺时针下一个座位
func (p Position) Next() Position {
	return (p + 1) % SeatCount
}

// Partner 对家
func (p Position) Partner() Position {
	return (p + 2) % SeatCount
}

// Team 所属队伍 (north/south 一队, east/west 一队)
func (p Position) Team() Team {
	return Team(p % 2)
}

func (p Position) String() string {
	if p >= SeatCount {
		return fmt.Sprintf("position(%d)", uint8(p))
	}
	return positionNames[p]
}

func (p Position) MarshalText() ([]byte, error) {
	if p >= SeatCount {
		return nil, fmt.Errorf("invalid position %d", uint8(p))
	}
	return []byte(positionNames[p]), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	for i, name := range positionNames {
		if name == string(text) {
			*p = Position(i)
			return nil
		}
	}
	return fmt.Errorf("invalid position %q", text)
}

// Team 队伍
type Team uint8

const (
	NorthSouth Team = iota
	EastWest
)

var teamNames = [2]string{"northSouth", "eastWest"}

// Positions 队伍的两个座位
func (t Team) Positions() [2]Position {
	return [2]Position{Position(t), Position(t).Partner()}
}

// Opponent 对手队伍
func (t Team) Opponent() Team {
	return 1 - t
}

func (t Team) String() string {
	if t > EastWest {
		return fmt.Sprintf("team(%d)", uint8(t))
	}
	return teamNames[t]
}

func (t Team) MarshalText() ([]byte, error) {
	if t > EastWest {
		return nil, fmt.Errorf("invalid team %d", uint8(t))
	}
	return []byte(teamNames[t]), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	for i, name := range teamNames {
		if name == string(text) {
			*t = Team(i)
			return nil
		}
	}
	return fmt.Errorf("invalid team %q", text)
}

// Suit 花色：点数花色 blanks-sixes，外加 doubles，零值表示无
type Suit uint8

const (
	SuitNone Suit = iota
	SuitBlanks
	SuitOnes
	SuitTwos
	SuitThrees
	SuitFours
	SuitFives
	SuitSixes
	SuitDoubles
)

var suitNames = [...]string{"none", "blanks", "ones", "twos", "threes", "fours", "fives", "sixes", "doubles"}

// PipSuit 点数对应的花色
func PipSuit(pip uint8) Suit {
	return SuitBlanks + Suit(pip)
}

// Pip 点数花色对应的点数
func (s Suit) Pip() uint8 {
	return uint8(s - SuitBlanks)
}

// Valid 是否为 8 种可选将牌之一
func (s Suit) Valid() bool {
	return s >= SuitBlanks && s <= SuitDoubles
}

// IsPip 是否为点数花色
func (s Suit) IsPip() bool {
	return s >= SuitBlanks && s <= SuitSixes
}

func (s Suit) String() string {
	if s > SuitDoubles {
		return fmt.Sprintf("suit(%d)", uint8(s))
	}
	return suitNames[s]
}

func (s Suit) MarshalText() ([]byte, error) {
	if s > SuitDoubles {
		return nil, fmt.Errorf("invalid suit %d", uint8(s))
	}
	return []byte(suitNames[s]), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = SuitNone
		return nil
	}
	for i, name := range suitNames {
		if name == string(text) {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("invalid suit %q", text)
}
