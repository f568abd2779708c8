package fortytwo

// Play 一次出牌
type Play struct {
	PlayerId string   `json:"playerId"`
	Position Position `json:"position"`
	Domino   Domino   `json:"domino"`
}

// Trick 一墩，最多四次出牌
type Trick struct {
	Leader         Position  `json:"leader"`
	LeadSuit       Suit      `json:"leadSuit,omitempty"`
	Plays          []Play    `json:"plays"`
	Winner         string    `json:"winner,omitempty"`
	WinnerPosition *Position `json:"winnerPosition,omitempty"`
}

// NewTrick 由 leader 首出的新一墩
func NewTrick(leader Position) Trick {
	return Trick{
		Leader: leader,
		Plays:  make([]Play, 0, SeatCount),
	}
}

// IsComplete 四家是否都已出牌
func (t *Trick) IsComplete() bool {
	return len(t.Plays) >= SeatCount
}

// IsResolved 是否已确定赢家
func (t *Trick) IsResolved() bool {
	return t.WinnerPosition != nil
}

// HasPlayed 玩家是否已在本墩出牌
func (t *Trick) HasPlayed(playerId string) bool {
	for _, p := range t.Plays {
		if p.PlayerId == playerId {
			return true
		}
	}
	return false
}

// Next 下一个应该出牌的座位
func (t *Trick) Next() Position {
	return (t.Leader + Position(len(t.Plays))) % SeatCount
}

// Play 出一张骨牌，首出决定本墩花色
func (t *Trick) Play(playerId string, pos Position, d Domino, trump Suit) error {
	if t.IsComplete() {
		return ErrTrickComplete
	}
	if t.HasPlayed(playerId) {
		return ErrDuplicatePlay
	}
	if len(t.Plays) == 0 {
		t.LeadSuit = LeadSuit(d, trump)
	}
	t.Plays = append(t.Plays, Play{PlayerId: playerId, Position: pos, Domino: d})
	return nil
}

// Resolve 确定赢家：将牌压非将牌，同花色比大小，不跟花色的牌不能赢
func (t *Trick) Resolve(trump Suit) (Play, error) {
	if !t.IsComplete() {
		return Play{}, ErrEmptyTrick
	}
	best := t.Plays[0]
	for _, p := range t.Plays[1:] {
		if beats(p.Domino, best.Domino, t.LeadSuit, trump) {
			best = p
		}
	}
	pos := best.Position
	t.Winner = best.PlayerId
	t.WinnerPosition = &pos
	return best, nil
}

// Dominoes 本墩出过的骨牌
func (t *Trick) Dominoes() Dominoes {
	ds := make(Dominoes, 0, len(t.Plays))
	for _, p := range t.Plays {
		ds = append(ds, p.Domino)
	}
	return ds
}

// CountPoints 本墩分牌的分数
func (t *Trick) CountPoints() int {
	return t.Dominoes().Points()
}

// Points 分牌分数加赢墩的 1 分
func (t *Trick) Points() int {
	return t.CountPoints() + 1
}

func (t Trick) clone() Trick {
	out := t
	out.Plays = append(make([]Play, 0, SeatCount), t.Plays...)
	if t.WinnerPosition != nil {
		pos := *t.WinnerPosition
		out.WinnerPosition = &pos
	}
	return out
}
