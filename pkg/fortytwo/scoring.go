package fortytwo

// ScoringState 一局的计分状态，按队伍索引
type ScoringState struct {
	TrickPoints        [2]int      `json:"trickPoints"`   // 分牌分数 + 赢墩分
	CountDominoes      [2]Dominoes `json:"countDominoes"` // 赢到的分牌
	BonusPoints        int         `json:"bonusPoints"`   // 叫牌方的额外加分
	PenaltyPoints      int         `json:"penaltyPoints"` // 叫牌方的罚分
	TricksResolved     int         `json:"tricksResolved"`
	RoundComplete      bool        `json:"roundComplete"`
	CurrentTrickWinner string      `json:"currentTrickWinner,omitempty"`
}

// NewScoringState 新一局的计分
func NewScoringState() ScoringState {
	return ScoringState{
		CountDominoes: [2]Dominoes{{}, {}},
	}
}

// HandScore 一局的结算结果
type HandScore struct {
	HandNumber  int    `json:"handNumber"`
	Contract    Bid    `json:"contract"`
	BiddingTeam Team   `json:"biddingTeam"`
	Points      [2]int `json:"points"`
	Made        bool   `json:"made"`      // 是否完成合约
	Marks       int    `json:"marks"`     // 本局发放的 mark
	AwardedTo   Team   `json:"awardedTo"` // 获得 mark 的队伍
}

// RecordTrick 把已结算的一墩记到赢家队伍
func (s *ScoringState) RecordTrick(t *Trick, team Team) error {
	if !t.IsResolved() {
		return ErrEmptyTrick
	}
	s.TrickPoints[team] += t.Points()
	for _, d := range t.Dominoes() {
		if d.IsCount() {
			s.CountDominoes[team] = append(s.CountDominoes[team], d)
		}
	}
	s.TricksResolved++
	s.CurrentTrickWinner = t.Winner
	return nil
}

// Total 队伍本局总分，叫牌方计入加分和罚分
func (s *ScoringState) Total(team, biddingTeam Team) int {
	total := s.TrickPoints[team]
	if team == biddingTeam {
		total += s.BonusPoints - s.PenaltyPoints
	}
	return total
}

// Settle 七墩结束后结算合约
// 叫牌方总分不低于叫牌数则获得 mark，否则被 set，mark 归对手
func (s *ScoringState) Settle(contract Bid, biddingTeam Team) (HandScore, error) {
	if s.TricksResolved < TricksCount {
		return HandScore{}, ErrIncompleteHand
	}
	hs := HandScore{
		Contract:    contract,
		BiddingTeam: biddingTeam,
		Points: [2]int{
			s.Total(NorthSouth, biddingTeam),
			s.Total(EastWest, biddingTeam),
		},
		Marks: MarksFor(contract.Amount),
	}
	hs.Made = hs.Points[biddingTeam] >= contract.Amount
	hs.AwardedTo = biddingTeam
	if !hs.Made {
		hs.AwardedTo = biddingTeam.Opponent()
	}
	s.RoundComplete = true
	return hs, nil
}

func (s ScoringState) clone() ScoringState {
	out := s
	out.CountDominoes = [2]Dominoes{s.CountDominoes[0].Clone(), s.CountDominoes[1].Clone()}
	return out
}
