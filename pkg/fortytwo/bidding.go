package fortytwo

import "slices"

// Bid 叫牌，Amount 为 0 表示过牌
type Bid struct {
	PlayerId string `json:"playerId"`
	Amount   int    `json:"amount"`
	Trump    Suit   `json:"trump,omitempty"`
}

// Pass 构造过牌
func Pass(playerId string) Bid {
	return Bid{PlayerId: playerId}
}

// IsPass 是否为过牌
func (b Bid) IsPass() bool {
	return b.Amount == 0
}

// MarksFor 合约对应的 mark 数，30-42 的普通叫牌都是 1
func MarksFor(amount int) int {
	if amount < MinBid {
		return 0
	}
	return 1
}

// BiddingState 叫牌状态
type BiddingState struct {
	Seats           [SeatCount]string `json:"seats"` // 按座位排列的玩家ID
	Dealer          Position          `json:"dealer"`
	BidHistory      []Bid             `json:"bidHistory"`
	CurrentBid      *Bid              `json:"currentBid,omitempty"`
	CurrentBidder   string            `json:"currentBidder"`
	Turn            Position          `json:"turn"`
	PassCount       int               `json:"passCount"`
	MinimumBid      int               `json:"minimumBid"`
	BiddingComplete bool              `json:"biddingComplete"`
	ForcedBidActive bool              `json:"forcedBidActive"`
}

// NewBiddingState 庄家左手边的玩家先叫
func NewBiddingState(dealer Position, seats [SeatCount]string) BiddingState {
	first := dealer.Next()
	return BiddingState{
		Seats:         seats,
		Dealer:        dealer,
		BidHistory:    []Bid{},
		CurrentBidder: seats[first],
		Turn:          first,
		MinimumBid:    MinBid,
	}
}

// Validate 按顺序校验叫牌，不修改状态
func (bs *BiddingState) Validate(bid Bid) error {
	if bs.BiddingComplete {
		return ErrBiddingComplete
	}
	if bid.PlayerId == "" || bid.PlayerId != bs.CurrentBidder {
		return ErrNotCurrentBidder
	}
	if bid.IsPass() {
		if bid.Trump != SuitNone {
			return ErrInvalidTrumpSuit
		}
		// 四家都过后庄家必须叫
		if bs.ForcedBidActive {
			return ErrBidTooLow
		}
		return nil
	}
	if bid.Amount < bs.MinimumBid {
		return ErrBidTooLow
	}
	if bid.Amount > MaxBid {
		return ErrBidTooHigh
	}
	if bs.CurrentBid != nil && bid.Amount <= bs.CurrentBid.Amount {
		return ErrBidNotHigher
	}
	if bid.Trump == SuitNone {
		return ErrMissingTrump
	}
	if !bid.Trump.Valid() {
		return ErrInvalidTrumpSuit
	}
	return nil
}

// Submit 校验并记录叫牌，返回叫牌是否结束
func (bs *BiddingState) Submit(bid Bid) (bool, error) {
	if err := bs.Validate(bid); err != nil {
		return false, err
	}
	bs.BidHistory = append(bs.BidHistory, bid)

	if bid.IsPass() {
		bs.PassCount++
	} else {
		b := bid
		bs.CurrentBid = &b
		bs.PassCount = 0
	}

	switch {
	case bs.ForcedBidActive:
		bs.finish()
	case bs.CurrentBid != nil && bs.PassCount == SeatCount-1:
		bs.finish()
	case bs.CurrentBid == nil && bs.PassCount == SeatCount:
		bs.ForcedBidActive = true
		bs.Turn = bs.Dealer
		bs.CurrentBidder = bs.Seats[bs.Dealer]
	default:
		bs.Turn = bs.Turn.Next()
		bs.CurrentBidder = bs.Seats[bs.Turn]
	}
	return bs.BiddingComplete, nil
}

func (bs *BiddingState) finish() {
	bs.BiddingComplete = true
	bs.CurrentBidder = ""
}

// Contract 叫牌结束后的合约
func (bs *BiddingState) Contract() (Bid, bool) {
	if !bs.BiddingComplete || bs.CurrentBid == nil {
		return Bid{}, false
	}
	return *bs.CurrentBid, true
}

// SeatOf 玩家的座位
func (bs *BiddingState) SeatOf(playerId string) (Position, bool) {
	i := slices.Index(bs.Seats[:], playerId)
	if i < 0 || playerId == "" {
		return 0, false
	}
	return Position(i), true
}

func (bs BiddingState) clone() BiddingState {
	out := bs
	out.BidHistory = slices.Clone(bs.BidHistory)
	if bs.CurrentBid != nil {
		b := *bs.CurrentBid
		out.CurrentBid = &b
	}
	return out
}
