package fortytwo

import (
	"errors"
	"testing"
)

var testSeats = [SeatCount]string{"n", "e", "s", "w"}

func mustSubmit(t *testing.T, bs *BiddingState, bids ...Bid) bool {
	t.Helper()
	var done bool
	for _, bid := range bids {
		var err error
		if done, err = bs.Submit(bid); err != nil {
			t.Fatalf("Submit(%+v) error = %v", bid, err)
		}
	}
	return done
}

func TestNewBiddingState(t *testing.T) {
	bs := NewBiddingState(North, testSeats)
	if bs.CurrentBidder != "e" || bs.Turn != East {
		t.Errorf("first bidder = %q (%v), want e (east)", bs.CurrentBidder, bs.Turn)
	}
	if bs.MinimumBid != MinBid {
		t.Errorf("MinimumBid = %d, want %d", bs.MinimumBid, MinBid)
	}
}

func TestBiddingState_Validate(t *testing.T) {
	tests := []struct {
		name string
		bid  Bid
		want error
	}{
		{"pass", Pass("e"), nil},
		{"minimum", Bid{PlayerId: "e", Amount: 30, Trump: SuitSixes}, nil},
		{"maximum", Bid{PlayerId: "e", Amount: 42, Trump: SuitDoubles}, nil},
		{"wrong bidder", Bid{PlayerId: "s", Amount: 30, Trump: SuitSixes}, ErrNotCurrentBidder},
		{"empty bidder", Bid{Amount: 30, Trump: SuitSixes}, ErrNotCurrentBidder},
		{"pass with trump", Bid{PlayerId: "e", Trump: SuitSixes}, ErrInvalidTrumpSuit},
		{"too low", Bid{PlayerId: "e", Amount: 29, Trump: SuitSixes}, ErrBidTooLow},
		{"negative", Bid{PlayerId: "e", Amount: -5, Trump: SuitSixes}, ErrBidTooLow},
		{"too high", Bid{PlayerId: "e", Amount: 43, Trump: SuitSixes}, ErrBidTooHigh},
		{"missing trump", Bid{PlayerId: "e", Amount: 31}, ErrMissingTrump},
		{"unknown trump", Bid{PlayerId: "e", Amount: 31, Trump: Suit(12)}, ErrInvalidTrumpSuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := NewBiddingState(North, testSeats)
			err := bs.Validate(tt.bid)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%+v) = %v, want %v", tt.bid, err, tt.want)
			}
		})
	}
}

func TestBiddingState_AcceptsEveryLegalBid(t *testing.T) {
	trumps := []Suit{SuitBlanks, SuitOnes, SuitTwos, SuitThrees, SuitFours, SuitFives, SuitSixes, SuitDoubles}
	for amount := -1; amount <= 50; amount++ {
		for _, trump := range trumps {
			bs := NewBiddingState(North, testSeats)
			bid := Bid{PlayerId: "e", Amount: amount, Trump: trump}
			if amount == 0 {
				bid.Trump = SuitNone
			}
			legal := amount == 0 || (amount >= MinBid && amount <= MaxBid)
			if err := bs.Validate(bid); (err == nil) != legal {
				t.Errorf("Validate(%d, %v) = %v, legal %v", amount, trump, err, legal)
			}
		}
	}
}

func TestBiddingState_NotHigher(t *testing.T) {
	bs := NewBiddingState(North, testSeats)
	mustSubmit(t, &bs, Bid{PlayerId: "e", Amount: 31, Trump: SuitFives})

	for _, amount := range []int{30, 31} {
		_, err := bs.Submit(Bid{PlayerId: "s", Amount: amount, Trump: SuitSixes})
		if !errors.Is(err, ErrBidNotHigher) {
			t.Errorf("Submit(%d) error = %v, want ErrBidNotHigher", amount, err)
		}
	}
	if len(bs.BidHistory) != 1 || bs.CurrentBidder != "s" {
		t.Error("rejected bids must not change the state")
	}

	mustSubmit(t, &bs, Bid{PlayerId: "s", Amount: 32, Trump: SuitSixes})
	if bs.CurrentBid.PlayerId != "s" || bs.CurrentBid.Amount != 32 {
		t.Errorf("CurrentBid = %+v", bs.CurrentBid)
	}
}

func TestBiddingState_CompletesAfterThreePasses(t *testing.T) {
	bs := NewBiddingState(North, testSeats)
	if mustSubmit(t, &bs, Bid{PlayerId: "e", Amount: 30, Trump: SuitSixes}, Pass("s"), Pass("w")) {
		t.Fatal("bidding should not complete after two passes")
	}
	if bs.PassCount != 2 {
		t.Errorf("PassCount = %d, want 2", bs.PassCount)
	}
	if !mustSubmit(t, &bs, Pass("n")) {
		t.Fatal("bidding should complete after three passes")
	}

	contract, ok := bs.Contract()
	if !ok || contract.PlayerId != "e" || contract.Amount != 30 || contract.Trump != SuitSixes {
		t.Errorf("Contract() = %+v, %v", contract, ok)
	}
	if bs.ForcedBidActive {
		t.Error("forced bid should not be active")
	}

	if _, err := bs.Submit(Pass("e")); !errors.Is(err, ErrBiddingComplete) {
		t.Errorf("Submit after completion error = %v, want ErrBiddingComplete", err)
	}
}

func TestBiddingState_RaiseResetsPassCount(t *testing.T) {
	bs := NewBiddingState(North, testSeats)
	mustSubmit(t, &bs,
		Bid{PlayerId: "e", Amount: 30, Trump: SuitSixes},
		Pass("s"),
		Bid{PlayerId: "w", Amount: 34, Trump: SuitFours},
	)
	if bs.PassCount != 0 {
		t.Errorf("PassCount = %d, want 0", bs.PassCount)
	}
	if !mustSubmit(t, &bs, Pass("n"), Pass("e"), Pass("s")) {
		t.Fatal("bidding should complete")
	}
	if contract, _ := bs.Contract(); contract.PlayerId != "w" || contract.Amount != 34 {
		t.Errorf("Contract() = %+v", contract)
	}
}

func TestBiddingState_ForcedBid(t *testing.T) {
	// 庄家是 west，north 先叫，四家依次过牌
	bs := NewBiddingState(West, testSeats)
	if mustSubmit(t, &bs, Pass("n"), Pass("e"), Pass("s"), Pass("w")) {
		t.Fatal("four passes should not complete bidding")
	}
	if !bs.ForcedBidActive {
		t.Fatal("forced bid should be active")
	}
	if bs.PassCount != 4 {
		t.Errorf("PassCount = %d, want 4", bs.PassCount)
	}
	if bs.CurrentBidder != "w" || bs.Turn != West {
		t.Errorf("CurrentBidder = %q, want dealer w", bs.CurrentBidder)
	}

	if _, err := bs.Submit(Pass("w")); !errors.Is(err, ErrBidTooLow) {
		t.Errorf("dealer pass error = %v, want ErrBidTooLow", err)
	}
	if _, err := bs.Submit(Bid{PlayerId: "w", Amount: 29, Trump: SuitSixes}); !errors.Is(err, ErrBidTooLow) {
		t.Errorf("dealer low bid error = %v, want ErrBidTooLow", err)
	}
	if bs.PassCount != 4 {
		t.Errorf("PassCount = %d after rejected pass, want 4", bs.PassCount)
	}

	if !mustSubmit(t, &bs, Bid{PlayerId: "w", Amount: bs.MinimumBid, Trump: SuitDoubles}) {
		t.Fatal("forced bid should complete bidding")
	}
	if contract, _ := bs.Contract(); contract.PlayerId != "w" || contract.Amount != MinBid {
		t.Errorf("Contract() = %+v", contract)
	}
}

func TestBiddingState_SeatOf(t *testing.T) {
	bs := NewBiddingState(North, testSeats)
	if pos, ok := bs.SeatOf("s"); !ok || pos != South {
		t.Errorf("SeatOf(s) = %v, %v", pos, ok)
	}
	if _, ok := bs.SeatOf("x"); ok {
		t.Error("unknown player should not have a seat")
	}
}

func TestMarksFor(t *testing.T) {
	for amount := MinBid; amount <= MaxBid; amount++ {
		if got := MarksFor(amount); got != 1 {
			t.Errorf("MarksFor(%d) = %d, want 1", amount, got)
		}
	}
	if MarksFor(0) != 0 {
		t.Error("a pass is worth no marks")
	}
}
