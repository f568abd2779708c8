// Package history 把结算后的每一局归档到 Postgres
package history

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/play/fortytwo/pkg/fortytwo"
)

// HandRecord 一局的结算记录，(game_id, hand_number) 唯一
type HandRecord struct {
	bun.BaseModel `bun:"table:hand_records,alias:hr"`

	Id               int64     `bun:"id,pk,autoincrement"`
	GameId           string    `bun:"game_id,notnull"`
	HandNumber       int       `bun:"hand_number,notnull"`
	Bidder           string    `bun:"bidder,notnull"`
	Amount           int       `bun:"amount,notnull"`
	Trump            string    `bun:"trump,notnull"`
	BiddingTeam      string    `bun:"bidding_team,notnull"`
	NorthSouthPoints int       `bun:"north_south_points,notnull"`
	EastWestPoints   int       `bun:"east_west_points,notnull"`
	Made             bool      `bun:"made,notnull"`
	Marks            int       `bun:"marks,notnull"`
	AwardedTo        string    `bun:"awarded_to,notnull"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// NewHandRecord 由引擎的结算结果生成记录
func NewHandRecord(gameId string, hs fortytwo.HandScore) *HandRecord {
	return &HandRecord{
		GameId:           gameId,
		HandNumber:       hs.HandNumber,
		Bidder:           hs.Contract.PlayerId,
		Amount:           hs.Contract.Amount,
		Trump:            hs.Contract.Trump.String(),
		BiddingTeam:      hs.BiddingTeam.String(),
		NorthSouthPoints: hs.Points[fortytwo.NorthSouth],
		EastWestPoints:   hs.Points[fortytwo.EastWest],
		Made:             hs.Made,
		Marks:            hs.Marks,
		AwardedTo:        hs.AwardedTo.String(),
	}
}

// HandScore 还原为引擎的结算结果
func (r *HandRecord) HandScore() (fortytwo.HandScore, error) {
	hs := fortytwo.HandScore{
		HandNumber: r.HandNumber,
		Contract: fortytwo.Bid{
			PlayerId: r.Bidder,
			Amount:   r.Amount,
		},
		Points: [2]int{r.NorthSouthPoints, r.EastWestPoints},
		Made:   r.Made,
		Marks:  r.Marks,
	}
	if err := hs.Contract.Trump.UnmarshalText([]byte(r.Trump)); err != nil {
		return hs, fmt.Errorf("hand record %d: %w", r.Id, err)
	}
	if err := hs.BiddingTeam.UnmarshalText([]byte(r.BiddingTeam)); err != nil {
		return hs, fmt.Errorf("hand record %d: %w", r.Id, err)
	}
	if err := hs.AwardedTo.UnmarshalText([]byte(r.AwardedTo)); err != nil {
		return hs, fmt.Errorf("hand record %d: %w", r.Id, err)
	}
	return hs, nil
}
