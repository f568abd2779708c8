package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/play/fortytwo/pkg/fortytwo"
)

// Open 连接 Postgres 并挂上查询日志
func Open(dsn string, slow time.Duration) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewQueryHook(QueryHookOptions{LogSlow: slow}))
	return db
}

// Archive 结算记录的读写
type Archive struct {
	db bun.IDB
}

func New(db bun.IDB) *Archive {
	return &Archive{db: db}
}

// CreateSchema 建表和唯一索引，已存在时跳过
func (a *Archive) CreateSchema(ctx context.Context) error {
	_, err := a.db.NewCreateTable().Model((*HandRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("create hand_records: %w", err)
	}
	_, err = a.db.NewCreateIndex().
		Model((*HandRecord)(nil)).
		Index("hand_records_game_hand_idx").
		Unique().
		IfNotExists().
		Column("game_id", "hand_number").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create hand_records index: %w", err)
	}
	return nil
}

// Record 归档一局，重复写入同一局会被忽略
func (a *Archive) Record(ctx context.Context, gameId string, hs fortytwo.HandScore) error {
	ctx = withGame(ctx, gameId)
	rec := NewHandRecord(gameId, hs)
	_, err := a.db.NewInsert().
		Model(rec).
		On("CONFLICT (game_id, hand_number) DO NOTHING").
		Exec(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("game_id", gameId).Int("hand", hs.HandNumber).Msg("failed to archive hand")
		return fmt.Errorf("archive hand %d of %s: %w", hs.HandNumber, gameId, err)
	}
	return nil
}

// List 一场游戏的全部结算，按局数排序
func (a *Archive) List(ctx context.Context, gameId string) ([]fortytwo.HandScore, error) {
	ctx = withGame(ctx, gameId)
	var records []HandRecord
	err := a.db.NewSelect().
		Model(&records).
		Where("game_id = ?", gameId).
		Order("hand_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hands of %s: %w", gameId, err)
	}

	scores := make([]fortytwo.HandScore, 0, len(records))
	for i := range records {
		hs, err := records[i].HandScore()
		if err != nil {
			return nil, err
		}
		scores = append(scores, hs)
	}
	return scores, nil
}

// Totals 两队累计的 mark
func (a *Archive) Totals(ctx context.Context, gameId string) ([2]int, error) {
	var rows []struct {
		AwardedTo string `bun:"awarded_to"`
		Marks     int    `bun:"marks"`
	}
	ctx = withGame(ctx, gameId)
	var totals [2]int
	err := a.db.NewSelect().
		Model((*HandRecord)(nil)).
		Column("awarded_to").
		ColumnExpr("SUM(marks) AS marks").
		Where("game_id = ?", gameId).
		Group("awarded_to").
		Scan(ctx, &rows)
	if err != nil {
		return totals, fmt.Errorf("total marks of %s: %w", gameId, err)
	}
	for _, row := range rows {
		var team fortytwo.Team
		if err := team.UnmarshalText([]byte(row.AwardedTo)); err != nil {
			return totals, err
		}
		totals[team] += row.Marks
	}
	return totals, nil
}
