package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
)

type gameKey struct{}

// withGame 记录当前操作的游戏，查询日志会带上 game_id
func withGame(ctx context.Context, gameId string) context.Context {
	return context.WithValue(ctx, gameKey{}, gameId)
}

func gameFrom(ctx context.Context) string {
	id, _ := ctx.Value(gameKey{}).(string)
	return id
}

type QueryHookOptions struct {
	LogSlow time.Duration
}

// QueryHook 归档查询的日志，log.traced 关闭时只记录失败的查询
type QueryHook struct {
	opts QueryHookOptions
}

func NewQueryHook(opts QueryHookOptions) *QueryHook {
	return &QueryHook{opts: opts}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	traced := viper.GetBool("log.traced")
	if event.Err == nil && !traced {
		return
	}

	ev := log.Ctx(ctx).Debug()
	dur := time.Since(event.StartTime)
	switch {
	case event.Err != nil:
		ev = log.Ctx(ctx).Error().Err(event.Err)
	case h.opts.LogSlow > 0 && dur > h.opts.LogSlow:
		ev = log.Ctx(ctx).Warn()
	}
	if id := gameFrom(ctx); id != "" {
		ev = ev.Str("game_id", id)
	}
	if traced || event.Err != nil {
		ev = ev.Str("sql", event.Query)
	}
	ev.Str("op", event.Operation()).Dur("duration", dur).Msg("hand archive query")
}
