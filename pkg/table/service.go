// Package table 串行化同一场游戏的操作：加锁、读取、执行、保存、发布事件
package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/play/fortytwo/pkg/events"
	"github.com/play/fortytwo/pkg/fortytwo"
	"github.com/play/fortytwo/pkg/idgen"
	"github.com/play/fortytwo/pkg/store"
)

const createAttempts = 5

var ErrIdExhausted = errors.New("could not allocate an unused game id")

// Recorder 归档结算后的每一局
type Recorder interface {
	Record(ctx context.Context, gameId string, hs fortytwo.HandScore) error
}

// Service 游戏桌服务，可以被多个 goroutine 同时调用
type Service struct {
	store    store.Store
	locker   store.Locker
	ids      idgen.Generator
	codeIds  bool
	pub      events.Publisher
	archive  Recorder
	gameOpts []fortytwo.Option
}

type Option func(*Service)

// WithLocker 多进程共享存储时使用 store.RedisLocker
func WithLocker(l store.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

func WithIdGenerator(g idgen.Generator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// WithCodeIds 用短的大厅码作为游戏ID
func WithCodeIds() Option {
	return func(s *Service) {
		s.codeIds = true
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.pub = p
	}
}

func WithArchive(r Recorder) Option {
	return func(s *Service) {
		s.archive = r
	}
}

// WithGameOptions 每场新游戏默认的引擎选项
func WithGameOptions(opts ...fortytwo.Option) Option {
	return func(s *Service) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// New 创建服务，默认进程内锁、UUID 和不发布事件
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		locker: store.NewLocalLocker(),
		ids:    idgen.UUID{},
		pub:    events.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) nextId() string {
	if s.codeIds {
		return s.ids.Code()
	}
	return s.ids.GameId()
}

// Create 创建一场空游戏
func (s *Service) Create(ctx context.Context, opts ...fortytwo.Option) (*fortytwo.GameState, error) {
	for range createAttempts {
		id := s.nextId()
		ctx := withGame(ctx, id)

		unlock, err := s.locker.Lock(ctx, id)
		if err != nil {
			return nil, err
		}
		gs, err := s.create(ctx, id, opts)
		s.release(ctx, unlock)
		if errors.Is(err, errIdTaken) {
			log.Ctx(ctx).Debug().Msg("game id already taken, retrying")
			continue
		}
		return gs, err
	}
	return nil, ErrIdExhausted
}

var errIdTaken = errors.New("game id taken")

func (s *Service) create(ctx context.Context, id string, opts []fortytwo.Option) (*fortytwo.GameState, error) {
	if _, err := s.store.Get(ctx, id); err == nil {
		return nil, errIdTaken
	} else if !errors.Is(err, store.ErrGameNotFound) {
		return nil, err
	}

	gs := fortytwo.NewGame(id, append(append([]fortytwo.Option{}, s.gameOpts...), opts...)...)
	if err := s.store.Save(ctx, gs); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int("marks_to_win", gs.MarksToWin).Stringer("dealer", gs.Dealer).Msg("game created")
	return gs, nil
}

// Get 读取游戏状态
func (s *Service) Get(ctx context.Context, gameId string) (*fortytwo.GameState, error) {
	return s.store.Get(ctx, gameId)
}

// Join 入座，第四人入座时发牌
func (s *Service) Join(ctx context.Context, req fortytwo.JoinRequest) (*fortytwo.GameState, error) {
	return s.apply(ctx, req.GameId, func(gs *fortytwo.GameState) ([]events.Event, error) {
		pos, err := gs.Join(req)
		if err != nil {
			return nil, err
		}
		e, err := events.New(events.KindPlayerJoined, gs, events.PlayerPayload{PlayerId: req.PlayerId, Position: pos})
		return []events.Event{e}, err
	})
}

// Leave 离开游戏
func (s *Service) Leave(ctx context.Context, gameId, playerId string) (*fortytwo.GameState, error) {
	return s.apply(ctx, gameId, func(gs *fortytwo.GameState) ([]events.Event, error) {
		p, ok := gs.Player(playerId)
		if !ok {
			return nil, fortytwo.ErrUnknownPlayer
		}
		pos := p.Position
		if err := gs.Leave(playerId); err != nil {
			return nil, err
		}
		e, err := events.New(events.KindPlayerLeft, gs, events.PlayerPayload{PlayerId: playerId, Position: pos})
		return []events.Event{e}, err
	})
}

// Bid 叫牌或过牌
func (s *Service) Bid(ctx context.Context, gameId string, bid fortytwo.Bid) (*fortytwo.GameState, error) {
	return s.apply(ctx, gameId, func(gs *fortytwo.GameState) ([]events.Event, error) {
		if err := gs.SubmitBid(bid); err != nil {
			return nil, err
		}
		e, err := events.New(events.KindBidPlaced, gs, events.BidPayload{Bid: bid})
		if err != nil {
			return nil, err
		}
		out := []events.Event{e}
		if gs.Contract != nil {
			team, _ := gs.BiddingTeam()
			e, err := events.New(events.KindBiddingComplete, gs, events.ContractPayload{Contract: *gs.Contract, Team: team})
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	})
}

// Play 出牌
func (s *Service) Play(ctx context.Context, req fortytwo.PlayRequest) (*fortytwo.GameState, error) {
	return s.apply(ctx, req.GameId, func(gs *fortytwo.GameState) ([]events.Event, error) {
		p, ok := gs.Player(req.PlayerId)
		if !ok {
			return nil, fortytwo.ErrUnknownPlayer
		}
		play := fortytwo.Play{PlayerId: p.Id, Position: p.Position, Domino: req.Domino}
		index := gs.Scoring.TricksResolved + 1
		hand := gs.HandNumber
		won, completes := trickOutcome(gs, play)

		if err := gs.PlayDomino(req); err != nil {
			return nil, err
		}

		// 第七墩后引擎已经发了下一局，事件仍归属出牌时的那一局
		e, err := events.New(events.KindDominoPlayed, gs, events.PlayPayload{Play: play})
		if err != nil {
			return nil, err
		}
		e.HandNumber = hand
		out := []events.Event{e}
		if completes {
			won.Index = index
			e, err := events.New(events.KindTrickWon, gs, won)
			if err != nil {
				return nil, err
			}
			e.HandNumber = hand
			out = append(out, e)
		}
		return out, nil
	})
}

// trickOutcome 这次出牌如果凑满一墩，预先算出赢家
// 第七墩结束后引擎会开始新的一局，之后的状态里已经看不到这一墩
func trickOutcome(gs *fortytwo.GameState, play fortytwo.Play) (events.TrickPayload, bool) {
	trick := fortytwo.NewTrick(gs.Turn)
	if current := gs.CurrentTrick(); current != nil {
		trick.Leader = current.Leader
		trick.LeadSuit = current.LeadSuit
		trick.Plays = append(trick.Plays, current.Plays...)
	}
	trump := gs.Trump()
	if err := trick.Play(play.PlayerId, play.Position, play.Domino, trump); err != nil || !trick.IsComplete() {
		return events.TrickPayload{}, false
	}
	winner, err := trick.Resolve(trump)
	if err != nil {
		return events.TrickPayload{}, false
	}
	return events.TrickPayload{
		Winner:   winner.PlayerId,
		Position: winner.Position,
		Points:   trick.Points(),
	}, true
}

// apply 在游戏锁内执行一次操作，引擎拒绝时不保存
func (s *Service) apply(ctx context.Context, gameId string, action func(gs *fortytwo.GameState) ([]events.Event, error)) (*fortytwo.GameState, error) {
	if gameId == "" {
		return nil, store.ErrInvalidGame
	}
	ctx = withGame(ctx, gameId)

	unlock, err := s.locker.Lock(ctx, gameId)
	if err != nil {
		return nil, fmt.Errorf("lock game %s: %w", gameId, err)
	}
	defer s.release(ctx, unlock)

	gs, err := s.store.Get(ctx, gameId)
	if err != nil {
		return nil, err
	}
	before := gs.Clone()

	evs, err := action(gs)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("code", fortytwo.CodeOf(err)).Msg("action rejected")
		return nil, err
	}
	if err := s.store.Save(ctx, gs); err != nil {
		return nil, err
	}

	settled := gs.HandScores[len(before.HandScores):]
	transitions, err := transitionEvents(before, gs, settled)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to build events")
	}
	evs = append(evs, transitions...)
	if err := s.pub.Publish(ctx, evs...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int("events", len(evs)).Msg("failed to publish events")
	}
	if s.archive != nil {
		for _, hs := range settled {
			if err := s.archive.Record(ctx, gameId, hs); err != nil {
				log.Ctx(ctx).Warn().Err(err).Int("hand", hs.HandNumber).Msg("failed to archive hand")
			}
		}
	}
	return gs, nil
}

// transitionEvents 阶段变化产生的事件：结算、整场结束、新一局发牌
func transitionEvents(before, after *fortytwo.GameState, settled []fortytwo.HandScore) ([]events.Event, error) {
	var out []events.Event
	marks := [2]int{after.Marks(fortytwo.NorthSouth), after.Marks(fortytwo.EastWest)}
	for _, hs := range settled {
		e, err := events.New(events.KindHandScored, after, events.HandPayload{Score: hs, Marks: marks})
		if err != nil {
			return out, err
		}
		e.HandNumber = hs.HandNumber
		out = append(out, e)
	}
	if after.GameComplete && !before.GameComplete && after.Winner != nil {
		e, err := events.New(events.KindGameFinished, after, events.FinishedPayload{Winner: *after.Winner, Marks: marks})
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	if after.HandNumber > before.HandNumber {
		e, err := events.New(events.KindHandDealt, after, events.DealtPayload{
			Dealer: after.Dealer,
			Opener: after.Bidding.CurrentBidder,
		})
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) release(ctx context.Context, unlock store.Unlock) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to release game lock")
	}
}

// withGame 给请求上下文挂上带 game_id 的 logger
func withGame(ctx context.Context, gameId string) context.Context {
	return log.With().Str("game_id", gameId).Logger().WithContext(ctx)
}
