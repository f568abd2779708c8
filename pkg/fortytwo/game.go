package fortytwo

import (
	"math/rand/v2"
	"slices"
)

// JoinRequest 入座请求
type JoinRequest struct {
	GameId     string `json:"gameId"`
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayRequest 出牌请求
type PlayRequest struct {
	GameId   string `json:"gameId"`
	PlayerId string `json:"playerId"`
	Domino   Domino `json:"domino"`
}

// GameState 一场游戏的全部状态，可直接序列化为 JSON
// 引擎不加锁，同一个 GameState 同时只能有一个操作
type GameState struct {
	Id           string         `json:"id"`
	Phase        Phase          `json:"phase"`
	Players      []Player       `json:"players"` // 按座位排序
	Partnerships [2]Partnership `json:"partnerships"`
	HandNumber   int            `json:"handNumber"` // 0 表示尚未发牌
	Dealer       Position       `json:"dealer"`
	Seed         uint64         `json:"seed"` // 每局洗牌种子由它派生
	Bidding      BiddingState   `json:"biddingState"`
	Contract     *Bid           `json:"contract,omitempty"`
	Tricks       []Trick        `json:"tricks"`
	Turn         Position       `json:"turn"` // 当前应该行动的座位
	Boneyard     Dominoes       `json:"boneyard"`
	Scoring      ScoringState   `json:"scoringState"`
	HandScores   []HandScore    `json:"handScores"`
	MarksToWin   int            `json:"marksToWin"`
	GameComplete bool           `json:"gameComplete"`
	Winner       *Team          `json:"winner,omitempty"`
}

// Option 创建游戏的选项
type Option func(*GameState)

// WithMarksToWin 设置获胜所需 mark 数
func WithMarksToWin(marks int) Option {
	return func(gs *GameState) {
		if marks > 0 {
			gs.MarksToWin = marks
		}
	}
}

// WithSeed 固定洗牌种子
func WithSeed(seed uint64) Option {
	return func(gs *GameState) {
		gs.Seed = seed
	}
}

// WithDealer 设置第一局的庄家
func WithDealer(dealer Position) Option {
	return func(gs *GameState) {
		if dealer < SeatCount {
			gs.Dealer = dealer
		}
	}
}

// NewGame 创建一场空游戏，等待四名玩家入座
func NewGame(id string, opts ...Option) *GameState {
	gs := &GameState{
		Id:           id,
		Phase:        PhaseBidding,
		Players:      []Player{},
		Partnerships: NewPartnerships(),
		Dealer:       North,
		Seed:         rand.Uint64(),
		Tricks:       []Trick{},
		HandScores:   []HandScore{},
		Scoring:      NewScoringState(),
		MarksToWin:   MarksToWin,
	}
	for _, opt := range opts {
		opt(gs)
	}
	gs.Turn = gs.Dealer.Next()
	return gs
}

// Player 按ID查找玩家
func (gs *GameState) Player(id string) (*Player, bool) {
	for i := range gs.Players {
		if gs.Players[i].Id == id {
			return &gs.Players[i], true
		}
	}
	return nil, false
}

// PlayerAt 按座位查找玩家
func (gs *GameState) PlayerAt(pos Position) (*Player, bool) {
	for i := range gs.Players {
		if gs.Players[i].Position == pos {
			return &gs.Players[i], true
		}
	}
	return nil, false
}

// Seats 按座位排列的玩家ID，空座位为空字符串
func (gs *GameState) Seats() [SeatCount]string {
	var seats [SeatCount]string
	for _, p := range gs.Players {
		seats[p.Position] = p.Id
	}
	return seats
}

// IsFull 四个座位是否都有人
func (gs *GameState) IsFull() bool {
	return len(gs.Players) == SeatCount
}

// IsDealt 本局是否已发牌
func (gs *GameState) IsDealt() bool {
	return gs.HandNumber > 0
}

// Trump 当前将牌，叫牌结束前为 SuitNone
func (gs *GameState) Trump() Suit {
	if gs.Contract == nil {
		return SuitNone
	}
	return gs.Contract.Trump
}

// BiddingTeam 叫牌方
func (gs *GameState) BiddingTeam() (Team, bool) {
	for _, p := range gs.Partnerships {
		if p.IsBiddingTeam {
			return p.Team, true
		}
	}
	return 0, false
}

// CurrentTrick 正在进行的一墩，没有时返回 nil
func (gs *GameState) CurrentTrick() *Trick {
	if n := len(gs.Tricks); n > 0 && !gs.Tricks[n-1].IsResolved() {
		return &gs.Tricks[n-1]
	}
	return nil
}

// Marks 队伍累计的 mark
func (gs *GameState) Marks(team Team) int {
	return gs.Partnerships[team].Marks
}

// Join 玩家入座；已入座的玩家重新连接
func (gs *GameState) Join(req JoinRequest) (Position, error) {
	if req.PlayerId == "" {
		return 0, ErrInvalidPlayer
	}
	if p, ok := gs.Player(req.PlayerId); ok {
		p.IsConnected = true
		if req.PlayerName != "" {
			p.Name = req.PlayerName
		}
		return p.Position, nil
	}
	if gs.IsFull() {
		return 0, ErrTableFull
	}
	if gs.Phase != PhaseBidding || gs.IsDealt() {
		return 0, ErrPhaseMismatch
	}

	seats := gs.Seats()
	pos := Position(slices.Index(seats[:], ""))
	gs.Players = append(gs.Players, NewPlayer(req.PlayerId, req.PlayerName, pos))
	slices.SortFunc(gs.Players, func(a, b Player) int {
		return int(a.Position) - int(b.Position)
	})

	if gs.IsFull() {
		if err := gs.startHand(); err != nil {
			return pos, err
		}
	}
	return pos, nil
}

// Leave 发牌前离开会让出座位，发牌后只标记为离线
func (gs *GameState) Leave(playerId string) error {
	p, ok := gs.Player(playerId)
	if !ok {
		return ErrUnknownPlayer
	}
	if gs.IsDealt() {
		p.IsConnected = false
		p.IsReady = false
		return nil
	}
	gs.Players = slices.DeleteFunc(gs.Players, func(x Player) bool {
		return x.Id == playerId
	})
	return nil
}

// SubmitBid 叫牌，叫牌结束后进入出牌阶段
func (gs *GameState) SubmitBid(bid Bid) error {
	if gs.Phase != PhaseBidding {
		return ErrPhaseMismatch
	}
	if !gs.IsDealt() {
		return ErrTableNotFull
	}
	done, err := gs.Bidding.Submit(bid)
	if err != nil {
		return err
	}
	if done {
		gs.beginPlay()
	} else {
		gs.Turn = gs.Bidding.Turn
	}
	return nil
}

// beginPlay 叫牌赢家首出
func (gs *GameState) beginPlay() {
	contract, _ := gs.Bidding.Contract()
	pos, _ := gs.Bidding.SeatOf(contract.PlayerId)
	gs.Contract = &contract
	gs.Partnerships[pos.Team()].IsBiddingTeam = true
	gs.Phase = PhasePlaying
	gs.Tricks = []Trick{}
	gs.Turn = pos
}

// LegalPlays 玩家当前可以出的骨牌
func (gs *GameState) LegalPlays(playerId string) Dominoes {
	p, ok := gs.Player(playerId)
	if !ok || gs.Phase != PhasePlaying || p.Position != gs.Turn {
		return nil
	}
	trick := gs.CurrentTrick()
	if trick == nil || len(trick.Plays) == 0 {
		return p.Hand.Clone()
	}
	trump := gs.Trump()
	if !p.Hand.CanFollow(trick.LeadSuit, trump) {
		return p.Hand.Clone()
	}
	var legal Dominoes
	for _, d := range p.Hand {
		if d.Follows(trick.LeadSuit, trump) {
			legal = append(legal, d)
		}
	}
	return legal
}

// PlayDomino 出牌，满四张时结算本墩，第七墩后结算本局
func (gs *GameState) PlayDomino(req PlayRequest) error {
	if gs.Phase != PhasePlaying {
		return ErrPhaseMismatch
	}
	p, ok := gs.Player(req.PlayerId)
	if !ok {
		return ErrUnknownPlayer
	}
	if p.Position != gs.Turn {
		return ErrNotYourTurn
	}
	if !p.Hand.Contains(req.Domino) {
		return ErrDominoNotInHand
	}

	trump := gs.Trump()
	current := gs.CurrentTrick()
	var trick Trick
	if current == nil {
		trick = NewTrick(gs.Turn)
	} else {
		trick = current.clone()
		if !req.Domino.Follows(trick.LeadSuit, trump) && p.Hand.CanFollow(trick.LeadSuit, trump) {
			return ErrMustFollowSuit
		}
	}
	if err := trick.Play(p.Id, p.Position, req.Domino, trump); err != nil {
		return err
	}

	p.Play(req.Domino)
	if current == nil {
		gs.Tricks = append(gs.Tricks, trick)
	} else {
		*current = trick
	}
	gs.Turn = gs.Turn.Next()

	if trick.IsComplete() {
		return gs.resolveTrick(&gs.Tricks[len(gs.Tricks)-1])
	}
	return nil
}

// resolveTrick 结算一墩，赢家下一墩首出
func (gs *GameState) resolveTrick(t *Trick) error {
	winner, err := t.Resolve(gs.Trump())
	if err != nil {
		return err
	}
	team := winner.Position.Team()
	if err := gs.Scoring.RecordTrick(t, team); err != nil {
		return err
	}
	gs.Partnerships[team].TricksWon++
	gs.Partnerships[team].CurrentHandScore = gs.Scoring.TrickPoints[team]
	gs.Turn = winner.Position

	if gs.Scoring.TricksResolved == TricksCount {
		return gs.finishHand()
	}
	return nil
}

// finishHand 结算合约，决定结束整场或开始下一局
func (gs *GameState) finishHand() error {
	gs.Phase = PhaseScoring
	team, _ := gs.BiddingTeam()
	hs, err := gs.Scoring.Settle(*gs.Contract, team)
	if err != nil {
		return err
	}
	hs.HandNumber = gs.HandNumber
	gs.HandScores = append(gs.HandScores, hs)
	for i := range gs.Partnerships {
		gs.Partnerships[i].TotalGameScore += hs.Points[i]
	}
	gs.Partnerships[hs.AwardedTo].Marks += hs.Marks

	if gs.Partnerships[hs.AwardedTo].Marks >= gs.MarksToWin {
		winner := hs.AwardedTo
		gs.Winner = &winner
		gs.GameComplete = true
		gs.Phase = PhaseFinished
		return nil
	}
	gs.Dealer = gs.Dealer.Next()
	return gs.startHand()
}

// startHand 洗牌发牌并重置一局内的状态
func (gs *GameState) startHand() error {
	gs.HandNumber++
	boneyard := Shuffled(gs.Seed + uint64(gs.HandNumber))
	hands, err := boneyard.Deal()
	if err != nil {
		return err
	}
	for i := range gs.Players {
		gs.Players[i].Hand = hands[gs.Players[i].Position]
	}
	for i := range gs.Partnerships {
		gs.Partnerships[i].resetHand()
	}
	gs.Boneyard = boneyard
	gs.Bidding = NewBiddingState(gs.Dealer, gs.Seats())
	gs.Contract = nil
	gs.Tricks = []Trick{}
	gs.Scoring = NewScoringState()
	gs.Phase = PhaseBidding
	gs.Turn = gs.Bidding.Turn
	return nil
}

// Clone 深拷贝
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Players = make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		p.Hand = p.Hand.Clone()
		out.Players[i] = p
	}
	out.Bidding = gs.Bidding.clone()
	if gs.Contract != nil {
		c := *gs.Contract
		out.Contract = &c
	}
	out.Tricks = make([]Trick, len(gs.Tricks))
	for i, t := range gs.Tricks {
		out.Tricks[i] = t.clone()
	}
	out.Boneyard = gs.Boneyard.Clone()
	out.Scoring = gs.Scoring.clone()
	out.HandScores = slices.Clone(gs.HandScores)
	if gs.Winner != nil {
		w := *gs.Winner
		out.Winner = &w
	}
	return &out
}
