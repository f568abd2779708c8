package fortytwo

import "errors"

// ErrorKind 错误分类
type ErrorKind uint8

const (
	KindValidation   ErrorKind = iota + 1 // 非法或不合时宜的操作，状态不变
	KindInvariant                         // 调用方在错误阶段或前置条件不足时调用
	KindConstruction                      // 构造非法的数据
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvariant:
		return "invariant"
	case KindConstruction:
		return "construction"
	default:
		return "unknown"
	}
}

// Error 规则引擎返回的错误，Code 对外暴露
type Error struct {
	Kind ErrorKind
	Code string
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, msg: msg}
}

func invariant(code, msg string) *Error {
	return &Error{Kind: KindInvariant, Code: code, msg: msg}
}

// 叫牌错误
var (
	ErrBidTooLow              = validation("BID_TOO_LOW", "bid below minimum")
	ErrBidTooHigh             = validation("BID_TOO_HIGH", "bid above maximum")
	ErrBidNotHigher           = validation("BID_NOT_HIGHER", "bid does not beat the standing bid")
	ErrNotCurrentBidder       = validation("NOT_CURRENT_BIDDER", "not the current bidder")
	ErrInvalidTrumpSuit       = validation("INVALID_TRUMP_SUIT", "invalid trump suit")
	ErrBiddingComplete        = validation("BIDDING_COMPLETE", "bidding already complete")
	ErrMissingTrump           = validation("MISSING_TRUMP", "bid requires a trump suit")
	ErrInvalidSpecialContract = validation("INVALID_SPECIAL_CONTRACT", "special contracts are not supported")
	ErrInsufficientDoubles    = validation("INSUFFICIENT_DOUBLES_FOR_PLUNGE", "plunge requires four doubles")
	ErrInvalidMarkBid         = validation("INVALID_MARK_BID", "mark bids are not supported")
)

// 出牌与入座错误
var (
	ErrTrickComplete   = validation("TRICK_COMPLETE", "trick already has four plays")
	ErrDuplicatePlay   = validation("DUPLICATE_PLAY", "player already played in this trick")
	ErrNotYourTurn     = validation("NOT_YOUR_TURN", "not your turn")
	ErrDominoNotInHand = validation("DOMINO_NOT_IN_HAND", "domino not in hand")
	ErrMustFollowSuit  = validation("MUST_FOLLOW_SUIT", "must follow the led suit")
	ErrUnknownPlayer   = validation("UNKNOWN_PLAYER", "player not seated")
	ErrTableFull       = validation("TABLE_FULL", "all seats are taken")
	ErrTableNotFull    = validation("TABLE_NOT_FULL", "waiting for four players")
	ErrInvalidPlayer   = validation("INVALID_PLAYER", "player id is required")
)

// 调用顺序错误
var (
	ErrPhaseMismatch   = invariant("PHASE_MISMATCH", "action not allowed in current phase")
	ErrEmptyTrick      = invariant("EMPTY_TRICK", "trick resolved before four plays")
	ErrIncompleteHand  = invariant("INCOMPLETE_HAND", "hand settled before seven tricks")
	ErrInvalidBoneyard = invariant("INVALID_BONEYARD", "boneyard must hold 28 dominoes")
)

// ErrInvalidDomino 点数越界或 low > high
var ErrInvalidDomino = &Error{Kind: KindConstruction, Code: "INVALID_DOMINO", msg: "invalid domino"}

// KindOf 返回错误分类，非引擎错误返回 0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf 返回错误码，非引擎错误返回空字符串
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ActionResult 对外的操作结果
type ActionResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewActionResult 将操作错误转换为结果，优先使用错误码
func NewActionResult(err error) ActionResult {
	if err == nil {
		return ActionResult{Valid: true}
	}
	if code := CodeOf(err); code != "" {
		return ActionResult{Error: code}
	}
	return ActionResult{Error: err.Error()}
}
