package fortytwo

// Player 玩家信息
type Player struct {
	Id          string   `json:"id"`          // 玩家ID
	Name        string   `json:"name"`        // 昵称
	Position    Position `json:"position"`    // 座位
	Hand        Dominoes `json:"hand"`        // 当前手牌
	IsConnected bool     `json:"isConnected"` // 是否在线
	IsReady     bool     `json:"isReady"`     // 是否准备好
}

// NewPlayer 创建一个新玩家
func NewPlayer(id, name string, pos Position) Player {
	return Player{
		Id:          id,
		Name:        name,
		Position:    pos,
		IsConnected: true,
		IsReady:     true,
	}
}

// Team 所属队伍
func (p *Player) Team() Team {
	return p.Position.Team()
}

// HandCount 返回手牌数量
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// Play 打出一张骨牌，手牌中没有时返回 false
func (p *Player) Play(d Domino) bool {
	hand, ok := p.Hand.Remove(d)
	if !ok {
		return false
	}
	p.Hand = hand
	return true
}

// Partnership 队伍在一局和整场中的成绩
type Partnership struct {
	Team             Team        `json:"team"`
	Positions        [2]Position `json:"positions"`
	CurrentHandScore int         `json:"currentHandScore"` // 本局得分
	Marks            int         `json:"marks"`            // 累计 mark
	TotalGameScore   int         `json:"totalGameScore"`   // 累计得分
	TricksWon        int         `json:"tricksWon"`        // 本局赢墩数
	IsBiddingTeam    bool        `json:"isBiddingTeam"`
}

// NewPartnerships 创建两支队伍
func NewPartnerships() [2]Partnership {
	return [2]Partnership{
		{Team: NorthSouth, Positions: NorthSouth.Positions()},
		{Team: EastWest, Positions: EastWest.Positions()},
	}
}

// resetHand 清空一局内的数据
func (p *Partnership) resetHand() {
	p.CurrentHandScore = 0
	p.TricksWon = 0
	p.IsBiddingTeam = false
}
