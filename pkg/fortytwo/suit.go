package fortytwo

// doubleRank 对子在本花色中最大
const doubleRank = maxPip + 1

// IsTrump 是否为将牌
// 将牌为 doubles 时所有对子都是将牌；否则含将牌点数的骨牌都是将牌
func (d Domino) IsTrump(trump Suit) bool {
	switch {
	case trump == SuitDoubles:
		return d.IsDouble()
	case trump.IsPip():
		return d.Has(trump.Pip())
	default:
		return false
	}
}

// Follows 骨牌是否属于指定花色
// 将牌只属于将牌花色；对子只属于自己的点数花色（将牌为 doubles 时属于将牌）
func (d Domino) Follows(suit, trump Suit) bool {
	if suit == trump && trump.Valid() {
		return d.IsTrump(trump)
	}
	if d.IsTrump(trump) {
		return false
	}
	switch {
	case suit == SuitDoubles:
		return d.IsDouble()
	case suit.IsPip():
		return d.Has(suit.Pip())
	default:
		return false
	}
}

// Rank 骨牌在花色中的大小，不属于该花色时返回 -1
// doubles 花色按点数排序；点数花色中对子最大，其余按另一端点数排序
func (d Domino) Rank(suit Suit) int {
	switch {
	case suit == SuitDoubles:
		if !d.IsDouble() {
			return -1
		}
		return int(d.High)
	case suit.IsPip():
		pip := suit.Pip()
		if !d.Has(pip) {
			return -1
		}
		if d.IsDouble() {
			return doubleRank
		}
		return int(d.Other(pip))
	default:
		return -1
	}
}

// LeadSuit 首出骨牌确定的花色
// 将牌首出即为将牌；对子为自身点数；其余为较大的点数
func LeadSuit(d Domino, trump Suit) Suit {
	if d.IsTrump(trump) {
		return trump
	}
	return PipSuit(d.High)
}

// CanFollow 手牌中是否有可跟的骨牌
func (ds Dominoes) CanFollow(suit, trump Suit) bool {
	for _, d := range ds {
		if d.Follows(suit, trump) {
			return true
		}
	}
	return false
}

// beats 判断 challenger 是否压过 current
func beats(challenger, current Domino, lead, trump Suit) bool {
	ct, cur := challenger.IsTrump(trump), current.IsTrump(trump)
	switch {
	case ct && !cur:
		return true
	case !ct && cur:
		return false
	case ct && cur:
		return challenger.Rank(trump) > current.Rank(trump)
	}
	cf, curf := challenger.Follows(lead, trump), current.Follows(lead, trump)
	switch {
	case cf && !curf:
		return true
	case cf && curf:
		return challenger.Rank(lead) > current.Rank(lead)
	default:
		return false
	}
}
