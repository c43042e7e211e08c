package engine

// discardWithAbility discards the drawn card and, when it came off the
// stockpile, opens the matching ability. An ability with no valid target
// fizzles and the turn ends.
func (g *GameState) discardWithAbility() error {
	drawn := Card(g.Pending.Data[0])
	from := g.Pending.Data[1]
	acting := g.Pending.PlayerID

	g.pushDiscard(drawn)
	g.LastAction = LastActionInfo{
		ActionIdx:    ActionDiscardWithAbility,
		ActingPlayer: acting,
		RevealedCard: drawn,
		DrawnFrom:    from,
	}
	g.Pending = PendingAction{}

	if from != DrawnFromStockpile || !g.canUseAbility(acting, drawn) {
		g.advanceTurn()
		return nil
	}

	g.Pending.PlayerID = acting
	switch drawn.Ability() {
	case AbilityPeekOwn:
		g.Pending.Type = PendingPeekOwn
	case AbilityPeekOther:
		g.Pending.Type = PendingPeekOther
	case AbilityBlindSwap:
		g.Pending.Type = PendingBlindSwap
	case AbilityKingLook:
		g.Pending.Type = PendingKingLook
	}
	return nil
}

func (g *GameState) canUseAbility(acting uint8, c Card) bool {
	own := g.Players[acting].HandLen
	opp := g.Players[g.OpponentOf(acting)].HandLen
	switch c.Ability() {
	case AbilityPeekOwn:
		return own > 0
	case AbilityPeekOther:
		return opp > 0
	case AbilityBlindSwap, AbilityKingLook:
		return own > 0 && opp > 0
	}
	return false
}

func (g *GameState) peekOwn(slot uint8) error {
	acting := g.Pending.PlayerID
	g.Players[acting].learn(slot)
	g.LastAction = LastActionInfo{
		ActionIdx:     EncodePeekOwn(slot),
		ActingPlayer:  acting,
		RevealedIdx:   slot,
		RevealedOwner: acting,
	}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}

func (g *GameState) peekOther(slot uint8) error {
	acting := g.Pending.PlayerID
	g.Players[acting].see(slot)
	g.LastAction = LastActionInfo{
		ActionIdx:     EncodePeekOther(slot),
		ActingPlayer:  acting,
		RevealedIdx:   slot,
		RevealedOwner: g.OpponentOf(acting),
	}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}

// swapSlots exchanges acting's own slot with the opponent's slot and moves
// each player's knowledge along with the cards.
func (g *GameState) swapSlots(acting, own, opp uint8) {
	o := g.OpponentOf(acting)
	me, them := &g.Players[acting], &g.Players[o]
	me.Hand[own], them.Hand[opp] = them.Hand[opp], me.Hand[own]

	meKnewOwn, meSawOpp := me.knows(own), me.sees(opp)
	themKnewOpp, themSawOwn := them.knows(opp), them.sees(own)

	setBit8(&me.Known, own, meSawOpp)
	setBit8(&me.Seen, opp, meKnewOwn)
	setBit8(&them.Known, opp, themSawOwn)
	setBit8(&them.Seen, own, themKnewOpp)
}

func setBit8(mask *uint8, i uint8, on bool) {
	if on {
		*mask |= 1 << i
	} else {
		*mask &^= 1 << i
	}
}

func (g *GameState) blindSwap(own, opp uint8) error {
	acting := g.Pending.PlayerID
	g.swapSlots(acting, own, opp)
	g.LastAction = LastActionInfo{
		ActionIdx:    EncodeBlindSwap(own, opp),
		ActingPlayer: acting,
		SwapOwnIdx:   own,
		SwapOppIdx:   opp,
	}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}

// kingLook reveals one card from each hand to the acting player and waits for
// the swap decision.
func (g *GameState) kingLook(own, opp uint8) error {
	acting := g.Pending.PlayerID
	p := &g.Players[acting]
	p.learn(own)
	p.see(opp)

	g.LastAction = LastActionInfo{
		ActionIdx:     EncodeKingLook(own, opp),
		ActingPlayer:  acting,
		RevealedIdx:   own,
		RevealedOwner: acting,
		SwapOwnIdx:    own,
		SwapOppIdx:    opp,
	}
	g.Pending.Type = PendingKingDecision
	g.Pending.Data = [4]uint8{own, opp, uint8(p.Hand[own]), uint8(g.Players[g.OpponentOf(acting)].Hand[opp])}
	return nil
}

func (g *GameState) kingSwapDecision(swap bool) error {
	acting := g.Pending.PlayerID
	own, opp := g.Pending.Data[0], g.Pending.Data[1]

	idx := ActionKingSwapNo
	if swap {
		idx = ActionKingSwapYes
		g.swapSlots(acting, own, opp)
	}
	g.LastAction = LastActionInfo{
		ActionIdx:    idx,
		ActingPlayer: acting,
		SwapOwnIdx:   own,
		SwapOppIdx:   opp,
	}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}
