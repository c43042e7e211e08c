package engine

// ActionMask has bit i of word i/64 set when action i is legal.
type ActionMask [2]uint64

func (m *ActionMask) set(idx uint16) { m[idx/64] |= 1 << (idx % 64) }

func (m ActionMask) Has(idx uint16) bool {
	return idx < NumActions && m[idx/64]>>(idx%64)&1 == 1
}

// DecisionCtx returns the decision the acting player faces.
func (g *GameState) DecisionCtx() DecisionContext {
	if g.IsTerminal() {
		return CtxTerminal
	}
	switch g.Pending.Type {
	case PendingDiscard:
		return CtxPostDraw
	case PendingPeekOwn, PendingPeekOther, PendingBlindSwap, PendingKingLook:
		return CtxAbilitySelect
	case PendingKingDecision:
		return CtxKingDecision
	}
	return CtxStartTurn
}

// ContextFor is DecisionCtx as seen from player's seat.
func (g *GameState) ContextFor(player uint8) DecisionContext {
	ctx := g.DecisionCtx()
	if ctx != CtxTerminal && player != g.ActingPlayer() {
		return CtxWaiting
	}
	return ctx
}

// LegalActions returns the acting player's legal actions without allocating.
func (g *GameState) LegalActions() ActionMask {
	var m ActionMask
	acting := g.ActingPlayer()
	ownLen := g.Players[acting].HandLen
	oppLen := g.Players[g.OpponentOf(acting)].HandLen

	switch g.DecisionCtx() {
	case CtxStartTurn:
		if g.StockLen > 0 || g.DiscardLen > 1 {
			m.set(ActionDrawStockpile)
		}
		if g.Rules.AllowDrawFromDiscard && g.DiscardLen > 0 {
			m.set(ActionDrawDiscard)
		}
		round := g.TurnNumber / NumPlayers
		if g.CambiaCaller < 0 && round >= uint16(g.Rules.CambiaAllowedRound) {
			m.set(ActionCallCambia)
		}

	case CtxPostDraw:
		drawn := Card(g.Pending.Data[0])
		m.set(ActionDiscardNoAbility)
		if g.Pending.Data[1] == DrawnFromStockpile && g.canUseAbility(acting, drawn) {
			m.set(ActionDiscardWithAbility)
		}
		for i := uint8(0); i < ownLen; i++ {
			m.set(EncodeReplace(i))
		}

	case CtxAbilitySelect:
		switch g.Pending.Type {
		case PendingPeekOwn:
			for i := uint8(0); i < ownLen; i++ {
				m.set(EncodePeekOwn(i))
			}
		case PendingPeekOther:
			for i := uint8(0); i < oppLen; i++ {
				m.set(EncodePeekOther(i))
			}
		case PendingBlindSwap:
			for i := uint8(0); i < ownLen; i++ {
				for j := uint8(0); j < oppLen; j++ {
					m.set(EncodeBlindSwap(i, j))
				}
			}
		case PendingKingLook:
			for i := uint8(0); i < ownLen; i++ {
				for j := uint8(0); j < oppLen; j++ {
					m.set(EncodeKingLook(i, j))
				}
			}
		}

	case CtxKingDecision:
		m.set(ActionKingSwapNo)
		m.set(ActionKingSwapYes)
	}
	return m
}

func (g *GameState) IsLegal(idx uint16) bool {
	return g.LegalActions().Has(idx)
}

// LegalActionsList returns the legal actions in ascending order.
func (g *GameState) LegalActionsList() []uint16 {
	m := g.LegalActions()
	var out []uint16
	for i := uint16(0); i < NumActions; i++ {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}
