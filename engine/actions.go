package engine

import "fmt"

// Action indices. Slot-pair actions are laid out own*MaxHandSize + opp.
const (
	ActionDrawStockpile      uint16 = 0
	ActionDrawDiscard        uint16 = 1
	ActionCallCambia         uint16 = 2
	ActionDiscardNoAbility   uint16 = 3
	ActionDiscardWithAbility uint16 = 4

	ActionBaseReplace   uint16 = 5
	ActionBasePeekOwn   uint16 = 11
	ActionBasePeekOther uint16 = 17
	ActionBaseBlindSwap uint16 = 23
	ActionBaseKingLook  uint16 = 59
	ActionKingSwapNo    uint16 = 95
	ActionKingSwapYes   uint16 = 96

	NumActions uint16 = 97
)

func EncodeReplace(slot uint8) uint16   { return ActionBaseReplace + uint16(slot) }
func EncodePeekOwn(slot uint8) uint16   { return ActionBasePeekOwn + uint16(slot) }
func EncodePeekOther(slot uint8) uint16 { return ActionBasePeekOther + uint16(slot) }

func EncodeBlindSwap(own, opp uint8) uint16 {
	return ActionBaseBlindSwap + uint16(own)*MaxHandSize + uint16(opp)
}

func EncodeKingLook(own, opp uint8) uint16 {
	return ActionBaseKingLook + uint16(own)*MaxHandSize + uint16(opp)
}

func decodeSlot(idx, base uint16) (uint8, bool) {
	if idx >= base && idx < base+MaxHandSize {
		return uint8(idx - base), true
	}
	return 0, false
}

func decodePair(idx, base uint16) (own, opp uint8, ok bool) {
	if idx >= base && idx < base+MaxHandSize*MaxHandSize {
		off := idx - base
		return uint8(off / MaxHandSize), uint8(off % MaxHandSize), true
	}
	return 0, 0, false
}

// ActionName renders an action index for logs and test failures.
func ActionName(idx uint16) string {
	switch idx {
	case ActionDrawStockpile:
		return "draw_stockpile"
	case ActionDrawDiscard:
		return "draw_discard"
	case ActionCallCambia:
		return "call_cambia"
	case ActionDiscardNoAbility:
		return "discard"
	case ActionDiscardWithAbility:
		return "discard_ability"
	case ActionKingSwapNo:
		return "king_keep"
	case ActionKingSwapYes:
		return "king_swap"
	}
	if s, ok := decodeSlot(idx, ActionBaseReplace); ok {
		return fmt.Sprintf("replace(%d)", s)
	}
	if s, ok := decodeSlot(idx, ActionBasePeekOwn); ok {
		return fmt.Sprintf("peek_own(%d)", s)
	}
	if s, ok := decodeSlot(idx, ActionBasePeekOther); ok {
		return fmt.Sprintf("peek_other(%d)", s)
	}
	if own, opp, ok := decodePair(idx, ActionBaseBlindSwap); ok {
		return fmt.Sprintf("blind_swap(%d,%d)", own, opp)
	}
	if own, opp, ok := decodePair(idx, ActionBaseKingLook); ok {
		return fmt.Sprintf("king_look(%d,%d)", own, opp)
	}
	return fmt.Sprintf("action(%d)", idx)
}

// ApplyAction applies the action for the acting player. Illegal actions leave
// the state untouched and return an error.
func (g *GameState) ApplyAction(idx uint16) error {
	if g.IsGameOver() {
		return fmt.Errorf("game is already over")
	}
	if !g.IsLegal(idx) {
		return fmt.Errorf("action %s is not legal for player %d", ActionName(idx), g.ActingPlayer())
	}

	switch idx {
	case ActionDrawStockpile:
		return g.drawStockpile()
	case ActionDrawDiscard:
		return g.drawDiscard()
	case ActionCallCambia:
		return g.callCambia()
	case ActionDiscardNoAbility:
		return g.discardDrawn()
	case ActionDiscardWithAbility:
		return g.discardWithAbility()
	case ActionKingSwapNo:
		return g.kingSwapDecision(false)
	case ActionKingSwapYes:
		return g.kingSwapDecision(true)
	}
	if s, ok := decodeSlot(idx, ActionBaseReplace); ok {
		return g.replace(s)
	}
	if s, ok := decodeSlot(idx, ActionBasePeekOwn); ok {
		return g.peekOwn(s)
	}
	if s, ok := decodeSlot(idx, ActionBasePeekOther); ok {
		return g.peekOther(s)
	}
	if own, opp, ok := decodePair(idx, ActionBaseBlindSwap); ok {
		return g.blindSwap(own, opp)
	}
	if own, opp, ok := decodePair(idx, ActionBaseKingLook); ok {
		return g.kingLook(own, opp)
	}
	return fmt.Errorf("unhandled action index %d", idx)
}

func (g *GameState) drawStockpile() error {
	if g.StockLen == 0 {
		g.attemptReshuffle()
	}
	if g.StockLen == 0 {
		return fmt.Errorf("stockpile is empty and cannot be reshuffled")
	}
	g.StockLen--
	g.setDrawn(g.Stockpile[g.StockLen], DrawnFromStockpile, ActionDrawStockpile)
	return nil
}

func (g *GameState) drawDiscard() error {
	g.DiscardLen--
	g.setDrawn(g.DiscardPile[g.DiscardLen], DrawnFromDiscard, ActionDrawDiscard)
	return nil
}

func (g *GameState) setDrawn(c Card, from uint8, idx uint16) {
	g.Pending = PendingAction{Type: PendingDiscard, PlayerID: g.CurrentPlayer}
	g.Pending.Data[0] = uint8(c)
	g.Pending.Data[1] = from
	g.LastAction = LastActionInfo{ActionIdx: idx, ActingPlayer: g.CurrentPlayer, DrawnFrom: from, RevealedCard: EmptyCard}
	if from == DrawnFromDiscard {
		g.LastAction.RevealedCard = c
	}
}

// callCambia starts the final round; the caller's turn ends immediately.
func (g *GameState) callCambia() error {
	g.CambiaCaller = int8(g.CurrentPlayer)
	g.Flags |= FlagCambiaCalled
	g.LastAction = LastActionInfo{ActionIdx: ActionCallCambia, ActingPlayer: g.CurrentPlayer}
	g.advanceTurn()
	return nil
}

func (g *GameState) discardDrawn() error {
	drawn := Card(g.Pending.Data[0])
	acting := g.Pending.PlayerID
	g.pushDiscard(drawn)
	g.LastAction = LastActionInfo{ActionIdx: ActionDiscardNoAbility, ActingPlayer: acting, RevealedCard: drawn}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}

// replace puts the drawn card into the acting player's slot and discards the
// card it displaces.
func (g *GameState) replace(slot uint8) error {
	acting := g.Pending.PlayerID
	opp := g.OpponentOf(acting)
	drawn := Card(g.Pending.Data[0])
	fromDiscard := g.Pending.Data[1] == DrawnFromDiscard

	old := g.Players[acting].Hand[slot]
	g.Players[acting].Hand[slot] = drawn
	g.pushDiscard(old)

	g.Players[acting].learn(slot)
	if fromDiscard {
		g.Players[opp].see(slot)
	} else {
		g.Players[opp].unsee(slot)
	}

	g.LastAction = LastActionInfo{
		ActionIdx:     EncodeReplace(slot),
		ActingPlayer:  acting,
		RevealedCard:  old,
		RevealedIdx:   slot,
		RevealedOwner: acting,
	}
	g.Pending = PendingAction{}
	g.advanceTurn()
	return nil
}

func (g *GameState) pushDiscard(c Card) {
	g.DiscardPile[g.DiscardLen] = c
	g.DiscardLen++
}

// advanceTurn hands the turn to the opponent and checks end conditions.
func (g *GameState) advanceTurn() {
	if g.IsGameOver() {
		return
	}
	g.TurnNumber++
	g.CurrentPlayer = g.OpponentOf(g.CurrentPlayer)
	if g.IsCambiaCalled() {
		g.TurnsAfterC++
	}
	g.checkGameEnd()
}

func (g *GameState) checkGameEnd() {
	switch {
	case g.Rules.MaxGameTurns > 0 && g.TurnNumber >= g.Rules.MaxGameTurns:
		g.Flags |= FlagGameOver
	case g.IsCambiaCalled() && g.TurnsAfterC >= NumPlayers:
		// the caller's turn and the opponent's final turn are both done
		g.Flags |= FlagGameOver
	case g.StockLen == 0 && g.DiscardLen <= 1 && !g.Rules.AllowDrawFromDiscard:
		g.Flags |= FlagGameOver
	case g.StockLen == 0 && g.DiscardLen == 0:
		g.Flags |= FlagGameOver
	}
}

// attemptReshuffle moves every discard except the top back into the stockpile.
func (g *GameState) attemptReshuffle() {
	if g.DiscardLen <= 1 {
		return
	}
	top := g.DiscardPile[g.DiscardLen-1]
	n := g.DiscardLen - 1
	copy(g.Stockpile[:n], g.DiscardPile[:n])
	g.StockLen = n
	g.DiscardPile[0] = top
	g.DiscardLen = 1

	for i := int(g.StockLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Stockpile[i], g.Stockpile[j] = g.Stockpile[j], g.Stockpile[i]
	}
}
