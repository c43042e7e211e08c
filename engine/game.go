// Package engine implements a two-player Cambia card game.
//
// GameState is a flat value type (no pointers, no slices) so it can be copied
// with = and snapshotted for free. The sequential coordinator drives it through
// cardgame.Cambia; nothing here knows about agents or rewards.
package engine

const (
	NumPlayers  = 2
	MaxHandSize = 6
	DeckSize    = 54
)

// PlayerState holds one player's hand and what that player knows about it.
type PlayerState struct {
	Hand    [MaxHandSize]Card
	HandLen uint8
	// Known has bit i set when the player has seen the card in its own slot i.
	Known uint8
	// Seen has bit i set when the player has seen the opponent's slot i.
	Seen uint8
}

func (p *PlayerState) knows(i uint8) bool { return p.Known&(1<<i) != 0 }

func (p *PlayerState) learn(i uint8) { p.Known |= 1 << i }

func (p *PlayerState) sees(i uint8) bool { return p.Seen&(1<<i) != 0 }

func (p *PlayerState) see(i uint8) { p.Seen |= 1 << i }

func (p *PlayerState) unsee(i uint8) { p.Seen &^= 1 << i }

// GameState holds the complete, self-contained state of a Cambia game.
type GameState struct {
	Players       [NumPlayers]PlayerState
	Stockpile     [DeckSize]Card
	StockLen      uint8
	DiscardPile   [DeckSize]Card
	DiscardLen    uint8
	CurrentPlayer uint8
	TurnNumber    uint16
	Flags         uint16
	Pending       PendingAction
	LastAction    LastActionInfo
	RNG           uint64
	CambiaCaller  int8
	TurnsAfterC   uint8
	Rules         HouseRules
}

const (
	FlagGameOver     uint16 = 1 << 0
	FlagCambiaCalled uint16 = 1 << 1
	FlagGameStarted  uint16 = 1 << 2
)

func (g *GameState) IsGameOver() bool     { return g.Flags&FlagGameOver != 0 }
func (g *GameState) IsCambiaCalled() bool { return g.Flags&FlagCambiaCalled != 0 }
func (g *GameState) IsStarted() bool      { return g.Flags&FlagGameStarted != 0 }

// xorshift64
func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// NewGame builds an unshuffled deck with the given seed and rules.
func NewGame(seed uint64, rules HouseRules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.CambiaCaller = -1

	idx := 0
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank <= RankKing; rank++ {
			g.Stockpile[idx] = NewCard(suit, rank)
			idx++
		}
	}
	jokerSuits := [2]uint8{SuitRedJoker, SuitBlackJoker}
	for j := uint8(0); j < rules.NumJokers && j < 2; j++ {
		g.Stockpile[52+int(j)] = NewCard(jokerSuits[j], RankJoker)
	}
	g.StockLen = uint8(52 + min(rules.NumJokers, 2))
	for p := range g.Players {
		for i := range g.Players[p].Hand {
			g.Players[p].Hand[i] = EmptyCard
		}
	}
	return g
}

// Deal shuffles, deals CardsPerPlayer to each player, flips the first discard
// and picks a random starting player. Each player has seen its two bottom cards.
func (g *GameState) Deal() {
	for i := int(g.StockLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Stockpile[i], g.Stockpile[j] = g.Stockpile[j], g.Stockpile[i]
	}

	perPlayer := min(g.Rules.CardsPerPlayer, MaxHandSize)
	for c := uint8(0); c < perPlayer; c++ {
		for p := uint8(0); p < NumPlayers; p++ {
			g.StockLen--
			g.Players[p].Hand[c] = g.Stockpile[g.StockLen]
			g.Players[p].HandLen++
		}
	}
	for p := uint8(0); p < NumPlayers; p++ {
		for i := uint8(0); i < min(2, g.Players[p].HandLen); i++ {
			g.Players[p].learn(i)
		}
	}

	g.StockLen--
	g.DiscardPile[0] = g.Stockpile[g.StockLen]
	g.DiscardLen = 1

	g.CurrentPlayer = uint8(g.randN(NumPlayers))
	g.Flags |= FlagGameStarted
}

// IsTerminal returns true when the game is over.
func (g *GameState) IsTerminal() bool { return g.IsGameOver() }

// ActingPlayer returns the player who must act next. A pending ability belongs
// to the player who triggered it.
func (g *GameState) ActingPlayer() uint8 {
	if g.Pending.Type != PendingNone {
		return g.Pending.PlayerID
	}
	return g.CurrentPlayer
}

// DiscardTop returns the top card of the discard pile, or EmptyCard.
func (g *GameState) DiscardTop() Card {
	if g.DiscardLen == 0 {
		return EmptyCard
	}
	return g.DiscardPile[g.DiscardLen-1]
}

// OpponentOf returns the other player.
func (g *GameState) OpponentOf(player uint8) uint8 { return 1 - player }

// HandLen returns the number of cards in the given player's hand.
func (g *GameState) HandLen(player uint8) uint8 { return g.Players[player].HandLen }

// Snapshot is a complete value copy of GameState.
type Snapshot GameState

func (g *GameState) Save() Snapshot { return Snapshot(*g) }

func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
