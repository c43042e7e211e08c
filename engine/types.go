package engine

// Suits occupy the upper nibble of a Card.
const (
	SuitHearts     uint8 = 0
	SuitDiamonds   uint8 = 1
	SuitClubs      uint8 = 2
	SuitSpades     uint8 = 3
	SuitRedJoker   uint8 = 4
	SuitBlackJoker uint8 = 5
)

// Ranks occupy the lower nibble of a Card.
const (
	RankAce uint8 = iota
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankJoker
)

// Card packs suit<<4 | rank into one byte.
type Card uint8

// EmptyCard marks an unused hand slot or an empty pile.
const EmptyCard Card = 0xFF

func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

func (c Card) Suit() uint8 { return uint8(c) >> 4 }

func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

func (c Card) IsRedKing() bool {
	return c.Rank() == RankKing && (c.Suit() == SuitHearts || c.Suit() == SuitDiamonds)
}

// Value is the card's score: jokers 0, red kings -1, black kings 13, aces 1,
// number cards face value, jack 11, queen 12.
func (c Card) Value() int8 {
	if c == EmptyCard {
		return 0
	}
	switch r := c.Rank(); {
	case r == RankJoker:
		return 0
	case r == RankKing:
		if c.IsRedKing() {
			return -1
		}
		return 13
	case r <= RankQueen:
		return int8(r + 1)
	}
	return 0
}

var rankSymbols = [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K", "*"}
var suitSymbols = [...]string{"h", "d", "c", "s", "r", "b"}

func (c Card) String() string {
	if c == EmptyCard || int(c.Rank()) >= len(rankSymbols) || int(c.Suit()) >= len(suitSymbols) {
		return "--"
	}
	return rankSymbols[c.Rank()] + suitSymbols[c.Suit()]
}

// AbilityType is the effect of discarding a freshly drawn card.
type AbilityType uint8

const (
	AbilityNone AbilityType = iota
	AbilityPeekOwn
	AbilityPeekOther
	AbilityBlindSwap
	AbilityKingLook
)

func (c Card) Ability() AbilityType {
	switch c.Rank() {
	case RankSeven, RankEight:
		return AbilityPeekOwn
	case RankNine, RankTen:
		return AbilityPeekOther
	case RankJack, RankQueen:
		return AbilityBlindSwap
	case RankKing:
		return AbilityKingLook
	}
	return AbilityNone
}

func (c Card) HasAbility() bool { return c.Ability() != AbilityNone }

// DecisionContext is the kind of choice a player faces, from that player's seat.
type DecisionContext uint8

const (
	CtxStartTurn DecisionContext = iota
	CtxPostDraw
	CtxAbilitySelect
	CtxKingDecision
	CtxWaiting
	CtxTerminal

	NumDecisionContexts = 6
)

// PendingType is the part of a turn still waiting for the acting player.
type PendingType uint8

const (
	PendingNone PendingType = iota
	PendingDiscard
	PendingPeekOwn
	PendingPeekOther
	PendingBlindSwap
	PendingKingLook
	PendingKingDecision
)

// PendingAction carries the unresolved part of a turn.
//
// For PendingDiscard, Data[0] is the drawn card and Data[1] where it came from.
// For PendingKingDecision, Data[0..1] are the looked-at slots and Data[2..3] the cards.
type PendingAction struct {
	Type     PendingType
	PlayerID uint8
	Data     [4]uint8
}

const (
	DrawnFromStockpile uint8 = 0
	DrawnFromDiscard   uint8 = 1
)

// LastActionInfo is the public record of the most recent action.
type LastActionInfo struct {
	ActionIdx     uint16
	ActingPlayer  uint8
	RevealedCard  Card
	RevealedIdx   uint8
	RevealedOwner uint8
	SwapOwnIdx    uint8
	SwapOppIdx    uint8
	DrawnFrom     uint8
}
