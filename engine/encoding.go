package engine

// CardBucket groups cards that play alike.
type CardBucket uint8

const (
	BucketZero      CardBucket = iota // joker
	BucketNegKing                     // red king
	BucketAce
	BucketLowNum                      // 2-4
	BucketMidNum                      // 5-6
	BucketPeekSelf                    // 7-8
	BucketPeekOther                   // 9-T
	BucketSwapBlind                   // J-Q
	BucketHighKing                    // black king
	BucketUnknown

	NumBuckets = 10
)

func BucketOf(c Card) CardBucket {
	if c == EmptyCard {
		return BucketUnknown
	}
	switch r := c.Rank(); {
	case r == RankJoker:
		return BucketZero
	case r == RankKing:
		if c.IsRedKing() {
			return BucketNegKing
		}
		return BucketHighKing
	case r == RankAce:
		return BucketAce
	case r <= RankFour:
		return BucketLowNum
	case r <= RankSix:
		return BucketMidNum
	case r <= RankEight:
		return BucketPeekSelf
	case r <= RankTen:
		return BucketPeekOther
	}
	return BucketSwapBlind
}

// Observation layout. Each hand slot is a bucket one-hot followed by
// [empty, known, value/13, has ability, known to the other player].
const (
	SlotDim = NumBuckets + 5

	offOwnHand  = 0
	offOppHand  = offOwnHand + MaxHandSize*SlotDim
	offCounts   = offOppHand + MaxHandSize*SlotDim
	offDrawn    = offCounts + 2
	offDiscard  = offDrawn + NumBuckets + 1
	offCambia   = offDiscard + NumBuckets
	offDecision = offCambia + 3

	ObservationDim = offDecision + NumDecisionContexts
)

// Encode returns player's view of the game as a fixed-size vector in [0, 1].
// Cards the player has not seen encode as BucketUnknown.
func (g *GameState) Encode(player uint8) []float32 {
	out := make([]float32, ObservationDim)
	g.EncodeInto(player, out)
	return out
}

// EncodeInto writes Encode(player) into dst, which must have ObservationDim entries.
func (g *GameState) EncodeInto(player uint8, dst []float32) {
	clear(dst[:ObservationDim])
	me := &g.Players[player]
	them := &g.Players[g.OpponentOf(player)]

	for i := uint8(0); i < MaxHandSize; i++ {
		encodeSlot(dst[offOwnHand+int(i)*SlotDim:], me, i, me.knows(i), them.sees(i))
		encodeSlot(dst[offOppHand+int(i)*SlotDim:], them, i, me.sees(i), them.knows(i))
	}

	dst[offCounts] = float32(me.HandLen) / MaxHandSize
	dst[offCounts+1] = float32(them.HandLen) / MaxHandSize

	drawn := NumBuckets // "nothing drawn"
	if g.Pending.Type == PendingDiscard && (g.Pending.PlayerID == player || g.Pending.Data[1] == DrawnFromDiscard) {
		drawn = int(BucketOf(Card(g.Pending.Data[0])))
	}
	dst[offDrawn+drawn] = 1

	dst[offDiscard+int(BucketOf(g.DiscardTop()))] = 1

	switch {
	case g.CambiaCaller < 0:
		dst[offCambia] = 1
	case uint8(g.CambiaCaller) == player:
		dst[offCambia+1] = 1
	default:
		dst[offCambia+2] = 1
	}

	dst[offDecision+int(g.ContextFor(player))] = 1
}

func encodeSlot(dst []float32, p *PlayerState, i uint8, visible, knownToOther bool) {
	if i >= p.HandLen {
		dst[NumBuckets] = 1
		return
	}
	c := p.Hand[i]
	if !visible {
		dst[BucketUnknown] = 1
	} else {
		dst[BucketOf(c)] = 1
		dst[NumBuckets+1] = 1
		dst[NumBuckets+2] = float32(max(c.Value(), 0)) / 13
		if c.HasAbility() {
			dst[NumBuckets+3] = 1
		}
	}
	if knownToOther {
		dst[NumBuckets+4] = 1
	}
}
