package engine

import "testing"

func newDealtGame(t *testing.T) *GameState {
	t.Helper()
	g := NewGame(42, DefaultHouseRules())
	g.Deal()
	return &g
}

// TestNewGameDeck verifies NewGame builds 52 unique cards plus the jokers.
func TestNewGameDeck(t *testing.T) {
	hr := DefaultHouseRules()
	g := NewGame(42, hr)

	wantLen := uint8(52 + hr.NumJokers)
	if g.StockLen != wantLen {
		t.Fatalf("StockLen = %d, want %d", g.StockLen, wantLen)
	}
	seen := make(map[Card]bool)
	jokers := 0
	for i := uint8(0); i < g.StockLen; i++ {
		c := g.Stockpile[i]
		if seen[c] {
			t.Errorf("duplicate card %s at %d", c, i)
		}
		seen[c] = true
		if c.Rank() == RankJoker {
			jokers++
		}
	}
	if jokers != int(hr.NumJokers) {
		t.Errorf("jokers = %d, want %d", jokers, hr.NumJokers)
	}
	if g.CambiaCaller != -1 {
		t.Errorf("CambiaCaller = %d, want -1", g.CambiaCaller)
	}
}

func TestNewGameNoJokers(t *testing.T) {
	hr := DefaultHouseRules()
	hr.NumJokers = 0
	g := NewGame(42, hr)
	if g.StockLen != 52 {
		t.Fatalf("StockLen = %d, want 52", g.StockLen)
	}
}

// TestDeal verifies hand sizes, pile sizes and initial knowledge after a deal.
func TestDeal(t *testing.T) {
	g := newDealtGame(t)
	hr := DefaultHouseRules()

	for p := uint8(0); p < NumPlayers; p++ {
		if g.Players[p].HandLen != hr.CardsPerPlayer {
			t.Errorf("player %d HandLen = %d, want %d", p, g.Players[p].HandLen, hr.CardsPerPlayer)
		}
		if g.Players[p].Known != 0b11 {
			t.Errorf("player %d Known = %b, want 11", p, g.Players[p].Known)
		}
		if g.Players[p].Seen != 0 {
			t.Errorf("player %d Seen = %b, want 0", p, g.Players[p].Seen)
		}
		for i := g.Players[p].HandLen; i < MaxHandSize; i++ {
			if g.Players[p].Hand[i] != EmptyCard {
				t.Errorf("player %d slot %d = %s, want empty", p, i, g.Players[p].Hand[i])
			}
		}
	}

	wantStock := 52 + hr.NumJokers - 2*hr.CardsPerPlayer - 1
	if g.StockLen != wantStock {
		t.Errorf("StockLen = %d, want %d", g.StockLen, wantStock)
	}
	if g.DiscardLen != 1 {
		t.Errorf("DiscardLen = %d, want 1", g.DiscardLen)
	}
	if !g.IsStarted() {
		t.Error("game should be started after Deal")
	}
	if g.CurrentPlayer >= NumPlayers {
		t.Errorf("CurrentPlayer = %d out of range", g.CurrentPlayer)
	}
}

// TestDealDeterministic verifies equal seeds produce identical deals.
func TestDealDeterministic(t *testing.T) {
	a := NewGame(7, DefaultHouseRules())
	b := NewGame(7, DefaultHouseRules())
	a.Deal()
	b.Deal()
	if a != b {
		t.Fatal("same seed produced different games")
	}

	c := NewGame(8, DefaultHouseRules())
	c.Deal()
	if a.Players == c.Players && a.Stockpile == c.Stockpile {
		t.Error("different seeds produced identical deals")
	}
}

func TestZeroSeedIsUsable(t *testing.T) {
	g := NewGame(0, DefaultHouseRules())
	if g.RNG == 0 {
		t.Fatal("RNG must not be zero")
	}
	g.Deal()
	if g.Players[0].HandLen == 0 {
		t.Fatal("deal with zero seed produced empty hand")
	}
}

// TestSaveRestore verifies a snapshot survives later play.
func TestSaveRestore(t *testing.T) {
	g := newDealtGame(t)
	snap := g.Save()
	before := *g

	if err := g.ApplyAction(ActionDrawStockpile); err != nil {
		t.Fatalf("DrawStockpile: %v", err)
	}
	if *g == before {
		t.Fatal("state did not change after draw")
	}
	g.Restore(snap)
	if *g != before {
		t.Fatal("Restore did not reproduce the saved state")
	}
}

func TestActingPlayerFollowsPending(t *testing.T) {
	g := newDealtGame(t)
	g.CurrentPlayer = 0
	g.Pending = PendingAction{Type: PendingPeekOwn, PlayerID: 1}
	if got := g.ActingPlayer(); got != 1 {
		t.Errorf("ActingPlayer = %d, want 1", got)
	}
}
