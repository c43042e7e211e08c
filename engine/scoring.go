package engine

// Scores returns each player's hand total.
func (g *GameState) Scores() [NumPlayers]int16 {
	var scores [NumPlayers]int16
	for p := range g.Players {
		for i := uint8(0); i < g.Players[p].HandLen; i++ {
			scores[p] += int16(g.Players[p].Hand[i].Value())
		}
	}
	return scores
}

// GetUtility returns +1 for the winner and -1 for the loser once the game is
// over. The lower total wins; a tie goes to the Cambia caller, and a tie with
// no caller is 0 for both. Non-terminal states return zeros.
func (g *GameState) GetUtility() [NumPlayers]float32 {
	var u [NumPlayers]float32
	if !g.IsTerminal() {
		return u
	}
	s := g.Scores()
	switch {
	case s[0] < s[1]:
		u[0], u[1] = 1, -1
	case s[1] < s[0]:
		u[0], u[1] = -1, 1
	case g.CambiaCaller >= 0:
		w := uint8(g.CambiaCaller)
		u[w], u[g.OpponentOf(w)] = 1, -1
	}
	return u
}
