package cardgame

import (
	"fmt"

	"github.com/jason-s-yu/turnenv/engine"
)

// Cambia runs the two-player Cambia engine behind the Engine interface.
type Cambia struct {
	rules engine.HouseRules
	game  engine.GameState
}

var _ Engine = (*Cambia)(nil)

func NewCambia(rules engine.HouseRules) *Cambia {
	return &Cambia{rules: rules}
}

func (c *Cambia) Name() string { return "cambia" }

func (c *Cambia) NumPlayers() int { return engine.NumPlayers }

func (c *Cambia) NumActions() int { return int(engine.NumActions) }

func (c *Cambia) ObservationShape() []int { return []int{engine.ObservationDim} }

func (c *Cambia) InitGame(seed uint64) (State, int, error) {
	c.game = engine.NewGame(seed, c.rules)
	c.game.Deal()
	p := c.game.ActingPlayer()
	return c.State(int(p)), int(p), nil
}

func (c *Cambia) Step(action int) (State, int, error) {
	if !c.game.IsStarted() {
		return State{}, 0, fmt.Errorf("cambia: game not started")
	}
	if action < 0 || action >= int(engine.NumActions) {
		return State{}, 0, fmt.Errorf("cambia: action %d out of range", action)
	}
	if err := c.game.ApplyAction(uint16(action)); err != nil {
		return State{}, 0, err
	}
	p := c.game.ActingPlayer()
	return c.State(int(p)), int(p), nil
}

func (c *Cambia) IsOver() bool { return c.game.IsTerminal() }

func (c *Cambia) Payoffs() []float64 {
	u := c.game.GetUtility()
	out := make([]float64, len(u))
	for i, v := range u {
		out[i] = float64(v)
	}
	return out
}

// State encodes player's view; legal actions are only listed for the acting player.
func (c *Cambia) State(player int) State {
	p := uint8(player)
	st := State{Obs: c.game.Encode(p)}
	if !c.game.IsTerminal() && p == c.game.ActingPlayer() {
		for _, a := range c.game.LegalActionsList() {
			st.LegalActions = append(st.LegalActions, int(a))
		}
	}
	return st
}

// Game exposes the underlying state for inspection.
func (c *Cambia) Game() engine.GameState { return c.game }
