// Package cardgame adapts a sequential, single-mover card engine to the env
// contract. The engine decides who moves next; the coordinator only mirrors
// that decision into per-agent rewards, dones and infos.
package cardgame

// State is one player's view of the game as reported by the engine.
type State struct {
	Obs          []float32
	LegalActions []int
}

// Engine is the card runtime the coordinator drives. Players are indexed from
// 0 to NumPlayers()-1.
type Engine interface {
	Name() string
	NumPlayers() int
	NumActions() int
	ObservationShape() []int

	// InitGame starts a new game and returns the first mover's state.
	InitGame(seed uint64) (State, int, error)
	// Step applies action for the current mover and returns the next mover's state.
	Step(action int) (State, int, error)
	IsOver() bool
	// Payoffs is the terminal payoff vector indexed by player.
	Payoffs() []float64
	State(player int) State
}
