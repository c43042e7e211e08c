// Package policy chooses actions for agents.
package policy

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/jason-s-yu/turnenv/env"
)

// ErrNoAction is returned when a decision offers nothing to choose from.
var ErrNoAction = errors.New("no action available")

// Decision is everything a policy may look at before acting.
type Decision struct {
	Agent       env.AgentID
	Observation *env.Observation
	Info        env.Info
	ActionSpace env.Discrete
}

// Policy picks an action index for the agent in d.
type Policy interface {
	Act(ctx context.Context, d Decision) (int, error)
}

// Func adapts a function to Policy.
type Func func(ctx context.Context, d Decision) (int, error)

func (f Func) Act(ctx context.Context, d Decision) (int, error) { return f(ctx, d) }

// Random samples uniformly from the legal moves, or from the whole action
// space when the environment reports none.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

func (r *Random) Act(ctx context.Context, d Decision) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(d.Info.LegalMoves); n > 0 {
		return d.Info.LegalMoves[r.rng.IntN(n)], nil
	}
	if d.ActionSpace.N <= 0 {
		return 0, ErrNoAction
	}
	return r.rng.IntN(d.ActionSpace.N), nil
}
