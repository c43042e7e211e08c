package cardgame

import (
	"fmt"
	"image"
	"math/rand/v2"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/turnenv/env"
)

// Option configures an Env.
type Option func(*Env)

// WithSeed fixes the seed stream; each Reset draws the next game seed from it.
func WithSeed(seed uint64) Option {
	return func(e *Env) {
		e.seed = seed
		e.seeded = true
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Env) { e.baseLog = l }
}

// Env is the sequential-turn coordinator.
type Env struct {
	eng     Engine
	seed    uint64
	seeded  bool
	rng     *rand.Rand
	baseLog logrus.FieldLogger
	log     logrus.FieldLogger

	agents      []env.AgentID
	actionSpace env.Discrete
	obsSpace    env.Box

	resetDone bool
	episode   int
	gameSeed  uint64
	cursor    int
	rewards   map[env.AgentID]float64
	dones     map[env.AgentID]bool
	infos     map[env.AgentID]env.Info
}

var _ env.Env = (*Env)(nil)

// New wraps eng. The engine is not started until Reset.
func New(eng Engine, opts ...Option) (*Env, error) {
	if eng == nil {
		return nil, fmt.Errorf("%w: engine is nil", env.ErrConfig)
	}
	e := &Env{eng: eng, baseLog: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	if !e.seeded {
		e.seed = rand.Uint64()
	}
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed^0x9e3779b97f4a7c15))

	n := eng.NumPlayers()
	if n < 1 {
		return nil, fmt.Errorf("%w: engine %s reports %d players", env.ErrConfig, eng.Name(), n)
	}
	if eng.NumActions() < 1 {
		return nil, fmt.Errorf("%w: engine %s reports %d actions", env.ErrConfig, eng.Name(), eng.NumActions())
	}

	e.agents = env.Roster(n)
	e.actionSpace = env.Discrete{N: eng.NumActions()}
	e.obsSpace = env.NewBox(0, 1, eng.ObservationShape(), env.Float32)
	e.rewards = make(map[env.AgentID]float64, n)
	e.dones = make(map[env.AgentID]bool, n)
	e.infos = make(map[env.AgentID]env.Info, n)
	e.log = e.baseLog.WithFields(logrus.Fields{"env": eng.Name(), "players": n})
	return e, nil
}

func (e *Env) Name() string { return e.eng.Name() }

func (e *Env) NumAgents() int { return len(e.agents) }

func (e *Env) Agents() []env.AgentID { return slices.Clone(e.agents) }

// Seed returns the root of the seed stream.
func (e *Env) Seed() uint64 { return e.seed }

// GameSeed returns the seed the current game was dealt with.
func (e *Env) GameSeed() uint64 { return e.gameSeed }

func (e *Env) index(agent env.AgentID) (int, bool) {
	i := slices.Index(e.agents, agent)
	return i, i >= 0
}

func (e *Env) ActionSpace(agent env.AgentID) (env.Discrete, error) {
	if _, ok := e.index(agent); !ok {
		return env.Discrete{}, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	return e.actionSpace, nil
}

func (e *Env) ObservationSpace(agent env.AgentID) (env.Box, error) {
	if _, ok := e.index(agent); !ok {
		return env.Box{}, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	return e.obsSpace.Clone(), nil
}

func (e *Env) Reset(observe bool) (*env.Observation, error) {
	e.gameSeed = e.rng.Uint64()
	st, first, err := e.eng.InitGame(e.gameSeed)
	if err != nil {
		return nil, err
	}
	if err := e.setCursor(first); err != nil {
		return nil, err
	}
	for _, a := range e.agents {
		e.rewards[a] = 0
		e.dones[a] = false
		e.infos[a] = env.Info{}
	}
	e.infos[e.agents[first]] = env.Info{LegalMoves: slices.Clone(st.LegalActions)}
	e.resetDone = true
	e.episode++
	e.log.WithFields(logrus.Fields{"episode": e.episode, "seed": e.gameSeed, "agent": e.agents[first]}).Info("episode reset")

	if !observe {
		return nil, nil
	}
	return e.observation(st), nil
}

func (e *Env) setCursor(player int) error {
	if player < 0 || player >= len(e.agents) {
		return fmt.Errorf("engine %s designated player %d of %d", e.eng.Name(), player, len(e.agents))
	}
	e.cursor = player
	return nil
}

func (e *Env) observation(st State) *env.Observation {
	return &env.Observation{Shape: slices.Clone(e.obsSpace.Shape), F32: slices.Clone(st.Obs)}
}

// Observe returns agent's own view of the table.
func (e *Env) Observe(agent env.AgentID) (*env.Observation, error) {
	if !e.resetDone {
		return nil, env.ErrNotReset
	}
	i, ok := e.index(agent)
	if !ok {
		return nil, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	return e.observation(e.eng.State(i)), nil
}

// Step submits action for the current mover. Legality is the engine's call;
// only actions outside the action space are rejected here.
func (e *Env) Step(action int, observe bool) (*env.Observation, error) {
	if !e.resetDone {
		return nil, env.ErrNotReset
	}
	if env.AllDone(e.dones) {
		return nil, env.ErrEpisodeDone
	}
	if !e.actionSpace.Contains(action) {
		return nil, fmt.Errorf("%w: %d not in %s for %s", env.ErrInvalidAction, action, e.actionSpace, e.agents[e.cursor])
	}

	st, next, err := e.eng.Step(action)
	if err != nil {
		return nil, err
	}
	if err := e.setCursor(next); err != nil {
		return nil, err
	}

	over := e.eng.IsOver()
	if over {
		payoffs := e.eng.Payoffs()
		if len(payoffs) != len(e.agents) {
			return nil, fmt.Errorf("engine %s returned %d payoffs for %d players", e.eng.Name(), len(payoffs), len(e.agents))
		}
		for i, a := range e.agents {
			e.rewards[a] = payoffs[i]
			e.dones[a] = true
		}
		e.log.WithFields(logrus.Fields{"episode": e.episode, "payoffs": payoffs}).Debug("episode over")
	} else {
		for _, a := range e.agents {
			e.rewards[a] = 0
		}
	}
	e.infos[e.agents[next]] = env.Info{LegalMoves: slices.Clone(st.LegalActions)}

	if !observe {
		return nil, nil
	}
	return e.observation(st), nil
}

func (e *Env) Render() (image.Image, error) { return nil, env.ErrRenderUnsupported }

func (e *Env) Close() error { return nil }

func (e *Env) AgentSelection() env.AgentID {
	if !e.resetDone {
		return ""
	}
	return e.agents[e.cursor]
}

func (e *Env) Rewards() map[env.AgentID]float64 { return env.CopyRewards(e.rewards) }

func (e *Env) Dones() map[env.AgentID]bool { return env.CopyDones(e.dones) }

func (e *Env) Infos() map[env.AgentID]env.Info { return env.CopyInfos(e.infos) }
