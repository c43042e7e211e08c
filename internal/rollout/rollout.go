// Package rollout drives environments with policies and records the results.
package rollout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jason-s-yu/turnenv/env"
	"github.com/jason-s-yu/turnenv/internal/store"
	"github.com/jason-s-yu/turnenv/policy"
)

// DefaultMaxSteps caps an episode when no limit is configured.
const DefaultMaxSteps = 10000

const saveTimeout = 2 * time.Second

// batcher is implemented by environments that buffer actions before resolving
// them, like the simultaneous-action coordinator.
type batcher interface {
	PendingActions() int
}

type gameSeeder interface{ GameSeed() uint64 }

type romSeeder interface{ Seed() uint32 }

// Runner plays episodes of one environment.
type Runner struct {
	env      env.Env
	policy   policy.Policy
	store    store.Store
	log      logrus.FieldLogger
	maxSteps int
}

type Option func(*Runner)

// WithStore saves every finished episode to s.
func WithStore(s store.Store) Option { return func(r *Runner) { r.store = s } }

func WithLogger(l logrus.FieldLogger) Option { return func(r *Runner) { r.log = l } }

// WithMaxSteps truncates episodes after n steps. n <= 0 keeps the default.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

func New(e env.Env, p policy.Policy, opts ...Option) (*Runner, error) {
	if e == nil || p == nil {
		return nil, fmt.Errorf("%w: rollout needs an environment and a policy", env.ErrConfig)
	}
	r := &Runner{env: e, policy: p, log: logrus.StandardLogger(), maxSteps: DefaultMaxSteps}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.WithField("env", e.Name())
	return r, nil
}

// Summary aggregates per-agent returns over a run.
type Summary struct {
	Episodes  int
	Steps     int
	Truncated int
	Returns   map[env.AgentID][]float64
	Mean      map[env.AgentID]float64
	StdDev    map[env.AgentID]float64
	Total     map[env.AgentID]float64
}

// Run plays n episodes. On error the summary covers the episodes that
// finished before it.
func (r *Runner) Run(ctx context.Context, n int) (Summary, error) {
	returns := make(map[env.AgentID][]float64)
	sum := Summary{}
	var runErr error
	for i := 0; i < n; i++ {
		ep, err := r.Episode(ctx)
		if err != nil {
			runErr = fmt.Errorf("episode %d: %w", i, err)
			break
		}
		sum.Episodes++
		sum.Steps += ep.Steps
		if ep.Truncated {
			sum.Truncated++
		}
		for _, a := range r.env.Agents() {
			returns[a] = append(returns[a], ep.Returns[a])
		}
	}
	sum.Returns = returns
	sum.Mean = make(map[env.AgentID]float64, len(returns))
	sum.StdDev = make(map[env.AgentID]float64, len(returns))
	sum.Total = make(map[env.AgentID]float64, len(returns))
	for a, xs := range returns {
		sum.Total[a] = floats.Sum(xs)
		sum.Mean[a] = stat.Mean(xs, nil)
		if len(xs) > 1 {
			sum.StdDev[a] = stat.StdDev(xs, nil)
		}
	}
	return sum, runErr
}

// Episode plays a single episode to termination or the step cap and saves it.
func (r *Runner) Episode(ctx context.Context) (store.Episode, error) {
	ep := store.Episode{ID: uuid.New(), Env: r.env.Name(), StartedAt: time.Now()}
	log := r.log.WithField("episode_id", ep.ID)

	if _, err := r.env.Reset(false); err != nil {
		return ep, fmt.Errorf("reset: %w", err)
	}
	switch s := r.env.(type) {
	case gameSeeder:
		ep.Seed = s.GameSeed()
	case romSeeder:
		ep.Seed = uint64(s.Seed())
	}

	agents := r.env.Agents()
	totals := make(map[env.AgentID]float64, len(agents))
	// resolved but not yet credited, per agent
	owed := make(map[env.AgentID]float64, len(agents))
	b, buffered := r.env.(batcher)

	for !env.AllDone(r.env.Dones()) {
		if ep.Steps >= r.maxSteps {
			ep.Truncated = true
			break
		}
		if err := ctx.Err(); err != nil {
			return ep, err
		}
		agent := r.env.AgentSelection()
		totals[agent] += owed[agent]
		owed[agent] = 0

		action, err := r.act(ctx, agent)
		if err != nil {
			return ep, err
		}
		if _, err := r.env.Step(action, false); err != nil {
			return ep, fmt.Errorf("step %d (%s plays %d): %w", ep.Steps, agent, action, err)
		}
		ep.Steps++
		if buffered && b.PendingActions() > 0 {
			continue
		}
		for a, rew := range r.env.Rewards() {
			owed[a] += rew
		}
	}
	for _, a := range agents {
		totals[a] += owed[a]
	}
	ep.Returns = totals
	ep.Duration = time.Since(ep.StartedAt)

	log.WithFields(logrus.Fields{
		"steps":     ep.Steps,
		"truncated": ep.Truncated,
		"returns":   totals,
	}).Info("episode finished")

	if r.store != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if err := r.store.Save(sctx, ep); err != nil {
			// a failed save does not invalidate the episode
			log.WithError(err).Error("failed to save episode")
		}
	}
	return ep, nil
}

func (r *Runner) act(ctx context.Context, agent env.AgentID) (int, error) {
	space, err := r.env.ActionSpace(agent)
	if err != nil {
		return 0, err
	}
	obs, err := r.env.Observe(agent)
	if err != nil {
		return 0, fmt.Errorf("observe %s: %w", agent, err)
	}
	d := policy.Decision{
		Agent:       agent,
		Observation: obs,
		Info:        r.env.Infos()[agent],
		ActionSpace: space,
	}
	action, err := r.policy.Act(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("policy for %s: %w", agent, err)
	}
	return action, nil
}
