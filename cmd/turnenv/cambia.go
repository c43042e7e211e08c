package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jason-s-yu/turnenv/cardgame"
	"github.com/jason-s-yu/turnenv/engine"
	"github.com/jason-s-yu/turnenv/env"
	"github.com/jason-s-yu/turnenv/internal/config"
	"github.com/jason-s-yu/turnenv/internal/rollout"
	"github.com/jason-s-yu/turnenv/internal/store"
	"github.com/jason-s-yu/turnenv/policy"
)

type cambiaFlags struct {
	episodes  int
	seed      uint64
	maxSteps  int
	policy    string
	store     string
	stream    string
	maxTurns  uint16
	cards     uint8
	noDiscard bool
}

func newCambiaCmd(a *app) *cobra.Command {
	f := &cambiaFlags{}
	cmd := &cobra.Command{
		Use:   "cambia",
		Short: "Run rollouts of the two-player Cambia card game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("seed") && a.cfg.SeedSet {
				f.seed = a.cfg.Seed
			}
			return runCambia(cmd.Context(), a, f, cmd.OutOrStdout())
		},
	}
	rules := engine.DefaultHouseRules()
	cmd.Flags().IntVarP(&f.episodes, "episodes", "n", 100, "number of episodes")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "environment seed (default TURNENV_SEED or 1)")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", rollout.DefaultMaxSteps, "truncate episodes after this many steps")
	cmd.Flags().StringVar(&f.policy, "policy", "random", `"random" or a path to a Lua policy script`)
	cmd.Flags().StringVar(&f.store, "store", "memory", "episode store: memory, postgres or redis")
	cmd.Flags().StringVar(&f.stream, "stream", store.DefaultStream, "redis stream for --store redis")
	cmd.Flags().Uint16Var(&f.maxTurns, "max-turns", rules.MaxGameTurns, "house rule: turn limit")
	cmd.Flags().Uint8Var(&f.cards, "cards", rules.CardsPerPlayer, "house rule: cards dealt per player")
	cmd.Flags().BoolVar(&f.noDiscard, "no-discard-draw", false, "house rule: forbid drawing from the discard pile")
	return cmd
}

func runCambia(ctx context.Context, a *app, f *cambiaFlags, out io.Writer) error {
	if f.cards == 0 || f.cards > engine.MaxHandSize {
		return fmt.Errorf("%w: --cards must be in 1..%d", env.ErrConfig, engine.MaxHandSize)
	}
	rules := engine.DefaultHouseRules()
	rules.MaxGameTurns = f.maxTurns
	rules.CardsPerPlayer = f.cards
	rules.AllowDrawFromDiscard = !f.noDiscard

	e, err := cardgame.New(cardgame.NewCambia(rules), cardgame.WithSeed(f.seed), cardgame.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer e.Close()

	pol, closePolicy, err := openPolicy(f.policy, f.seed)
	if err != nil {
		return err
	}
	defer closePolicy()

	st, err := openStore(ctx, f.store, a.cfg, f.stream)
	if err != nil {
		return err
	}
	defer st.Close()

	r, err := rollout.New(e, pol,
		rollout.WithStore(st),
		rollout.WithLogger(a.log),
		rollout.WithMaxSteps(f.maxSteps))
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"episodes": f.episodes, "seed": f.seed, "policy": f.policy, "store": f.store}).Info("starting rollouts")
	sum, err := r.Run(ctx, f.episodes)
	printSummary(out, sum)
	return err
}

func openPolicy(choice string, seed uint64) (policy.Policy, func(), error) {
	if choice == "" || choice == "random" {
		return policy.NewRandom(seed), func() {}, nil
	}
	p, err := policy.LoadLua(choice)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func openStore(ctx context.Context, kind string, cfg config.Config, stream string) (store.Store, error) {
	switch kind {
	case "", "memory":
		return store.NewMemory(), nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: --store postgres needs TURNENV_DATABASE_URL", env.ErrConfig)
		}
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("%w: --store redis needs TURNENV_REDIS_URL", env.ErrConfig)
		}
		return store.OpenRedis(ctx, cfg.RedisURL, stream, 0)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", env.ErrConfig, kind)
	}
}

func printSummary(w io.Writer, s rollout.Summary) {
	fmt.Fprintf(w, "episodes=%d steps=%d truncated=%d\n", s.Episodes, s.Steps, s.Truncated)
	agents := make([]env.AgentID, 0, len(s.Mean))
	for a := range s.Mean {
		agents = append(agents, a)
	}
	slices.Sort(agents)
	for _, a := range agents {
		fmt.Fprintf(w, "%s mean=%.3f std=%.3f total=%.0f\n", a, s.Mean[a], s.StdDev[a], s.Total[a])
	}
}
