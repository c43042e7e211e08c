// Command turnenv runs rollouts against the multi-agent environments.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jason-s-yu/turnenv/internal/config"
)

type app struct {
	cfg config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "turnenv",
		Short:         "Multi-agent turn-based environments for Atari and card games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				l, err := logrus.ParseLevel(lvl)
				if err != nil {
					return err
				}
				cfg.LogLevel = l
			}
			a.cfg = cfg
			a.log = cfg.Logger()
			a.log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "", "override TURNENV_LOG_LEVEL")
	root.AddCommand(newCambiaCmd(a), newROMCmd(a))
	return root
}

func main() {
	if f := config.LoadEnvFiles(config.DefaultEnvFiles...); f != "" {
		logrus.WithField("file", f).Debug("loaded env file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("turnenv failed")
		os.Exit(1)
	}
}
