package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jason-s-yu/turnenv/atari"
)

func newROMCmd(a *app) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "rom <game>",
		Short: "Check that a ROM is installed and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				root = a.cfg.ROMRoot
			}
			path, err := atari.LocateROM(root, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "rom-root", "", "ROM directory (default TURNENV_ROM_ROOT)")
	return cmd
}
