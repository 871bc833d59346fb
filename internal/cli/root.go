// Package cli wires the orchestrator into a command-line host: one-shot
// scan/send/drain commands for field devices and a watch loop that plays
// the role of the OS background replay trigger.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the tankmove CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tankmove",
		Short: "Track reusable tank movements against the inventory authority",
		Long: `tankmove records field-scanned tank movements, enforces the lifecycle
state machine and its geofenced exception policy, and delivers every
accepted movement to the inventory authority - immediately when online,
via a durable replay queue when not.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "tankmove.yaml", "path to the device config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewDrainCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// tokenFromEnv reads the auth token snapshot. Login itself is out of
// scope; the device is provisioned with a token.
func tokenFromEnv() string {
	return os.Getenv("TANKMOVE_TOKEN")
}
