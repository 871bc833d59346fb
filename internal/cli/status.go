package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscan/tankmove/internal/lifecycle"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Fetch and display the authoritative tank status snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.session.RefreshSnapshot(ctx); err != nil {
				return err
			}

			snap := app.session.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "updated at %s\n", snap.UpdatedAt)
			for _, state := range lifecycle.States() {
				ids := snap.Statuses[state]
				fmt.Fprintf(out, "%-14s %3d", state, len(ids))
				for _, id := range ids {
					fmt.Fprintf(out, "  %s", id)
				}
				fmt.Fprintln(out)
			}

			queued, err := app.session.QueuedCount(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "pending delivery: %d queued movement(s)\n", queued)
			return nil
		},
	}
}
