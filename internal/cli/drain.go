package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDrainCommand creates the drain command: replay queued movements once.
func NewDrainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Replay queued movements against the authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			before, err := app.session.QueuedCount(ctx)
			if err != nil {
				return err
			}

			if err := app.session.DrainQueue(ctx); err != nil {
				return err
			}

			after, err := app.session.QueuedCount(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "drained %d movement(s), %d still queued\n", before-after, after)
			return nil
		},
	}
}
