package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command: a long-running loop that
// stands in for the OS background-sync facility, firing the replay
// trigger on an interval.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the background replay trigger loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						app.trigger.Fire()
					}
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "watching queue, replaying every %s\n", interval)
			app.trigger.Fire()

			err = app.trigger.Run(ctx, app.session)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "replay attempt interval")

	return cmd
}
