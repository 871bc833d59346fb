package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
	"github.com/fieldscan/tankmove/internal/session"
)

// NewScanCommand creates the scan command: record one batch of scanned
// tanks under an operation and submit it.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	var lat, lng float64
	var hasFix bool

	cmd := &cobra.Command{
		Use:   "scan <operation> <tank-id>...",
		Short: "Record scanned tanks under an operation and submit the batch",
		Long: `Record one or more scanned tank ids under an operation (use, retrieve,
refill, testfail, discard) and submit them as a single batch.

Exceptional transitions require --lat/--lng within the configured
geofence radius. If the authority is unreachable the batch is stored in
the durable queue and replayed by a later drain.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := lifecycle.ParseOperation(args[0])
			if err != nil {
				return err
			}

			var location *geo.Coordinate
			var locOpts []session.Option
			if hasFix {
				location = &geo.Coordinate{Lat: lat, Lng: lng}
				locOpts = append(locOpts, session.WithLocationProvider(session.StaticLocation(*location)))
			}

			app, err := newApp(rootOpts, locOpts...)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.session.RefreshSnapshot(ctx); err != nil {
				return err
			}
			app.session.SetOperation(op)

			out := cmd.OutOrStdout()
			var failed bool
			for _, raw := range args[1:] {
				if err := app.session.RecordScan(raw, location); err != nil {
					failed = true
					fmt.Fprintf(out, "rejected %s: %v\n", raw, err)
					continue
				}
				last := app.session.LastTransition()
				fmt.Fprintf(out, "accepted %s: %s → %s%s\n", last.TankID, last.From, last.To, exceptionSuffix(last))
			}

			if len(app.session.Pending()) == 0 {
				if failed {
					return errors.New("no scans accepted")
				}
				return nil
			}

			if err := app.session.SendPending(ctx); err != nil {
				return err
			}
			if msg := app.session.StatusMessage(); msg != "" {
				fmt.Fprintln(out, msg)
			} else {
				fmt.Fprintln(out, "submitted")
			}
			if failed {
				return errors.New("some scans were rejected")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "device latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "device longitude")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasFix = cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng")
	}

	return cmd
}

func exceptionSuffix(e *session.LogEntry) string {
	if e.Normal {
		return ""
	}
	return fmt.Sprintf(" (exception %s)", e.ExceptionKind)
}
