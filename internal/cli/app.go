package cli

import (
	"fmt"
	"log/slog"

	"github.com/fieldscan/tankmove/internal/api"
	"github.com/fieldscan/tankmove/internal/config"
	"github.com/fieldscan/tankmove/internal/queue"
	"github.com/fieldscan/tankmove/internal/session"
)

// app bundles the wired-up orchestrator for one command invocation.
type app struct {
	cfg     *config.Config
	queue   *queue.Queue
	session *session.Session
	trigger *session.ChannelTrigger
}

// newApp builds a session from the config file. extra options are
// appended after the config-derived ones so commands can override (e.g.
// a scan-time location provider).
func newApp(opts *RootOptions, extra ...session.Option) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	q, err := queue.Open(cfg.QueuePath)
	if err != nil {
		return nil, fmt.Errorf("open offline queue: %w", err)
	}

	trigger := session.NewChannelTrigger(slog.Default())

	sessOpts := []session.Option{
		session.WithGeofence(session.Geofence{
			Reference:    cfg.Geofence.Reference(),
			RadiusMeters: cfg.Geofence.RadiusMeters,
		}),
		session.WithLogCap(cfg.LogEntries),
		session.WithLocationTimeout(cfg.LocationTimeout()),
		session.WithReplayTrigger(trigger),
		session.WithLogger(slog.Default()),
	}
	sessOpts = append(sessOpts, extra...)

	sess := session.New(api.NewClient(cfg.APIBaseURL), q, sessOpts...)
	sess.SetToken(tokenFromEnv())

	return &app{cfg: cfg, queue: q, session: sess, trigger: trigger}, nil
}

// Close releases the queue database.
func (a *app) Close() error {
	return a.queue.Close()
}
