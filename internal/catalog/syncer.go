package catalog

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Syncer periodically stamps LastSync on connected data sources so the UI can
// show integration freshness. Real per-integration sync is out of scope; the
// stamp only records that a refresh cycle ran.
type Syncer struct {
	cron     *cron.Cron
	registry *Registry
}

func NewSyncer(registry *Registry) *Syncer {
	return &Syncer{
		cron:     cron.New(),
		registry: registry,
	}
}

// Start schedules the refresh at the given cron spec (e.g. "@every 5m").
func (s *Syncer) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		n := s.registry.MarkSynced(time.Now())
		if n > 0 {
			slog.Debug("data sources refreshed", "count", n)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Syncer) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
