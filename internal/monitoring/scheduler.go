package monitoring

import (
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs recurring maintenance jobs. Currently its only job is
// pruning the event log down to the configured retention window, once a day.
type Scheduler struct {
	cron      *cron.Cron
	eventSvc  services.EventServiceProvider
	retention time.Duration
}

// NewScheduler creates a scheduler that keeps retentionDays worth of events.
func NewScheduler(eventSvc services.EventServiceProvider, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		eventSvc:  eventSvc,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start registers the jobs and starts the cron loop in its own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.pruneEvents); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Dur("retention", s.retention).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop. Running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) pruneEvents() {
	pruned, err := s.eventSvc.PruneOlderThan(s.retention)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: Failed to prune events")
		return
	}
	if pruned > 0 {
		log.Info().Int64("pruned", pruned).Msg("Scheduler: Old events pruned")
	}
}
