package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"directory-enricher/internal/common/logging"
)

// scheduler runs full directory refreshes on a cron schedule.
type scheduler struct {
	cron *cron.Cron
}

func (app *App) initializeScheduler() error {
	schedule := app.Config.RefreshSchedule
	if schedule == "" {
		app.Logger.Info("Scheduled refresh disabled (no REFRESH_SCHEDULE)")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		app.Logger.Info("Scheduled directory refresh starting")
		if err := app.Cache.RefreshAll(context.Background()); err != nil {
			app.Logger.Warn("Scheduled directory refresh failed",
				logging.Field{Key: "error", Value: err.Error()})
		}
	})
	if err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", schedule, err)
	}

	app.scheduler = &scheduler{cron: c}
	app.Logger.Info("Scheduled refresh enabled",
		logging.Field{Key: "schedule", Value: schedule})
	return nil
}

// Start begins executing scheduled refreshes.
func (s *scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (s *scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
