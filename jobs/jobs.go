package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tdvu/galleria/config"
	"github.com/tdvu/galleria/persist"
)

// SetupInBackground schedules the periodic silent save. The exit-time
// save is handled by the shutdown path in main, not here.
func SetupInBackground(cfg config.Config, saver *persist.Saver) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	interval := cfg.Save.IntervalMinutes
	if interval <= 0 {
		interval = 5
	}

	s.Every(interval).Minutes().Do(func() {
		saver.SaveSilent(context.Background())
	})

	slog.With(slog.Int("interval_minutes", interval)).Info("Scheduled periodic catalog save")

	return s
}
