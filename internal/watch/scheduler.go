package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler republishes on a fixed interval regardless of filesystem
// activity, as a safety net for missed events and expired remote objects.
type Scheduler struct {
	scheduler gocron.Scheduler
	run       RunFunc
}

func NewScheduler(run RunFunc) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("run function is required")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{scheduler: s, run: run}, nil
}

// Start schedules a republish every interval and begins the scheduler.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("republish interval must be positive, got %s", interval)
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, ctx),
		gocron.WithName("periodic-republish"),
	)
	if err != nil {
		return fmt.Errorf("create republish job: %w", err)
	}

	slog.Info("Scheduled periodic republish", slog.Duration("interval", interval))
	s.scheduler.Start()
	return nil
}

func (s *Scheduler) execute(ctx context.Context) {
	slog.Info("Executing periodic republish")
	if err := s.run(ctx); err != nil {
		slog.Error("Periodic republish failed", slog.Any("error", err))
	}
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
