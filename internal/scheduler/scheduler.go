package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sourcegraph/conc"

	"github.com/gridfan/f1-fantasy/internal/platform/logging"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

// Scheduler runs the weekly reconciliation on a fixed calendar slot. Grands
// prix finish on Sundays, so the default Monday morning run picks up fresh
// results while the manual job endpoint covers everything in between.
type Scheduler struct {
	s                gocron.Scheduler
	reconcileService *usecase.ReconciliationService
	logger           *logging.Logger
	weekday          time.Weekday
	atHour           int
	atMinute         int
	runOnStart       bool
	startupWG        conc.WaitGroup
}

type Config struct {
	Weekday    time.Weekday
	AtHour     int
	AtMinute   int
	RunOnStart bool
}

func New(reconcileService *usecase.ReconciliationService, logger *logging.Logger, cfg Config) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		s:                s,
		reconcileService: reconcileService,
		logger:           logger,
		weekday:          cfg.Weekday,
		atHour:           cfg.AtHour,
		atMinute:         cfg.AtMinute,
		runOnStart:       cfg.RunOnStart,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(s.weekday), gocron.NewAtTimes(gocron.NewAtTime(uint(s.atHour), uint(s.atMinute), 0))),
		gocron.NewTask(func() { s.runReconcile(ctx) }),
	)
	if err != nil {
		return fmt.Errorf("create reconcile job: %w", err)
	}

	s.s.Start()

	if s.runOnStart {
		// Catch up on anything missed while the process was down, without
		// delaying server startup.
		s.startupWG.Go(func() { s.runReconcile(ctx) })
	}

	return nil
}

func (s *Scheduler) Stop() error {
	s.startupWG.Wait()
	return s.s.Shutdown()
}

func (s *Scheduler) runReconcile(ctx context.Context) {
	report, err := s.reconcileService.Run(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled reconciliation failed", "error", err)
		return
	}

	s.logger.InfoContext(ctx, "scheduled reconciliation finished",
		"races_scanned", report.RacesScanned,
		"teams_updated", report.TeamsUpdated,
		"failures", report.Failures,
	)
}
