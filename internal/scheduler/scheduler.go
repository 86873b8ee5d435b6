package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/jamwil123/pool-tracker/internal/domain/standing"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

const defaultRefreshTimeout = 30 * time.Second

type StandingsRefresher interface {
	Refresh(ctx context.Context) (standing.Table, error)
}

type RefreshRecorder interface {
	ObserveStandingsRefresh(outcome string)
}

type Config struct {
	StandingsCron  string
	Location       *time.Location
	RefreshTimeout time.Duration
	// RefreshOnStart runs one refresh as soon as the scheduler starts.
	RefreshOnStart bool
}

// Scheduler keeps the cached division table warm.
type Scheduler struct {
	s         gocron.Scheduler
	cfg       Config
	standings StandingsRefresher
	recorder  RefreshRecorder
	logger    *logging.Logger
}

func New(cfg Config, standings StandingsRefresher, recorder RefreshRecorder, logger *logging.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}

	s, err := gocron.NewScheduler(append([]gocron.SchedulerOption{gocron.WithLocation(cfg.Location)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:         s,
		cfg:       cfg,
		standings: standings,
		recorder:  recorder,
		logger:    logger,
	}, nil
}

func (s *Scheduler) Start() error {
	expr := strings.TrimSpace(s.cfg.StandingsCron)
	if expr == "" {
		return fmt.Errorf("standings refresh cron is empty")
	}

	jobOpts := []gocron.JobOption{
		gocron.WithName("standings-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if s.cfg.RefreshOnStart {
		jobOpts = append(jobOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.s.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(s.refreshStandings),
		jobOpts...,
	)
	if err != nil {
		return fmt.Errorf("failed to create standings refresh job: %w", err)
	}

	s.s.Start()
	s.logger.Info("scheduler started", "standings_cron", expr, "location", s.cfg.Location.String())
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refreshStandings() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshTimeout)
	defer cancel()

	table, err := s.standings.Refresh(ctx)
	if err != nil {
		s.observe("error")
		s.logger.WarnContext(ctx, "scheduled standings refresh failed", "error", err)
		return
	}
	s.observe("ok")
	s.logger.DebugContext(ctx, "scheduled standings refresh done", "rows", len(table.Rows))
}

func (s *Scheduler) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveStandingsRefresh(outcome)
	}
}
