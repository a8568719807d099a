// Package scheduler runs the collection pipeline on a recurring cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/pipeline"
)

// Runner executes one full collection pass.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Scheduler triggers a Runner from a cron expression. Overlapping runs
// are skipped: a trigger that fires while a pass is still in flight is
// dropped rather than queued.
type Scheduler struct {
	cfg     config.SchedulerConfig
	runner  Runner
	cron    *cron.Cron
	parser  cron.Parser
	logger  logger.Interface
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// New creates a scheduler around the given runner.
func New(cfg config.SchedulerConfig, runner Runner, log logger.Interface) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	// Standard 5-field cron parser (minute hour day month weekday).
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron:   c,
		parser: parser,
		logger: log.WithComponent("scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the schedule and starts the cron loop. When
// RunOnStart is set, one pass executes immediately before the first
// scheduled trigger.
func (s *Scheduler) Start() error {
	schedule, err := s.parser.Parse(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", s.cfg.Schedule, err)
	}

	if _, addErr := s.cron.AddFunc(s.cfg.Schedule, s.trigger); addErr != nil {
		return fmt.Errorf("add cron job: %w", addErr)
	}

	s.cron.Start()

	now := time.Now()
	s.logger.Info("Scheduler started",
		"schedule", s.cfg.Schedule,
		"next_run", schedule.Next(now).Format(time.RFC3339))

	if s.cfg.RunOnStart {
		go s.trigger()
	}

	return nil
}

// Stop halts the cron loop and cancels any in-flight pass. It waits for
// already-started cron callbacks to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) trigger() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Skipping scheduled run, previous run still in progress")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	s.logger.Info("Scheduled collection run starting")

	result, err := s.runner.Run(s.ctx)
	if err != nil {
		s.logger.Error("Scheduled collection run failed",
			"error", err,
			"duration", time.Since(started).String())
		return
	}

	s.logger.Info("Scheduled collection run finished",
		"tournaments_extracted", result.RunStats.TotalTournamentsExtracted,
		"tournaments_inserted", result.InsertStats.Inserted,
		"duration", time.Since(started).String())
}
