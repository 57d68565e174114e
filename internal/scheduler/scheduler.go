// Package scheduler runs the recurring sync cycle on a fixed interval with
// a single-flight guard: a new cycle never starts while one is in progress.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/aggregator"
	"github.com/yourusername/odds-aggregator/internal/metrics"
)

// SyncRunner is the operation the scheduler drives. Satisfied by
// service.OddsService.
type SyncRunner interface {
	SyncAll(ctx context.Context) ([]*aggregator.SyncResult, error)
}

type syncState int

const (
	stateIdle syncState = iota
	stateRunning
)

// Scheduler manages the recurring sync job
type Scheduler struct {
	cron     *cron.Cron
	runner   SyncRunner
	logger   *logrus.Logger
	interval time.Duration

	mu        sync.Mutex
	state     syncState
	isStarted bool
	jobID     cron.EntryID
}

// NewScheduler creates a scheduler that runs the sync on the given interval
func NewScheduler(runner SyncRunner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		runner:   runner,
		logger:   logger,
		interval: interval,
	}
}

// Start registers the recurring job and starts the cron loop. The first
// cycle runs immediately rather than waiting a full interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.isStarted {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}

	jobID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runCycle)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}

	s.jobID = jobID
	s.isStarted = true
	s.cron.Start()
	s.mu.Unlock()

	s.logger.WithField("interval", s.interval).Info("Scheduler started")
	go s.runCycle()

	return nil
}

// Stop stops the cron loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isStarted {
		s.mu.Unlock()
		return
	}
	s.isStarted = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// TriggerSync runs a cycle immediately. It shares the single-flight guard
// with the scheduled job, so a manual trigger during a running cycle is
// refused.
func (s *Scheduler) TriggerSync() error {
	if !s.tryAcquire() {
		return fmt.Errorf("a sync cycle is already in progress")
	}
	defer s.release()

	s.execute()
	return nil
}

// IsRunning reports whether a sync cycle is currently executing.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRunning
}

// NextRun returns the time of the next scheduled cycle.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isStarted {
		return time.Time{}
	}
	return s.cron.Entry(s.jobID).Next
}

// runCycle is the cron entry point. Overlapping invocations are skipped and
// counted, never queued.
func (s *Scheduler) runCycle() {
	if !s.tryAcquire() {
		metrics.SchedulerCyclesSkippedTotal.Inc()
		s.logger.Warn("Previous sync cycle still running, skipping this one")
		return
	}
	defer s.release()

	s.execute()
}

// execute runs one sync cycle to completion. Cycles are never cancelled
// midway; slow providers are bounded by their own retry and rate limit
// policies.
func (s *Scheduler) execute() {
	ctx := context.Background()

	start := time.Now()
	results, err := s.runner.SyncAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Sync cycle finished with errors")
	}

	s.logger.WithFields(logrus.Fields{
		"sports":   len(results),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Sync cycle finished")
}

func (s *Scheduler) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateRunning {
		return false
	}
	s.state = stateRunning
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateIdle
}
