package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-aggregator/internal/aggregator"
)

type blockingRunner struct {
	calls       atomic.Int32
	release     chan struct{}
	hadDeadline atomic.Bool
}

func (r *blockingRunner) SyncAll(ctx context.Context) ([]*aggregator.SyncResult, error) {
	r.calls.Add(1)
	_, ok := ctx.Deadline()
	r.hadDeadline.Store(ok)
	if r.release != nil {
		<-r.release
	}
	return nil, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestTriggerSync_RunsOnce(t *testing.T) {
	runner := &blockingRunner{}
	s := NewScheduler(runner, time.Hour, quietLogger())

	require.NoError(t, s.TriggerSync())
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.False(t, s.IsRunning())
}

func TestTriggerSync_CycleRunsWithoutDeadline(t *testing.T) {
	runner := &blockingRunner{}
	s := NewScheduler(runner, time.Hour, quietLogger())

	require.NoError(t, s.TriggerSync())
	assert.False(t, runner.hadDeadline.Load())
}

func TestTriggerSync_RefusedWhileRunning(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	s := NewScheduler(runner, time.Hour, quietLogger())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- s.TriggerSync()
	}()

	<-started
	// Wait for the goroutine to enter the running state.
	require.Eventually(t, s.IsRunning, time.Second, time.Millisecond)

	err := s.TriggerSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestRunCycle_OverlapSkipped(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	s := NewScheduler(runner, time.Hour, quietLogger())

	go s.runCycle()
	require.Eventually(t, s.IsRunning, time.Second, time.Millisecond)

	// The overlapping cycle is skipped, not queued.
	s.runCycle()
	assert.Equal(t, int32(1), runner.calls.Load())

	close(runner.release)
	require.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, time.Millisecond)
}

func TestStart_Twice(t *testing.T) {
	runner := &blockingRunner{}
	s := NewScheduler(runner, time.Hour, quietLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
}

func TestStop_Idempotent(t *testing.T) {
	runner := &blockingRunner{}
	s := NewScheduler(runner, time.Hour, quietLogger())

	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
}

func TestNextRun(t *testing.T) {
	runner := &blockingRunner{}
	s := NewScheduler(runner, time.Hour, quietLogger())

	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.False(t, s.NextRun().IsZero())
}
