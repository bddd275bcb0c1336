package worker

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/progress"
)

// Sweeper is the part of the engine the sweep worker drives
type Sweeper interface {
	SweepExpirations(ctx context.Context) (*progress.SweepResult, error)
}

// SweepWorker runs the expiration sweep on interval boundaries (e.g. every hour on the hour)
type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
	timer    *time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewSweepWorker creates a new SweepWorker
func NewSweepWorker(sweeper Sweeper, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
		shutdown: make(chan struct{}),
	}
}

// Start schedules the first sweep
func (w *SweepWorker) Start() {
	w.scheduleNext()
}

func (w *SweepWorker) scheduleNext() {
	wait := timeUntilNextBoundary(w.now(), w.interval)

	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdown:
		return
	default:
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(wait, func() {
		// wg.Add happens under mu so Shutdown never races a starting sweep
		w.mu.Lock()
		select {
		case <-w.shutdown:
			w.mu.Unlock()
			return
		default:
		}
		w.wg.Add(1)
		w.mu.Unlock()

		w.RunOnce()
		w.wg.Done()
		w.scheduleNext()
	})

	logger.FromContext(context.Background()).Info(LogMsgSweepScheduled, "next_sweep_at", w.now().Add(wait).UTC())
}

// RunOnce performs one sweep synchronously. Errors are logged and the next boundary retries.
func (w *SweepWorker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	log := logger.FromContext(ctx)
	log.Info(LogMsgSweepStarting)

	res, err := w.sweeper.SweepExpirations(ctx)
	if err != nil {
		log.Error(LogMsgSweepFailed, "error", err)
		return
	}
	log.Info(LogMsgSweepCompleted,
		"milestones_expired", res.MilestonesExpired,
		"challenges_expired", res.ChallengesExpired)
}

// Shutdown cancels the pending timer and waits for an in-flight sweep
func (w *SweepWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)

	w.mu.Lock()
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Sweep worker shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn("Sweep worker shutdown timeout, a sweep may still be running")
		return ctx.Err()
	}
}

// timeUntilNextBoundary returns the wait until the next multiple of interval since the Unix epoch
func timeUntilNextBoundary(now time.Time, interval time.Duration) time.Duration {
	next := now.Truncate(interval).Add(interval)
	return next.Sub(now)
}
