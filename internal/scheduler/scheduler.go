// Package scheduler enqueues recurring jobs onto a worker pool.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/worker"
)

// Enqueuer accepts jobs without blocking
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	pool Enqueuer
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New creates a new scheduler
func New(pool Enqueuer) *Scheduler {
	return &Scheduler{
		pool: pool,
		quit: make(chan struct{}),
	}
}

// Schedule enqueues job every interval. With runNow the first run is enqueued immediately.
// A tick that finds the queue full is skipped rather than delaying the ticker.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job, runNow bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if runNow {
			s.pool.Enqueue(job)
		}

		for {
			select {
			case <-ticker.C:
				if !s.pool.Enqueue(job) {
					logger.FromContext(context.Background()).Warn(LogMsgTickSkipped, "job", job.Name())
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}

// LogMsgTickSkipped is logged when a tick could not enqueue its job
const LogMsgTickSkipped = "Scheduled job skipped, worker queue full"
