package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/scheduler"
	"github.com/osse101/EcoRewards_Go/internal/worker"
)

// Workers are the background loops started alongside the server
type Workers struct {
	Sweep     *worker.SweepWorker
	Pool      *worker.Pool
	Scheduler *scheduler.Scheduler
}

// StartWorkers starts the expiration sweep and the scheduled daily pool pre-warm
func StartWorkers(cfg *config.Config, repos *Repositories, ec *EngineComponents, clk clock.Clock) *Workers {
	w := &Workers{
		Sweep: worker.NewSweepWorker(ec.Engine, cfg.SweepInterval),
		Pool:  worker.NewPool(WorkerPoolSize, WorkerQueueSize),
	}
	w.Pool.Start()
	w.Sweep.Start()

	w.Scheduler = scheduler.New(w.Pool)
	w.Scheduler.Schedule(cfg.PrewarmInterval,
		worker.NewPrewarmJob(repos.Progress, ec.Generator, worker.DefaultPrewarmLookback, clk.Now),
		true)

	slog.Info(LogMsgWorkersStarted, "sweep_interval", cfg.SweepInterval, "prewarm_interval", cfg.PrewarmInterval)
	return w
}

// Shutdown stops scheduling, then drains the pool and the sweep worker
func (w *Workers) Shutdown(ctx context.Context) {
	w.Scheduler.Stop()
	w.Pool.Stop()
	if err := w.Sweep.Shutdown(ctx); err != nil {
		slog.Error(LogMsgSweepWorkerShutdownFailed, "error", err)
	}
}
