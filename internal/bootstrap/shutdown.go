package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/server"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	Workers            *Workers
	ResilientPublisher *event.ResilientPublisher
	Integrations       *Integrations
	Repositories       *Repositories
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting requests, drain engine deliveries)
// 2. Workers (cancel timers, finish in-flight sweeps and pre-warms)
// 3. Event publisher (flush pending events)
// 4. External clients and the database pool
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Workers != nil {
		c.Workers.Shutdown(ctx)
	}

	if c.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if c.Integrations != nil {
		c.Integrations.Close()
	}
	if c.Repositories != nil {
		c.Repositories.Close()
	}

	slog.Info(LogMsgServerStopped)
}
