package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/bootstrap"
	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecorewards: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		return err
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real{}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		_ = publisher.Shutdown(context.Background())
		return err
	}

	integrations, err := bootstrap.InitializeIntegrations(ctx, cfg, bus, repos.Directory, clk)
	if err != nil {
		_ = publisher.Shutdown(context.Background())
		repos.Close()
		return err
	}

	catalog, err := bootstrap.LoadMissionCatalog(cfg)
	if err != nil {
		bootstrap.GracefulShutdown(context.Background(), bootstrap.ShutdownComponents{
			ResilientPublisher: publisher,
			Integrations:       integrations,
			Repositories:       repos,
		})
		return err
	}

	components := bootstrap.BuildEngine(cfg, repos, integrations, publisher, catalog, clk)

	readiness := integrations.ReadinessChecks()
	if repos.DBPool != nil {
		readiness = append(readiness, repos.DBPool)
	}

	srv := server.NewServer(server.Options{
		ServiceName:     cfg.ServiceName,
		Version:         cfg.Version,
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		TrustedProxies:  cfg.TrustedProxies,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		ReadinessChecks: readiness,
	}, components.Engine)

	workers := bootstrap.StartWorkers(cfg, repos, components, clk)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			slog.Error("Server failed", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		Workers:            workers,
		ResilientPublisher: publisher,
		Integrations:       integrations,
		Repositories:       repos,
	})
	return runErr
}
