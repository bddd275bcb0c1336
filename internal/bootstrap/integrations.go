package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/feed"
	"github.com/osse101/EcoRewards_Go/internal/handler"
	"github.com/osse101/EcoRewards_Go/internal/missionpool"
	"github.com/osse101/EcoRewards_Go/internal/notification"
	"github.com/osse101/EcoRewards_Go/internal/repository"
)

// Integrations are the optional external collaborators. Each falls back to an
// in-process implementation when its configuration is absent.
type Integrations struct {
	PoolCache missionpool.Cache
	Feed      feed.Sink
	Notifier  notification.Sender

	// Redis is non-nil when the shared pool cache is in use; it also gates readiness
	Redis *redis.Client

	closers []io.Closer
}

// InitializeIntegrations dials Redis, Kafka and FCM when configured.
// A configured integration that cannot be reached is an error.
func InitializeIntegrations(ctx context.Context, cfg *config.Config, bus event.Bus, tokens repository.DeviceTokenStore, clk clock.Clock) (*Integrations, error) {
	in := &Integrations{}

	if cfg.RedisAddr != "" {
		client, err := missionpool.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		in.Redis = client
		in.PoolCache = missionpool.NewRedisCache(client)
		in.closers = append(in.closers, client)
		slog.Info(LogMsgIntegrationEnabled, "integration", "redis", "addr", cfg.RedisAddr)
	} else {
		in.PoolCache = missionpool.NewLRUCache(PoolCacheSize, 24*time.Hour)
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := feed.NewKafkaSink(cfg.ServiceName, cfg.KafkaBrokers, cfg.KafkaFeedTopic)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.Feed = sink
		in.closers = append(in.closers, sink)
		slog.Info(LogMsgIntegrationEnabled, "integration", "kafka", "topic", cfg.KafkaFeedTopic)
	} else {
		in.Feed = feed.NewBusSink(bus, clk)
	}

	if cfg.FCMCredentialsFile != "" {
		sender, err := notification.NewFCMSender(ctx, cfg.FCMCredentialsFile, tokens)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.Notifier = sender
		slog.Info(LogMsgIntegrationEnabled, "integration", "fcm")
	} else {
		in.Notifier = notification.LogSender{}
	}

	return in, nil
}

// Close releases every opened client. Errors are logged.
func (in *Integrations) Close() {
	for _, c := range in.closers {
		if err := c.Close(); err != nil {
			slog.Error(LogMsgIntegrationCloseFailed, "error", err)
		}
	}
	in.closers = nil
}

// ReadinessChecks returns the pingers that gate /readyz
func (in *Integrations) ReadinessChecks() []handler.Pinger {
	if in.Redis == nil {
		return nil
	}
	return []handler.Pinger{redisPinger{client: in.Redis}}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
