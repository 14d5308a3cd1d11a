package app

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/constants"
	"github.com/willsigmon/boppa/pkg/database"
	"github.com/willsigmon/boppa/pkg/email"
	"github.com/willsigmon/boppa/pkg/events"
	"github.com/willsigmon/boppa/pkg/observability"
	redispkg "github.com/willsigmon/boppa/pkg/redis"
	"github.com/willsigmon/boppa/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideEntDriver),
	fx.Provide(ProvideStorage),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvidePasswordHasher),
	fx.Provide(ProvideOTel),
)

func ProvideEntDriver(lc fx.Lifecycle, cfg *config.Config) (*entsql.Driver, error) {
	drv, err := database.NewEntDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			slog.Info("running database migrations", "driver", cfg.Database.Driver)
			return database.Migrate(ctx, drv, schema.Tables...)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return drv.Close()
		},
	})
	return drv, nil
}

func ProvideStorage(drv *entsql.Driver, cfg *config.Config) storage.Storage {
	return storage.NewDatabaseStorage(database.WithQueryLogging(drv, cfg.Database.Logging.Enabled))
}

// ProvideRedis returns a nil client when no address is configured.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		slog.Info("redis not configured, rate limiter uses in-memory storage")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := redispkg.NewRedisFromCentral(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideNatsClient returns a nil connection when no URL is configured.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Info("nats not configured, contact events are dropped")
		return nil, nil
	}

	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(constants.AppName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(cfg *config.Config, nc *nats.Conn) events.Publisher {
	if nc == nil {
		return events.NopPublisher{}
	}
	return events.NewNATSPublisher(nc, subjectPrefix(cfg))
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

func subjectPrefix(cfg *config.Config) string {
	if cfg.Nats.SubjectPrefix != "" {
		return cfg.Nats.SubjectPrefix
	}
	return constants.SubjectPrefix
}
