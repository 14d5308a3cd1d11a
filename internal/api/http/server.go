package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/api/http/handler"
	"github.com/willsigmon/boppa/internal/api/http/middleware"
	"github.com/willsigmon/boppa/internal/api/http/router"
	"github.com/willsigmon/boppa/pkg/constants"
	"github.com/willsigmon/boppa/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg)

	if p.OTel != nil {
		app.Use(observability.FiberMiddleware(observability.MiddlewareConfig{
			ServiceName: p.Cfg.Observability.ServiceName,
			SkipPaths:   skipTracing(p.Cfg),
		}))
	}

	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			slog.Info("HTTP server listening", "addr", addr, "env", p.Cfg.Server.Environment)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp creates the Fiber app with the global middleware stack but no routes.
func NewApp(cfg *config.Config) *fiber.App {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second

	fc := fiber.Config{
		AppName:      constants.AppName,
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitKB * 1024,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	if p := cfg.Server.Proxy; p.Header != "" {
		fc.ProxyHeader = p.Header
		fc.TrustProxy = true
		fc.TrustProxyConfig = fiber.TrustProxyConfig{
			Proxies: p.Trusted,
			Private: p.TrustPrivate,
		}
	}

	app := fiber.New(fc)

	configureGlobalMiddleware(app, cfg)
	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.IsProduction() {
		app.Use(helmet.New())
	}
	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORS.AllowOrigins,
			AllowMethods:     cfg.Server.CORS.AllowMethods,
			AllowHeaders:     cfg.Server.CORS.AllowHeaders,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status} ${latency}\n",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthcheck.LivenessEndpoint || c.Path() == healthcheck.ReadinessEndpoint
		},
	}))
}

func skipTracing(cfg *config.Config) []string {
	paths := []string{
		healthcheck.LivenessEndpoint,
		healthcheck.ReadinessEndpoint,
		healthcheck.StartupEndpoint,
	}
	if cfg.Observability.Metrics.Path != "" {
		paths = append(paths, cfg.Observability.Metrics.Path)
	}
	return paths
}
