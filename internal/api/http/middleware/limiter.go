package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/api/http/handler"
)

const RateLimitedMessage = "Too many requests, please try again later"

// NewSubmissionLimiter limits form submissions per client IP with a sliding
// window. Counters live in Redis when rdb is set so every instance shares
// them, and in process memory otherwise.
func NewSubmissionLimiter(cfg config.RateLimitConfig, rdb *redis.Client) fiber.Handler {
	lc := limiter.Config{
		Max:               cfg.RequestsPerWindow,
		Expiration:        time.Duration(cfg.WindowSeconds) * time.Second,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c fiber.Ctx) string {
			return "contact:" + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			rid, _ := RequestIDFromFiber(c)
			slog.WarnContext(c.Context(), "contact: submission rate limited", "ip", c.IP(), "request_id", rid)
			return handler.Fail(c, fiber.StatusTooManyRequests, RateLimitedMessage)
		},
	}
	if rdb != nil {
		lc.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(lc)
}
