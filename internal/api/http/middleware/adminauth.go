package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/basicauth"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/api/http/handler"
	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/service/user"
	"github.com/willsigmon/boppa/pkg/reqctx"
)

const UnauthorizedMessage = "Unauthorized"

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, pass string) (*schema.User, error)
}

// AdminAuth protects the message inbox with HTTP Basic credentials checked
// against the users table. It passes every request through when basic auth
// is disabled.
func AdminAuth(cfg config.BasicAuthConfig, auth Authenticator) fiber.Handler {
	if !cfg.Enabled {
		return func(c fiber.Ctx) error { return c.Next() }
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "boppa admin"
	}

	return basicauth.New(basicauth.Config{
		Realm: realm,
		Authorizer: func(username, pass string, c fiber.Ctx) bool {
			u, err := auth.Authenticate(c.Context(), username, pass)
			if err != nil {
				if !errors.Is(err, user.ErrInvalidCredentials) {
					rid, _ := RequestIDFromFiber(c)
					slog.ErrorContext(c.Context(), "admin auth: authenticate failed", "request_id", rid, "err", err)
				}
				return false
			}
			c.SetContext(reqctx.WithAdminUser(c.Context(), u.Username))
			return true
		},
		Unauthorized: func(c fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+realm+`", charset="UTF-8"`)
			return handler.Fail(c, fiber.StatusUnauthorized, UnauthorizedMessage)
		},
	})
}
