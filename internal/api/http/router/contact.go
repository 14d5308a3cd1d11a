package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/willsigmon/boppa/internal/api/http/handler"
	"github.com/willsigmon/boppa/internal/api/http/middleware"
)

func (r *Router) registerContactRoutes(api fiber.Router, h *handler.ContactHandler) {
	var limit fiber.Handler = func(c fiber.Ctx) error { return c.Next() }
	if r.p.Cfg.RateLimit.Enabled {
		limit = middleware.NewSubmissionLimiter(r.p.Cfg.RateLimit, r.p.Redis)
	}
	api.Post("/contact", limit, h.Submit)

	admin := middleware.AdminAuth(r.p.Cfg.Admin.BasicAuth, r.p.UserSvc)
	api.Get("/contact", admin, h.List)
	api.Get("/contact/:id", admin, h.Get)
}
