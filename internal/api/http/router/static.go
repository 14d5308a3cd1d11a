package router

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/static"
)

// registerStaticRoutes serves the built front end. Paths that match no file
// get index.html so the client router can render /services, /contact, etc.
func (r *Router) registerStaticRoutes(app *fiber.App) {
	dir := r.p.Cfg.Server.StaticDir
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")

	app.Use("/", static.New(dir, static.Config{
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api"
		},
		NotFoundHandler: func(c fiber.Ctx) error {
			c.Status(fiber.StatusOK)
			return c.SendFile(index)
		},
	}))
}
