package server

import (
	"net/http"

	"reid-dashboard/internal/config"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/handlers"
	"reid-dashboard/internal/middleware"
	"reid-dashboard/internal/proxy"
	"reid-dashboard/internal/ratelimit"
	"reid-dashboard/internal/views"

	"github.com/gin-gonic/gin"
)

// Deps are the wired services the router mounts
type Deps struct {
	Pages    *handlers.PageHandler
	Admin    *handlers.AdminHandler
	Proxy    *proxy.Handler
	Sessions *dashboard.SessionStore
	Limiter  *ratelimit.RateLimiter
}

// NewRouter builds the dashboard's HTTP handler: HTML pages at the root and
// the JSON API under /api
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logging.LogRequests {
		r.Use(gin.Logger())
	}

	// /api/proxy answers its own preflight
	r.Use(middleware.CORS("/api", "/api/proxy"))

	r.StaticFS("/static", views.Static())

	pages := r.Group("/", handlers.Sessions(deps.Sessions))
	deps.Pages.Register(pages)

	api := r.Group("/api")
	deps.Proxy.Register(api, middleware.RateLimit(deps.Limiter))
	deps.Admin.Register(api)

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})
	return r
}
