package api

import (
	"owidtrends/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// NewServer wires the middleware stack and routes for h.
func NewServer(h *Handler, cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.Logger.SetLevel(cfg.Level())

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))

	h.RegisterRoutes(e)
	return e
}
