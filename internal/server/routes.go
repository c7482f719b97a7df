package server

import (
	"net/http"

	"wastenot/internal/config"
	"wastenot/internal/handler"
	"wastenot/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Products  *handler.ProductHandler
	Listings  *handler.ListingHandler
	Claims    *handler.ClaimHandler
	Pickups   *handler.PickupHandler
	Analytics *handler.AnalyticsHandler
}

// 認証なし: /healthz, /metrics。それ以外はブランチJWT必須
func RegisterRoutes(e *echo.Echo, cfg config.Config, gatherer prometheus.Gatherer, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	g := e.Group("")
	g.Use(middleware.AuthJWT(cfg))

	h.Products.RegisterRoutes(g)
	h.Listings.RegisterRoutes(g)
	h.Claims.RegisterRoutes(g)
	h.Pickups.RegisterRoutes(g)
	h.Analytics.RegisterRoutes(g)
}
