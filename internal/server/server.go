package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wastenot/internal/config"
	"wastenot/internal/middleware"
	"wastenot/internal/observability"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// New はミドルウェアとルートを載せたechoを返す
func New(cfg config.Config, logger zerolog.Logger, metrics *observability.Metrics, gatherer prometheus.Gatherer, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Tracing(otel.GetTracerProvider()))
	e.Use(middleware.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	RegisterRoutes(e, cfg, gatherer, h)
	return e
}

// Run はctxがキャンセルされるまでサーバーを動かし、止まったらgracefulに閉じる
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
