package middleware

import (
	"time"

	"wastenot/internal/observability"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// リクエストごとのロガーをcontextに入れて、終わったら1行出す。
// usecase側は zerolog.Ctx(ctx) で同じロガーを使う。
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger := observability.WithTrace(req.Context(), base).With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := logger.Info()
			if status >= 500 {
				ev = logger.Error().Err(err)
			} else if status >= 400 {
				ev = logger.Warn()
			}
			ev.Int("status", status).
				Dur("latency", time.Since(start)).
				Str("branch_id", BranchID(c)).
				Msg("request")
			return nil
		}
	}
}
