package observability

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics は操作結果とHTTPレイテンシのコレクタ。
type Metrics struct {
	operations  *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// reg に登録する。テストでは prometheus.NewRegistry() を渡す
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wastenot_operations_total",
			Help: "Reservation engine operations by outcome.",
		}, []string{"operation", "outcome"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wastenot_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.operations, m.httpLatency)
	return m
}

// usecase.OutcomeRecorder
func (m *Metrics) Record(operation string, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ルート単位でレイテンシを測る
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpLatency.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
