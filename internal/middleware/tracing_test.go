package middleware_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wastenot/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	incomingTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	traceparent     = "00-" + incomingTraceID + "-00f067aa0ba902b7-01"
)

// =====================
// helper
// =====================

func newTraced(tp trace.TracerProvider, buf *bytes.Buffer, seen *string) *echo.Echo {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	e := echo.New()
	e.Use(middleware.Tracing(tp))
	e.Use(middleware.RequestLogger(zerolog.New(buf)))
	e.GET("/items/:id", func(c echo.Context) error {
		*seen = trace.SpanContextFromContext(c.Request().Context()).TraceID().String()
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})
	return e
}

// =====================
// traceparent の引き継ぎ
// =====================

func TestTracing_IncomingTraceparentReachesRequestLog(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	e := newTraced(noop.NewTracerProvider(), &buf, &seen)

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("traceparent", traceparent)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, incomingTraceID, seen)
	assert.Contains(t, buf.String(), `"trace_id":"`+incomingTraceID+`"`)
}

func TestTracing_NoHeaderNoopProvider(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	e := newTraced(noop.NewTracerProvider(), &buf, &seen)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, buf.String(), "trace_id")
}

// =====================
// サーバースパン
// =====================

func TestTracing_RecordsServerSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	var buf bytes.Buffer
	var seen string
	e := newTraced(tp, &buf, &seen)

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("traceparent", traceparent)
	e.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "GET /items/:id", s.Name())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind())
	assert.Equal(t, incomingTraceID, s.SpanContext().TraceID().String())
	assert.True(t, s.Parent().IsRemote())
	assert.Contains(t, s.Attributes(), attribute.Int("http.status_code", http.StatusNoContent))
	assert.Contains(t, s.Attributes(), attribute.String("http.route", "/items/:id"))

	//SDKがあればヘッダなしでもtrace_idがログに載る
	buf.Reset()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/2", nil))
	assert.Contains(t, buf.String(), `"trace_id":"`+seen+`"`)
	assert.NotEqual(t, incomingTraceID, seen)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	var buf bytes.Buffer
	var seen string
	e := newTraced(tp, &buf, &seen)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", http.StatusInternalServerError))
}
