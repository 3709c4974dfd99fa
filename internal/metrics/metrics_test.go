package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuth("login", "success")
	c.RecordAuth("login", "success")
	c.RecordAuth("login", "failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authEvents.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.authEvents.WithLabelValues("login", "failure")))
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	e := echo.New()
	e.Use(c.Middleware())
	e.GET("/ok", func(ctx echo.Context) error { return ctx.String(http.StatusOK, "ok") })
	e.GET("/denied", func(ctx echo.Context) error { return echo.NewHTTPError(http.StatusForbidden, "no") })
	e.GET("/metrics", Handler(reg))

	for _, path := range []string{"/ok", "/denied"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `login_http_request_duration_seconds_count{method="GET",route="/ok",status_code="200"} 1`)
	assert.Contains(t, body, `login_http_request_duration_seconds_count{method="GET",route="/denied",status_code="403"} 1`)
}
