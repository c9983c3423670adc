package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/service"
)

type pingStub struct {
	err error
}

func (p pingStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, pingStub{})
	c, w := newGinContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandlerReadyDatabaseDown(t *testing.T) {
	handler := NewMetricsHandler(nil, pingStub{err: errors.New("connection refused")})
	c, w := newGinContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveCalculation("stats", 0)
	handler := NewMetricsHandler(metrics, nil)
	c, w := newGinContext(http.MethodGet, "/metrics/summary", nil)

	handler.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeEnvelope(t, w)
	assert.NotNil(t, payload["data"])
}

func TestMetricsHandlerPrometheusWithoutService(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, _ := newGinContext(http.MethodGet, "/metrics", nil)

	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
