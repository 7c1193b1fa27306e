package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemEngine(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/v1/system/info", h.GetSystemInfo)
	r.GET("/api/v1/system/ping", h.Ping)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	ok := HealthCheck{Name: "database", Ping: func(context.Context) error { return nil }}

	t.Run("healthy", func(t *testing.T) {
		h := NewSystemHandler("Shopping Cart", "1.0.0", nil, ok,
			HealthCheck{Name: "redis", Ping: func(context.Context) error { return nil }})

		w := doJSON(newSystemEngine(h), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "healthy", got.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, got.Checks)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewSystemHandler("Shopping Cart", "1.0.0", nil, ok,
			HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }})

		w := doJSON(newSystemEngine(h), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var got HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "unhealthy", got.Status)
		assert.Equal(t, "ok", got.Checks["database"])
		assert.Equal(t, "error", got.Checks["redis"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	h := NewSystemHandler("Shopping Cart", "1.2.3", clock)
	clock.Advance(90 * time.Minute)

	w := doJSON(newSystemEngine(h), http.MethodGet, "/api/v1/system/info", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got SystemInfoResponse
	resp := decodeData(t, w, &got)
	assert.True(t, resp.Success)
	assert.Equal(t, "Shopping Cart", got.Name)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "1h30m0s", got.Uptime)
	assert.NotEmpty(t, got.GoVersion)
}

func TestSystemHandler_Ping(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	h := NewSystemHandler("Shopping Cart", "1.0.0", clock)

	w := doJSON(newSystemEngine(h), http.MethodGet, "/api/v1/system/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got PingResponse
	decodeData(t, w, &got)
	assert.Equal(t, "pong", got.Message)
	assert.Equal(t, "2025-03-01T12:00:00Z", got.Timestamp)
}
