package middleware

import (
	"context"
	"net/http"
	"runtime/pprof"
	"testing"

	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestTracing_TagsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc, _ := newTestJWT(t)
	r := gin.New()
	r.Use(RequestID(), Tracing(TracingConfig{ServiceName: "cart-test", Enabled: true}), SpanErrorMarker())
	authed := r.Group("/", JWTAuthMiddleware(svc), TracingAttributeInjector())
	authed.GET("/requests/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	doRequest(r, http.MethodGet, "/requests/5", issueToken(t, svc, 42, false))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /requests/:id", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Not Found", span.Status().Description)
	assert.Contains(t, span.Attributes(), attribute.Int64("user_id", 42))
	assert.Contains(t, span.Attributes(), attribute.Int64("character_id", 9001))
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(TracingConfig{Enabled: false}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "").Code)
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader)

	r := gin.New()
	r.Use(HTTPMetrics(mp, zap.NewNop()))
	r.GET("/requests/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	doRequest(r, http.MethodGet, "/requests/1", "")
	doRequest(r, http.MethodGet, "/requests/2", "")
	doRequest(r, http.MethodGet, "/missing", "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
				counts[route.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), counts["/requests/:id"])
	assert.Equal(t, int64(1), counts["unknown"])
}

func TestHTTPMetrics_DisabledProvider(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(HTTPMetrics(mp, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "").Code)
}

func TestProfiling_LabelsRequests(t *testing.T) {
	r := gin.New()
	r.Use(Profiling(DefaultProfilingConfig()))
	var route, healthRoute string
	var healthLabelled bool
	r.GET("/api/v1/shopping-cart/requests/:id", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
	})
	r.GET("/health", func(c *gin.Context) {
		healthRoute, healthLabelled = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
	})

	doRequest(r, http.MethodGet, "/api/v1/shopping-cart/requests/3", "")
	doRequest(r, http.MethodGet, "/health", "")

	assert.Equal(t, "/api/v1/shopping-cart/requests/:id", route)
	assert.False(t, healthLabelled)
	assert.Empty(t, healthRoute)
}
