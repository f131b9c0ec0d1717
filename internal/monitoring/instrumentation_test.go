package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/roomieradar/roomieradar/internal/interfaces"
)

var _ interfaces.MatchRecorder = (*MatchInstrumentation)(nil)

func newTestProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMatchInstrumentation(t *testing.T) {
	provider, reader := newTestProvider()
	inst, err := NewMatchInstrumentation(provider)
	require.NoError(t, err)
	ctx := context.Background()

	inst.RecordMatchRequest(ctx, 12, 30*time.Millisecond)
	inst.RecordMatchRequest(ctx, 0, time.Millisecond)
	inst.RecordSwipe(ctx, "right", true)
	inst.RecordSwipe(ctx, "right", false)
	inst.RecordSwipe(ctx, "left", false)
	inst.RecordSwipeRetry(ctx)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["match_requests_total"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["swipes_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["mutual_matches_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["swipe_retries_total"]))

	hist, ok := metrics["match_candidates"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(12), hist.DataPoints[0].Sum)

	swipes := metrics["swipes_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, swipes.DataPoints, 3, "one series per direction and outcome")
	for _, dp := range swipes.DataPoints {
		direction, _ := dp.Attributes.Value(attribute.Key("direction"))
		assert.Contains(t, []string{"left", "right"}, direction.AsString())
	}
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider, reader := newTestProvider()
	httpMetrics, err := NewHTTPMetrics(provider)
	require.NoError(t, err)

	r := gin.New()
	r.Use(httpMetrics.GinMiddleware())
	r.GET("/api/chat/:otherId", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chat/u1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chat/u2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	metrics := collect(t, reader)
	requests := metrics["http_requests_total"].Data.(metricdata.Sum[int64])
	routes := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		routes[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"/api/chat/:otherId": 2, "unmatched": 1}, routes)
	assert.Equal(t, int64(0), sumOf(t, metrics["http_active_requests"]))
}
