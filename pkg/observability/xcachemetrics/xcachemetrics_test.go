package xcachemetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

var _ StatsSource = (*xengine.Cache)(nil)

func newTestCache(t *testing.T) *xengine.Cache {
	t.Helper()
	c, err := xengine.New(xengine.WithCapacity(8))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Destroy() })
	return c
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			found[m.Name] = m
		}
	}
	return found
}

func gaugeInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "metric %s is not an int64 gauge", m.Name)
	require.Len(t, data.DataPoints, 1)
	return data.DataPoints[0].Value
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	require.Len(t, data.DataPoints, 1)
	return data.DataPoints[0].Value
}

func TestRegister_NilSource_ReturnsError(t *testing.T) {
	_, err := Register(nil)
	assert.ErrorIs(t, err, ErrNilSource)
}

func TestRegister_ReportsSizeAndCounters(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	c.Delete("b")

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	reg, err := Register(c, WithMeterProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	metrics := collect(t, reader)

	assert.Equal(t, int64(1), gaugeInt64(t, metrics[metricEntries]))
	assert.Equal(t, int64(8), gaugeInt64(t, metrics[metricCapacity]))
	assert.Positive(t, gaugeInt64(t, metrics[metricMemory]))
	assert.Equal(t, int64(1), sumInt64(t, metrics[metricHits]))
	assert.Equal(t, int64(1), sumInt64(t, metrics[metricMisses]))
	assert.Equal(t, int64(2), sumInt64(t, metrics[metricSets]))
	assert.Equal(t, int64(1), sumInt64(t, metrics[metricDeletes]))

	rate, ok := metrics[metricHitRate].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, rate.DataPoints, 1)
	assert.InDelta(t, 0.5, rate.DataPoints[0].Value, 1e-9)
}

func TestRegister_WithCacheName_TagsDataPoints(t *testing.T) {
	c := newTestCache(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	reg, err := Register(c, WithMeterProvider(provider), WithCacheName("sessions"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	metrics := collect(t, reader)
	data, ok := metrics[metricEntries].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)

	name, ok := data.DataPoints[0].Attributes.Value(attribute.Key("cache.name"))
	require.True(t, ok)
	assert.Equal(t, "sessions", name.AsString())
}

func TestRegistration_Unregister_StopsCollection(t *testing.T) {
	c := newTestCache(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	reg, err := Register(c, WithMeterProvider(provider))
	require.NoError(t, err)

	require.NoError(t, reg.Unregister())
	require.NoError(t, reg.Unregister()) // 幂等

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Gauge[int64]:
				assert.Empty(t, data.DataPoints)
			case metricdata.Sum[int64]:
				assert.Empty(t, data.DataPoints)
			}
		}
	}
}
