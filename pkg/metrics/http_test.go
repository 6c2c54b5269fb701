package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestCountsByLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/api/equipment", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/equipment", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/api/reservation", 409, 8*time.Millisecond)

	counter := &dto.Metric{}
	require.NoError(t, m.requests.WithLabelValues("GET", "/api/equipment", "200").Write(counter))
	require.Equal(t, 2.0, counter.GetCounter().GetValue())

	counter.Reset()
	require.NoError(t, m.requests.WithLabelValues("POST", "/api/reservation", "409").Write(counter))
	require.Equal(t, 1.0, counter.GetCounter().GetValue())

	histogram := &dto.Metric{}
	require.NoError(t, m.duration.WithLabelValues("GET", "/api/equipment").(prometheus.Histogram).Write(histogram))
	require.Equal(t, uint64(2), histogram.GetHistogram().GetSampleCount())
}

func TestObserveRequestNormalizesEmptyLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("", "", 500, time.Millisecond)

	counter := &dto.Metric{}
	require.NoError(t, m.requests.WithLabelValues("unknown", "unknown", "500").Write(counter))
	require.Equal(t, 1.0, counter.GetCounter().GetValue())
}

func TestNilRegistererDisablesMetrics(t *testing.T) {
	m := NewHTTPMetrics(nil)
	// must not panic with no collectors registered
	m.ObserveRequest("GET", "/health/live", 200, time.Millisecond)

	var unset *HTTPMetrics
	unset.ObserveRequest("GET", "/health/live", 200, time.Millisecond)
}
