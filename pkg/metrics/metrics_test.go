package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic（promauto重复注册会panic）

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInProgress)
	assert.NotNil(t, CheckoutsTotal)
	assert.NotNil(t, CheckoutDuration)
	assert.NotNil(t, CartMutationsTotal)
	assert.NotNil(t, ReviewMutationsTotal)
	assert.NotNil(t, OrderTransitionsTotal)
	assert.NotNil(t, EventsPublishedTotal)
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	before := getCounterVecValue(t, CheckoutsTotal, "success")
	IncCounterVec(CheckoutsTotal, "success")
	IncCounterVec(CheckoutsTotal, "success")
	IncCounterVec(CheckoutsTotal, "empty_cart")

	assert.Equal(t, before+2, getCounterVecValue(t, CheckoutsTotal, "success"))
}

func TestGauge(t *testing.T) {
	InitMetrics()

	base := getGaugeValue(t, HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	assert.Equal(t, base+2, getGaugeValue(t, HTTPRequestsInProgress))

	DecGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, base, getGaugeValue(t, HTTPRequestsInProgress))
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	before := getHistogramCount(t, CheckoutDuration)
	ObserveHistogram(CheckoutDuration, 0.02)
	ObserveHistogram(CheckoutDuration, 0.3)
	assert.Equal(t, before+2, getHistogramCount(t, CheckoutDuration))
}

func TestNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounterVec(nil, "x")
		ObserveHistogram(nil, 1)
		ObserveHistogramVec(nil, 1, "GET", "/")
		IncGauge(nil)
		DecGauge(nil)
	})
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counterVec.WithLabelValues(labels...).Write(&metric))
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleCount()
}
