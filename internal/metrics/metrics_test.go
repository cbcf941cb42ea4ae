package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveConversion(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveConversion(nil)
	m.ObserveConversion(nil)
	m.ObserveConversion(errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(ResultError)))
}

func TestMetrics_ObserveRefresh(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	asOf := time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)
	lastUpdated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m.ObserveRefresh(errors.New("feed down"), time.Time{}, time.Time{})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(ResultError)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RatesAsOf))

	m.ObserveRefresh(nil, lastUpdated, asOf)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(asOf.Unix()), testutil.ToFloat64(m.RatesAsOf))
	assert.Equal(t, float64(lastUpdated.Unix()), testutil.ToFloat64(m.RatesLastUpdated))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
