package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateRequestsTotal prometheus.Counter
	ConversionsTotal  *prometheus.CounterVec
	RefreshesTotal    *prometheus.CounterVec

	RatesAsOf        prometheus.Gauge
	RatesLastUpdated prometheus.Gauge
}

// NewMetrics registers the service collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RateRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_requests_total",
				Help: "Total number of exchange rate requests",
			},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Total number of currency conversions by result",
			},
			[]string{"result"},
		),

		RefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refreshes_total",
				Help: "Total number of rate table refreshes by result",
			},
			[]string{"result"},
		),

		RatesAsOf: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rates_as_of_timestamp_seconds",
				Help: "As-of time of the current rate table",
			},
		),

		RatesLastUpdated: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rates_last_updated_timestamp_seconds",
				Help: "Wall-clock time of the last accepted rate table",
			},
		),
	}
}

// ObserveConversion counts a conversion outcome.
func (m *Metrics) ObserveConversion(err error) {
	if err != nil {
		m.ConversionsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.ConversionsTotal.WithLabelValues(ResultSuccess).Inc()
}

// ObserveRefresh counts a refresh outcome and, on success, exports the
// table timestamps.
func (m *Metrics) ObserveRefresh(err error, lastUpdated, asOf time.Time) {
	if err != nil {
		m.RefreshesTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.RefreshesTotal.WithLabelValues(ResultSuccess).Inc()
	m.RatesLastUpdated.Set(float64(lastUpdated.UnixNano()) / float64(time.Second))
	m.RatesAsOf.Set(float64(asOf.Unix()))
}
