package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nbu-currency/internal/domain/model"
	"nbu-currency/internal/metrics"
	"nbu-currency/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
	asOf    time.Time
}

func (f *fakeSource) RefreshRates(ctx context.Context) error {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakeSource) Snapshot() model.Snapshot {
	return model.Snapshot{
		LastUpdated: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RatesAsOf:   f.asOf,
	}
}

func TestRefresher_RunsImmediately(t *testing.T) {
	source := &fakeSource{asOf: time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	r := NewRefresher(source, "@every 1h", m, logger.NewNop())

	require.NoError(t, r.Start(context.Background()))
	r.Stop()

	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, float64(source.asOf.Unix()), testutil.ToFloat64(m.RatesAsOf))
	assert.Equal(t, float64(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()), testutil.ToFloat64(m.RatesLastUpdated))
}

func TestRefresher_CountsFailures(t *testing.T) {
	source := &fakeSource{err: errors.New("feed down")}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	r := NewRefresher(source, "@every 1h", m, logger.NewNop())

	require.NoError(t, r.Start(context.Background()))
	r.Stop()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.ResultError)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.ResultSuccess)))
}

func TestRefresher_SkipsWhileRunning(t *testing.T) {
	source := &fakeSource{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r := NewRefresher(source, "@every 1h", metrics.NewMetrics(prometheus.NewRegistry()), logger.NewNop())

	require.NoError(t, r.Start(context.Background()))
	<-source.started

	r.job.Run()
	assert.Equal(t, int32(1), source.calls.Load(), "overlapping run must be skipped")

	close(source.release)
	r.Stop()
}

func TestRefresher_StopCancelsInFlight(t *testing.T) {
	source := &fakeSource{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	r := NewRefresher(source, "@every 1h", m, logger.NewNop())

	require.NoError(t, r.Start(context.Background()))
	<-source.started

	r.Stop()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.ResultError)))
}

func TestRefresher_InvalidSchedule(t *testing.T) {
	r := NewRefresher(&fakeSource{}, "not a schedule", metrics.NewMetrics(prometheus.NewRegistry()), logger.NewNop())

	assert.Error(t, r.Start(context.Background()))
}
