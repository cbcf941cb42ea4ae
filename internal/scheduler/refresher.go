package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nbu-currency/internal/domain/model"
	"nbu-currency/internal/metrics"
	"nbu-currency/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RateSource is the part of the bank the refresher drives.
type RateSource interface {
	RefreshRates(ctx context.Context) error
	Snapshot() model.Snapshot
}

// Refresher reloads the rate table on a cron schedule. A run that is still
// in progress when the next one is due causes that next run to be skipped.
type Refresher struct {
	source   RateSource
	schedule string
	metrics  *metrics.Metrics
	log      *logger.Logger

	cron    *cron.Cron
	job     cron.Job
	ctx     context.Context
	cancel  context.CancelFunc
	initial sync.WaitGroup
}

func NewRefresher(source RateSource, schedule string, m *metrics.Metrics, log *logger.Logger) *Refresher {
	r := &Refresher{
		source:   source,
		schedule: schedule,
		metrics:  m,
		log:      log.With("component", "refresher"),
		ctx:      context.Background(),
	}

	cl := cronLogger{log: r.log}
	r.cron = cron.New(cron.WithLogger(cl))
	r.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(r.refresh))
	return r
}

// Start schedules the refresh job and runs it once right away. Jobs run
// with a context derived from ctx that is cancelled by Stop.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if _, err := r.cron.AddJob(r.schedule, r.job); err != nil {
		r.cancel()
		return fmt.Errorf("scheduling rate refresh %q: %w", r.schedule, err)
	}

	r.initial.Add(1)
	go func() {
		defer r.initial.Done()
		r.job.Run()
	}()

	r.cron.Start()
	r.log.Info("Rate refresher started", "schedule", r.schedule)
	return nil
}

// Stop cancels in-flight refreshes and waits for them to return.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.cron.Stop().Done()
	r.initial.Wait()
	r.log.Info("Rate refresher stopped")
}

func (r *Refresher) refresh() {
	start := time.Now()
	err := r.source.RefreshRates(r.ctx)
	if err != nil {
		r.log.Error("Failed to refresh rates", "error", err, "duration", time.Since(start))
		r.metrics.ObserveRefresh(err, time.Time{}, time.Time{})
		return
	}

	snap := r.source.Snapshot()
	r.metrics.ObserveRefresh(nil, snap.LastUpdated, snap.RatesAsOf)
	r.log.Info("Rates refreshed", "rates_as_of", snap.RatesAsOf, "duration", time.Since(start))
}

// cronLogger routes cron's own messages into the service logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
