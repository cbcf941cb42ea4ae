package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nbu-currency/internal/adapter/feed"
	httpRouter "nbu-currency/internal/adapter/http"
	"nbu-currency/internal/adapter/store"
	"nbu-currency/internal/config"
	"nbu-currency/internal/metrics"
	"nbu-currency/internal/scheduler"
	"nbu-currency/internal/service"
	"nbu-currency/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logOpts []logger.Option
	if cfg.Log.File != "" {
		logOpts = append(logOpts,
			logger.WithFile(cfg.Log.File),
			logger.WithRotation(cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays),
		)
	}
	log := logger.NewLogger(cfg.Log.Level, logOpts...)
	defer log.Sync()

	log.Info("Starting currency conversion service", "base", cfg.Bank.Base, "feed_url", cfg.Feed.URL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	rates := store.NewRateStore(cfg.Bank.Base, log, store.WithRequired(cfg.Bank.Required...))
	fetcher := feed.NewFetcher(cfg.Feed.URL, cfg.Feed.Timeout, log)
	bank := service.NewBank(rates, fetcher, feed.NewXMLParser(), cfg.Feed.CachePath, log)

	handler := httpRouter.NewHandler(bank, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, reg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	refresher := scheduler.NewRefresher(bank, cfg.Feed.RefreshSchedule, appMetrics, log)
	if err := refresher.Start(context.Background()); err != nil {
		log.Error("Failed to start rate refresher", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
