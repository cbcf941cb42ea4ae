package http

import (
	"fmt"
	"net/http"
	"time"

	"nbu-currency/internal/metrics"
	"nbu-currency/pkg/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

type Router struct {
	handler  *Handler
	log      *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer) *Router {
	return &Router{
		handler:  handler,
		log:      log,
		metrics:  metrics,
		gatherer: gatherer,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		requestID := req.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		duration := time.Since(start)
		r.metrics.HTTPRequestDuration.WithLabelValues(req.URL.Path, req.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(req.URL.Path, req.Method, fmt.Sprintf("%dxx", crw.statusCode/100)).Inc()

		r.log.Info("HTTP request",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/rates", r.handler.GetRatesHandler)
	mux.HandleFunc("GET /api/v1/convert", r.handler.ConvertCurrencyHandler)
	mux.HandleFunc("GET /api/v1/status", r.handler.StatusHandler)
	mux.HandleFunc("POST /api/v1/refresh", r.handler.RefreshHandler)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	rootMux := http.NewServeMux()
	rootMux.Handle("/", r.loggingMiddleware(mux))
	rootMux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	return rootMux
}
