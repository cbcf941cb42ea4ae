package feed

import (
	"net/http"
	"time"

	"nbu-currency/pkg/logger"
)

// loggingRoundTripper logs every outgoing feed request.
type loggingRoundTripper struct {
	next http.RoundTripper
	log  *logger.Logger
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := lrt.next.RoundTrip(req)
	if err != nil {
		lrt.log.Error("Feed request failed", "method", req.Method, "url", req.URL.Redacted(), "error", err, "took", time.Since(start))
		return nil, err
	}
	lrt.log.Debug("Feed request", "method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "took", time.Since(start))
	return resp, nil
}
