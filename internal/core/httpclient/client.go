package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs outbound requests and counts them per host.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Metrics receives one sample per request. May be nil.
	Metrics *metrics.Metrics
}

// RoundTrip executes the request and logs details. Headers are never logged.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	l := logger.FromContext(req.Context())

	l.Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		lrt.Metrics.OutboundRequest(req.URL.Host, "error")
		l.Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	lrt.Metrics.OutboundRequest(req.URL.Host, strconv.Itoa(resp.StatusCode))
	l.Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return NewInstrumentedClient(timeout, nil)
}

// NewInstrumentedClient returns an http.Client that also reports outbound call metrics.
func NewInstrumentedClient(timeout time.Duration, m *metrics.Metrics) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
			Metrics: m,
		},
		Timeout: timeout,
	}
}
