package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"dropship-reconciler/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound request of a named client.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Name identifies the client in log lines (e.g. "provider").
	Name string
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	target := redact(req.URL)
	log := logger.Get().With(
		zap.String("client", lrt.Name),
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	log.Debug("HTTP Request Started")

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// redact drops the query string and user info, which may carry API keys.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.User = nil
	clean.RawQuery = ""
	clean.Fragment = ""
	return clean.String()
}

// NewClient returns an http.Client with logging middleware.
func NewClient(name string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
			Name:    name,
		},
		Timeout: timeout,
	}
}
