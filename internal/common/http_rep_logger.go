package common

import (
	"net/http"
	"net/http/httputil"
	"time"

	"infinite-experiment/wayfinder/internal/logging"
)

// loggingTransport dumps outbound request headers and the response status at
// debug level. Bodies are left out; dataset payloads run to megabytes.
type loggingTransport struct {
	base http.RoundTripper
}

// NewLoggingTransport wraps base (http.DefaultTransport when nil)
func NewLoggingTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	LogHTTPRequest(req)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logging.Debug("HTTP request failed", "url", req.URL.Redacted(), "error", err)
		return nil, err
	}
	logging.Debug("HTTP response",
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func LogHTTPRequest(req *http.Request) {
	if !logging.DebugEnabled() {
		return
	}
	dump, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		logging.Debug("Failed to dump HTTP request", "error", err)
		return
	}
	logging.Debug("HTTP request dump", "request", string(dump))
}
