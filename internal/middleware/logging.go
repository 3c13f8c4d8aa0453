package middleware

import (
	"bytes"
	"net/http"
	"time"

	"infinite-experiment/wayfinder/internal/logging"
)

// maxLoggedBody caps how much of a response body is captured for debug logs
const maxLoggedBody = 2048

type respLogger struct {
	http.ResponseWriter
	status int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	if room := maxLoggedBody - l.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		l.buf.Write(b[:room])
	}
	return l.ResponseWriter.Write(b)
}

// Logging writes request and response detail at debug level. It is only
// mounted outside production.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.WithRequest(GetRequestID(r.Context()), r.URL.Path)
		logger.Debugw("→ request",
			"method", r.Method,
			"url", r.URL.String(),
			"user_agent", r.UserAgent(),
		)

		// wrap response
		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: &bytes.Buffer{}}

		start := time.Now()
		next.ServeHTTP(lw, r)
		dur := time.Since(start)

		logger.Debugw("← response",
			"status", lw.status,
			"duration", dur.String(),
			"body", lw.buf.String(),
		)
	})
}
