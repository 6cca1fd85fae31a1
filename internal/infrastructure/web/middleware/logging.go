package middleware

import (
	"net/http"
	"time"

	"coin-prices-service/internal/infrastructure/logging"
)

// LoggingMiddleware writes one access log entry per request through the
// HTTP domain logger. Run it after RequestTracingMiddleware so entries
// carry the request id.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httpLogger := logging.HTTP()

		start := logging.GetStartTime(ctx)
		if start.IsZero() {
			start = time.Now()
		}

		httpLogger.RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), getRemoteIP(r))

		wrapped := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(wrapped, r)

		status := wrapped.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		httpLogger.RequestCompleted(ctx, r.Method, r.URL.Path, status, time.Since(start))
	})
}

// getRemoteIP extracts the real client IP from request
func getRemoteIP(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		return xForwardedFor
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	return r.RemoteAddr
}
