package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coin-prices-service/internal/application/dto"
	"coin-prices-service/internal/infrastructure/config"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/metrics"
)

// RateLimitMiddleware limits requests per client IP
type RateLimitMiddleware struct {
	limiter   *RateLimiterCollection
	skipPaths map[string]bool
	enabled   bool
}

// NewRateLimitMiddleware creates the middleware from configuration.
// Probes and metrics are never limited.
func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	skipPaths := map[string]bool{
		"/health":  true,
		"/ready":   true,
		"/metrics": true,
	}

	var limiter *RateLimiterCollection
	if cfg.Enabled {
		limiter = NewRateLimiterCollection(cfg.Capacity, cfg.RefillRate, cfg.RefillPeriod, cfg.CleanupInterval, cfg.ClientTTL)
	}

	return &RateLimitMiddleware{
		limiter:   limiter,
		skipPaths: skipPaths,
		enabled:   cfg.Enabled,
	}
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := ClientIP(r)
		allowed := rlm.limiter.Allow(clientID)
		metrics.RecordRateLimitResult(allowed)

		if !allowed {
			logging.Security().RateLimitExceeded(r.Context(), clientID, r.URL.Path)
			rlm.writeRateLimitError(w, rlm.limiter.RetryAfter(clientID))
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rlm.limiter.Tokens(clientID)))
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the first forwarded address, or the remote host.
func ClientIP(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (rlm *RateLimitMiddleware) writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(dto.DetailTooManyRequests))
}
