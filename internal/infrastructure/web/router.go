package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"coin-prices-service/internal/application/dto"
	_ "coin-prices-service/internal/docs"
	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/config"
	"coin-prices-service/internal/infrastructure/metrics"
	"coin-prices-service/internal/infrastructure/ratelimit"
	"coin-prices-service/internal/infrastructure/web/handlers"
	"coin-prices-service/internal/infrastructure/web/middleware"
)

// RouterOptions holds what the HTTP layer needs from the rest of the service
type RouterOptions struct {
	Query          interfaces.PriceQuery
	Cache          interfaces.Cache
	APIPrefix      string
	DefaultQuote   string
	RequestTimeout time.Duration
	RateLimit      config.RateLimitConfig
}

// NewRouter wires handlers and middleware. Middleware runs in order:
// tracing, timeout, access log, metrics, rate limit.
func NewRouter(opts RouterOptions) *mux.Router {
	router := mux.NewRouter()

	pricesHandler := handlers.NewPricesHandler(opts.Query, opts.DefaultQuote)
	healthHandler := handlers.NewHealthHandler(opts.Cache)
	limiter := ratelimit.NewRateLimitMiddleware(opts.RateLimit)

	router.Use(
		middleware.RequestTracingMiddleware,
		middleware.RequestTimeoutMiddleware(opts.RequestTimeout),
		middleware.LoggingMiddleware,
		metrics.HTTPMetricsMiddleware,
		limiter.Handler,
	)

	api := router
	if prefix := strings.TrimSuffix(opts.APIPrefix, "/"); prefix != "" {
		api = router.PathPrefix(prefix).Subrouter()
	}
	api.HandleFunc("/prices", pricesHandler.GetAllPrices).Methods(http.MethodGet)
	api.HandleFunc("/prices/{coinName}", pricesHandler.GetCoinPrices).Methods(http.MethodGet)

	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/ready", healthHandler.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(detail))
}
