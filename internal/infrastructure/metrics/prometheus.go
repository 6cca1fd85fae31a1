package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the coin prices service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_prices_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_prices_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"backend", "operation", "result"}, // result: hit/miss/success/error
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_prices_cache_operation_duration_seconds",
			Help:    "Cache operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"backend", "operation"},
	)

	// Exchange Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_external_api_requests_total",
			Help: "Total number of exchange API requests",
		},
		[]string{"exchange", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_prices_external_api_request_duration_seconds",
			Help:    "Exchange API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"exchange"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_external_api_retries_total",
			Help: "Total number of exchange API retry attempts",
		},
		[]string{"exchange", "attempt"},
	)

	// Aggregation Metrics
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_aggregations_total",
			Help: "Total number of parse passes by outcome",
		},
		[]string{"quote_coin", "result"}, // result: success/fetch_error/parse_error/error
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_prices_aggregation_duration_seconds",
			Help:    "Duration of a full parse pass in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"quote_coin"},
	)

	PricePoints = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_prices_price_points",
			Help: "Number of price points produced by the last successful parse",
		},
		[]string{"quote_coin"},
	)

	PointWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_point_write_failures_total",
			Help: "Price points that could not be written to the cache",
		},
		[]string{"quote_coin"},
	)

	// Rate Limiting Metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_prices_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	// System Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_prices_application_info",
			Help: "Application information",
		},
		[]string{"version", "cache_backend"},
	)
)

// Helper functions for recording metrics

func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

func RecordCacheOperation(backend, operation, result string, duration float64) {
	CacheOperationsTotal.WithLabelValues(backend, operation, result).Inc()
	CacheOperationDuration.WithLabelValues(backend, operation).Observe(duration)
}

// RecordExternalAPICall uses status code 0 for transport failures.
func RecordExternalAPICall(exchange string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(exchange, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(exchange).Observe(duration)
}

func RecordExternalAPIRetry(exchange string, attempt uint) {
	ExternalAPIRetries.WithLabelValues(exchange, strconv.FormatUint(uint64(attempt), 10)).Inc()
}

func RecordAggregation(quoteCoin, result string, duration float64, points int) {
	AggregationsTotal.WithLabelValues(quoteCoin, result).Inc()
	AggregationDuration.WithLabelValues(quoteCoin).Observe(duration)
	if result == "success" {
		PricePoints.WithLabelValues(quoteCoin).Set(float64(points))
	}
}

func RecordPointWriteFailure(quoteCoin string) {
	PointWriteFailures.WithLabelValues(quoteCoin).Inc()
}

func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitHits.WithLabelValues(result).Inc()
}

func SetApplicationInfo(version, cacheBackend string) {
	ApplicationInfo.WithLabelValues(version, cacheBackend).Set(1)
}
