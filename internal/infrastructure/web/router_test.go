package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-prices-service/internal/application/services"
	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/infrastructure/config"
	"coin-prices-service/internal/infrastructure/exchange"
	"coin-prices-service/internal/infrastructure/repositories/cache"
	"coin-prices-service/internal/infrastructure/web/middleware"
)

type fixedFetcher map[string]string

func (f fixedFetcher) Fetch(_ context.Context, ep entities.EndpointOptions) (json.RawMessage, error) {
	return json.RawMessage(f[ep.ExchangeID]), nil
}

func newTestRouter(t *testing.T, prefix string) http.Handler {
	t.Helper()

	fetcher := fixedFetcher{
		exchange.ExchangeBinance: `[{"symbol":"BTCUSDT","price":"50000.12345678"},{"symbol":"ETHUSDT","price":"3200"}]`,
		exchange.ExchangeBybit:   `{"result":[{"symbol":"ETHUSDT","last_price":"3201"},{"symbol":"BTCUSDT","last_price":"50010.00000000"}]}`,
	}
	endpoints := config.GetDefaultConfig().EndpointOptions()
	memory := cache.NewMemoryCache()

	aggregator := services.NewPriceAggregator(fetcher, exchange.DefaultRegistry(), memory, endpoints, time.Minute)
	query := services.NewPriceQueryService(aggregator, memory)

	return NewRouter(RouterOptions{
		Query:          query,
		Cache:          memory,
		APIPrefix:      prefix,
		DefaultQuote:   "USDT",
		RequestTimeout: 5 * time.Second,
	})
}

func TestRouter_Prices(t *testing.T) {
	router := newTestRouter(t, "/api")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `[
		{"name":"BTC","prices":{"binance":50000.12345678,"bybit":50010.00000000}},
		{"name":"ETH","prices":{"binance":3200.00000000,"bybit":3201.00000000}}
	]`, rec.Body.String())
}

func TestRouter_CoinPrices(t *testing.T) {
	router := newTestRouter(t, "/api")

	tests := []struct {
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{"/api/prices/btc", http.StatusOK, `{"name":"BTC","prices":{"binance":50000.12345678,"bybit":50010.00000000}}`},
		{"/api/prices/ETH", http.StatusOK, `{"name":"ETH","prices":{"binance":3200.00000000,"bybit":3201.00000000}}`},
		{"/api/prices/doge", http.StatusNotFound, `{"detail":"Currency not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestRouter_CustomPrefix(t *testing.T) {
	router := newTestRouter(t, "/v2")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/prices/btc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices/btc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, "/api")

	for _, path := range []string{"/health", "/ready", "/metrics", "/swagger/doc.json"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, "/api")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prices", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
