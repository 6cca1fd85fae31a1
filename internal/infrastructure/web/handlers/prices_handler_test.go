package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"
)

// MockPriceQuery is a testify mock of interfaces.PriceQuery
type MockPriceQuery struct {
	mock.Mock
}

func (m *MockPriceQuery) GetAll(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error) {
	args := m.Called(ctx, quoteCoin)
	points, _ := args.Get(0).([]entities.CoinPricePoint)
	return points, args.Error(1)
}

func (m *MockPriceQuery) GetByCoinName(ctx context.Context, baseCoin, quoteCoin string) (*entities.CoinPricePoint, error) {
	args := m.Called(ctx, baseCoin, quoteCoin)
	point, _ := args.Get(0).(*entities.CoinPricePoint)
	return point, args.Error(1)
}

func btcPoint() entities.CoinPricePoint {
	return entities.CoinPricePoint{
		Name: "BTC",
		Prices: entities.CoinLastPrices{
			{Exchange: "binance", Price: entities.MustParsePrice("50000.12345678")},
			{Exchange: "bybit", Price: entities.MustParsePrice("50010")},
		},
	}
}

func TestPricesHandler_GetAllPrices(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setup          func(q *MockPriceQuery)
		expectedStatus int
		expectedBody   string
		retryAfter     string
	}{
		{
			name: "success",
			url:  "/api/prices",
			setup: func(q *MockPriceQuery) {
				q.On("GetAll", mock.Anything, "USDT").Return([]entities.CoinPricePoint{btcPoint()}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"name":"BTC","prices":{"binance":50000.12345678,"bybit":50010.00000000}}]`,
		},
		{
			name: "quote parameter",
			url:  "/api/prices?quote=busd",
			setup: func(q *MockPriceQuery) {
				q.On("GetAll", mock.Anything, "BUSD").Return([]entities.CoinPricePoint{btcPoint()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty list",
			url:  "/api/prices",
			setup: func(q *MockPriceQuery) {
				q.On("GetAll", mock.Anything, "USDT").Return([]entities.CoinPricePoint{}, nil)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"detail":"The price list is temporarily unavailable"}`,
			retryAfter:     "60",
		},
		{
			name: "aggregation error",
			url:  "/api/prices",
			setup: func(q *MockPriceQuery) {
				q.On("GetAll", mock.Anything, "USDT").Return(nil,
					errs.NewResourceFetchError("bybit", "could not fetch coin pairs for exchange bybit", nil))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"detail":"Internal Server Error"}`,
		},
		{
			name:           "invalid quote",
			url:            "/api/prices?quote=US$",
			setup:          func(q *MockPriceQuery) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"detail":"Invalid quote coin"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := new(MockPriceQuery)
			tt.setup(query)
			handler := NewPricesHandler(query, "USDT")

			rec := httptest.NewRecorder()
			handler.GetAllPrices(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
			query.AssertExpectations(t)
		})
	}
}

func TestPricesHandler_GetCoinPrices(t *testing.T) {
	point := btcPoint()

	tests := []struct {
		name           string
		coin           string
		query          string
		setup          func(q *MockPriceQuery)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "found",
			coin: "btc",
			setup: func(q *MockPriceQuery) {
				q.On("GetByCoinName", mock.Anything, "BTC", "USDT").Return(&point, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"name":"BTC","prices":{"binance":50000.12345678,"bybit":50010.00000000}}`,
		},
		{
			name: "not found",
			coin: "doge",
			setup: func(q *MockPriceQuery) {
				q.On("GetByCoinName", mock.Anything, "DOGE", "USDT").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"detail":"Currency not found"}`,
		},
		{
			name:           "not a symbol",
			coin:           "b.t.c",
			setup:          func(q *MockPriceQuery) {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"detail":"Currency not found"}`,
		},
		{
			name: "lookup error",
			coin: "BTC",
			setup: func(q *MockPriceQuery) {
				q.On("GetByCoinName", mock.Anything, "BTC", "USDT").Return(nil, errors.New("cache down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"detail":"Internal Server Error"}`,
		},
		{
			name:  "quote parameter",
			coin:  "eth",
			query: "?quote=btc",
			setup: func(q *MockPriceQuery) {
				q.On("GetByCoinName", mock.Anything, "ETH", "BTC").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := new(MockPriceQuery)
			tt.setup(query)
			handler := NewPricesHandler(query, "USDT")

			req := httptest.NewRequest(http.MethodGet, "/api/prices/"+tt.coin+tt.query, nil)
			req = mux.SetURLVars(req, map[string]string{"coinName": tt.coin})
			rec := httptest.NewRecorder()
			handler.GetCoinPrices(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
			query.AssertExpectations(t)
		})
	}
}
