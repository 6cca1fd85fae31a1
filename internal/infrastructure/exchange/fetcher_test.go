package exchange

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		RequestTimeout: time.Second,
	}
}

// createMockServer answers with the given statuses in order, repeating the last one.
func createMockServer(t *testing.T, statuses []int, body string) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statuses[n])
		if statuses[n] == http.StatusOK {
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func endpointFor(url string) entities.EndpointOptions {
	return entities.EndpointOptions{ExchangeID: ExchangeBinance, URL: url, PriceField: "price"}
}

// ===== RestFetcher against httptest =====

func TestRestFetcher_Success(t *testing.T) {
	body := `[{"symbol":"BTCUSDT","price":"50000.12345678"}]`
	server, calls := createMockServer(t, []int{http.StatusOK}, body)

	raw, err := NewRestFetcher(fastPolicy()).Fetch(context.Background(), endpointFor(server.URL))

	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestRestFetcher_StatusHandling(t *testing.T) {
	tests := []struct {
		name          string
		statuses      []int
		expectErr     bool
		expectedCalls int32
	}{
		{"recovers after server errors", []int{500, 502, 200}, false, 3},
		{"recovers after rate limiting", []int{429, 200}, false, 2},
		{"client error is not retried", []int{404}, true, 1},
		{"exhausts the retry budget", []int{503}, true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := createMockServer(t, tt.statuses, `[]`)

			_, err := NewRestFetcher(fastPolicy()).Fetch(context.Background(), endpointFor(server.URL))

			assert.Equal(t, tt.expectedCalls, atomic.LoadInt32(calls))
			if !tt.expectErr {
				assert.NoError(t, err)
				return
			}

			var fetchErr *errs.ResourceFetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, ExchangeBinance, fetchErr.Exchange)
			assert.Contains(t, err.Error(), "could not fetch price pairs for binance")
		})
	}
}

func TestRestFetcher_MalformedBody(t *testing.T) {
	server, calls := createMockServer(t, []int{http.StatusOK}, `<html>maintenance</html>`)

	_, err := NewRestFetcher(fastPolicy()).Fetch(context.Background(), endpointFor(server.URL))

	assert.ErrorIs(t, err, errs.ErrResourceFetch)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestRestFetcher_CancelledContext(t *testing.T) {
	server, _ := createMockServer(t, []int{http.StatusServiceUnavailable}, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRestFetcher(fastPolicy()).Fetch(ctx, endpointFor(server.URL))

	assert.ErrorIs(t, err, errs.ErrResourceFetch)
}

// ===== RestFetcher with a gomock transport =====

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestRestFetcher_RetriesTransportErrors(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	doer := NewMockHTTPDoer(ctrl)
	gomock.InOrder(
		doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection reset by peer")),
		doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			return jsonResponse(http.StatusOK, `{"result":[]}`), nil
		}),
	)
	fetcher := NewRestFetcherWithClient(doer, fastPolicy())

	// Act
	raw, err := fetcher.Fetch(context.Background(), entities.EndpointOptions{
		ExchangeID: ExchangeBybit,
		URL:        "https://bybit.test/v2/public/tickers",
		PriceField: "last_price",
	})

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[]}`, string(raw))
}

func TestRestFetcher_SingleAttemptPolicy(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	doer := NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(jsonResponse(http.StatusBadGateway, ""), nil).Times(1)

	policy := fastPolicy()
	policy.MaxAttempts = 0

	_, err := NewRestFetcherWithClient(doer, policy).Fetch(context.Background(), endpointFor("https://binance.test"))

	assert.ErrorIs(t, err, ErrRetryableRequest)
	assert.ErrorIs(t, err, errs.ErrResourceFetch)
}
