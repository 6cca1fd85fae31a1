package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"
	"coin-prices-service/internal/infrastructure/exchange"
	"coin-prices-service/internal/infrastructure/repositories/cache"
)

const (
	binancePayload = `[{"symbol":"BTCUSDT","price":"50000.12345678"}]`
	bybitPayload   = `{"result":[{"symbol":"BTCUSDT","last_price":"50010.00000000"}]}`
)

func testEndpoints() []entities.EndpointOptions {
	return []entities.EndpointOptions{
		{ExchangeID: exchange.ExchangeBinance, URL: "https://binance.test/ticker", PriceField: "price"},
		{ExchangeID: exchange.ExchangeBybit, URL: "https://bybit.test/tickers", PriceField: "last_price"},
	}
}

// stubFetcher serves fixed payloads per exchange and counts calls.
type stubFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	errors   map[string]error
	calls    map[string]int

	// when release is set, Fetch reports on entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newStubFetcher(binance, bybit string) *stubFetcher {
	return &stubFetcher{
		payloads: map[string]string{
			exchange.ExchangeBinance: binance,
			exchange.ExchangeBybit:   bybit,
		},
		errors: map[string]error{},
		calls:  map[string]int{},
	}
}

// block makes every Fetch wait until the returned release func is called.
func (f *stubFetcher) block() (release func()) {
	f.entered = make(chan struct{}, 16)
	f.release = make(chan struct{})
	var once sync.Once
	return func() { once.Do(func() { close(f.release) }) }
}

func (f *stubFetcher) Fetch(ctx context.Context, ep entities.EndpointOptions) (json.RawMessage, error) {
	if f.release != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[ep.ExchangeID]++
	if err := f.errors[ep.ExchangeID]; err != nil {
		return nil, err
	}
	return json.RawMessage(f.payloads[ep.ExchangeID]), nil
}

func (f *stubFetcher) callCount(exchangeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[exchangeID]
}

// failingSetCache is a memory cache whose writes fail for matching keys.
type failingSetCache struct {
	*cache.MemoryCache
	failPrefix string
}

func (c *failingSetCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if strings.HasPrefix(key, c.failPrefix) {
		return errs.NewSetValueError(key, context.DeadlineExceeded)
	}
	return c.MemoryCache.Set(ctx, key, value, ttl)
}

// countingCache is a memory cache that counts writes per key prefix.
type countingCache struct {
	*cache.MemoryCache

	mu   sync.Mutex
	sets map[string]int
}

func newCountingCache() *countingCache {
	return &countingCache{MemoryCache: cache.NewMemoryCache(), sets: map[string]int{}}
}

func (c *countingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.MemoryCache.Set(ctx, key, value, ttl)
}

func (c *countingCache) setCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

// MockCache is a testify mock of interfaces.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAggregator is a testify mock of interfaces.PriceAggregator.
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Parse(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error) {
	args := m.Called(ctx, quoteCoin)
	points, _ := args.Get(0).([]entities.CoinPricePoint)
	return points, args.Error(1)
}

func (m *MockAggregator) ExchangeIDs() []string {
	return []string{exchange.ExchangeBinance, exchange.ExchangeBybit}
}
