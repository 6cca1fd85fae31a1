package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/infrastructure/logging"
)

// MockFetcher serves realistic ticker payloads without network access.
// Each exchange gets its own envelope so the registry adapters are exercised.
type MockFetcher struct {
	basePrices map[string]float64
	envelopes  map[string][]string
	variance   float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		basePrices: map[string]float64{
			"BTCUSDT": 65000.0,
			"ETHUSDT": 3200.0,
			"LTCUSDT": 95.0,
			"XRPUSDT": 0.52,
			"SOLUSDT": 145.0,
			"ETHBTC":  0.0492,
		},
		envelopes: map[string][]string{
			ExchangeBybit:   {"result"},
			ExchangeBybitV5: {"result", "list"},
		},
		variance: 0.002,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, endpoint entities.EndpointOptions) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(m.basePrices))
	for symbol := range m.basePrices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	tickers := make([]map[string]string, 0, len(symbols))
	m.mu.Lock()
	for _, symbol := range symbols {
		variation := (m.rng.Float64()*2 - 1) * m.variance
		tickers = append(tickers, map[string]string{
			"symbol":            symbol,
			endpoint.PriceField: fmt.Sprintf("%.8f", m.basePrices[symbol]*(1+variation)),
		})
	}
	m.mu.Unlock()

	var payload interface{} = tickers
	path := m.envelopes[endpoint.ExchangeID]
	for i := len(path) - 1; i >= 0; i-- {
		payload = map[string]interface{}{path[i]: payload}
	}

	logging.Debug(ctx, "MockFetcher: generated tickers", logging.Fields{
		logging.FieldExchange: endpoint.ExchangeID,
		logging.FieldPairs:    len(tickers),
	})

	return json.Marshal(payload)
}
