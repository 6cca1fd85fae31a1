package exchange

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"
)

// Adapter knows the response envelope of one exchange.
type Adapter struct {
	// Unwrap extracts the JSON array of ticker objects from the response body.
	Unwrap func(raw json.RawMessage) (json.RawMessage, error)
	// SymbolField names the pair symbol inside a ticker object.
	SymbolField string
}

// Registry dispatches normalization by exchange id.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// DefaultRegistry knows every exchange shipped with the service.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ExchangeBinance, BinanceAdapter)
	r.Register(ExchangeBybit, BybitAdapter)
	r.Register(ExchangeBybitV5, BybitV5Adapter)
	return r
}

// Register adds or replaces the adapter for exchangeID.
func (r *Registry) Register(exchangeID string, adapter Adapter) {
	if adapter.Unwrap == nil {
		adapter.Unwrap = topLevelArray
	}
	if adapter.SymbolField == "" {
		adapter.SymbolField = "symbol"
	}

	r.mu.Lock()
	r.adapters[exchangeID] = adapter
	r.mu.Unlock()
}

func (r *Registry) NormalizerFor(exchangeID string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[exchangeID]
	return adapter, ok
}

// Normalize maps raw into coin pairs keeping the upstream order.
// Any malformed entry fails the whole payload with *errs.ParseError.
func (r *Registry) Normalize(exchangeID string, raw json.RawMessage, priceField string) ([]entities.CoinPair, error) {
	adapter, ok := r.NormalizerFor(exchangeID)
	if !ok {
		return nil, errs.NewParseError(exchangeID, fmt.Sprintf("cannot normalize pairs for %s", exchangeID), ErrUnknownExchange)
	}

	tickers, err := adapter.Unwrap(raw)
	if err != nil {
		return nil, parseFailure(exchangeID, "unexpected response envelope", err)
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(tickers, &entries); err != nil {
		return nil, parseFailure(exchangeID, "ticker list is not an array of objects", err)
	}

	pairs := make([]entities.CoinPair, 0, len(entries))
	for i, entry := range entries {
		symbol, err := symbolOf(entry, adapter.SymbolField)
		if err != nil {
			return nil, parseFailure(exchangeID, fmt.Sprintf("entry %d", i), err)
		}

		priceRaw, ok := entry[priceField]
		if !ok {
			return nil, parseFailure(exchangeID, fmt.Sprintf("entry %s", symbol), fmt.Errorf("%w: missing %q field", ErrMalformedPayload, priceField))
		}

		var price entities.Price
		if err := json.Unmarshal(priceRaw, &price); err != nil {
			return nil, parseFailure(exchangeID, fmt.Sprintf("entry %s", symbol), err)
		}

		pairs = append(pairs, entities.CoinPair{Name: symbol, Price: price})
	}

	return pairs, nil
}

// symbolOf accepts string symbols and, like the exchanges occasionally do, bare numbers.
func symbolOf(entry map[string]json.RawMessage, field string) (string, error) {
	raw, ok := entry[field]
	if !ok {
		return "", fmt.Errorf("%w: missing %q field", ErrMalformedPayload, field)
	}

	var symbol string
	if err := json.Unmarshal(raw, &symbol); err != nil {
		symbol = strings.TrimSpace(string(raw))
		if symbol == "" || symbol == "null" || strings.ContainsAny(symbol, `{["`) {
			return "", fmt.Errorf("%w: invalid %q value %s", ErrMalformedPayload, field, raw)
		}
	}
	if symbol == "" {
		return "", fmt.Errorf("%w: empty %q value", ErrMalformedPayload, field)
	}
	return symbol, nil
}

func parseFailure(exchangeID, where string, err error) error {
	return errs.NewParseError(exchangeID, fmt.Sprintf("could not normalize %s pairs: %s", exchangeID, where), err)
}
