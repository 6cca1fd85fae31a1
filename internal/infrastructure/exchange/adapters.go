package exchange

import (
	"encoding/json"
	"fmt"
)

const (
	ExchangeBinance = "binance"
	ExchangeBybit   = "bybit"
	ExchangeBybitV5 = "bybit_v5"
)

var (
	// BinanceAdapter reads GET /api/v3/ticker/price: [{"symbol":"BTCUSDT","price":"..."}].
	BinanceAdapter = Adapter{Unwrap: topLevelArray, SymbolField: "symbol"}

	// BybitAdapter reads GET /v2/public/tickers: {"ret_code":0,"result":[{"symbol":...,"last_price":"..."}]}.
	BybitAdapter = Adapter{Unwrap: nestedArray("result"), SymbolField: "symbol"}

	// BybitV5Adapter reads GET /v5/market/tickers: {"result":{"list":[{"symbol":...,"lastPrice":"..."}]}}.
	BybitV5Adapter = Adapter{Unwrap: nestedArray("result", "list"), SymbolField: "symbol"}
)

func topLevelArray(raw json.RawMessage) (json.RawMessage, error) {
	return raw, nil
}

// nestedArray walks path through nested objects and returns the value at its end.
func nestedArray(path ...string) func(json.RawMessage) (json.RawMessage, error) {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		current := raw
		for _, field := range path {
			var envelope map[string]json.RawMessage
			if err := json.Unmarshal(current, &envelope); err != nil {
				return nil, fmt.Errorf("%w: expected object around %q: %v", ErrMalformedPayload, field, err)
			}

			next, ok := envelope[field]
			if !ok {
				return nil, fmt.Errorf("%w: missing %q field", ErrMalformedPayload, field)
			}
			current = next
		}
		return current, nil
	}
}
