package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CoinPair is one ticker entry as an exchange reports it, e.g. BTCUSDT.
type CoinPair struct {
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// ExchangePrice is the last price of a coin on one exchange.
type ExchangePrice struct {
	Exchange string
	Price    Price
}

// CoinLastPrices holds one price per exchange in exchange configuration order.
// It encodes as a JSON object whose keys keep that order.
type CoinLastPrices []ExchangePrice

func (c CoinLastPrices) Get(exchange string) (Price, bool) {
	for _, ep := range c {
		if ep.Exchange == exchange {
			return ep.Price, true
		}
	}
	return Price{}, false
}

// Set replaces the price of an existing exchange or appends a new one.
func (c *CoinLastPrices) Set(exchange string, price Price) {
	for i := range *c {
		if (*c)[i].Exchange == exchange {
			(*c)[i].Price = price
			return
		}
	}
	*c = append(*c, ExchangePrice{Exchange: exchange, Price: price})
}

func (c CoinLastPrices) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ep := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ep.Exchange)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(ep.Price.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *CoinLastPrices) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("coin last prices: expected object, got %v", tok)
	}

	prices := CoinLastPrices{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		exchange, ok := tok.(string)
		if !ok {
			return fmt.Errorf("coin last prices: unexpected key %v", tok)
		}

		var price Price
		if err := dec.Decode(&price); err != nil {
			return fmt.Errorf("coin last prices: %s: %w", exchange, err)
		}
		prices.Set(exchange, price)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = prices
	return nil
}

// CoinPricePoint is the aggregated price of one base coin across exchanges.
type CoinPricePoint struct {
	Name   string         `json:"name"`
	Prices CoinLastPrices `json:"prices"`
}

// Validate checks that a price is present for every configured exchange.
func (p CoinPricePoint) Validate(exchangeIDs []string) error {
	if p.Name == "" {
		return fmt.Errorf("coin price point: empty name")
	}
	for _, id := range exchangeIDs {
		if _, ok := p.Prices.Get(id); !ok {
			return fmt.Errorf("coin price point %s: missing price for %s", p.Name, id)
		}
	}
	return nil
}

// EndpointOptions describes where and how to read one exchange's tickers.
type EndpointOptions struct {
	ExchangeID string
	URL        string
	PriceField string
}
