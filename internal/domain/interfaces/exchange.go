package interfaces

import (
	"context"
	"encoding/json"

	"coin-prices-service/internal/domain/entities"
)

// Fetcher reads the raw ticker payload of one exchange endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint entities.EndpointOptions) (json.RawMessage, error)
}

// Normalizer turns an exchange payload into coin pairs.
type Normalizer interface {
	Normalize(exchangeID string, raw json.RawMessage, priceField string) ([]entities.CoinPair, error)
}
