package interfaces

import (
	"context"

	"coin-prices-service/internal/domain/entities"
)

// PriceAggregator builds price points from every configured exchange.
type PriceAggregator interface {
	Parse(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error)
	// ExchangeIDs lists the exchanges every point must carry a price for.
	ExchangeIDs() []string
}

// PriceQuery serves the read side of the API.
// GetByCoinName returns nil without error when the coin is unknown.
type PriceQuery interface {
	GetAll(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error)
	GetByCoinName(ctx context.Context, baseCoin, quoteCoin string) (*entities.CoinPricePoint, error)
}
