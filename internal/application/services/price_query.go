package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/repositories/cache"
)

// PriceQueryService serves the read side of the API from the cache,
// running a parse pass when the cache has nothing for the quote coin.
type PriceQueryService struct {
	aggregator interfaces.PriceAggregator
	cache      interfaces.Cache
}

// NewPriceQueryService creates a new query facade
func NewPriceQueryService(aggregator interfaces.PriceAggregator, cache interfaces.Cache) *PriceQueryService {
	return &PriceQueryService{
		aggregator: aggregator,
		cache:      cache,
	}
}

// GetAll always runs a parse pass; cached pairs keep it cheap inside the TTL.
func (s *PriceQueryService) GetAll(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error) {
	return s.aggregator.Parse(ctx, strings.ToUpper(quoteCoin))
}

// GetByCoinName returns the point of one base coin, or nil when no exchange
// pair for it is known.
func (s *PriceQueryService) GetByCoinName(ctx context.Context, baseCoin, quoteCoin string) (*entities.CoinPricePoint, error) {
	baseCoin = strings.ToUpper(baseCoin)
	quoteCoin = strings.ToUpper(quoteCoin)

	names, err := s.readIndex(ctx, quoteCoin)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		logging.Debug(ctx, "Coin index missing, running parse", logging.Fields{
			logging.FieldQuoteCoin: quoteCoin,
			logging.FieldCoin:      baseCoin,
		})

		points, err := s.aggregator.Parse(ctx, quoteCoin)
		if err != nil {
			return nil, err
		}
		for i := range points {
			if points[i].Name == baseCoin {
				return &points[i], nil
			}
		}
		return nil, nil
	}

	if !containsName(names, baseCoin) {
		return nil, nil
	}

	key := cache.PriceKey(quoteCoin, baseCoin)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			// The index outlived the point; reported as not found until the next parse
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read price for %s: %w", baseCoin, err)
	}

	var point entities.CoinPricePoint
	if err := json.Unmarshal([]byte(data), &point); err != nil {
		return nil, fmt.Errorf("failed to decode cached price for %s: %w", baseCoin, err)
	}

	if err := point.Validate(s.aggregator.ExchangeIDs()); err != nil {
		logging.Warn(ctx, "Discarding incomplete cached price", logging.Fields{
			logging.FieldQuoteCoin: quoteCoin,
			logging.FieldCoin:      baseCoin,
			logging.FieldCacheKey:  key,
			logging.FieldError:     err.Error(),
		})
		return nil, nil
	}
	return &point, nil
}

// readIndex returns the cached coin names, or nil when the index is absent.
func (s *PriceQueryService) readIndex(ctx context.Context, quoteCoin string) ([]string, error) {
	data, err := s.cache.Get(ctx, cache.IndexKey(quoteCoin))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read coin index for %s: %w", quoteCoin, err)
	}

	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		logging.Warn(ctx, "Discarding unreadable coin index", logging.Fields{
			logging.FieldQuoteCoin: quoteCoin,
			logging.FieldError:     err.Error(),
		})
		return nil, nil
	}
	return names, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
