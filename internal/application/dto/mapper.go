package dto

import "coin-prices-service/internal/domain/entities"

// PriceMapper converts domain price points to response DTOs
type PriceMapper struct{}

// NewPriceMapper creates a new mapper instance
func NewPriceMapper() *PriceMapper {
	return &PriceMapper{}
}

// ToPricePointResponses keeps the order the aggregator produced, which is
// sorted by pair name.
func (m *PriceMapper) ToPricePointResponses(points []entities.CoinPricePoint) []PricePointResponse {
	out := make([]PricePointResponse, len(points))
	for i, p := range points {
		out[i] = m.ToPricePointResponse(p)
	}
	return out
}

func (m *PriceMapper) ToPricePointResponse(point entities.CoinPricePoint) PricePointResponse {
	return PricePointResponse{
		Name:   point.Name,
		Prices: append(entities.CoinLastPrices{}, point.Prices...),
	}
}
