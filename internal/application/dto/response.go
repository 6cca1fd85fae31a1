package dto

import (
	"time"

	"coin-prices-service/internal/domain/entities"
)

// PricePointResponse is the aggregated price of one coin
// @Description Last prices of one base coin on every configured exchange
type PricePointResponse struct {
	Name   string                  `json:"name" example:"BTC"`                                                                // Base coin name
	Prices entities.CoinLastPrices `json:"prices" swaggertype:"object,number" example:"binance:50000.12345678,bybit:50010.0"` // Exchange id to last price, in exchange configuration order
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response for endpoints
type ErrorResponse struct {
	Detail string `json:"detail" example:"Currency not found"` // Human readable error
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" enums:"healthy,ready,unhealthy"` // Overall service status
	Timestamp time.Time         `json:"timestamp" example:"2024-03-01T10:30:00Z"`                 // When the check was performed
	Services  map[string]string `json:"services,omitempty" example:"cache:ready,service:ready"`   // Individual dependency statuses
}

const (
	DetailInternalError     = "Internal Server Error"
	DetailPricesUnavailable = "The price list is temporarily unavailable"
	DetailCurrencyNotFound  = "Currency not found"
	DetailInvalidQuoteCoin  = "Invalid quote coin"
	DetailTooManyRequests   = "Too Many Requests"
)

// NewErrorResponse creates a new error response
func NewErrorResponse(detail string) *ErrorResponse {
	return &ErrorResponse{Detail: detail}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}
