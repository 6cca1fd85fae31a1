package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"coin-prices-service/internal/application/dto"
	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/logging"
)

// RetryAfterSeconds is sent with 503 responses
const RetryAfterSeconds = "60"

// PricesHandler serves the aggregated coin prices
type PricesHandler struct {
	query        interfaces.PriceQuery
	mapper       *dto.PriceMapper
	defaultQuote string
}

// NewPricesHandler creates a new instance of the prices handler
func NewPricesHandler(query interfaces.PriceQuery, defaultQuote string) *PricesHandler {
	return &PricesHandler{
		query:        query,
		mapper:       dto.NewPriceMapper(),
		defaultQuote: defaultQuote,
	}
}

// GetAllPrices godoc
// @Summary Prices of every listed coin
// @Description Returns the last price of every coin listed on all configured exchanges, sorted by pair name.
// @Tags prices
// @Produce json
// @Param quote query string false "Quote coin, defaults to the configured one" example(USDT)
// @Success 200 {array} dto.PricePointResponse "Coin prices"
// @Failure 400 {object} dto.ErrorResponse "Invalid quote coin"
// @Failure 500 {object} dto.ErrorResponse "Prices could not be fetched"
// @Failure 503 {object} dto.ErrorResponse "The price list is empty"
// @Header 503 {string} Retry-After "Seconds to wait before retrying"
// @Router /api/prices [get]
func (h *PricesHandler) GetAllPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := dto.NewPricesRequest(r.URL.Query().Get("quote"), "", h.defaultQuote)
	if err != nil {
		h.writeErrorResponse(ctx, w, http.StatusBadRequest, dto.DetailInvalidQuoteCoin)
		return
	}

	logging.Debug(ctx, "Requested prices for all coins", logging.Fields{
		logging.FieldQuoteCoin: req.QuoteCoin,
	})

	points, err := h.query.GetAll(ctx, req.QuoteCoin)
	if err != nil {
		logging.ErrorWithError(ctx, "Could not fetch all coin prices", err, logging.Fields{
			logging.FieldQuoteCoin: req.QuoteCoin,
		})
		h.writeErrorResponse(ctx, w, http.StatusInternalServerError, dto.DetailInternalError)
		return
	}

	if len(points) == 0 {
		logging.Error(ctx, "Missing coin price data", logging.Fields{
			logging.FieldQuoteCoin: req.QuoteCoin,
		})
		w.Header().Set("Retry-After", RetryAfterSeconds)
		h.writeErrorResponse(ctx, w, http.StatusServiceUnavailable, dto.DetailPricesUnavailable)
		return
	}

	h.writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToPricePointResponses(points))
}

// GetCoinPrices godoc
// @Summary Prices of one coin
// @Description Returns the last price of a coin on every configured exchange. The coin name is case-insensitive.
// @Tags prices
// @Produce json
// @Param coinName path string true "Base coin" example(BTC)
// @Param quote query string false "Quote coin, defaults to the configured one" example(USDT)
// @Success 200 {object} dto.PricePointResponse "Coin prices"
// @Failure 400 {object} dto.ErrorResponse "Invalid quote coin"
// @Failure 404 {object} dto.ErrorResponse "Currency not found"
// @Failure 500 {object} dto.ErrorResponse "Prices could not be fetched"
// @Router /api/prices/{coinName} [get]
func (h *PricesHandler) GetCoinPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := dto.NewPricesRequest(r.URL.Query().Get("quote"), mux.Vars(r)["coinName"], h.defaultQuote)
	if err != nil {
		h.writeErrorResponse(ctx, w, http.StatusBadRequest, dto.DetailInvalidQuoteCoin)
		return
	}

	fields := logging.Fields{
		logging.FieldCoin:      req.CoinName,
		logging.FieldQuoteCoin: req.QuoteCoin,
	}
	logging.Debug(ctx, "Requested prices for coin", fields)

	if !req.ValidCoinName() {
		h.writeErrorResponse(ctx, w, http.StatusNotFound, dto.DetailCurrencyNotFound)
		return
	}

	point, err := h.query.GetByCoinName(ctx, req.CoinName, req.QuoteCoin)
	if err != nil {
		logging.ErrorWithError(ctx, "Could not fetch coin price data", err, fields)
		h.writeErrorResponse(ctx, w, http.StatusInternalServerError, dto.DetailInternalError)
		return
	}

	if point == nil {
		logging.Info(ctx, "Coin not found", fields)
		h.writeErrorResponse(ctx, w, http.StatusNotFound, dto.DetailCurrencyNotFound)
		return
	}

	h.writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToPricePointResponse(*point))
}

// writeJSONResponse writes a JSON response preserving the request context for logs
func (h *PricesHandler) writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			logging.FieldHTTPStatusCode: statusCode,
		})
	}
}

func (h *PricesHandler) writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, detail string) {
	h.writeJSONResponse(ctx, w, statusCode, dto.NewErrorResponse(detail))
}
