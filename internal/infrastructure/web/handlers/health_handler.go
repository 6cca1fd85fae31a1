package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coin-prices-service/internal/application/dto"
	"coin-prices-service/internal/domain/interfaces"
)

const readyPingTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	cache interfaces.Cache
}

// NewHealthHandler creates a new instance of the health handler
func NewHealthHandler(cache interfaces.Cache) *HealthHandler {
	return &HealthHandler{
		cache: cache,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Does not check external dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	h.writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready godoc
// @Summary Readiness check
// @Description Verifies that the cache backend answers.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "The cache backend is unreachable"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
	defer cancel()

	services := make(map[string]string)

	if err := h.cache.Ping(ctx); err != nil {
		services["cache"] = "error: " + err.Error()
		h.writeJSONResponse(w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}

	services["cache"] = "ready"
	services["service"] = "ready"

	h.writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("ready", services))
}

func (h *HealthHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
