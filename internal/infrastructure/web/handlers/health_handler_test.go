package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-prices-service/internal/application/dto"
)

type pingCache struct {
	err error
}

func (c *pingCache) Get(context.Context, string) (string, error)              { return "", nil }
func (c *pingCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (c *pingCache) Delete(context.Context, string) error                     { return nil }
func (c *pingCache) Ping(context.Context) error                               { return c.err }
func (c *pingCache) Close() error                                             { return nil }

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(&pingCache{err: errors.New("down")})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedState  string
	}{
		{name: "cache reachable", expectedStatus: http.StatusOK, expectedState: "ready"},
		{name: "cache unreachable", pingErr: errors.New("dial tcp: connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(&pingCache{err: tt.pingErr})

			rec := httptest.NewRecorder()
			handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedState, resp.Status)
		})
	}
}
