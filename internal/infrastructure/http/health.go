package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const healthTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	database Pinger
	logger   zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		logger:   logger,
	}
}

// Handle reports the database state. Unhealthy responses use 503.
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	pingCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	db := ComponentHealth{Name: "database", Healthy: true}
	if err := h.database.Ping(pingCtx); err != nil {
		db.Healthy = false
		db.Message = err.Error()
	}

	response := HealthResponse{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now().UTC(),
		Components: []ComponentHealth{db},
	}

	statusCode := fasthttp.StatusOK
	if !db.Healthy {
		response.Status = HealthStatusUnhealthy
		statusCode = fasthttp.StatusServiceUnavailable
		h.logger.Warn().Str("message", db.Message).Msg("Health check failed")
	}

	body, err := json.Marshal(response)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(statusCode)
	ctx.SetBody(body)
}
