package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	predictionUC usecase.PredictionUsecase
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(predictionUC usecase.PredictionUsecase) *HealthHandler {
	return &HealthHandler{predictionUC: predictionUC}
}

// ReadyStatus represents the readiness response
type ReadyStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health. It always answers 200 and reports artifact state.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionUC.Health())
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out := h.predictionUC.Ready(ctx)
	if !out.Ready {
		c.JSON(http.StatusServiceUnavailable, ReadyStatus{Status: "not ready", Components: out.Components})
		return
	}

	c.JSON(http.StatusOK, ReadyStatus{Status: "ready", Components: out.Components})
}
