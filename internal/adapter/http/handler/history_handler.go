package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// HistoryHandler serves the prediction audit log
type HistoryHandler struct {
	historyUC usecase.HistoryUsecase
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyUC usecase.HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// ListPredictions handles GET /api/v1/predictions
func (h *HistoryHandler) ListPredictions(c *gin.Context) {
	pagination := ParsePagination(c)

	output, err := h.historyUC.List(c.Request.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// GetPrediction handles GET /api/v1/predictions/:id
func (h *HistoryHandler) GetPrediction(c *gin.Context) {
	id, err := ExtractUUIDParam(c, "id")
	if err != nil {
		HandleInvalidUUID(c, "prediction id")
		return
	}

	record, err := h.historyUC.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, record)
}
