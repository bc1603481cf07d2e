package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/middleware"
	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// PredictionHandler handles the prediction endpoint
type PredictionHandler struct {
	predictionUC usecase.PredictionUsecase
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionUC usecase.PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{predictionUC: predictionUC}
}

// Predict handles POST /predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	text, err := BindText(c)
	if err != nil {
		respondPlainError(c, http.StatusBadRequest, MsgNoText)
		return
	}

	output, err := h.predictionUC.Predict(c.Request.Context(), &usecase.PredictInput{
		Text:      text,
		RequestID: c.GetString(middleware.RequestIDKey),
	})
	if err != nil {
		HandlePredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}
