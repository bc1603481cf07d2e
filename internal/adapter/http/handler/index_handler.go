package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/web"
	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// IndexHandler renders the landing page
type IndexHandler struct {
	predictionUC usecase.PredictionUsecase
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(predictionUC usecase.PredictionUsecase) *IndexHandler {
	return &IndexHandler{predictionUC: predictionUC}
}

// Index handles GET /. The engine must have web.Templates installed.
func (h *IndexHandler) Index(c *gin.Context) {
	health := h.predictionUC.Health()

	data := gin.H{"ModelLoaded": health.ModelLoaded && health.VectorizerLoaded}
	if health.ModelType != nil {
		data["ModelType"] = *health.ModelType
	}
	if health.VectorizerType != nil {
		data["VectorizerType"] = *health.VectorizerType
	}

	c.HTML(http.StatusOK, web.IndexTemplate, data)
}
