package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/handler"
	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/middleware"
	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/web"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/metrics"
	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// Deps holds what the router wires into handlers
type Deps struct {
	Prediction usecase.PredictionUsecase
	History    usecase.HistoryUsecase
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Setup creates and configures the Gin router
func Setup(deps Deps) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	// Metrics sits outside Recovery so recovered panics are counted as 500s
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// Landing page
	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", http.FS(web.Static()))
	indexHandler := handler.NewIndexHandler(deps.Prediction)
	router.GET("/", indexHandler.Index)

	// Prediction
	predictionHandler := handler.NewPredictionHandler(deps.Prediction)
	router.POST("/predict", predictionHandler.Predict)

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Prediction)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		historyHandler := handler.NewHistoryHandler(deps.History)
		predictions := v1.Group("/predictions")
		{
			predictions.GET("", historyHandler.ListPredictions)
			predictions.GET("/:id", historyHandler.GetPrediction)
		}
	}

	return router
}
