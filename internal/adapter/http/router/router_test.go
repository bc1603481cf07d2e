package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EpsilonIndustries21/sentiment/internal/adapter/model"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/config"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/metrics"
	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, artifacts *model.Artifacts) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	m := metrics.New()
	m.SetArtifactsLoaded(artifacts.Available())

	return Setup(Deps{
		Prediction: usecase.NewPredictionUsecase(artifacts, usecase.PredictionOptions{Metrics: m, Logger: logger}),
		History:    usecase.NewHistoryUsecase(nil),
		Metrics:    m,
		Logger:     logger,
	})
}

func loadedArtifacts(t *testing.T) *model.Artifacts {
	t.Helper()
	artifacts := model.Load(&config.ArtifactsConfig{
		ModelPath:      "../../model/testdata/logistic_regression.json",
		VectorizerPath: "../../model/testdata/vectorizer.json",
	}, nil, zap.NewNop())
	require.True(t, artifacts.Available(), "test artifacts failed to load: %v", artifacts.Err())
	return artifacts
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictEndToEnd(t *testing.T) {
	router := newTestRouter(t, loadedArtifacts(t))

	t.Run("positive text", func(t *testing.T) {
		w := do(router, "POST", "/predict", `{"text": "  I LOVE   this "}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body usecase.PredictOutput
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Positive", body.Sentiment)
		assert.Equal(t, "I LOVE   this", body.OriginalText)
		assert.Equal(t, "i love this", body.CleanedText)
		assert.Greater(t, body.Confidence, 50.0)
		assert.InDelta(t, 100.0, body.ProbabilityPositive+body.ProbabilityNegative, 0.01)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("negative text", func(t *testing.T) {
		w := do(router, "POST", "/predict", `{"text": "terrible movie, I hate it"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body usecase.PredictOutput
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Negative", body.Sentiment)
		assert.Equal(t, body.ProbabilityNegative, body.Confidence)
	})

	t.Run("blank text", func(t *testing.T) {
		w := do(router, "POST", "/predict", `{"text": "   "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "Please provide some text for analysis"}`, w.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		w := do(router, "GET", "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"status": "healthy",
			"model_loaded": true,
			"vectorizer_loaded": true,
			"model_type": "LogisticRegression",
			"vectorizer_type": "TfidfVectorizer"
		}`, w.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		w := do(router, "GET", "/ready", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("landing page", func(t *testing.T) {
		w := do(router, "GET", "/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "LogisticRegression")
	})

	t.Run("static asset", func(t *testing.T) {
		w := do(router, "GET", "/static/app.js", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := do(router, "GET", "/metrics", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "sentiment_predictions_total")
		assert.Contains(t, w.Body.String(), "sentiment_artifacts_loaded 1")
	})

	t.Run("history disabled", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/predictions", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestDegradedMode(t *testing.T) {
	artifacts := model.Load(&config.ArtifactsConfig{
		ModelPath:      "does-not-exist.json",
		VectorizerPath: "does-not-exist.json",
	}, nil, zap.NewNop())
	router := newTestRouter(t, artifacts)

	t.Run("predict fails with 500", func(t *testing.T) {
		w := do(router, "POST", "/predict", `{"text": "great movie"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error": "Prediction failed: model or vectorizer not loaded"}`, w.Body.String())
	})

	t.Run("blank text is still a validation error", func(t *testing.T) {
		w := do(router, "POST", "/predict", `{"text": ""}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("health stays 200", func(t *testing.T) {
		w := do(router, "GET", "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"status": "healthy",
			"model_loaded": false,
			"vectorizer_loaded": false,
			"model_type": null,
			"vectorizer_type": null
		}`, w.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		w := do(router, "GET", "/ready", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, loadedArtifacts(t))

	w := do(router, "OPTIONS", "/predict", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveredPanicIsCounted(t *testing.T) {
	m := metrics.New()
	router := Setup(Deps{
		Prediction: usecase.NewPredictionUsecase(loadedArtifacts(t), usecase.PredictionOptions{}),
		History:    usecase.NewHistoryUsecase(nil),
		Metrics:    m,
		Logger:     zap.NewNop(),
	})
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := do(router, "GET", "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/boom", "500")))
}
