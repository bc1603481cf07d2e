package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/entity"
	"github.com/EpsilonIndustries21/sentiment/internal/domain/repository"
	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/metrics"
)

// Error definitions for prediction usecase
var (
	ErrValidation         = errors.New("no text provided")
	ErrUnavailable        = errors.New("model or vectorizer not loaded")
	ErrInference          = errors.New("inference failed")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrHistoryDisabled    = errors.New("prediction history is disabled")
)

// InferenceError carries the underlying cause of a failed vectorize/classify
// step. It matches ErrInference with errors.Is.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return e.Err.Error() }

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Is(target error) bool { return target == ErrInference }

// Error kinds used as metric labels
const (
	KindValidation  = "validation"
	KindUnavailable = "unavailable"
	KindInference   = "inference"
	KindInternal    = "internal"
)

// ErrorKind classifies a Predict error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrInference):
		return KindInference
	default:
		return KindInternal
	}
}

// PredictInput represents the input for a prediction. A nil Text means the
// field was absent.
type PredictInput struct {
	Text      *string `json:"text"`
	RequestID string  `json:"-"`
}

// PredictOutput represents the result returned to clients
type PredictOutput struct {
	Sentiment           string  `json:"sentiment"`
	Confidence          float64 `json:"confidence"`
	ProbabilityPositive float64 `json:"probability_positive"`
	ProbabilityNegative float64 `json:"probability_negative"`
	OriginalText        string  `json:"original_text"`
	CleanedText         string  `json:"cleaned_text"`
}

// HealthOutput describes the artifact state. Type fields are null when the
// corresponding artifact is absent.
type HealthOutput struct {
	Status           string  `json:"status"`
	ModelLoaded      bool    `json:"model_loaded"`
	VectorizerLoaded bool    `json:"vectorizer_loaded"`
	ModelType        *string `json:"model_type"`
	VectorizerType   *string `json:"vectorizer_type"`
}

// ReadyOutput reports whether the service can serve predictions, together
// with the state of each dependency.
type ReadyOutput struct {
	Ready      bool              `json:"ready"`
	Components map[string]string `json:"components"`
}

// PredictionUsecase defines the interface for prediction business logic
type PredictionUsecase interface {
	Predict(ctx context.Context, input *PredictInput) (*PredictOutput, error)
	Health() *HealthOutput
	Ready(ctx context.Context) *ReadyOutput
}

// PredictionOptions holds the optional collaborators of the prediction usecase
type PredictionOptions struct {
	Cache    repository.PredictionCache
	CacheTTL time.Duration
	Audit    repository.PredictionRepository
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type predictionUsecase struct {
	models   service.ModelProvider
	cache    repository.PredictionCache
	cacheTTL time.Duration
	audit    repository.PredictionRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPredictionUsecase creates a new prediction usecase
func NewPredictionUsecase(models service.ModelProvider, opts PredictionOptions) PredictionUsecase {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &predictionUsecase{
		models:   models,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

func (u *predictionUsecase) Predict(ctx context.Context, input *PredictInput) (*PredictOutput, error) {
	start := time.Now()

	prediction, cached, err := u.predict(ctx, input)
	if err != nil {
		u.recordError(err)
		return nil, err
	}

	latency := time.Since(start)
	if u.metrics != nil {
		u.metrics.Predictions.WithLabelValues(string(prediction.Sentiment)).Inc()
		u.metrics.PredictionDuration.Observe(latency.Seconds())
	}

	if u.audit != nil {
		record := entity.NewPredictionRecord(input.RequestID, u.models.Fingerprint(), prediction)
		record.SetOutcome(cached, latency.Milliseconds())
		if err := u.audit.Create(ctx, record); err != nil {
			u.logger.Warn("Failed to write prediction record",
				zap.String("request_id", input.RequestID),
				zap.Error(err),
			)
		}
	}

	return toPredictOutput(prediction), nil
}

func (u *predictionUsecase) predict(ctx context.Context, input *PredictInput) (*entity.Prediction, bool, error) {
	var text string
	if input != nil && input.Text != nil {
		text = *input.Text
	}

	trimmed := service.TrimText(text)
	if trimmed == "" {
		return nil, false, ErrValidation
	}
	cleaned := service.Normalize(trimmed)

	if u.models == nil || !u.models.Available() {
		return nil, false, ErrUnavailable
	}

	scores, cached := u.lookup(ctx, cleaned)
	if scores == nil {
		var err error
		scores, err = u.infer(cleaned)
		if err != nil {
			return nil, false, err
		}
		u.store(ctx, cleaned, scores)
	}

	return &entity.Prediction{
		Scores:       *scores,
		OriginalText: trimmed,
		CleanedText:  cleaned,
	}, cached, nil
}

// infer runs the vectorizer and classifier. Any failure, including a panic
// inside a backend, is reported as an InferenceError.
func (u *predictionUsecase) infer(cleaned string) (scores *entity.Scores, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = &InferenceError{Err: fmt.Errorf("%v", r)}
		}
	}()

	vec, err := u.models.Vectorizer().Transform(cleaned)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}

	label, probs, err := classify(u.models.Classifier(), vec)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}

	scores, err = entity.NewScores(label, probs)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	return scores, nil
}

func classify(classifier service.Classifier, vec service.Vector) (int, []float64, error) {
	if joint, ok := classifier.(service.JointClassifier); ok {
		return joint.PredictWithProbability(vec)
	}
	label, err := classifier.Predict(vec)
	if err != nil {
		return 0, nil, err
	}
	probs, err := classifier.PredictProbability(vec)
	if err != nil {
		return 0, nil, err
	}
	return label, probs, nil
}

func (u *predictionUsecase) lookup(ctx context.Context, cleaned string) (*entity.Scores, bool) {
	if u.cache == nil {
		return nil, false
	}
	scores, err := u.cache.Get(ctx, u.models.Fingerprint(), cleaned)
	switch {
	case err != nil:
		u.countLookup("error")
		u.logger.Warn("Prediction cache lookup failed", zap.Error(err))
		return nil, false
	case scores == nil:
		u.countLookup("miss")
		return nil, false
	default:
		u.countLookup("hit")
		return scores, true
	}
}

func (u *predictionUsecase) store(ctx context.Context, cleaned string, scores *entity.Scores) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, u.models.Fingerprint(), cleaned, scores, u.cacheTTL); err != nil {
		u.logger.Warn("Failed to cache prediction", zap.Error(err))
	}
}

func (u *predictionUsecase) countLookup(result string) {
	if u.metrics != nil {
		u.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (u *predictionUsecase) recordError(err error) {
	kind := ErrorKind(err)
	if u.metrics != nil {
		u.metrics.PredictionErrors.WithLabelValues(kind).Inc()
	}
	if kind == KindInference {
		u.logger.Error("Prediction failed", zap.Error(err))
	}
}

func (u *predictionUsecase) Health() *HealthOutput {
	out := &HealthOutput{Status: "healthy"}
	if u.models == nil || !u.models.Available() {
		return out
	}

	modelType := u.models.Classifier().Type()
	vectorizerType := u.models.Vectorizer().Type()
	out.ModelLoaded = true
	out.VectorizerLoaded = true
	out.ModelType = &modelType
	out.VectorizerType = &vectorizerType
	return out
}

func (u *predictionUsecase) Ready(ctx context.Context) *ReadyOutput {
	out := &ReadyOutput{Ready: true, Components: map[string]string{}}

	if u.models != nil && u.models.Available() {
		out.Components["artifacts"] = "ok"
	} else {
		out.Ready = false
		out.Components["artifacts"] = componentError(ErrUnavailable)
	}

	if u.audit != nil {
		if err := u.audit.Ping(ctx); err != nil {
			out.Ready = false
			out.Components["database"] = componentError(err)
		} else {
			out.Components["database"] = "ok"
		}
	}

	// The cache is optional at request time, so it never blocks readiness.
	if u.cache != nil {
		if err := u.cache.Ping(ctx); err != nil {
			out.Components["redis"] = componentError(err)
		} else {
			out.Components["redis"] = "ok"
		}
	}

	return out
}

func componentError(err error) string {
	return "error: " + err.Error()
}

func toPredictOutput(p *entity.Prediction) *PredictOutput {
	return &PredictOutput{
		Sentiment:           string(p.Sentiment),
		Confidence:          p.Confidence,
		ProbabilityPositive: p.ProbabilityPositive,
		ProbabilityNegative: p.ProbabilityNegative,
		OriginalText:        p.OriginalText,
		CleanedText:         p.CleanedText,
	}
}
