package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

// Messages returned by the prediction endpoint
const (
	MsgNoText            = "Please provide some text for analysis"
	MsgPredictionFailed  = "Prediction failed: "
	MsgModelNotAvailable = MsgPredictionFailed + "model or vectorizer not loaded"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// It provides consistent error handling across all handlers.
func MapUsecaseError(err error) ErrorResponse {
	var inference *usecase.InferenceError

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "VALIDATION_ERROR",
			Message:    MsgNoText,
		}
	case errors.Is(err, usecase.ErrUnavailable):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "MODEL_UNAVAILABLE",
			Message:    MsgModelNotAvailable,
		}
	case errors.As(err, &inference):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INFERENCE_ERROR",
			Message:    MsgPredictionFailed + inference.Err.Error(),
		}
	case errors.Is(err, usecase.ErrInference):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INFERENCE_ERROR",
			Message:    MsgPredictionFailed + err.Error(),
		}
	case errors.Is(err, usecase.ErrPredictionNotFound):
		return ErrorResponse{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    "prediction not found",
		}
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "HISTORY_DISABLED",
			Message:    "prediction history is disabled",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError sends a usecase error inside the standard envelope
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandlePredictionError sends a usecase error as a flat {"error": ...} body
func HandlePredictionError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	respondPlainError(c, errResp.StatusCode, errResp.Message)
}

// HandleInvalidUUID handles an invalid UUID parameter error.
func HandleInvalidUUID(c *gin.Context, paramName string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+paramName)
}
