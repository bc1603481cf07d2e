package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/entity"
)

// PredictionRepository defines the interface for the prediction audit log
type PredictionRepository interface {
	// Create stores a new prediction record
	Create(ctx context.Context, record *entity.PredictionRecord) error

	// GetByID retrieves a record by its ID, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PredictionRecord, error)

	// List retrieves records, newest first, with pagination
	List(ctx context.Context, limit, offset int) ([]*entity.PredictionRecord, int64, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}

// PredictionCache stores scores keyed by model fingerprint and cleaned text
type PredictionCache interface {
	// Get returns cached scores, or nil on a miss
	Get(ctx context.Context, fingerprint, cleanedText string) (*entity.Scores, error)

	// Set stores scores for the given key
	Set(ctx context.Context, fingerprint, cleanedText string, scores *entity.Scores, ttl time.Duration) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
