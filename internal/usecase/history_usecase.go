package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/entity"
	"github.com/EpsilonIndustries21/sentiment/internal/domain/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PredictionListOutput represents a page of audit records
type PredictionListOutput struct {
	Predictions []*entity.PredictionRecord `json:"predictions"`
	Total       int64                      `json:"total"`
	Limit       int                        `json:"limit"`
	Offset      int                        `json:"offset"`
	HasMore     bool                       `json:"has_more"`
}

// HistoryUsecase reads the prediction audit log
type HistoryUsecase interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PredictionRecord, error)
	List(ctx context.Context, limit, offset int) (*PredictionListOutput, error)
}

type historyUsecase struct {
	repo repository.PredictionRepository
}

// NewHistoryUsecase creates a history usecase. A nil repository yields a
// usecase that reports ErrHistoryDisabled.
func NewHistoryUsecase(repo repository.PredictionRepository) HistoryUsecase {
	return &historyUsecase{repo: repo}
}

func (u *historyUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entity.PredictionRecord, error) {
	if u.repo == nil {
		return nil, ErrHistoryDisabled
	}
	record, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPredictionNotFound
	}
	return record, nil
}

func (u *historyUsecase) List(ctx context.Context, limit, offset int) (*PredictionListOutput, error) {
	if u.repo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := u.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*entity.PredictionRecord{}
	}

	return &PredictionListOutput{
		Predictions: records,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasMore:     int64(offset+len(records)) < total,
	}, nil
}
