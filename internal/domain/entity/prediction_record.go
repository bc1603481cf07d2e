package entity

import (
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is an audit row written for every successful prediction
type PredictionRecord struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	RequestID           string    `json:"request_id" gorm:"type:varchar(64);index"`
	Sentiment           Sentiment `json:"sentiment" gorm:"type:varchar(16);not null;index"`
	Label               int       `json:"label" gorm:"not null"`
	Confidence          float64   `json:"confidence" gorm:"type:decimal(5,2)"`
	ProbabilityPositive float64   `json:"probability_positive" gorm:"type:decimal(5,2)"`
	ProbabilityNegative float64   `json:"probability_negative" gorm:"type:decimal(5,2)"`
	CleanedText         string    `json:"cleaned_text" gorm:"type:text;not null"`
	ModelFingerprint    string    `json:"model_fingerprint" gorm:"type:varchar(64)"`
	Cached              bool      `json:"cached" gorm:"default:false"`
	LatencyMs           int64     `json:"latency_ms" gorm:"default:0"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (PredictionRecord) TableName() string {
	return "predictions"
}

// NewPredictionRecord creates an audit record for a prediction
func NewPredictionRecord(requestID, fingerprint string, p *Prediction) *PredictionRecord {
	return &PredictionRecord{
		ID:                  uuid.New(),
		RequestID:           requestID,
		Sentiment:           p.Sentiment,
		Label:               p.Label,
		Confidence:          p.Confidence,
		ProbabilityPositive: p.ProbabilityPositive,
		ProbabilityNegative: p.ProbabilityNegative,
		CleanedText:         p.CleanedText,
		ModelFingerprint:    fingerprint,
	}
}

// SetOutcome records how the prediction was served
func (r *PredictionRecord) SetOutcome(cached bool, latencyMs int64) {
	r.Cached = cached
	r.LatencyMs = latencyMs
}
