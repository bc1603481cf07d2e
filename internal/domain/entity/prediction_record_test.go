package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPredictionRecord(t *testing.T) {
	p := &Prediction{
		Scores: Scores{
			Sentiment:           SentimentPositive,
			Label:               1,
			Confidence:          91.5,
			ProbabilityPositive: 91.5,
			ProbabilityNegative: 8.5,
		},
		OriginalText: "I LOVE this",
		CleanedText:  "i love this",
	}

	record := NewPredictionRecord("req-1", "abc123", p)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, "abc123", record.ModelFingerprint)
	assert.Equal(t, SentimentPositive, record.Sentiment)
	assert.Equal(t, 1, record.Label)
	assert.Equal(t, 91.5, record.Confidence)
	assert.Equal(t, "i love this", record.CleanedText)
	assert.False(t, record.Cached)
}

func TestPredictionRecord_SetOutcome(t *testing.T) {
	record := &PredictionRecord{}

	record.SetOutcome(true, 12)

	assert.True(t, record.Cached)
	assert.Equal(t, int64(12), record.LatencyMs)
}

func TestPredictionRecord_TableName(t *testing.T) {
	assert.Equal(t, "predictions", PredictionRecord{}.TableName())
}
