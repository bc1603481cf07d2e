package entity

import (
	"fmt"
	"math"
	"strconv"
)

// Sentiment is the label reported to clients
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
)

// PositiveLabel is the class value mapped to SentimentPositive. Every other
// class value is reported as negative.
const PositiveLabel = 1

// SentimentFromLabel maps a raw class prediction to a sentiment
func SentimentFromLabel(label int) Sentiment {
	if label == PositiveLabel {
		return SentimentPositive
	}
	return SentimentNegative
}

// Scores holds class probabilities as percentages rounded to two decimals
type Scores struct {
	Sentiment           Sentiment `json:"sentiment"`
	Label               int       `json:"label"`
	Confidence          float64   `json:"confidence"`
	ProbabilityPositive float64   `json:"probability_positive"`
	ProbabilityNegative float64   `json:"probability_negative"`
}

// NewScores builds Scores from a class prediction and the probability pair
// (negative column first).
func NewScores(label int, probabilities []float64) (*Scores, error) {
	if len(probabilities) != 2 {
		return nil, fmt.Errorf("expected 2 class probabilities, got %d", len(probabilities))
	}
	negative := probabilities[0] * 100
	positive := probabilities[1] * 100

	return &Scores{
		Sentiment:           SentimentFromLabel(label),
		Label:               label,
		Confidence:          Round2(math.Max(positive, negative)),
		ProbabilityPositive: Round2(positive),
		ProbabilityNegative: Round2(negative),
	}, nil
}

// Prediction is the result of a single prediction request
type Prediction struct {
	Scores
	OriginalText string `json:"original_text"`
	CleanedText  string `json:"cleaned_text"`
}

// Round2 rounds x to two decimal places. Formatting rounds the exact binary
// value half to even, so 0.125 becomes 0.12 and 2.675 becomes 2.67.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}
