package service

import "fmt"

// Vector is a sparse document-term vector. Indices are ascending and unique.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored entries
func (v Vector) NNZ() int {
	return len(v.Indices)
}

// Dense expands the vector into a float32 slice of length Dim
func (v Vector) Dense() []float32 {
	out := make([]float32, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = float32(v.Values[i])
	}
	return out
}

// Dot returns the inner product of v with a dense weight row
func (v Vector) Dot(weights []float64) (float64, error) {
	if len(weights) != v.Dim {
		return 0, fmt.Errorf("dimension mismatch: vector has %d features, weights have %d", v.Dim, len(weights))
	}
	var sum float64
	for i, idx := range v.Indices {
		sum += weights[idx] * v.Values[i]
	}
	return sum, nil
}

// Vectorizer converts normalized text into a fixed-dimension feature vector
// using a vocabulary fixed at training time.
type Vectorizer interface {
	// Transform vectorizes a single document
	Transform(text string) (Vector, error)

	// Dim returns the length of produced vectors
	Dim() int

	// VocabularySize returns the number of known terms
	VocabularySize() int

	// Type describes the concrete vectorizer
	Type() string
}

// Classifier maps a feature vector to a class label and class probabilities.
type Classifier interface {
	// Predict returns the predicted class label
	Predict(v Vector) (int, error)

	// PredictProbability returns one probability per class, ordered as Classes
	PredictProbability(v Vector) ([]float64, error)

	// Classes returns the class labels in column order
	Classes() []int

	// NumFeatures returns the expected input dimension
	NumFeatures() int

	// Type describes the concrete classifier
	Type() string
}

// JointClassifier is implemented by classifiers that produce the label and
// the probabilities from a single evaluation.
type JointClassifier interface {
	Classifier

	// PredictWithProbability returns the label and the class probabilities
	PredictWithProbability(v Vector) (int, []float64, error)
}

// ModelProvider exposes the artifacts loaded at startup. When Available is
// false both Classifier and Vectorizer return nil and Err explains why.
type ModelProvider interface {
	Available() bool
	Classifier() Classifier
	Vectorizer() Vectorizer
	Fingerprint() string
	Err() error
}
