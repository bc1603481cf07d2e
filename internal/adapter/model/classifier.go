package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
)

// Classifier artifact types
const (
	TypeLogisticRegression = "LogisticRegression"
	TypeMultinomialNB      = "MultinomialNB"
	TypeComplementNB       = "ComplementNB"
	TypeONNXClassifier     = "ONNXClassifier"
)

// ClassifierSpec is the decoded classifier artifact
type ClassifierSpec struct {
	Type           string      `json:"type"`
	Classes        []int       `json:"classes"`
	NFeatures      int         `json:"n_features"`
	Coef           [][]float64 `json:"coef"`
	Intercept      []float64   `json:"intercept"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// NewClassifier builds the classifier described by a decoded artifact
func NewClassifier(spec *ClassifierSpec) (service.Classifier, error) {
	if len(spec.Classes) != 2 {
		return nil, fmt.Errorf("expected a binary classifier, got %d classes", len(spec.Classes))
	}
	if spec.Classes[0] == spec.Classes[1] {
		return nil, fmt.Errorf("duplicate class label %d", spec.Classes[0])
	}

	var (
		c   service.Classifier
		err error
	)
	switch spec.Type {
	case TypeLogisticRegression:
		c, err = newLogisticRegression(spec)
	case TypeMultinomialNB, TypeComplementNB:
		c, err = newNaiveBayes(spec)
	default:
		err = fmt.Errorf("unsupported classifier type %q", spec.Type)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LogisticRegression is a fitted binary logistic regression model
type LogisticRegression struct {
	classes   []int
	weights   []float64
	intercept float64
}

func newLogisticRegression(spec *ClassifierSpec) (*LogisticRegression, error) {
	if len(spec.Coef) != 1 || len(spec.Intercept) != 1 {
		return nil, errors.New("binary logistic regression needs one coef row and one intercept")
	}
	if len(spec.Coef[0]) != spec.NFeatures {
		return nil, fmt.Errorf("coef has %d weights, n_features is %d", len(spec.Coef[0]), spec.NFeatures)
	}
	return &LogisticRegression{
		classes:   spec.Classes,
		weights:   spec.Coef[0],
		intercept: spec.Intercept[0],
	}, nil
}

func (m *LogisticRegression) decision(v service.Vector) (float64, error) {
	d, err := v.Dot(m.weights)
	if err != nil {
		return 0, err
	}
	return d + m.intercept, nil
}

// Predict returns the second class when the decision function is positive
func (m *LogisticRegression) Predict(v service.Vector) (int, error) {
	d, err := m.decision(v)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return m.classes[1], nil
	}
	return m.classes[0], nil
}

// PredictProbability returns [P(classes[0]), P(classes[1])]
func (m *LogisticRegression) PredictProbability(v service.Vector) ([]float64, error) {
	d, err := m.decision(v)
	if err != nil {
		return nil, err
	}
	p := expit(d)
	return []float64{1 - p, p}, nil
}

// Classes returns the class labels in column order
func (m *LogisticRegression) Classes() []int { return m.classes }

// NumFeatures returns the expected input dimension
func (m *LogisticRegression) NumFeatures() int { return len(m.weights) }

// Type returns the artifact type name
func (m *LogisticRegression) Type() string { return TypeLogisticRegression }

// NaiveBayes covers multinomial and complement naive Bayes models, which
// differ only in whether the class prior enters the joint log likelihood.
type NaiveBayes struct {
	kind           string
	classes        []int
	classLogPrior  []float64
	featureLogProb [][]float64
}

func newNaiveBayes(spec *ClassifierSpec) (*NaiveBayes, error) {
	if len(spec.FeatureLogProb) != 2 {
		return nil, fmt.Errorf("feature_log_prob needs 2 rows, got %d", len(spec.FeatureLogProb))
	}
	for i, row := range spec.FeatureLogProb {
		if len(row) != spec.NFeatures {
			return nil, fmt.Errorf("feature_log_prob row %d has %d weights, n_features is %d", i, len(row), spec.NFeatures)
		}
	}
	nb := &NaiveBayes{
		kind:           spec.Type,
		classes:        spec.Classes,
		featureLogProb: spec.FeatureLogProb,
	}
	if spec.Type == TypeMultinomialNB {
		if len(spec.ClassLogPrior) != 2 {
			return nil, fmt.Errorf("class_log_prior needs 2 values, got %d", len(spec.ClassLogPrior))
		}
		nb.classLogPrior = spec.ClassLogPrior
	}
	return nb, nil
}

func (m *NaiveBayes) jointLogLikelihood(v service.Vector) ([]float64, error) {
	jll := make([]float64, len(m.classes))
	for c, row := range m.featureLogProb {
		s, err := v.Dot(row)
		if err != nil {
			return nil, err
		}
		if m.classLogPrior != nil {
			s += m.classLogPrior[c]
		}
		jll[c] = s
	}
	return jll, nil
}

// Predict returns the class with the highest joint log likelihood
func (m *NaiveBayes) Predict(v service.Vector) (int, error) {
	jll, err := m.jointLogLikelihood(v)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(jll); c++ {
		if jll[c] > jll[best] {
			best = c
		}
	}
	return m.classes[best], nil
}

// PredictProbability normalizes the joint log likelihood with log-sum-exp
func (m *NaiveBayes) PredictProbability(v service.Vector) ([]float64, error) {
	jll, err := m.jointLogLikelihood(v)
	if err != nil {
		return nil, err
	}
	return softmax(jll), nil
}

// Classes returns the class labels in column order
func (m *NaiveBayes) Classes() []int { return m.classes }

// NumFeatures returns the expected input dimension
func (m *NaiveBayes) NumFeatures() int { return len(m.featureLogProb[0]) }

// Type returns the artifact type name
func (m *NaiveBayes) Type() string { return m.kind }

// expit is the logistic sigmoid, stable for large |x|
func expit(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
