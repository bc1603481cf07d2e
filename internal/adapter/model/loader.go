package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/config"
)

// StopwordSource resolves named stop word lists provisioned on local storage
type StopwordSource interface {
	Stopwords(name string) ([]string, error)
}

// Load reads the classifier and vectorizer artifacts. It never fails: any
// error is logged and yields Unavailable artifacts, which keep the service
// up in an always-erroring prediction mode.
func Load(cfg *config.ArtifactsConfig, stopwords StopwordSource, log *zap.Logger) *Artifacts {
	artifacts, err := load(cfg, stopwords, log)
	if err != nil {
		log.Error("Failed to load model artifacts",
			zap.String("model_path", cfg.ModelPath),
			zap.String("vectorizer_path", cfg.VectorizerPath),
			zap.Error(err),
		)
		return Unavailable(err)
	}

	log.Info("Model and vectorizer loaded",
		zap.String("model_type", artifacts.classifier.Type()),
		zap.String("vectorizer_type", artifacts.vectorizer.Type()),
		zap.Int("vocabulary_size", artifacts.vectorizer.VocabularySize()),
		zap.String("fingerprint", artifacts.fingerprint),
	)
	return artifacts
}

func load(cfg *config.ArtifactsConfig, stopwords StopwordSource, log *zap.Logger) (artifacts *Artifacts, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifacts, err = nil, fmt.Errorf("panic while loading artifacts: %v", r)
		}
	}()

	vecData, err := os.ReadFile(cfg.VectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	vectorizer, err := LoadVectorizer(vecData, stopwords)
	if err != nil {
		return nil, fmt.Errorf("vectorizer %s: %w", cfg.VectorizerPath, err)
	}

	modelData, err := os.ReadFile(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	var classifier service.Classifier
	if strings.EqualFold(filepath.Ext(cfg.ModelPath), ".onnx") {
		classifier, err = NewONNXClassifier(cfg.ModelPath, cfg.ONNXLibraryPath)
	} else {
		classifier, err = LoadClassifier(modelData)
	}
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", cfg.ModelPath, err)
	}

	if classifier.NumFeatures() != vectorizer.Dim() {
		log.Warn("Classifier and vectorizer dimensions differ; predictions will fail",
			zap.Int("classifier_features", classifier.NumFeatures()),
			zap.Int("vectorizer_features", vectorizer.Dim()),
		)
	}

	return NewArtifacts(classifier, vectorizer, fingerprint(modelData, vecData)), nil
}

// LoadVectorizer validates and decodes a vectorizer artifact
func LoadVectorizer(data []byte, stopwords StopwordSource) (*TfidfVectorizer, error) {
	if err := validateArtifact(vectorizerSchema, data); err != nil {
		return nil, err
	}

	var spec VectorizerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	_, spec.normSet = keys["norm"]

	var extra []string
	if spec.StopWordsResource != "" {
		if stopwords == nil {
			return nil, fmt.Errorf("stop word list %q requested but no resource directory is configured", spec.StopWordsResource)
		}
		words, err := stopwords.Stopwords(spec.StopWordsResource)
		if err != nil {
			return nil, fmt.Errorf("stop word list %q: %w", spec.StopWordsResource, err)
		}
		extra = words
	}

	return NewTfidfVectorizer(&spec, extra)
}

// LoadClassifier validates and decodes a JSON classifier artifact
func LoadClassifier(data []byte) (service.Classifier, error) {
	if err := validateArtifact(classifierSchema, data); err != nil {
		return nil, err
	}

	var spec ClassifierSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	return NewClassifier(&spec)
}

func fingerprint(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
