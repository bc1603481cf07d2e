package model

import (
	"errors"
	"io"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
)

// ErrNotLoaded is reported by Unavailable artifacts without a specific cause
var ErrNotLoaded = errors.New("model or vectorizer not loaded")

// Artifacts is the process-wide, read-only inference context built once at
// startup. Either both artifacts are present or neither is.
type Artifacts struct {
	classifier  service.Classifier
	vectorizer  service.Vectorizer
	fingerprint string
	err         error
}

// NewArtifacts wraps a loaded classifier/vectorizer pair
func NewArtifacts(classifier service.Classifier, vectorizer service.Vectorizer, fingerprint string) *Artifacts {
	if classifier == nil || vectorizer == nil {
		return Unavailable(ErrNotLoaded)
	}
	return &Artifacts{
		classifier:  classifier,
		vectorizer:  vectorizer,
		fingerprint: fingerprint,
	}
}

// Unavailable returns the degraded variant used when loading failed
func Unavailable(err error) *Artifacts {
	if err == nil {
		err = ErrNotLoaded
	}
	return &Artifacts{err: err}
}

// Available reports whether predictions can be served
func (a *Artifacts) Available() bool {
	return a != nil && a.classifier != nil && a.vectorizer != nil
}

// Classifier returns the loaded classifier, or nil
func (a *Artifacts) Classifier() service.Classifier {
	if !a.Available() {
		return nil
	}
	return a.classifier
}

// Vectorizer returns the loaded vectorizer, or nil
func (a *Artifacts) Vectorizer() service.Vectorizer {
	if !a.Available() {
		return nil
	}
	return a.vectorizer
}

// Fingerprint identifies the artifact pair; empty when unavailable
func (a *Artifacts) Fingerprint() string {
	if !a.Available() {
		return ""
	}
	return a.fingerprint
}

// Err returns the load failure, or nil when available
func (a *Artifacts) Err() error {
	if a.Available() {
		return nil
	}
	if a == nil || a.err == nil {
		return ErrNotLoaded
	}
	return a.err
}

// Close releases backend resources such as ONNX sessions
func (a *Artifacts) Close() error {
	if a == nil {
		return nil
	}
	if c, ok := a.classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
