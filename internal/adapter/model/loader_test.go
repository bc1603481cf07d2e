package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/config"
)

type fakeStopwords map[string][]string

func (f fakeStopwords) Stopwords(name string) ([]string, error) {
	words, ok := f[name]
	if !ok {
		return nil, errors.New("stop word list not found")
	}
	return words, nil
}

func testArtifactsConfig() *config.ArtifactsConfig {
	return &config.ArtifactsConfig{
		ModelPath:      "testdata/logistic_regression.json",
		VectorizerPath: "testdata/vectorizer.json",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads valid artifacts", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)

		artifacts := Load(testArtifactsConfig(), nil, zap.New(core))

		require.True(t, artifacts.Available())
		assert.NoError(t, artifacts.Err())
		assert.Equal(t, TypeLogisticRegression, artifacts.Classifier().Type())
		assert.Equal(t, TypeTfidfVectorizer, artifacts.Vectorizer().Type())
		assert.Len(t, artifacts.Fingerprint(), 64)
		assert.Equal(t, 1, logs.FilterMessage("Model and vectorizer loaded").Len())
	})

	t.Run("fingerprint is stable", func(t *testing.T) {
		a := Load(testArtifactsConfig(), nil, zap.NewNop())
		b := Load(testArtifactsConfig(), nil, zap.NewNop())

		assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("loads naive bayes model", func(t *testing.T) {
		cfg := testArtifactsConfig()
		cfg.ModelPath = "testdata/multinomial_nb.json"

		artifacts := Load(cfg, nil, zap.NewNop())

		require.True(t, artifacts.Available())
		assert.Equal(t, TypeMultinomialNB, artifacts.Classifier().Type())
	})

	t.Run("missing model file degrades to unavailable", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		cfg := testArtifactsConfig()
		cfg.ModelPath = filepath.Join(t.TempDir(), "missing.json")

		artifacts := Load(cfg, nil, zap.New(core))

		assert.False(t, artifacts.Available())
		assert.Nil(t, artifacts.Classifier())
		assert.Nil(t, artifacts.Vectorizer())
		assert.Empty(t, artifacts.Fingerprint())
		assert.ErrorIs(t, artifacts.Err(), os.ErrNotExist)
		assert.Equal(t, 1, logs.FilterMessage("Failed to load model artifacts").Len())
	})

	t.Run("missing vectorizer file degrades both artifacts", func(t *testing.T) {
		cfg := testArtifactsConfig()
		cfg.VectorizerPath = filepath.Join(t.TempDir(), "missing.json")

		artifacts := Load(cfg, nil, zap.NewNop())

		assert.False(t, artifacts.Available())
		assert.Nil(t, artifacts.Classifier())
	})

	t.Run("corrupt data degrades to unavailable", func(t *testing.T) {
		cfg := testArtifactsConfig()
		cfg.ModelPath = writeFile(t, t.TempDir(), "model.json", "\x80\x04\x95 not json")

		artifacts := Load(cfg, nil, zap.NewNop())

		assert.False(t, artifacts.Available())
		assert.Contains(t, artifacts.Err().Error(), "invalid JSON")
	})

	t.Run("incompatible schema degrades to unavailable", func(t *testing.T) {
		cfg := testArtifactsConfig()
		cfg.ModelPath = "testdata/schema_mismatch.json"

		artifacts := Load(cfg, nil, zap.NewNop())

		assert.False(t, artifacts.Available())
		assert.Contains(t, artifacts.Err().Error(), "incompatible artifact")
	})

	t.Run("dimension mismatch loads with a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		cfg := testArtifactsConfig()
		cfg.ModelPath = writeFile(t, t.TempDir(), "model.json",
			`{"type":"LogisticRegression","classes":[0,1],"n_features":2,"coef":[[1,1]],"intercept":[0]}`)

		artifacts := Load(cfg, nil, zap.New(core))

		require.True(t, artifacts.Available())
		assert.Equal(t, 1, logs.Len())

		vec, err := artifacts.Vectorizer().Transform("love this")
		require.NoError(t, err)
		_, err = artifacts.Classifier().Predict(vec)
		assert.Error(t, err)
	})

	t.Run("resolves stop word resource", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testArtifactsConfig()
		cfg.VectorizerPath = writeFile(t, dir, "vectorizer.json",
			`{"type":"CountVectorizer","vocabulary":{"love":0,"this":1},"stop_words_resource":"english"}`)
		cfg.ModelPath = writeFile(t, dir, "model.json",
			`{"type":"LogisticRegression","classes":[0,1],"n_features":2,"coef":[[1,1]],"intercept":[0]}`)

		artifacts := Load(cfg, fakeStopwords{"english": {"this"}}, zap.NewNop())

		require.True(t, artifacts.Available())
		vec, err := artifacts.Vectorizer().Transform("love this")
		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("missing stop word resource degrades to unavailable", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testArtifactsConfig()
		cfg.VectorizerPath = writeFile(t, dir, "vectorizer.json",
			`{"type":"CountVectorizer","vocabulary":{"love":0},"stop_words_resource":"english"}`)

		assert.False(t, Load(cfg, fakeStopwords{}, zap.NewNop()).Available())
		assert.False(t, Load(cfg, nil, zap.NewNop()).Available())
	})
}

func TestLoadVectorizer_NormKey(t *testing.T) {
	t.Run("absent norm defaults to l2", func(t *testing.T) {
		v, err := LoadVectorizer([]byte(`{"type":"TfidfVectorizer","vocabulary":{"a1":0,"b1":1},"idf":[1,1]}`), nil)
		require.NoError(t, err)

		vec, err := v.Transform("a1 b1")

		require.NoError(t, err)
		assert.InDelta(t, 1/1.4142135623730951, vec.Values[0], 1e-12)
	})

	t.Run("null norm disables normalization", func(t *testing.T) {
		v, err := LoadVectorizer([]byte(`{"type":"TfidfVectorizer","vocabulary":{"a1":0,"b1":1},"idf":[1,1],"norm":null}`), nil)
		require.NoError(t, err)

		vec, err := v.Transform("a1 b1")

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1}, vec.Values)
	})
}
