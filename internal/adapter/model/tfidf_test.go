package model

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func unitIDF(n int) []float64 {
	idf := make([]float64, n)
	for i := range idf {
		idf[i] = 1
	}
	return idf
}

func loadTestVectorizer(t *testing.T) *TfidfVectorizer {
	t.Helper()
	data, err := os.ReadFile("testdata/vectorizer.json")
	require.NoError(t, err)
	v, err := LoadVectorizer(data, nil)
	require.NoError(t, err)
	return v
}

func TestTfidfVectorizer_Transform(t *testing.T) {
	v := loadTestVectorizer(t)

	t.Run("weights counts by idf and l2 normalizes", func(t *testing.T) {
		vec, err := v.Transform("i love this movie, love it")

		require.NoError(t, err)
		assert.Equal(t, 6, vec.Dim)
		assert.Equal(t, []int{0, 1, 5}, vec.Indices)

		raw := []float64{2 * 1.2, 1 * 1.0, 1 * 1.1}
		n := math.Sqrt(raw[0]*raw[0] + raw[1]*raw[1] + raw[2]*raw[2])
		for i := range raw {
			assert.InDelta(t, raw[i]/n, vec.Values[i], 1e-12)
		}
	})

	t.Run("ignores single character and unknown tokens", func(t *testing.T) {
		vec, err := v.Transform("a b c unknown words")

		require.NoError(t, err)
		assert.Equal(t, 0, vec.NNZ())
		assert.Equal(t, 6, vec.Dim)
	})

	t.Run("lowercases before lookup", func(t *testing.T) {
		vec, err := v.Transform("GREAT")

		require.NoError(t, err)
		assert.Equal(t, []int{2}, vec.Indices)
		assert.InDelta(t, 1.0, vec.Values[0], 1e-12)
	})

	t.Run("punctuation separates tokens", func(t *testing.T) {
		vec, err := v.Transform("terrible!!!movie")

		require.NoError(t, err)
		assert.Equal(t, []int{4, 5}, vec.Indices)
	})
}

func TestTfidfVectorizer_Options(t *testing.T) {
	t.Run("stop words from artifact and resource", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:       TypeTfidfVectorizer,
			Vocabulary: map[string]int{"love": 0, "this": 1, "movie": 2},
			IDF:        unitIDF(3),
			StopWords:  []string{"this"},
		}
		v, err := NewTfidfVectorizer(spec, []string{"movie"})
		require.NoError(t, err)

		vec, err := v.Transform("love this movie")

		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("word n-grams", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:       TypeTfidfVectorizer,
			Vocabulary: map[string]int{"not": 0, "good": 1, "not good": 2},
			IDF:        unitIDF(3),
			NgramRange: []int{1, 2},
			normSet:    true,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("not good")

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, vec.Indices)
		assert.Equal(t, []float64{1, 1, 1}, vec.Values)
	})

	t.Run("strip accents", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:         TypeCountVectorizer,
			Vocabulary:   map[string]int{"cafe": 0, "naive": 1},
			StripAccents: strPtr("unicode"),
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("Café naïve café")

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, vec.Indices)
		assert.Equal(t, []float64{2, 1}, vec.Values)
	})

	t.Run("binary and sublinear tf", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:        TypeTfidfVectorizer,
			Vocabulary:  map[string]int{"good": 0, "bad": 1},
			UseIDF:      boolPtr(false),
			SublinearTF: true,
			normSet:     true,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("good good bad")

		require.NoError(t, err)
		assert.InDelta(t, 1+math.Log(2), vec.Values[0], 1e-12)
		assert.InDelta(t, 1.0, vec.Values[1], 1e-12)

		spec.Binary = true
		v, err = NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err = v.Transform("good good bad")

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1}, vec.Values)
	})

	t.Run("l1 norm", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:       TypeTfidfVectorizer,
			Vocabulary: map[string]int{"good": 0, "bad": 1},
			IDF:        []float64{1, 3},
			Norm:       strPtr("l1"),
			normSet:    true,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("good bad")

		require.NoError(t, err)
		assert.InDelta(t, 0.25, vec.Values[0], 1e-12)
		assert.InDelta(t, 0.75, vec.Values[1], 1e-12)
	})

	t.Run("custom token pattern with a capture group", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:         TypeCountVectorizer,
			Vocabulary:   map[string]int{"great": 0, "day": 1},
			TokenPattern: `#(\w+)`,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("#great day")

		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("unicode custom token pattern", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:         TypeCountVectorizer,
			Vocabulary:   map[string]int{"café": 0, "très": 1, "bon": 2},
			TokenPattern: `(?u)\b\w+\b`,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("café très bon")

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, vec.Indices)
	})

	t.Run("unicode word class inside a character class", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:         TypeCountVectorizer,
			Vocabulary:   map[string]int{"naïve-ish": 0},
			TokenPattern: `[\w-]+`,
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("naïve-ish!")

		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("keeps case when lowercase is disabled", func(t *testing.T) {
		spec := &VectorizerSpec{
			Type:       TypeCountVectorizer,
			Vocabulary: map[string]int{"Good": 0, "good": 1},
			Lowercase:  boolPtr(false),
		}
		v, err := NewTfidfVectorizer(spec, nil)
		require.NoError(t, err)

		vec, err := v.Transform("Good good")

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, vec.Indices)
	})
}

func TestNewTfidfVectorizer_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec *VectorizerSpec
	}{
		{
			name: "unknown type",
			spec: &VectorizerSpec{Type: "HashingVectorizer", Vocabulary: map[string]int{"a": 0}},
		},
		{
			name: "empty vocabulary",
			spec: &VectorizerSpec{Type: TypeCountVectorizer},
		},
		{
			name: "index out of range",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 5}},
		},
		{
			name: "idf length mismatch",
			spec: &VectorizerSpec{Type: TypeTfidfVectorizer, Vocabulary: map[string]int{"a": 0, "b": 1}, IDF: []float64{1}},
		},
		{
			name: "bad ngram range",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, NgramRange: []int{2, 1}},
		},
		{
			name: "bad token pattern",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, TokenPattern: "(unclosed"},
		},
		{
			name: "word boundary that cannot be translated",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, TokenPattern: `(?u)\b\w{3}\b`},
		},
		{
			name: "non word boundary",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, TokenPattern: `\B\w+`},
		},
		{
			name: "negated word class inside a character class",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, TokenPattern: `[\W]+`},
		},
		{
			name: "norm on count vectorizer",
			spec: &VectorizerSpec{Type: TypeCountVectorizer, Vocabulary: map[string]int{"a": 0}, Norm: strPtr("l2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewTfidfVectorizer(tt.spec, nil)

			assert.Error(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestTfidfVectorizer_Metadata(t *testing.T) {
	v := loadTestVectorizer(t)

	assert.Equal(t, 6, v.Dim())
	assert.Equal(t, 6, v.VocabularySize())
	assert.Equal(t, TypeTfidfVectorizer, v.Type())
}
