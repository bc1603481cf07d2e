package model

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
)

// Vectorizer artifact types
const (
	TypeTfidfVectorizer = "TfidfVectorizer"
	TypeCountVectorizer = "CountVectorizer"
)

// DefaultTokenPattern is the scikit-learn default token pattern. It is
// rewritten to an equivalent RE2 expression since RE2 has no Unicode \b.
const DefaultTokenPattern = `(?u)\b\w\w+\b`

const defaultTokenRE = `[\p{L}\p{N}_]{2,}`

// VectorizerSpec is the decoded vectorizer artifact
type VectorizerSpec struct {
	Type              string         `json:"type"`
	Vocabulary        map[string]int `json:"vocabulary"`
	IDF               []float64      `json:"idf"`
	Lowercase         *bool          `json:"lowercase"`
	StripAccents      *string        `json:"strip_accents"`
	TokenPattern      string         `json:"token_pattern"`
	NgramRange        []int          `json:"ngram_range"`
	StopWords         []string       `json:"stop_words"`
	StopWordsResource string         `json:"stop_words_resource"`
	Binary            bool           `json:"binary"`
	Norm              *string        `json:"norm"`
	UseIDF            *bool          `json:"use_idf"`
	SublinearTF       bool           `json:"sublinear_tf"`

	// normSet is true when the artifact carried a "norm" key, even as null.
	normSet bool
}

// TfidfVectorizer reproduces the transform step of a fitted scikit-learn
// TfidfVectorizer or CountVectorizer. It is immutable after construction and
// safe for concurrent use.
type TfidfVectorizer struct {
	kind       string
	vocabulary map[string]int
	idf        []float64
	lowercase  bool
	accents    string
	token      *regexp.Regexp
	group      int
	minN, maxN int
	stopWords  map[string]struct{}
	binary     bool
	norm       string
	useIDF     bool
	sublinear  bool
}

var _ service.Vectorizer = (*TfidfVectorizer)(nil)

// NewTfidfVectorizer builds a vectorizer from its artifact spec. extraStopWords
// are merged with the artifact's inline list.
func NewTfidfVectorizer(spec *VectorizerSpec, extraStopWords []string) (*TfidfVectorizer, error) {
	if spec.Type != TypeTfidfVectorizer && spec.Type != TypeCountVectorizer {
		return nil, fmt.Errorf("unsupported vectorizer type %q", spec.Type)
	}
	if len(spec.Vocabulary) == 0 {
		return nil, errors.New("vectorizer vocabulary is empty")
	}

	v := &TfidfVectorizer{
		kind:       spec.Type,
		vocabulary: spec.Vocabulary,
		lowercase:  true,
		minN:       1,
		maxN:       1,
		binary:     spec.Binary,
		sublinear:  spec.SublinearTF,
	}

	dim := len(spec.Vocabulary)
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("vocabulary index %d for %q out of range [0,%d)", idx, term, dim)
		}
	}

	if spec.Lowercase != nil {
		v.lowercase = *spec.Lowercase
	}
	if spec.StripAccents != nil {
		switch *spec.StripAccents {
		case "unicode", "ascii":
			v.accents = *spec.StripAccents
		default:
			return nil, fmt.Errorf("unsupported strip_accents %q", *spec.StripAccents)
		}
	}

	token, group, err := compileTokenPattern(spec.TokenPattern)
	if err != nil {
		return nil, err
	}
	v.token, v.group = token, group

	if len(spec.NgramRange) > 0 {
		if len(spec.NgramRange) != 2 || spec.NgramRange[0] < 1 || spec.NgramRange[0] > spec.NgramRange[1] {
			return nil, fmt.Errorf("invalid ngram_range %v", spec.NgramRange)
		}
		v.minN, v.maxN = spec.NgramRange[0], spec.NgramRange[1]
	}

	if n := len(spec.StopWords) + len(extraStopWords); n > 0 {
		v.stopWords = make(map[string]struct{}, n)
		for _, w := range spec.StopWords {
			v.stopWords[w] = struct{}{}
		}
		for _, w := range extraStopWords {
			v.stopWords[w] = struct{}{}
		}
	}

	if spec.Type == TypeTfidfVectorizer {
		v.useIDF = true
		if spec.UseIDF != nil {
			v.useIDF = *spec.UseIDF
		}
		v.norm = "l2"
		if spec.normSet {
			v.norm = ""
			if spec.Norm != nil {
				v.norm = *spec.Norm
			}
		}
	} else if spec.Norm != nil {
		return nil, errors.New("norm is not supported for CountVectorizer")
	}

	switch v.norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("unsupported norm %q", v.norm)
	}

	if v.useIDF {
		if len(spec.IDF) != dim {
			return nil, fmt.Errorf("idf has %d weights, vocabulary has %d terms", len(spec.IDF), dim)
		}
		v.idf = spec.IDF
	}

	return v, nil
}

func compileTokenPattern(pattern string) (*regexp.Regexp, int, error) {
	if pattern == "" || pattern == DefaultTokenPattern {
		return regexp.MustCompile(defaultTokenRE), 0, nil
	}
	translated, err := translateTokenPattern(pattern)
	if err != nil {
		return nil, 0, err
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid token_pattern: %w", err)
	}
	switch re.NumSubexp() {
	case 0:
		return re, 0, nil
	case 1:
		return re, 1, nil
	default:
		return nil, 0, fmt.Errorf("token_pattern %q has more than one capturing group", pattern)
	}
}

// Transform converts a document into its sparse feature vector
func (v *TfidfVectorizer) Transform(text string) (service.Vector, error) {
	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := service.Vector{
		Dim:     len(v.vocabulary),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.binary {
			tf = 1
		}
		if v.sublinear {
			tf = 1 + math.Log(tf)
		}
		if v.useIDF {
			tf *= v.idf[idx]
		}
		vec.Values = append(vec.Values, tf)
	}

	normalize(vec.Values, v.norm)
	return vec, nil
}

// analyze runs preprocessing, tokenization, stop word removal and n-gram
// generation, producing the terms looked up in the vocabulary.
func (v *TfidfVectorizer) analyze(text string) []string {
	if v.lowercase {
		text = cases.Lower(language.Und).String(text)
	}
	text = stripAccents(text, v.accents)

	var tokens []string
	for _, m := range v.token.FindAllStringSubmatch(text, -1) {
		tok := m[v.group]
		if _, stop := v.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	var terms []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func stripAccents(text, mode string) string {
	var t transform.Transformer
	switch mode {
	case "unicode":
		t = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	case "ascii":
		t = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })))
	default:
		return text
	}
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func normalize(values []float64, mode string) {
	var total float64
	switch mode {
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}

// Dim returns the number of features
func (v *TfidfVectorizer) Dim() int {
	return len(v.vocabulary)
}

// VocabularySize returns the number of known terms
func (v *TfidfVectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// Type returns the artifact type name
func (v *TfidfVectorizer) Type() string {
	return v.kind
}
