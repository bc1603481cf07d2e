package model

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateTokenPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    []string
	}{
		{
			name:    "default pattern keeps accented words whole",
			pattern: DefaultTokenPattern,
			text:    "un café très bon a",
			want:    []string{"un", "café", "très", "bon"},
		},
		{
			name:    "bounded word run with minimum length",
			pattern: `(?u)\b\w{3,}\b`,
			text:    "ça va très bien",
			want:    []string{"très", "bien"},
		},
		{
			name:    "unicode digits",
			pattern: `\d+`,
			text:    "٣٤ and 12",
			want:    []string{"٣٤", "12"},
		},
		{
			name:    "unicode whitespace separated",
			pattern: `\S+`,
			text:    "a\u2003b\u00a0c",
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "literal backslash is kept",
			pattern: `a\\b`,
			text:    `a\b`,
			want:    []string{`a\b`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated, err := translateTokenPattern(tt.pattern)
			require.NoError(t, err)

			re, err := regexp.Compile(translated)
			require.NoError(t, err)

			assert.Equal(t, tt.want, re.FindAllString(tt.text, -1))
		})
	}
}

func TestTranslateTokenPattern_Rejects(t *testing.T) {
	patterns := []string{
		`(?u)\b\w{3}\b`,
		`(?u)\b\w+?\b`,
		`#\w+\b`,
		`\B\w+`,
		`[^\S]+`,
		`[abc`,
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			_, err := translateTokenPattern(pattern)

			assert.Error(t, err)
		})
	}
}
