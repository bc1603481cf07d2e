package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Unicode class bodies matching the str semantics of scikit-learn patterns.
// RE2 reads \w, \d and \s as ASCII only.
const (
	wordClass  = `\p{L}\p{N}_`
	digitClass = `\p{Nd}`
	spaceClass = `\t\n\v\f\r\x1c-\x1f\x85\p{Z}`
)

var repeatAtLeast = regexp.MustCompile(`^\{[0-9]+,\}$`)

type patternToken struct {
	text     string
	word     bool
	boundary bool
}

// translateTokenPattern rewrites a scikit-learn token pattern into an RE2
// expression with the same Unicode meaning. Word boundaries are only
// accepted around a single greedy run of word characters, where dropping
// them leaves the set of matches unchanged. Anything else is rejected.
func translateTokenPattern(pattern string) (string, error) {
	tokens, err := tokenizePattern(strings.TrimPrefix(pattern, "(?u)"))
	if err != nil {
		return "", fmt.Errorf("token_pattern %q: %w", pattern, err)
	}

	hasBoundary := false
	for _, tok := range tokens {
		if tok.boundary {
			hasBoundary = true
			break
		}
	}
	if hasBoundary {
		body, ok := boundedWordRun(tokens)
		if !ok {
			return "", fmt.Errorf("token_pattern %q: word boundaries are only supported around a greedy word run", pattern)
		}
		tokens = body
	}

	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.text)
	}
	return b.String(), nil
}

// boundedWordRun accepts \b W...W+ \b (or W{n,}) and returns the tokens
// between the boundaries.
func boundedWordRun(tokens []patternToken) ([]patternToken, bool) {
	n := len(tokens)
	if n < 4 || !tokens[0].boundary || !tokens[n-1].boundary {
		return nil, false
	}
	body := tokens[1 : n-1]
	last := body[len(body)-1].text
	if last != "+" && !repeatAtLeast.MatchString(last) {
		return nil, false
	}
	for _, tok := range body[:len(body)-1] {
		if !tok.word {
			return nil, false
		}
	}
	return body, true
}

func tokenizePattern(pattern string) ([]patternToken, error) {
	runes := []rune(pattern)
	var tokens []patternToken

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("trailing backslash")
			}
			esc, end := readEscape(runes, i)
			i = end
			switch esc {
			case `\b`:
				tokens = append(tokens, patternToken{text: esc, boundary: true})
			case `\B`:
				return nil, fmt.Errorf(`\B is not supported`)
			case `\w`:
				tokens = append(tokens, patternToken{text: "[" + wordClass + "]", word: true})
			case `\W`:
				tokens = append(tokens, patternToken{text: "[^" + wordClass + "]"})
			case `\d`:
				tokens = append(tokens, patternToken{text: digitClass})
			case `\D`:
				tokens = append(tokens, patternToken{text: `\P{Nd}`})
			case `\s`:
				tokens = append(tokens, patternToken{text: "[" + spaceClass + "]"})
			case `\S`:
				tokens = append(tokens, patternToken{text: "[^" + spaceClass + "]"})
			default:
				tokens = append(tokens, patternToken{text: esc})
			}
		case '[':
			class, end, err := readClass(runes, i)
			if err != nil {
				return nil, err
			}
			i = end
			tokens = append(tokens, patternToken{text: class})
		case '{':
			end := i
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end == len(runes) {
				tokens = append(tokens, patternToken{text: "{"})
				continue
			}
			tokens = append(tokens, patternToken{text: string(runes[i : end+1])})
			i = end
		default:
			tokens = append(tokens, patternToken{text: string(runes[i])})
		}
	}
	return tokens, nil
}

// readEscape returns the escape starting at runes[i] and the index of its
// last rune. \p{..} and \x{..} are read through the closing brace.
func readEscape(runes []rune, i int) (string, int) {
	end := i + 1
	switch runes[end] {
	case 'p', 'P', 'x':
		if end+1 < len(runes) && runes[end+1] == '{' {
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end == len(runes) {
				end--
			}
		}
	}
	return string(runes[i : end+1]), end
}

func readClass(runes []rune, start int) (string, int, error) {
	var b strings.Builder
	b.WriteRune('[')
	i := start + 1
	if i < len(runes) && runes[i] == '^' {
		b.WriteRune('^')
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		b.WriteString(`\]`)
		i++
	}
	for ; i < len(runes); i++ {
		switch runes[i] {
		case ']':
			b.WriteRune(']')
			return b.String(), i, nil
		case '[':
			b.WriteString(`\[`)
		case '\\':
			if i+1 >= len(runes) {
				return "", 0, fmt.Errorf("trailing backslash")
			}
			esc, end := readEscape(runes, i)
			i = end
			switch esc {
			case `\w`:
				b.WriteString(wordClass)
			case `\d`:
				b.WriteString(digitClass)
			case `\D`:
				b.WriteString(`\P{Nd}`)
			case `\s`:
				b.WriteString(spaceClass)
			case `\W`, `\S`:
				return "", 0, fmt.Errorf("%s inside a character class is not supported", esc)
			default:
				b.WriteString(esc)
			}
		default:
			b.WriteRune(runes[i])
		}
	}
	return "", 0, fmt.Errorf("missing closing ]")
}
