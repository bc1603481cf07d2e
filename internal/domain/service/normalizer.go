package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases text and collapses every whitespace run, including
// leading and trailing ones, into a single ASCII space. Tokenization details
// such as punctuation and stop words are left to the vectorizer.
func Normalize(text string) string {
	lowered := cases.Lower(language.Und).String(text)
	return strings.Join(strings.FieldsFunc(lowered, isSeparator), " ")
}

// isSeparator reports Unicode white space and the ASCII information
// separators U+001C..U+001F, which also split words.
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// TrimText strips leading and trailing white space using the same separator
// set as Normalize.
func TrimText(text string) string {
	return strings.TrimFunc(text, isSeparator)
}
