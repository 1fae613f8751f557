// Package wordlist turns free-form user input into an ordered list of target
// words.
package wordlist

import (
	"strings"
	"unicode"
)

// Normalize splits raw on runs of whitespace, ASCII commas and full-width
// commas. Tokens keep their order, case and duplicates. Empty input yields
// an empty, non-nil list.
func Normalize(raw string) []string {
	fields := strings.FieldsFunc(raw, isSeparator)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := strings.TrimSpace(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Join renders words one per line, the form Normalize reads back unchanged.
func Join(words []string) string {
	return strings.Join(words, "\n")
}

func isSeparator(r rune) bool {
	return r == ',' || r == '，' || unicode.IsSpace(r)
}
