// Package strings holds the identifier transforms used to derive table names.
package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a CamelCase resource name to a snake_case table name.
// Acronyms stay together (HTTPRequest -> http_request), digits stay with the word
// before them (Order2Line -> order2_line) and spaces or hyphens become underscores.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(s))

	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
		case unicode.IsUpper(r):
			if i > 0 && startsWord(runes, i) && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// startsWord reports whether the upper-case rune at i begins a new word
func startsWord(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// end of an acronym: HTTPRequest
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
