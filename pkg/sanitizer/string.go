package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs to
// a single space. Control characters count as whitespace.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeNote cleans free-text booking notes. The note has no semantic
// constraints, only hygiene.
func NormalizeNote(note string) string {
	return TrimAndNormalize(note)
}

// NormalizeName cleans display names such as property names.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}
