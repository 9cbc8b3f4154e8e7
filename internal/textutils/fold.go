package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks, so "Débito Automático" becomes "Debito Automatico".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldKeyword prepares text for keyword matching: diacritics removed, upper case.
func FoldKeyword(s string) string {
	return strings.ToUpper(RemoveDiacritics(s))
}

// NormalizeForComparison lowercases, folds diacritics and replaces punctuation with
// spaces, collapsing the result to single-space separated words.
func NormalizeForComparison(s string) string {
	folded := strings.ToLower(RemoveDiacritics(s))
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// Words returns the distinct comparison tokens of s.
func Words(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(NormalizeForComparison(s)) {
		words[w] = struct{}{}
	}
	return words
}

// TruncateDescription shortens s to at most maxRunes runes, ending in "..." when cut.
func TruncateDescription(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	if maxRunes <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(r[:maxRunes])
	}
	return strings.TrimSpace(string(r[:maxRunes-3])) + "..."
}
