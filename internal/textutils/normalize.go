// Package textutils cleans statement text and provides the string helpers shared by
// the heuristic extractor, the recovery parser and the merger.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

// pageMarkerPatterns match whole lines that only mark a page boundary.
var pageMarkerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^[-=*\[\]()# ]*(?:page|p[aá]gina|p[aá]g\.?|hoja)\s*\d+(?:\s*(?:/|of|de)\s*\d+)?[-=*\[\]()# ]*$`),
	regexp.MustCompile(`(?i)^[-=*\[\]()# ]*(?:page|p[aá]gina)\s*break[-=*\[\]()# ]*$`),
	regexp.MustCompile(`(?i)^[-=*\[\]()# ]*(?:fin de p[aá]gina|end of page)[-=*\[\]()# ]*$`),
}

// Normalize cleans raw statement text: line breaks become "\n", form feeds count as
// page breaks, control characters are dropped, whitespace runs collapse to one space,
// and empty or page-marker lines are removed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.NewReplacer("\r", "\n", "\f", "\n", "\v", "\n", "\u2028", "\n", "\u2029", "\n").Replace(raw)

	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" || IsPageMarker(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// IsPageMarker reports whether a cleaned line is only a page boundary marker.
func IsPageMarker(line string) bool {
	for _, re := range pageMarkerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// cleanLine drops non-printable runes and collapses whitespace within a single line.
func cleanLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	pendingSpace := false
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r), !unicode.IsPrint(r), r == unicode.ReplacementChar:
			// dropped
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lines splits normalized text into its statement lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
