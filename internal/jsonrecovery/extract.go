package jsonrecovery

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	closedFence = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)```")
	anyFence    = regexp.MustCompile("```[A-Za-z]*")
)

// Extract is the first stage: it strips code fences and surrounding prose, keeps the
// span from the first '{' to the last '}' and replaces control characters.
func Extract(raw string) (string, error) {
	text := raw
	if m := closedFence.FindStringSubmatch(text); m != nil && strings.Contains(m[1], "{") {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return sanitize(text[start : end+1]), nil
}

// cleanResponse drops fence markers and control characters but keeps everything
// else, including a truncated tail.
func cleanResponse(raw string) string {
	return sanitize(anyFence.ReplaceAllString(raw, " "))
}

// sanitize turns tabs and line breaks into spaces and drops other control characters.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}
