package jsonrecovery

import (
	"regexp"
	"strings"
)

var (
	pythonLiterals = strings.NewReplacer("True", "true", "False", "false", "None", "null")
	pythonLiteral  = regexp.MustCompile(`\b(?:True|False|None)\b`)
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	bareKey        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	decimalComma   = regexp.MustCompile(`(:\s*-?)(\d{1,3}(?:\.\d{3})+,\d{2}|\d+,\d{2})(\s*(?:[,}\]]|$))`)
)

// segment is a run of response text that is either a quoted string or code.
type segment struct {
	text   string
	quoted bool
}

// splitSegments cuts text into code and string segments. Single-quoted strings are
// rewritten as double-quoted JSON strings on the way.
func splitSegments(text string) []segment {
	var (
		segments []segment
		code     strings.Builder
	)
	flushCode := func() {
		if code.Len() > 0 {
			segments = append(segments, segment{text: code.String()})
			code.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '"' && c != '\'' {
			code.WriteByte(c)
			i++
			continue
		}

		flushCode()
		str, next := readString(text, i)
		segments = append(segments, segment{text: str, quoted: true})
		i = next
	}
	flushCode()
	return segments
}

// readString reads the string opening at text[start] and returns it as a
// double-quoted literal plus the index just past its closing quote. An unterminated
// string runs to the end of text and is closed.
func readString(text string, start int) (string, int) {
	quote := text[start]
	var b strings.Builder
	b.WriteByte('"')
	i := start + 1
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			next := text[i+1]
			if next == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i += 2
			continue
		case c == quote:
			b.WriteByte('"')
			return b.String(), i + 1
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
		i++
	}
	b.WriteByte('"')
	return b.String(), i
}

// RepairBasic applies the cheap textual fixes outside string literals: quote
// normalization, Python literals, trailing commas, bare keys and decimal commas.
func RepairBasic(text string) string {
	segments := splitSegments(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range segments {
		if seg.quoted {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(repairCode(seg.text))
	}
	return b.String()
}

func repairCode(code string) string {
	code = pythonLiteral.ReplaceAllStringFunc(code, pythonLiterals.Replace)
	code = bareKey.ReplaceAllString(code, `$1"$2"$3`)
	code = decimalComma.ReplaceAllStringFunc(code, func(m string) string {
		parts := decimalComma.FindStringSubmatch(m)
		number := strings.ReplaceAll(parts[2], ".", "")
		number = strings.Replace(number, ",", ".", 1)
		return parts[1] + number + parts[3]
	})
	return trailingComma.ReplaceAllString(code, "$1")
}
