package textutils

import (
	"regexp"
	"strings"
)

var (
	installmentPattern = regexp.MustCompile(`(?:^|\s)(?:CUOTAS?\s*)?(\d{1,2})/(\d{1,2})(?:\s|$)`)
	multiSpacePattern  = regexp.MustCompile(`\s{2,}`)
	edgePunctPattern   = regexp.MustCompile(`^[\s\-:*.,;/|]+|[\s\-:*.,;/|]+$`)
)

// ExtractInstallment returns the installment marker ("03/12") found in a statement line,
// or "" when the line has none. Markers where the current installment exceeds the
// total are not installments and are ignored.
func ExtractInstallment(line string) string {
	m := installmentPattern.FindStringSubmatch(strings.ToUpper(line))
	if len(m) < 3 {
		return ""
	}
	current, total := m[1], m[2]
	if atoi(current) == 0 || atoi(total) == 0 || atoi(current) > atoi(total) {
		return ""
	}
	return leftPad2(current) + "/" + leftPad2(total)
}

// RemoveSpans blanks out every match of the patterns and tidies the remaining text.
// It is used to turn a statement line into a description once amounts and dates are known.
func RemoveSpans(line string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		line = re.ReplaceAllString(line, " ")
	}
	line = multiSpacePattern.ReplaceAllString(line, " ")
	return edgePunctPattern.ReplaceAllString(line, "")
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func leftPad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
