// Package dateutils parses the date notations seen in statements and model output
// and renders them as ISO calendar dates.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted by ParseDate, tried in order.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutSlash     = "02/01/2006"
	DateLayoutSlashYY   = "02/01/06"
	DateLayoutDotted    = "02.01.2006"
	DateLayoutDottedYY  = "02.01.06"
	DateLayoutDashed    = "02-01-2006"
	DateLayoutSpacedYY  = "02 01 06"
	DateLayoutWithMonth = "2-Jan-2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutRFC3339   = time.RFC3339
)

// CommonFormats is the ordered list of layouts ParseDate tries. Day-first layouts come
// before any month-first reading since the statements this tool reads are day-first.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutRFC3339,
	DateLayoutFull,
	DateLayoutSlash,
	DateLayoutSlashYY,
	DateLayoutDotted,
	DateLayoutDottedYY,
	DateLayoutDashed,
	DateLayoutSpacedYY,
	DateLayoutWithMonth,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

var (
	leadingSpacedDate = regexp.MustCompile(`^\s*(\d{2})\s(\d{2})\s(\d{2})\b`)
	inlineDate        = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2}|\d{4})\b`)
	isoDate           = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// DatePatterns match date tokens inside a statement line. They are exported so the
// extractor can mask dates before looking for amounts.
var DatePatterns = []*regexp.Regexp{leadingSpacedDate, isoDate, inlineDate}

// ParseDate tries every layout in CommonFormats and returns the first match with its layout.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeISO returns the ISO form of dateStr, or "" when it cannot be parsed.
func NormalizeISO(dateStr string) string {
	if strings.TrimSpace(dateStr) == "" {
		return ""
	}
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return ""
	}
	return ToISODate(t)
}

// StartsWithDate reports whether the line opens with the "DD MM YY" date column.
func StartsWithDate(line string) bool {
	return leadingSpacedDate.MatchString(line)
}

// ExtractDate finds the first date in a statement line, either the leading "DD MM YY"
// column or an inline DD/MM/YY(YY) token, and returns it in ISO form.
func ExtractDate(line string) (string, bool) {
	if m := leadingSpacedDate.FindStringSubmatch(line); m != nil {
		if iso := NormalizeISO(m[1] + " " + m[2] + " " + m[3]); iso != "" {
			return iso, true
		}
	}
	if m := isoDate.FindString(line); m != "" {
		if iso := NormalizeISO(m); iso != "" {
			return iso, true
		}
	}
	for _, m := range inlineDate.FindAllStringSubmatch(line, -1) {
		candidate := pad2(m[1]) + "/" + pad2(m[2]) + "/" + m[3]
		if iso := NormalizeISO(candidate); iso != "" {
			return iso, true
		}
	}
	return "", false
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims whitespace and quotes and collapses inner whitespace runs.
func CleanDateString(dateStr string) string {
	dateStr = strings.Trim(strings.TrimSpace(dateStr), `"'`)
	return strings.Join(strings.Fields(dateStr), " ")
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
