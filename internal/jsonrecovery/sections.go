package jsonrecovery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"fedelife/expense-extractor/internal/logging"
)

var (
	expensesMarker   = regexp.MustCompile(`(?i)["']?(?:expenses|gastos)["']?\s*:\s*\[`)
	headerSuccess    = regexp.MustCompile(`(?i)["']success["']\s*:\s*["']?(true|false)`)
	headerConfidence = regexp.MustCompile(`(?i)["']confidence["']\s*:\s*["']?(\d+(?:\.\d+)?)`)
	headerSummary    = regexp.MustCompile(`(?i)["']summary["']\s*:\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`)
)

// scanState is the state of the object splitter.
type scanState int

const (
	stateCode scanState = iota
	stateString
	stateEscape
)

// splitObjects returns the top-level {...} objects of an array body. Quotes of
// either kind open strings, and braces inside strings are ignored. A final object
// cut off by truncation is returned as is.
func splitObjects(region string) []string {
	var (
		objects []string
		state   = stateCode
		quote   byte
		depth   int
		start   = -1
	)

	for i := 0; i < len(region); i++ {
		c := region[i]
		switch state {
		case stateEscape:
			state = stateString
		case stateString:
			switch c {
			case '\\':
				state = stateEscape
			case quote:
				state = stateCode
			}
		case stateCode:
			switch c {
			case '"', '\'':
				quote = c
				state = stateString
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					objects = append(objects, region[start:i+1])
					start = -1
				}
			}
		}
	}

	if depth > 0 && start >= 0 {
		objects = append(objects, region[start:])
	}
	return objects
}

// parseSections is the section-based stage. It reads the header fields with
// fixed-shape patterns, splits the expenses array object by object and keeps every
// object that parses (directly or after basic repair) and carries a description,
// a date and a positive amount.
func parseSections(raw string, logger logging.Logger) (*Document, error) {
	text := cleanResponse(raw)
	loc := expensesMarker.FindStringIndex(text)
	if loc == nil {
		return nil, ErrMarkerNotFound
	}
	end := strings.LastIndex(text, "]")
	if end < loc[1] {
		end = len(text)
	}

	doc := &Document{}
	readSectionHeader(doc, text[:loc[0]]+" "+text[end:])

	for i, obj := range splitObjects(text[loc[1]:end]) {
		el, err := parseObject(obj)
		if err == nil {
			err = el.check(true)
		}
		if err != nil {
			doc.Dropped++
			logger.Debug("Dropping expense element",
				logging.F(logging.FieldStage, StageSection),
				logging.F(logging.FieldLineNumber, i),
				logging.F(logging.FieldReason, err.Error()))
			continue
		}
		doc.Elements = append(doc.Elements, el)
	}

	if len(doc.Elements) == 0 {
		return nil, fmt.Errorf("%w: %d element(s) dropped", ErrNothingSalvaged, doc.Dropped)
	}
	return doc, nil
}

func readSectionHeader(doc *Document, header string) {
	if m := headerSuccess.FindStringSubmatch(header); m != nil {
		doc.Success, doc.HasSuccess = strings.EqualFold(m[1], "true"), true
	}
	if m := headerConfidence.FindStringSubmatch(header); m != nil {
		if score, ok := toScore(m[1]); ok {
			doc.Confidence, doc.HasConfidence = score, true
		}
	}
	if m := headerSummary.FindStringSubmatch(header); m != nil {
		doc.Summary = strings.TrimSpace(m[1] + m[2])
	}
}

// parseObject decodes one object, retrying once after basic repair.
func parseObject(obj string) (Element, error) {
	if el, err := decodeElement(obj); err == nil {
		return el, nil
	}
	return decodeElement(RepairBasic(obj))
}

func decodeElement(text string) (Element, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("element is null")
	}
	return Element(m), nil
}
