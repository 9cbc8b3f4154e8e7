package jsonrecovery

import (
	"fmt"
	"regexp"

	"fedelife/expense-extractor/internal/models"
)

// DefaultMaxFallbackElements caps how many triplets the regex stage will take.
const DefaultMaxFallbackElements = 50

var tripletPattern = regexp.MustCompile(`(?i)["']?(?:description|descripcion|desc|concepto|detalle|merchant)["']?\s*:\s*["']([^"']{1,200})["'][^{}]*?["']?(?:amount|monto|importe|value)["']?\s*:\s*["']?(-?\d+(?:[.,]\d+)*)(?:[^{}]*?["']?(?:currency|moneda)["']?\s*:\s*["']([^"']{1,5})["'])?`)

// parseRegexFallback is the last resort: it scans the whole response for
// description/amount/currency triplets and builds minimal elements from them.
func parseRegexFallback(raw string, limit int) (*Document, error) {
	if limit <= 0 {
		limit = DefaultMaxFallbackElements
	}
	doc := &Document{}
	for _, m := range tripletPattern.FindAllStringSubmatch(cleanResponse(raw), limit) {
		el := Element{
			"description": m[1],
			"amount":      m[2],
			"currency":    m[3],
			"category":    models.CategoryOther,
			"confidence":  string(models.ConfidenceLow),
		}
		if el.check(false) != nil {
			doc.Dropped++
			continue
		}
		doc.Elements = append(doc.Elements, el)
	}
	if len(doc.Elements) == 0 {
		return nil, fmt.Errorf("%w: no description/amount pair found", ErrNothingSalvaged)
	}
	return doc, nil
}
