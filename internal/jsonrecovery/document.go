// Package jsonrecovery turns raw language-model output into expenses. The response is
// supposed to be a JSON document but frequently is not: it may be fenced, wrapped in
// prose, use Python literals or single quotes, carry decimal commas or be truncated.
// Parser runs an ordered cascade of increasingly lenient stages until one salvages
// something.
package jsonrecovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fedelife/expense-extractor/internal/models"
)

var (
	// ErrNoJSONObject means the response holds no {...} region at all.
	ErrNoJSONObject = errors.New("no JSON object in response")

	// ErrNoExpensesArray means a document parsed but has no expenses array.
	ErrNoExpensesArray = errors.New("document has no expenses array")

	// ErrMarkerNotFound means the section stage could not find the expenses marker.
	ErrMarkerNotFound = errors.New("expenses marker not found")

	// ErrNothingSalvaged means a lenient stage ran but kept no element.
	ErrNothingSalvaged = errors.New("no element could be salvaged")
)

// Element is one raw expenses entry, keyed as the model wrote it.
type Element map[string]interface{}

// Document is what a stage recovered from a response.
type Document struct {
	Success       bool
	HasSuccess    bool
	Confidence    float64
	HasConfidence bool
	Summary       string
	Elements      []Element

	// Dropped counts entries the stage saw but could not turn into elements.
	Dropped int
}

// ParseResult is the cascade's answer. Expenses is never nil.
type ParseResult struct {
	Success    bool                      `json:"success"`
	Confidence float64                   `json:"confidence"`
	Summary    string                    `json:"summary"`
	Expenses   []models.ExtractedExpense `json:"expenses"`
	Error      string                    `json:"error,omitempty"`
	Stage      string                    `json:"stage,omitempty"`
	Dropped    int                       `json:"dropped"`

	Err error `json:"-"`
}

func failure(err error) ParseResult {
	return ParseResult{
		Success:  false,
		Expenses: []models.ExtractedExpense{},
		Error:    strings.ReplaceAll(err.Error(), "\n", "; "),
		Err:      err,
	}
}

// decodeDocument parses text as a JSON object carrying an expenses array.
func decodeDocument(text string) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var top map[string]interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	doc := &Document{}
	readHeader(doc, Element(top))

	raw, ok := Element(top).lookup(expensesAliases)
	if !ok {
		return nil, ErrNoExpensesArray
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expenses is %T", ErrNoExpensesArray, raw)
	}
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			doc.Elements = append(doc.Elements, Element(m))
		} else {
			doc.Dropped++
		}
	}
	return doc, nil
}

func readHeader(doc *Document, top Element) {
	if v, ok := top.lookup(successAliases); ok {
		switch s := v.(type) {
		case bool:
			doc.Success, doc.HasSuccess = s, true
		case string:
			doc.Success, doc.HasSuccess = strings.EqualFold(strings.TrimSpace(s), "true"), true
		}
	}
	if v, ok := top.lookup(confidenceAliases); ok {
		if score, ok := toScore(v); ok {
			doc.Confidence, doc.HasConfidence = score, true
		}
	}
	if v, ok := top.lookup(summaryAliases); ok {
		if s, ok := v.(string); ok {
			doc.Summary = strings.TrimSpace(s)
		}
	}
}
