// Package merger combines the model's expense list with the heuristic one,
// dropping heuristic entries that repeat something already kept.
package merger

import (
	"strings"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/shopspring/decimal"
)

// Defaults for the fuzzy duplicate check.
var (
	DefaultWordOverlapThreshold = 0.5
	DefaultAmountEpsilon        = decimal.NewFromInt(1)
)

// Options tunes the fuzzy duplicate check. Zero values use the defaults.
type Options struct {
	WordOverlapThreshold float64
	AmountEpsilon        decimal.Decimal
}

// Merger merges two expense lists, model first.
type Merger struct {
	threshold float64
	epsilon   decimal.Decimal
	logger    logging.Logger
}

// NewMerger builds a merger.
func NewMerger(opts Options, logger logging.Logger) *Merger {
	if opts.WordOverlapThreshold <= 0 {
		opts.WordOverlapThreshold = DefaultWordOverlapThreshold
	}
	if opts.AmountEpsilon.IsNegative() || opts.AmountEpsilon.IsZero() {
		opts.AmountEpsilon = DefaultAmountEpsilon
	}
	return &Merger{
		threshold: opts.WordOverlapThreshold,
		epsilon:   opts.AmountEpsilon,
		logger:    logging.OrDefault(logger),
	}
}

// Merge keeps every model expense in order, then appends each heuristic expense
// that is neither an exact fingerprint match nor a fuzzy match of anything already
// in the result.
func (m *Merger) Merge(model, heuristic []models.ExtractedExpense) []models.ExtractedExpense {
	result := make([]models.ExtractedExpense, 0, len(model)+len(heuristic))
	result = append(result, model...)

	fingerprints := make(map[string]struct{}, cap(result))
	for _, e := range result {
		fingerprints[e.Fingerprint()] = struct{}{}
	}

	skipped := 0
	for _, candidate := range heuristic {
		if _, dup := fingerprints[candidate.Fingerprint()]; dup {
			skipped++
			m.logger.Debug("Skipping exact duplicate",
				logging.F(logging.FieldAmount, candidate.Amount.String()),
				logging.F(logging.FieldCurrency, candidate.Currency))
			continue
		}
		if m.hasSimilar(result, candidate) {
			skipped++
			continue
		}
		result = append(result, candidate)
		fingerprints[candidate.Fingerprint()] = struct{}{}
	}

	m.logger.Info("Merged expense lists",
		logging.F(logging.FieldCount, len(result)),
		logging.F(logging.FieldDropped, skipped))
	return result
}

func (m *Merger) hasSimilar(kept []models.ExtractedExpense, candidate models.ExtractedExpense) bool {
	for _, e := range kept {
		if m.IsSimilar(e, candidate) {
			m.logger.Debug("Skipping near duplicate",
				logging.F(logging.FieldAmount, candidate.Amount.String()),
				logging.F("matched", e.Description))
			return true
		}
	}
	return false
}

// IsSimilar reports whether two expenses describe the same transaction: amounts
// closer than the epsilon and descriptions that contain one another or share more
// than the threshold of their words.
func (m *Merger) IsSimilar(a, b models.ExtractedExpense) bool {
	if !a.Amount.Sub(b.Amount).Abs().LessThan(m.epsilon) {
		return false
	}
	na := textutils.NormalizeForComparison(a.Description)
	nb := textutils.NormalizeForComparison(b.Description)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return WordOverlap(na, nb) > m.threshold
}

// WordOverlap is |A∩B| / max(|A|,|B|) over the distinct comparison words of a and b.
func WordOverlap(a, b string) float64 {
	wa, wb := textutils.Words(a), textutils.Words(b)
	larger := len(wa)
	if len(wb) > larger {
		larger = len(wb)
	}
	if larger == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(larger)
}
