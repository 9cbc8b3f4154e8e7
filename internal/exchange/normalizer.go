package exchange

import (
	"fmt"
	"regexp"
	"strings"

	"fedelife/expense-extractor/internal/currencyutils"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/shopspring/decimal"
)

var foreignMarkers = regexp.MustCompile(`U\$S|US\$|\bUSD\b|\bDOLAR(?:ES)?\b|\bDOLLARS?\b`)

// Normalizer brings every expense to the local currency using its session's rate.
type Normalizer struct {
	session *Session
	logger  logging.Logger
}

// NewNormalizer binds a normalizer to a session.
func NewNormalizer(session *Session, logger logging.Logger) *Normalizer {
	return &Normalizer{session: session, logger: logging.OrDefault(logger)}
}

// InferCurrency picks the currency of a line with no usable symbol: the foreign
// currency when a dollar marker appears, the local one otherwise.
func (n *Normalizer) InferCurrency(context string) string {
	if foreignMarkers.MatchString(textutils.FoldKeyword(context)) {
		return n.session.From()
	}
	return n.session.To()
}

// Convert returns amount in local currency, rounded to cents. Local, empty and
// unknown currencies pass through unchanged apart from rounding.
func (n *Normalizer) Convert(amount decimal.Decimal, currency string) decimal.Decimal {
	if n.isForeign(currency) {
		return currencyutils.Round2(amount.Mul(n.session.Rate().Rate))
	}
	return currencyutils.Round2(amount)
}

// Normalize converts one expense. Converted expenses record the original amount
// and the rate in OriginalText.
func (n *Normalizer) Normalize(expense models.ExtractedExpense) models.ExtractedExpense {
	if n.isForeign(expense.Currency) {
		rate := n.session.Rate().Rate
		note := fmt.Sprintf("[converted from %s %s @ %s]",
			n.session.From(), expense.Amount.StringFixed(2), rate.StringFixed(2))
		expense.OriginalText = strings.TrimSpace(expense.OriginalText + " " + note)
		expense.Amount = n.Convert(expense.Amount, expense.Currency)
		n.logger.Debug("Converted foreign amount",
			logging.F(logging.FieldAmount, expense.Amount.String()),
			logging.F(logging.FieldRate, rate.String()))
	} else {
		if expense.Currency != "" && !strings.EqualFold(expense.Currency, n.session.To()) {
			n.logger.Debug("Unknown currency treated as local",
				logging.F(logging.FieldCurrency, expense.Currency))
		}
		expense.Amount = currencyutils.Round2(expense.Amount)
	}
	expense.Currency = n.session.To()
	return expense
}

// NormalizeAll converts every expense, returning a new slice.
func (n *Normalizer) NormalizeAll(expenses []models.ExtractedExpense) []models.ExtractedExpense {
	out := make([]models.ExtractedExpense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, n.Normalize(e))
	}
	return out
}

func (n *Normalizer) isForeign(currency string) bool {
	return strings.EqualFold(strings.TrimSpace(currency), n.session.From())
}
