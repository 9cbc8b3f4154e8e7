package llm

import (
	"fmt"
	"strings"

	"fedelife/expense-extractor/internal/models"
)

// DefaultMaxInputChars bounds how much statement text is sent to the model.
const DefaultMaxInputChars = 10000

const promptTemplate = `Extract every expense (debit) transaction from this bank statement.
Ignore headers, footers, balances, payments to the card, promotions and any credit or refund.
Amounts are positive numbers with a dot as decimal separator. Currency is %s or %s.
Category must be one of: %s.
Dates use YYYY-MM-DD; leave the date empty when it is unknown.

Answer with JSON only, no prose and no code fences, in exactly this shape:
{"success": true, "confidence": 0.0-1.0, "summary": "short summary",
 "expenses": [{"date": "", "description": "", "amount": 0, "currency": "", "category": "", "confidence": "high|medium|low"}]}

Statement:
%s`

// BuildPrompt renders the extraction prompt, truncating the statement to maxChars runes.
func BuildPrompt(statement, local, foreign string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	if r := []rune(statement); len(r) > maxChars {
		statement = string(r[:maxChars])
	}
	return fmt.Sprintf(promptTemplate, local, foreign, strings.Join(models.Categories, ", "), statement)
}
