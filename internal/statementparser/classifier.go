// Package statementparser mines bank-statement text for expense candidates: it drops
// structural noise lines, pulls amounts out of the rest with an ordered pattern bank
// and turns validated candidates into expenses.
package statementparser

import (
	"regexp"
	"unicode/utf8"

	"fedelife/expense-extractor/internal/textutils"
)

// DefaultMinLineLength is the shortest line worth looking at.
const DefaultMinLineLength = 10

// NoisePattern marks a line as structural noise (balances, headers, identifiers).
// A line that also matches Unless is kept.
type NoisePattern struct {
	Name    string
	Pattern *regexp.Regexp
	Unless  *regexp.Regexp
}

// Matches reports whether the folded line is noise under this pattern.
func (p NoisePattern) Matches(folded string) bool {
	if !p.Pattern.MatchString(folded) {
		return false
	}
	return p.Unless == nil || !p.Unless.MatchString(folded)
}

func regexNoise(name, expr string) NoisePattern {
	return NoisePattern{Name: name, Pattern: regexp.MustCompile(expr)}
}

// DefaultNoisePatterns is the noise bank, matched against accent-folded upper-case lines.
var DefaultNoisePatterns = []NoisePattern{
	regexNoise("balance",
		`\b(?:SALDOS?|BALANCE|TOTAL(?:ES)?|SUBTOTAL|PAGO MINIMO|MINIMUM PAYMENT|LIMITE DE CREDITO|CREDIT LIMIT|DISPONIBLE|AVAILABLE CREDIT)\b`),
	regexNoise("card-payment", `^PAGOS\b`),
	regexNoise("account",
		`\b(?:NUMERO DE CUENTA|NRO\.? ?(?:DE )?CUENTA|CUENTA (?:N|NRO|NUMERO)\b|ACCOUNT (?:NUMBER|NO)\b|SUCURSAL|BRANCH|TITULAR|ACCOUNT HOLDER|ESTADO DE CUENTA|STATEMENT (?:DATE|PERIOD)|FECHA DE CIERRE|VENCIMIENTO)`),
	regexNoise("header",
		`^(?:(?:FECHA|DATE|DESCRIPCION|DESCRIPTION|CONCEPTO|DETALLE|IMPORTE|MONTO|AMOUNT|DEBITOS?|CREDITOS?|DEBITS?|CREDITS?|MONEDA|CURRENCY|REFERENCIA|REFERENCE|CUOTAS?|ORIGEN|TARJETA|COMPROBANTE|PESOS|DOLARES|USD|UYU|U\$S|US\$|\$U|\$)(?:[ .:/|-]+|$)){2,}$`),
	{
		Name:    "account-number",
		Pattern: regexp.MustCompile(`(?:^|\D)\d{9,}(?:\D|$)`),
		Unless:  regexp.MustCompile(`\d[.,]\d{2}(?:\D|$)`),
	},
	regexNoise("routing", `\b(?:SWIFT|BIC|ABA|ROUTING|CBU|CLABE|IBAN)\b|\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){3,7}\b`),
}

// Classifier decides whether a line is noise. It never extracts anything.
type Classifier struct {
	minLength int
	patterns  []NoisePattern
}

// NewClassifier builds a classifier; minLength <= 0 uses DefaultMinLineLength and a
// nil pattern slice uses DefaultNoisePatterns.
func NewClassifier(minLength int, patterns []NoisePattern) *Classifier {
	if minLength <= 0 {
		minLength = DefaultMinLineLength
	}
	if patterns == nil {
		patterns = DefaultNoisePatterns
	}
	return &Classifier{minLength: minLength, patterns: patterns}
}

// ShouldIgnore reports whether a normalized line is noise.
func (c *Classifier) ShouldIgnore(line string) bool {
	_, ignored := c.Classify(line)
	return ignored
}

// Classify is ShouldIgnore plus the name of the rule that fired ("too-short" or a pattern name).
func (c *Classifier) Classify(line string) (string, bool) {
	if utf8.RuneCountInString(line) < c.minLength {
		return "too-short", true
	}
	folded := textutils.FoldKeyword(line)
	for _, p := range c.patterns {
		if p.Matches(folded) {
			return p.Name, true
		}
	}
	return "", false
}
