// Package currencyutils parses and formats the money amounts found in statement text.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	symbolPattern  = regexp.MustCompile(`(?i)U\$S|US\$|\$U|USD|UYU|EUR|CHF|[€$£¥\s']`)
	thousandsOnly  = regexp.MustCompile(`^[1-9]\d{0,2}([.,])\d{3}$`)
	symbolCurrency = map[string]string{
		"U$S": "USD",
		"US$": "USD",
		"USD": "USD",
		"$U":  "UYU",
		"UYU": "UYU",
		"€":   "EUR",
		"EUR": "EUR",
	}
)

// ParseAmount parses amounts written in either statement convention:
// "1.234,56", "1,234.56", "450,00", "45.00", "1.234", "-450,00", "450,00-", "(45.00)".
// The decimal separator is picked from the punctuation, never from a locale setting.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(amountStr)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	}
	if strings.HasSuffix(raw, "-") {
		negative = true
		raw = strings.TrimSuffix(raw, "-")
	}

	standardized := StandardizeAmount(raw)
	if strings.HasPrefix(standardized, "-") {
		negative = !negative
		standardized = strings.TrimPrefix(standardized, "-")
	}
	standardized = strings.TrimPrefix(standardized, "+")

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// StandardizeAmount rewrites an amount string into the form decimal.NewFromString accepts.
//
// When both separators are present the last one is the decimal separator. A lone
// separator followed by exactly three digits after a 1-3 digit group is a thousands
// separator ("1.234" is one thousand two hundred thirty-four); otherwise it is decimal.
// Repeated occurrences of one separator are always thousands separators.
func StandardizeAmount(amountStr string) string {
	s := symbolPattern.ReplaceAllString(amountStr, "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}
	return s
}

func normalizeSingleSeparator(s, sep string) string {
	unsigned := strings.TrimLeft(s, "+-")
	if strings.Count(s, sep) > 1 || thousandsOnly.MatchString(unsigned) {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// CurrencyForSymbol maps a symbol or code found next to an amount to its ISO code.
// A bare "$" means the statement's local currency.
func CurrencyForSymbol(symbol, local string) string {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if key == "$" {
		return local
	}
	return symbolCurrency[key]
}

// FormatAmount renders an amount with two decimals and the symbol used on statements.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "UYU":
		return "$U " + formatted
	case "USD":
		return "U$S " + formatted
	case "EUR":
		return "€" + formatted
	default:
		return strings.ToUpper(currency) + " " + formatted
	}
}

// Round2 rounds half away from zero to cents.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
