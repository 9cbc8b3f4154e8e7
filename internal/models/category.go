package models

import (
	"strings"

	"fedelife/expense-extractor/internal/textutils"
)

// Categories lists the vocabulary in lookup order. CategoryOther is last.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryServices,
	CategoryEntertainment,
	CategoryHealth,
	CategoryShopping,
	CategoryOther,
}

// categoryAliases maps labels a model tends to return onto the vocabulary.
var categoryAliases = map[string]string{
	"alimentacion":    CategoryFood,
	"alimentos":       CategoryFood,
	"comida":          CategoryFood,
	"supermercado":    CategoryFood,
	"groceries":       CategoryFood,
	"restaurant":      CategoryFood,
	"restaurantes":    CategoryFood,
	"transporte":      CategoryTransport,
	"combustible":     CategoryTransport,
	"fuel":            CategoryTransport,
	"servicios":       CategoryServices,
	"utilities":       CategoryServices,
	"entretenimiento": CategoryEntertainment,
	"ocio":            CategoryEntertainment,
	"streaming":       CategoryEntertainment,
	"salud":           CategoryHealth,
	"farmacia":        CategoryHealth,
	"compras":         CategoryShopping,
	"otros":           CategoryOther,
	"otro":            CategoryOther,
	"uncategorized":   CategoryOther,
	"sin categoria":   CategoryOther,
}

// IsCategory reports whether c belongs to the vocabulary.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory maps a free-form label onto the vocabulary, defaulting to CategoryOther.
func NormalizeCategory(label string) string {
	key := foldLower(label)
	if key == "" {
		return CategoryOther
	}
	if IsCategory(key) {
		return key
	}
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryOther
}

func foldLower(s string) string {
	return strings.ToLower(strings.TrimSpace(textutils.RemoveDiacritics(s)))
}
