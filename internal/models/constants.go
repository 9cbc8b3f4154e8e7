package models

// Category vocabulary. CategoryOther is the generic bucket for anything unmatched.
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryServices      = "services"
	CategoryEntertainment = "entertainment"
	CategoryHealth        = "health"
	CategoryShopping      = "shopping"
	CategoryOther         = "other"
)

// Currency codes for the statements this tool reads: pesos locally, dollars abroad.
const (
	CurrencyUYU = "UYU"
	CurrencyUSD = "USD"
)

// DescriptionMaxLength bounds ExtractedExpense.Description when no configuration overrides it.
const DescriptionMaxLength = 100

// File permissions
const (
	PermissionOutputFile = 0644
	PermissionDirectory  = 0750
)
