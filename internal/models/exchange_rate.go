package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the foreign→local rate used for one analysis session.
// Fallback is set when the rate is the configured default rather than a fetched value.
type ExchangeRate struct {
	Rate      decimal.Decimal `json:"rate"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Fallback  bool            `json:"fallback"`
}

// IsZero reports whether no rate has been set.
func (r ExchangeRate) IsZero() bool {
	return r.Rate.IsZero() && r.FetchedAt.IsZero()
}

// MarshalJSON writes Rate as a JSON number.
func (r ExchangeRate) MarshalJSON() ([]byte, error) {
	type plain ExchangeRate
	return json.Marshal(struct {
		plain
		Rate json.Number `json:"rate"`
	}{plain: plain(r), Rate: json.Number(r.Rate.String())})
}
