// Package exchange owns the foreign→local exchange rate used while normalizing
// expense amounts: a per-analysis Session, the rate sources it can refresh from and
// the Normalizer that applies it.
package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/parsererror"

	"github.com/shopspring/decimal"
)

// DefaultFallbackRate is the UYU per USD rate used until a source answers.
var DefaultFallbackRate = decimal.NewFromInt(40)

// RateSource fetches how many units of `to` one unit of `from` buys.
type RateSource interface {
	Name() string
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Session caches the rate for one analysis. It is owned by its caller and is not
// safe for concurrent Refresh calls.
type Session struct {
	source RateSource
	rate   models.ExchangeRate
	logger logging.Logger
	now    func() time.Time
}

// NewSession starts a session at the fallback rate. A nil source never refreshes.
func NewSession(source RateSource, from, to string, fallback decimal.Decimal, logger logging.Logger) *Session {
	if !fallback.IsPositive() {
		fallback = DefaultFallbackRate
	}
	return &Session{
		source: source,
		rate: models.ExchangeRate{
			Rate:     fallback,
			From:     strings.ToUpper(from),
			To:       strings.ToUpper(to),
			Fallback: true,
		},
		logger: logging.OrDefault(logger),
		now:    time.Now,
	}
}

// Rate returns the current rate.
func (s *Session) Rate() models.ExchangeRate {
	return s.rate
}

// From is the foreign currency code.
func (s *Session) From() string {
	return s.rate.From
}

// To is the local currency code.
func (s *Session) To() string {
	return s.rate.To
}

// Refresh asks the source for a new rate. On any failure, or a rate that is not
// positive, the previous rate is kept and the error is returned for the caller to log.
func (s *Session) Refresh(ctx context.Context) (models.ExchangeRate, error) {
	if s.source == nil {
		return s.rate, nil
	}

	pair := s.rate.From + "/" + s.rate.To
	rate, err := s.source.FetchRate(ctx, s.rate.From, s.rate.To)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", rate.String())
	}
	if err != nil {
		rateErr := &parsererror.RateError{Source: s.source.Name(), Pair: pair, Err: err}
		s.logger.WithError(rateErr).Warn("Exchange rate refresh failed, keeping previous rate",
			logging.F(logging.FieldSource, s.source.Name()),
			logging.F(logging.FieldRate, s.rate.Rate.String()))
		return s.rate, rateErr
	}

	s.rate = models.ExchangeRate{
		Rate:      rate,
		From:      s.rate.From,
		To:        s.rate.To,
		FetchedAt: s.now(),
	}
	s.logger.Debug("Exchange rate refreshed",
		logging.F(logging.FieldSource, s.source.Name()),
		logging.F(logging.FieldRate, rate.String()))
	return s.rate, nil
}
