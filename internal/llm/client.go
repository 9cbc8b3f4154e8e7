// Package llm asks a language model to extract expenses from statement text.
// The model's answer is returned raw; recovering structure from it is the job of
// the jsonrecovery package.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answered with no text at all.
var ErrEmptyResponse = errors.New("model returned no text")

// Client extracts expenses from normalized statement text and returns the model's
// raw response body.
type Client interface {
	ExtractExpenses(ctx context.Context, statement string) (string, error)
	Name() string
}
