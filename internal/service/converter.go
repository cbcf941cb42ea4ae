package service

import (
	"fmt"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"
	"nbu-currency/internal/domain/ports"

	"github.com/shopspring/decimal"
)

// ratio is an exact rate num/den. Cross rates stay unreduced so that a
// conversion rounds once, on the final amount.
type ratio struct {
	num decimal.Decimal
	den decimal.Decimal
}

// Converter converts amounts between currencies using the rates of a
// RateReader, synthesizing cross rates through the base currency.
type Converter struct {
	rates      ports.RateReader
	lookupHook func()
}

type ConverterOption func(*Converter)

// WithLookupHook registers a function run between the direct lookup and the
// paired base lookup of a synthesized rate.
func WithLookupHook(hook func()) ConverterOption {
	return func(c *Converter) {
		c.lookupHook = hook
	}
}

func NewConverter(rates ports.RateReader, opts ...ConverterOption) *Converter {
	c := &Converter{rates: rates}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts amount minor units of from into minor units of to,
// rounding half away from zero.
func (c *Converter) Convert(amount int64, from, to model.Currency) (int64, error) {
	subFrom, err := subunitsOf(from)
	if err != nil {
		return 0, err
	}
	subTo, err := subunitsOf(to)
	if err != nil {
		return 0, err
	}

	r, err := c.resolve(from, to)
	if err != nil {
		return 0, err
	}

	num := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(subTo)).Mul(r.num)
	den := decimal.NewFromInt(subFrom).Mul(r.den)
	result := num.DivRound(den, 0)

	if !result.BigInt().IsInt64() {
		return 0, fmt.Errorf("converting %d %s to %s: result %s overflows", amount, from, to, result)
	}
	return result.IntPart(), nil
}

// Rate returns how many units of to one unit of from buys.
func (c *Converter) Rate(from, to model.Currency) (decimal.Decimal, error) {
	if _, err := subunitsOf(from); err != nil {
		return decimal.Zero, err
	}
	if _, err := subunitsOf(to); err != nil {
		return decimal.Zero, err
	}

	r, err := c.resolve(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return r.num.Div(r.den), nil
}

func (c *Converter) resolve(from, to model.Currency) (ratio, error) {
	if rate, ok := c.rates.GetRate(from, to); ok {
		return ratio{num: rate, den: decimal.NewFromInt(1)}, nil
	}

	if c.lookupHook != nil {
		c.lookupHook()
	}

	base := c.rates.Base()
	fromRate, okFrom, toRate, okTo := c.rates.GetRatePair(
		model.Pair{From: from, To: base},
		model.Pair{From: to, To: base},
	)
	if !okFrom {
		return ratio{}, fmt.Errorf("%w: no rate for %s against %s", apperrors.ErrRateUnavailable, from, base)
	}
	if !okTo {
		return ratio{}, fmt.Errorf("%w: no rate for %s against %s", apperrors.ErrRateUnavailable, to, base)
	}

	return ratio{num: fromRate, den: toRate}, nil
}

func subunitsOf(currency model.Currency) (int64, error) {
	n, ok := currency.Subunits()
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, currency)
	}
	return n, nil
}
