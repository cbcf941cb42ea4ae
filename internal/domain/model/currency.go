package model

import (
	"strings"

	"golang.org/x/text/currency"
)

type Currency string

const (
	UAH Currency = "UAH"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
)

// DefaultBase is the pivot currency of the feed.
const DefaultBase = UAH

// DefaultRequired lists the currencies every accepted batch must quote.
var DefaultRequired = []Currency{USD, CAD, EUR, GBP, UAH}

// subunitOverrides pins scales where the CLDR rounding data differs from
// the minor units the feed's consumers expect.
var subunitOverrides = map[Currency]int64{
	"XAU": 1,
}

// ParseCurrency normalizes a code for comparison: trimmed and upper-cased.
func ParseCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// Subunits returns the number of minor units in one major unit, taken from
// the ISO 4217 data shipped with golang.org/x/text.
func (c Currency) Subunits() (int64, bool) {
	if !c.IsValid() {
		return 0, false
	}
	if n, ok := subunitOverrides[c]; ok {
		return n, true
	}

	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 0, false
	}

	scale, _ := currency.Standard.Rounding(unit)
	n := int64(1)
	for i := 0; i < scale; i++ {
		n *= 10
	}
	return n, true
}

// IsValid reports whether c looks like an ISO code: three upper-case letters.
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c Currency) String() string {
	return string(c)
}
