package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeedScale is the fixed-point divisor of buy prices in the feed.
var FeedScale = decimal.NewFromInt(10000)

// Pair is an ordered currency pair. A rate stored under a pair means
// 1 unit of From buys rate units of To.
type Pair struct {
	From Currency `json:"from"`
	To   Currency `json:"to"`
}

func (p Pair) String() string {
	return fmt.Sprintf("%s_TO_%s", p.From, p.To)
}

// MarshalText lets pairs key JSON objects.
func (p Pair) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Quote is a single feed line: the buy price of one unit batch of Currency.
type Quote struct {
	Currency Currency
	Buy      int64
	Unit     decimal.Decimal
}

// Rate converts the feed encoding into base units per one unit of the currency.
func (q Quote) Rate() decimal.Decimal {
	return decimal.NewFromInt(q.Buy).Div(q.Unit).Div(FeedScale)
}

// Feed is a parsed rate document.
type Feed struct {
	Base   Currency
	Quotes []Quote
	AsOf   time.Time
}

// RateBatch is a complete set of currency rates versus Base.
type RateBatch struct {
	Base  Currency
	Rates map[Currency]decimal.Decimal
	AsOf  time.Time
}

// Snapshot is a consistent copy of the rate table and its metadata.
type Snapshot struct {
	Rates       map[Pair]decimal.Decimal `json:"rates"`
	LastUpdated time.Time                `json:"last_updated"`
	RatesAsOf   time.Time                `json:"rates_as_of"`
}

// Money is an integer count of minor units in a currency.
type Money struct {
	Cents    int64    `json:"cents"`
	Currency Currency `json:"currency"`
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Cents, m.Currency)
}
