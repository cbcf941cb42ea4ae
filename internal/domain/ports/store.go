package ports

import (
	"time"

	"nbu-currency/internal/domain/model"

	"github.com/shopspring/decimal"
)

// RateReader is the read side of the rate table used by conversions.
type RateReader interface {
	Base() model.Currency
	GetRate(from, to model.Currency) (decimal.Decimal, bool)
	// GetRatePair performs both lookups against the same table.
	GetRatePair(first, second model.Pair) (r1 decimal.Decimal, ok1 bool, r2 decimal.Decimal, ok2 bool)
}

// RateStore holds the current rate table and its update metadata.
type RateStore interface {
	RateReader
	Replace(batch model.RateBatch) error
	LastUpdated() (time.Time, bool)
	RatesAsOf() (time.Time, bool)
	Snapshot() model.Snapshot
}
