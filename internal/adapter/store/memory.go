package store

import (
	"fmt"
	"sync"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"
	"nbu-currency/pkg/logger"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RateStore is an in-memory rate table keyed by currency pair. Every rate is
// stored against the base currency; the whole table and its metadata are
// guarded by one lock and replaced wholesale.
type RateStore struct {
	mutex       sync.RWMutex
	rates       map[model.Pair]decimal.Decimal
	lastUpdated time.Time
	ratesAsOf   time.Time
	updated     bool

	base     model.Currency
	required []model.Currency
	now      func() time.Time
	readHook func(op string)
	log      *logger.Logger
}

type Option func(*RateStore)

// WithRequired sets the currencies every batch must quote. The base is implied.
func WithRequired(currencies ...model.Currency) Option {
	return func(s *RateStore) {
		s.required = s.required[:0]
		for _, c := range currencies {
			s.required = append(s.required, model.ParseCurrency(string(c)))
		}
	}
}

// WithClock replaces time.Now for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *RateStore) {
		s.now = now
	}
}

// WithReadHook registers a function called inside every read critical
// section, with the lock held. op is "get_rate", "get_rate_pair" or "snapshot".
func WithReadHook(hook func(op string)) Option {
	return func(s *RateStore) {
		s.readHook = hook
	}
}

func NewRateStore(base model.Currency, log *logger.Logger, opts ...Option) *RateStore {
	s := &RateStore{
		rates: make(map[model.Pair]decimal.Decimal),
		base:  model.ParseCurrency(string(base)),
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RateStore) Base() model.Currency {
	return s.base
}

// GetRate returns the rate stored for the ordered pair.
func (s *RateStore) GetRate(from, to model.Currency) (decimal.Decimal, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	s.hook("get_rate")
	return s.getRateLocked(from, to)
}

// GetRatePair performs two lookups under a single lock acquisition so both
// observe the same table.
func (s *RateStore) GetRatePair(first, second model.Pair) (decimal.Decimal, bool, decimal.Decimal, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	s.hook("get_rate_pair")
	r1, ok1 := s.getRateLocked(first.From, first.To)
	r2, ok2 := s.getRateLocked(second.From, second.To)
	return r1, ok1, r2, ok2
}

// getRateLocked requires s.mutex to be held.
func (s *RateStore) getRateLocked(from, to model.Currency) (decimal.Decimal, bool) {
	rate, found := s.rates[model.Pair{From: from, To: to}]
	return rate, found
}

// Replace validates batch and swaps it in as the new table. Invalid batches
// are rejected before the lock is taken and leave the table untouched.
func (s *RateStore) Replace(batch model.RateBatch) error {
	table, err := s.buildTable(batch)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	now := s.now()
	if s.updated && !now.After(s.lastUpdated) {
		now = s.lastUpdated.Add(time.Nanosecond)
	}
	s.rates = table
	s.lastUpdated = now
	s.ratesAsOf = batch.AsOf
	s.updated = true
	s.mutex.Unlock()

	s.log.Debug("Rate table replaced", "count", len(table), "rates_as_of", batch.AsOf, "last_updated", now)
	return nil
}

func (s *RateStore) buildTable(batch model.RateBatch) (map[model.Pair]decimal.Decimal, error) {
	base := model.ParseCurrency(string(batch.Base))
	if base == "" {
		return nil, fmt.Errorf("%w: base currency absent", apperrors.ErrValidation)
	}
	if base != s.base {
		return nil, fmt.Errorf("%w: batch base %s does not match %s", apperrors.ErrValidation, base, s.base)
	}
	if len(batch.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate batch", apperrors.ErrValidation)
	}

	table := make(map[model.Pair]decimal.Decimal, len(batch.Rates)+1)
	for code, rate := range batch.Rates {
		currency := model.ParseCurrency(string(code))
		if !currency.IsValid() {
			return nil, fmt.Errorf("%w: invalid currency code %q", apperrors.ErrValidation, code)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%w: non-positive rate %s for %s", apperrors.ErrValidation, rate, currency)
		}
		if currency == s.base && !rate.Equal(one) {
			return nil, fmt.Errorf("%w: base rate must be 1, got %s", apperrors.ErrValidation, rate)
		}

		key := model.Pair{From: currency, To: s.base}
		if _, dup := table[key]; dup {
			return nil, fmt.Errorf("%w: duplicate currency %s", apperrors.ErrValidation, currency)
		}
		table[key] = rate
	}

	for _, currency := range s.required {
		if currency == s.base {
			continue
		}
		if _, ok := table[model.Pair{From: currency, To: s.base}]; !ok {
			return nil, fmt.Errorf("%w: missing required currency %s", apperrors.ErrValidation, currency)
		}
	}

	table[model.Pair{From: s.base, To: s.base}] = one
	return table, nil
}

// LastUpdated is the wall-clock time of the last successful Replace.
func (s *RateStore) LastUpdated() (time.Time, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.lastUpdated, s.updated
}

// RatesAsOf is the as-of time carried by the last accepted batch.
func (s *RateStore) RatesAsOf() (time.Time, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.ratesAsOf, s.updated
}

// Snapshot copies the table and metadata under one lock.
func (s *RateStore) Snapshot() model.Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	s.hook("snapshot")
	rates := make(map[model.Pair]decimal.Decimal, len(s.rates))
	for pair, rate := range s.rates {
		rates[pair] = rate
	}

	return model.Snapshot{
		Rates:       rates,
		LastUpdated: s.lastUpdated,
		RatesAsOf:   s.ratesAsOf,
	}
}

func (s *RateStore) hook(op string) {
	if s.readHook != nil {
		s.readHook(op)
	}
}
