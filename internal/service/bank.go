package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"
	"nbu-currency/internal/domain/ports"
	"nbu-currency/pkg/logger"
	"nbu-currency/pkg/utils"

	"github.com/shopspring/decimal"
)

// Bank keeps a rate table up to date from the feed and converts money with it.
type Bank struct {
	store     ports.RateStore
	converter *Converter
	fetcher   ports.FeedFetcher
	parser    ports.FeedParser
	cachePath string
	log       *logger.Logger
}

// NewBank wires a bank around store. cachePath, when set, is where
// RefreshRates keeps the last downloaded document.
func NewBank(store ports.RateStore, fetcher ports.FeedFetcher, parser ports.FeedParser, cachePath string, log *logger.Logger, opts ...ConverterOption) *Bank {
	return &Bank{
		store:     store,
		converter: NewConverter(store, opts...),
		fetcher:   fetcher,
		parser:    parser,
		cachePath: cachePath,
		log:       log,
	}
}

// UpdateFromDocument replaces the rate table with the rates of doc.
func (b *Bank) UpdateFromDocument(ctx context.Context, doc []byte) error {
	feed, err := b.parser.Parse(doc)
	if err != nil {
		b.log.Error("Failed to parse rate document", "error", err)
		return err
	}
	return b.apply(feed)
}

// UpdateFromSource loads the document at source, a URL or a cache path, and
// replaces the rate table with it. An empty source means the network feed.
// A cache that cannot be parsed is replaced by a fresh network fetch.
func (b *Bank) UpdateFromSource(ctx context.Context, source string) error {
	network := b.fetcher.Source()
	if source == "" {
		source = network
	}

	doc, err := b.fetcher.Fetch(ctx, source)
	if err != nil {
		b.log.Error("Failed to fetch rate document", "source", source, "error", err)
		return err
	}

	feed, err := b.parser.Parse(doc)
	if err != nil {
		if source == network || !errors.Is(err, apperrors.ErrParse) {
			b.log.Error("Failed to parse rate document", "source", source, "error", err)
			return err
		}

		b.log.Warn("Cached rate document is unparsable, falling back to network", "source", source, "error", err)
		if doc, err = b.fetcher.Fetch(ctx, network); err != nil {
			b.log.Error("Failed to fetch rate document", "source", network, "error", err)
			return err
		}
		if feed, err = b.parser.Parse(doc); err != nil {
			b.log.Error("Failed to parse rate document", "source", network, "error", err)
			return err
		}
	}

	return b.apply(feed)
}

// RefreshRates downloads the network document, keeping a copy at the cache
// path when one is configured, and applies it.
func (b *Bank) RefreshRates(ctx context.Context) error {
	b.log.Info("Refreshing exchange rates")

	if b.cachePath == "" {
		return b.UpdateFromSource(ctx, "")
	}

	if err := b.fetcher.Save(ctx, b.cachePath); err != nil {
		b.log.Warn("Failed to refresh rate cache, reading network directly", "path", b.cachePath, "error", err)
		return b.UpdateFromSource(ctx, "")
	}
	return b.UpdateFromSource(ctx, b.cachePath)
}

// SaveRates writes the current network document to path.
func (b *Bank) SaveRates(ctx context.Context, path string) error {
	if path == "" {
		return apperrors.ErrInvalidCache
	}
	return b.fetcher.Save(ctx, path)
}

// SaveRatesToString returns the current network document.
func (b *Bank) SaveRatesToString(ctx context.Context) (string, error) {
	doc, err := b.fetcher.Fetch(ctx, "")
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

func (b *Bank) apply(feed model.Feed) error {
	batch := model.RateBatch{
		Base:  feed.Base,
		Rates: make(map[model.Currency]decimal.Decimal, len(feed.Quotes)),
		AsOf:  feed.AsOf,
	}
	for _, q := range feed.Quotes {
		if _, dup := batch.Rates[q.Currency]; dup {
			return fmt.Errorf("%w: duplicate quote for %s", apperrors.ErrValidation, q.Currency)
		}
		batch.Rates[q.Currency] = q.Rate()
	}

	if err := b.store.Replace(batch); err != nil {
		b.log.Error("Rejected rate batch", "error", err, "rates_as_of", utils.FormatDate(feed.AsOf))
		return err
	}

	b.log.Info("Exchange rates updated", "count", len(batch.Rates), "rates_as_of", utils.FormatDate(feed.AsOf))
	return nil
}

// Convert converts amount minor units of from into minor units of to.
func (b *Bank) Convert(amount int64, from, to string) (int64, error) {
	return b.converter.Convert(amount, model.ParseCurrency(from), model.ParseCurrency(to))
}

// ConvertMoney converts m into currency to.
func (b *Bank) ConvertMoney(m model.Money, to string) (model.Money, error) {
	target := model.ParseCurrency(to)
	cents, err := b.converter.Convert(m.Cents, model.ParseCurrency(string(m.Currency)), target)
	if err != nil {
		return model.Money{}, err
	}
	return model.Money{Cents: cents, Currency: target}, nil
}

// Rate returns how many units of to one unit of from buys.
func (b *Bank) Rate(from, to string) (decimal.Decimal, error) {
	return b.converter.Rate(model.ParseCurrency(from), model.ParseCurrency(to))
}

func (b *Bank) LastUpdated() (time.Time, bool) {
	return b.store.LastUpdated()
}

func (b *Bank) RatesAsOf() (time.Time, bool) {
	return b.store.RatesAsOf()
}

func (b *Bank) Snapshot() model.Snapshot {
	return b.store.Snapshot()
}
