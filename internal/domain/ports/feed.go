package ports

import (
	"context"

	"nbu-currency/internal/domain/model"
)

// FeedFetcher returns raw rate documents.
type FeedFetcher interface {
	// Fetch reads source, an http(s) URL or a local path.
	Fetch(ctx context.Context, source string) ([]byte, error)
	// Source is the network URL used when no source is given.
	Source() string
	// Save downloads the network document into path.
	Save(ctx context.Context, path string) error
}

// FeedParser turns a raw document into quotes.
type FeedParser interface {
	Parse(doc []byte) (model.Feed, error)
}
