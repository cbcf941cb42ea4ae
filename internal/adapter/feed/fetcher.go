package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/pkg/logger"
)

// DefaultURL is the bank's public XML rate feed.
const DefaultURL = "https://privat24.privatbank.ua/p24/accountorder?oper=prp&PUREXML&apicour&country=ua&full"

// maxDocumentSize bounds how much of a response or file is read.
const maxDocumentSize = 4 << 20

// Fetcher reads rate documents over HTTP or from the local filesystem.
type Fetcher struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func NewFetcher(url string, timeout time.Duration, log *logger.Logger) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &loggingRoundTripper{next: http.DefaultTransport, log: log},
		},
		log: log,
	}
}

// Source is the network URL.
func (f *Fetcher) Source() string {
	return f.url
}

// Fetch returns the document at source. http and https sources are
// downloaded; anything else is read as a file path. An empty source means
// the network URL.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		source = f.url
	}
	if IsNetworkSource(source) {
		return f.download(ctx, source)
	}
	return f.readFile(source)
}

// Save downloads the network document into path, replacing it atomically.
func (f *Fetcher) Save(ctx context.Context, path string) error {
	if path == "" {
		return apperrors.ErrInvalidCache
	}

	doc, err := f.download(ctx, f.url)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rates-*")
	if err != nil {
		return fmt.Errorf("%w: creating cache file: %v", apperrors.ErrFetch, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing cache file: %v", apperrors.ErrFetch, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing cache file: %v", apperrors.ErrFetch, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: moving cache file: %v", apperrors.ErrFetch, err)
	}

	f.log.Info("Saved rate document", "path", path, "bytes", len(doc))
	return nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", apperrors.ErrFetch, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", apperrors.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned non-OK status: %d", apperrors.ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrFetch, err)
	}
	return body, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrFetch, path, err)
	}
	return body, nil
}

// IsNetworkSource reports whether source is an http or https URL.
func IsNetworkSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
