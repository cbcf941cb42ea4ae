package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_FetchNetwork(t *testing.T) {
	doc, err := os.ReadFile("testdata/exchange_rates.xml")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		_, _ = rw.Write(doc)
	}))
	defer server.Close()

	f := NewFetcher(server.URL, time.Second, logger.NewNop())

	got, err := f.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	got, err = f.Fetch(context.Background(), server.URL+"/other")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestFetcher_FetchFile(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:0/unused", time.Second, logger.NewNop())

	got, err := f.Fetch(context.Background(), "testdata/exchange_rates.xml")
	require.NoError(t, err)
	assert.Contains(t, string(got), `ccy="USD"`)

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrFetch), "got %v", err)
}

func TestFetcher_FetchErrors(t *testing.T) {
	t.Run("non-OK status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewFetcher(server.URL, time.Second, logger.NewNop()).Fetch(context.Background(), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrFetch), "got %v", err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			select {
			case <-release:
			case <-req.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := NewFetcher(server.URL, 10*time.Millisecond, logger.NewNop()).Fetch(context.Background(), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrFetch), "got %v", err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewFetcher(server.URL, time.Second, logger.NewNop()).Fetch(ctx, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrFetch), "got %v", err)
	})
}

func TestFetcher_Save(t *testing.T) {
	doc, err := os.ReadFile("testdata/exchange_rates.xml")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, _ = rw.Write(doc)
	}))
	defer server.Close()

	f := NewFetcher(server.URL, time.Second, logger.NewNop())
	path := filepath.Join(t.TempDir(), "exchange_rates.xml")

	require.NoError(t, f.Save(context.Background(), path))

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, saved)

	err = f.Save(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCache), "got %v", err)
}

func TestIsNetworkSource(t *testing.T) {
	assert.True(t, IsNetworkSource("https://example.com/rates.xml"))
	assert.True(t, IsNetworkSource("HTTP://example.com"))
	assert.False(t, IsNetworkSource("/var/cache/rates.xml"))
	assert.False(t, IsNetworkSource("rates.xml"))
	assert.False(t, IsNetworkSource(""))
}
