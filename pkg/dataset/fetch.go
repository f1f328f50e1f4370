package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/wristlab/mims/pkg/dlcache"
)

// Fetcher downloads the dataset from an HTTP source, caching bodies so
// repeated runs against the same URL do not re-download.
type Fetcher struct {
	httpClient *http.Client
	cache      *dlcache.Cache // optional
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. cache may be nil to disable caching.
func NewFetcher(cache *dlcache.Cache, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		cache:  cache,
		logger: logger,
	}
}

// Fetch downloads and parses the dataset at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Participant, error) {
	body, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	participants, err := Read(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reading dataset from %s: %w", url, err)
	}
	return participants, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if data, _, ok := f.cache.Get(url); ok {
			f.logger.Debug("using cached dataset", "url", url, "size", len(data))
			return data, nil
		}
	}

	var body []byte
	var etag string
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return err
			}
			resp, err := f.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					f.logger.Debug("failed to close response body", "error", closeErr)
				}
			}()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response body: %w", err)
			}
			etag = resp.Header.Get("ETag")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug("retrying dataset download", "attempt", n+1, "url", url, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("downloading dataset after retries: %w", err)
	}

	f.logger.Info("dataset downloaded", "url", url, "size", len(body))
	if f.cache != nil {
		f.cache.Set(url, body, etag)
	}
	return body, nil
}
