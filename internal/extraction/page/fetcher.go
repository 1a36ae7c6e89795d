package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/productlens/backend/pkg/logger"
	"github.com/productlens/backend/pkg/retry"
)

// Fetcher downloads product pages and parses them into Documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Document, error) {
	cfg := retry.DefaultConfig()
	cfg.Logger = logger.Log

	html, err := retry.DoWithResult(ctx, cfg, func() (string, error) {
		return f.fetchOnce(ctx, pageURL)
	})
	if err != nil {
		return nil, err
	}

	doc, err := NewDocument(html, pageURL)
	if err != nil {
		return nil, err
	}

	logger.Debug("Page fetched", zap.String("url", pageURL), zap.Int("bytes", len(html)))
	return doc, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}
