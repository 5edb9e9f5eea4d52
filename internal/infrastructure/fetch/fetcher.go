package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"DisruptionMonitor/internal/ports"
)

// userAgent mimics a desktop browser; the listing page serves a reduced
// document to unknown clients.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageFetcher performs the single GET that serves all three lifecycle
// buckets of one refresh.
type PageFetcher struct {
	client *http.Client
	url    string
}

var _ ports.PageFetcher = (*PageFetcher)(nil)

// NewPageFetcher wires an HTTP client for the fixed disruptions URL.
func NewPageFetcher(client *http.Client, url string) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PageFetcher{client: client, url: url}
}

// FetchPage retrieves the page body as text. Any transport failure or
// non-2xx status is an error; the caller classifies it as a network fault.
func (f *PageFetcher) FetchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("disruptions page returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	return string(body), nil
}
