// Package fetcher performs the HTTP retrieval for discovery and downloads.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// Fetcher wraps an HTTP client with a fixed User-Agent and bounded
// retry-with-backoff for transient failures. Per-request deadlines come
// from the caller's context, not the client, because discovery and
// document downloads use different timeouts.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	backoff     time.Duration
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		client:      &http.Client{},
		userAgent:   userAgent,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// Get fetches the resource and returns its body bytes and status code.
// Transport errors and retryable statuses (408, 429, 5xx) are retried with
// linear backoff up to maxAttempts; anything else fails immediately. A
// non-2xx final response is an error with a short diagnostic.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, int, error) {
	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, time.Duration(attempt-1)*f.backoff); err != nil {
				return nil, lastStatus, err
			}
		}

		body, status, err := f.getOnce(ctx, url)
		if err == nil {
			return body, status, nil
		}

		lastErr = err
		lastStatus = status
		if !retryable(status, err) {
			break
		}
	}

	return nil, lastStatus, lastErr
}

func (f *Fetcher) getOnce(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(status int, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status == 0 {
		// Transport-level failure: connection refused, reset, DNS.
		return true
	}
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
