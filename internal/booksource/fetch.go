package booksource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/lepinkainen/marginalia/internal/errors"
)

const (
	// DefaultRetryAttempts bounds transport-level attempts for one provider call.
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the fixed pause between transport retries.
	DefaultRetryDelay = time.Second
	// DefaultTimeout is the HTTP client timeout used by the adapters.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher performs GET requests against a provider and decodes JSON bodies.
// Only transport failures are retried, up to Attempts times with a fixed Delay.
type Fetcher struct {
	Provider string
	Client   HTTPDoer
	Attempts int
	Delay    time.Duration
}

// GetJSON fetches endpoint and decodes the response body into target.
func (f *Fetcher) GetJSON(ctx context.Context, endpoint string, target any) error {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := f.doJSONRequest(ctx, endpoint, target)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return apperrors.NewProviderError(f.Provider, "search", 0, ctx.Err())
		case <-time.After(f.Delay):
		}
	}
	return lastErr
}

func (f *Fetcher) doJSONRequest(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewProviderError(f.Provider, "search", 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return apperrors.NewProviderError(f.Provider, "search", 0, fmt.Errorf("API request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		message := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusTooManyRequests {
			return apperrors.NewProviderError(f.Provider, "search", resp.StatusCode,
				apperrors.NewRateLimitErrorWithRetry(message, retryAfter(resp.Header.Get("Retry-After"))))
		}
		return apperrors.NewProviderError(f.Provider, "search", resp.StatusCode, errors.New(message))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewProviderError(f.Provider, "search", 0, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// isRetryable reports whether err is a network-level failure worth retrying.
// HTTP status and decoding failures are never retried.
func isRetryable(err error) bool {
	var providerErr *apperrors.ProviderError
	if errors.As(err, &providerErr) && providerErr.StatusCode != 0 {
		return false
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return false
	}
	if urlErr.Timeout() {
		return true
	}
	if errors.Is(urlErr.Err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(urlErr.Err, &netErr) {
		return true
	}
	// Network errors (connection resets etc.)
	return strings.Contains(urlErr.Error(), "connection") || errors.Is(urlErr.Err, io.EOF)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
