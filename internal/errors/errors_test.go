package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := stdErrors.Join(err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry_VariousDurations(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{
			name:            "no retry hint",
			duration:        0,
			expectedMessage: "rate limited",
		},
		{
			name:            "30 seconds",
			duration:        30 * time.Second,
			expectedMessage: "rate limited (retry after 30s)",
		},
		{
			name:            "2 minutes",
			duration:        2 * time.Minute,
			expectedMessage: "rate limited (retry after 2m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	limited := NewProviderError("Google Books", "search", 429, NewRateLimitErrorWithRetry("quota", 30*time.Second))
	wait, ok := RetryAfter(fmt.Errorf("search: %w", limited))
	if !ok || wait != 30*time.Second {
		t.Fatalf("RetryAfter = %v, %v, want 30s, true", wait, ok)
	}

	if _, ok := RetryAfter(NewRateLimitError("quota")); ok {
		t.Fatalf("RetryAfter reported a back-off for a RateLimitError without one")
	}
	if _, ok := RetryAfter(stdErrors.New("boom")); ok {
		t.Fatalf("RetryAfter reported a back-off for a plain error")
	}
}

func TestProviderError(t *testing.T) {
	cause := stdErrors.New("server exploded")
	err := NewProviderError("Google Books", "search", 500, cause)

	expected := "Google Books search: unexpected status 500: server exploded"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("ProviderError does not unwrap to its cause")
	}

	transport := NewProviderError("OpenLibrary", "search", 0, cause)
	if transport.Error() != "OpenLibrary search: server exploded" {
		t.Fatalf("Error message = %q", transport.Error())
	}

	if !IsProviderError(fmt.Errorf("context: %w", err)) {
		t.Fatalf("IsProviderError returned false for wrapped ProviderError")
	}
	if IsProviderError(cause) {
		t.Fatalf("IsProviderError returned true for plain error")
	}
}

func TestUnavailableError(t *testing.T) {
	primary := NewProviderError("Google Books", "search", 500, stdErrors.New("boom"))
	fallback := NewRateLimitError("too many requests")
	err := NewUnavailableError(primary, fallback)

	expected := "both sources unavailable (primary: Google Books search: unexpected status 500: boom; fallback: too many requests)"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsUnavailableError(fmt.Errorf("search: %w", err)) {
		t.Fatalf("IsUnavailableError returned false for wrapped UnavailableError")
	}
	if !IsProviderError(err) || !IsRateLimitError(err) {
		t.Fatalf("UnavailableError should expose both causes")
	}
}
