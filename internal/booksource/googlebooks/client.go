// Package googlebooks adapts the Google Books volumes search API to booksource.Source.
package googlebooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/cache"
	"github.com/lepinkainen/marginalia/internal/ratelimit"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/books/v1"
	defaultPageSize = 20
	// maxResults is the largest page the volumes endpoint accepts.
	maxResults   = 40
	cacheTable   = "googlebooks_cache"
	providerName = "Google Books"
)

// Client implements booksource.Source for Google Books.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    booksource.HTTPDoer
	rateLimiter   *ratelimit.Limiter
	cache         *cache.DB
	logger        *slog.Logger
	retryAttempts int
	retryDelay    time.Duration
}

// Compile-time check that Client implements booksource.Source.
var _ booksource.Source = (*Client)(nil)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// NewClient creates a new Google Books client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: booksource.DefaultTimeout},
		rateLimiter:   ratelimit.New(providerName, 2, 2),
		logger:        slog.Default(),
		retryAttempts: booksource.DefaultRetryAttempts,
		retryDelay:    booksource.DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithAPIKey sets the optional API key appended to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(doer booksource.HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithRetryAttempts sets the number of attempts for transport failures.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
	}
}

// WithRetryDelay sets the fixed delay between transport retries.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithRateLimiter sets the rate limiter. Passing nil disables pacing.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.rateLimiter = limiter
	}
}

// WithCache enables page caching in the given cache database.
func WithCache(db *cache.DB) Option {
	return func(c *Client) {
		c.cache = db
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Name returns the human-readable name of this provider.
func (c *Client) Name() string {
	return providerName
}

// SearchBooks fetches one page of volumes and normalizes them to booksource.Book.
func (c *Client) SearchBooks(ctx context.Context, p booksource.Params) (*booksource.Page, error) {
	p = p.Normalize(defaultPageSize)
	if p.PageSize > maxResults {
		p.PageSize = maxResults
	}

	page, fromCache, err := cache.GetOrFetch(c.cache, cacheTable, p.Key(), func() (*booksource.Page, error) {
		return c.fetchPage(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Google Books page",
		"query", p.Query,
		"filter", p.Filter,
		"page", p.Page,
		"returned", len(page.Books),
		"total", page.TotalItems,
		"from_cache", fromCache,
	)
	return page, nil
}

func (c *Client) fetchPage(ctx context.Context, p booksource.Params) (*booksource.Page, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	fetcher := &booksource.Fetcher{
		Provider: providerName,
		Client:   c.httpClient,
		Attempts: c.retryAttempts,
		Delay:    c.retryDelay,
	}

	var result volumesResponse
	if err := fetcher.GetJSON(ctx, c.searchURL(p), &result); err != nil {
		return nil, err
	}

	books := make([]booksource.Book, 0, len(result.Items))
	for _, item := range result.Items {
		books = append(books, normalizeVolume(item))
	}

	return &booksource.Page{
		Books:      books,
		TotalItems: result.TotalItems,
		HasMore:    booksource.HasMore(p.Page, p.PageSize, len(books), result.TotalItems),
	}, nil
}

// searchURL builds the volumes query for the requested filter.
func (c *Client) searchURL(p booksource.Params) string {
	params := url.Values{}
	params.Set("q", buildQuery(p))
	params.Set("startIndex", strconv.Itoa(p.Page*p.PageSize))
	params.Set("maxResults", strconv.Itoa(p.PageSize))
	params.Set("printType", "books")

	switch p.Filter {
	case booksource.FilterLatest:
		params.Set("orderBy", "newest")
	case booksource.FilterTrending:
		params.Set("orderBy", "relevance")
	}

	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	return fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
}

func buildQuery(p booksource.Params) string {
	var parts []string
	if p.Query != "" {
		parts = append(parts, p.Query)
	}
	if p.Filter == booksource.FilterGenre {
		if clause := booksource.SubjectClause(p.Genres); clause != "" {
			parts = append(parts, "("+clause+")")
		}
	}
	if len(parts) == 0 {
		return "subject:" + booksource.DefaultSubject
	}
	return strings.Join(parts, " ")
}
