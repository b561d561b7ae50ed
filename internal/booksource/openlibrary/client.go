// Package openlibrary adapts the OpenLibrary search API to booksource.Source.
//
// The trending filter has a known limitation: the raw page is fetched at the
// client's page offset but is twice the page size, re-sorted by edition count
// and truncated afterwards. Provider pagination and the visible page boundary
// are therefore decoupled, and later trending pages may repeat earlier items.
package openlibrary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/cache"
	"github.com/lepinkainen/marginalia/internal/ratelimit"
)

const (
	defaultBaseURL  = "https://openlibrary.org"
	defaultPageSize = 20
	// trendingOverfetch is how many client pages of raw results are fetched
	// before re-sorting by popularity.
	trendingOverfetch = 2
	cacheTable        = "openlibrary_cache"
	providerName      = "OpenLibrary"
	searchFields      = "key,title,author_name,cover_i,first_publish_year,edition_count,ratings_average,ratings_count,subject,number_of_pages_median"
)

// Client implements booksource.Source for OpenLibrary.
type Client struct {
	baseURL       string
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

// NewClient creates a new OpenLibrary client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: booksource.DefaultTimeout},
		rateLimiter:   ratelimit.New(providerName, 1, 1),
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

// SearchBooks fetches one page of works and normalizes them to booksource.Book.
func (c *Client) SearchBooks(ctx context.Context, p booksource.Params) (*booksource.Page, error) {
	p = p.Normalize(defaultPageSize)

	page, fromCache, err := cache.GetOrFetch(c.cache, cacheTable, p.Key(), func() (*booksource.Page, error) {
		return c.fetchPage(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenLibrary page",
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

	var result searchResponse
	if err := fetcher.GetJSON(ctx, c.searchURL(p), &result); err != nil {
		return nil, err
	}

	docs := result.Docs
	if p.Filter == booksource.FilterTrending {
		docs = byPopularity(docs, p.PageSize)
	}

	books := make([]booksource.Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, normalizeDoc(doc))
	}

	return &booksource.Page{
		Books:      books,
		TotalItems: result.NumFound,
		HasMore:    booksource.HasMore(p.Page, p.PageSize, len(books), result.NumFound),
	}, nil
}

// searchURL builds the search.json query for the requested filter.
func (c *Client) searchURL(p booksource.Params) string {
	limit := p.PageSize
	if p.Filter == booksource.FilterTrending {
		limit = p.PageSize * trendingOverfetch
	}

	params := url.Values{}
	params.Set("q", buildQuery(p))
	params.Set("offset", strconv.Itoa(p.Page*p.PageSize))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	if p.Filter == booksource.FilterLatest {
		params.Set("sort", "new")
	}

	return fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
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

// byPopularity stable-sorts the raw page by edition count and truncates it to
// pageSize after sorting.
func byPopularity(docs []searchDoc, pageSize int) []searchDoc {
	sorted := make([]searchDoc, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EditionCount > sorted[j].EditionCount
	})
	if len(sorted) > pageSize {
		sorted = sorted[:pageSize]
	}
	return sorted
}
