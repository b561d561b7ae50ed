// Package search runs book searches against a primary provider, falls back to
// a secondary provider when the primary fails, and pages through results.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/marginalia/internal/booksource"
	apperrors "github.com/lepinkainen/marginalia/internal/errors"
	"github.com/lepinkainen/marginalia/internal/metrics"
)

// DefaultPageSize is the number of books requested per page.
const DefaultPageSize = 20

// History records successfully submitted queries.
type History interface {
	Add(query string)
}

// Orchestrator owns the single active search session of one search surface.
// It is safe for concurrent use; at most one provider call is outstanding
// per orchestrator.
type Orchestrator struct {
	primary  booksource.Source
	fallback booksource.Source
	pageSize int
	history  History
	logger   *slog.Logger

	// callMu serializes provider calls. It is taken before mu, never while
	// holding it.
	callMu sync.Mutex

	mu         sync.Mutex
	state      State
	session    Session
	books      []booksource.Book
	loading    bool
	degraded   bool
	notice     string
	err        error
	active     booksource.Source
	generation uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPageSize sets the page size used for new sessions.
func WithPageSize(size int) Option {
	return func(o *Orchestrator) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithHistory records every query whose search ends in success.
func WithHistory(h History) Option {
	return func(o *Orchestrator) {
		o.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an idle orchestrator over the two providers.
func NewOrchestrator(primary, fallback booksource.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		primary:  primary,
		fallback: fallback,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PageSize returns the page size used for new sessions.
func (o *Orchestrator) PageSize() int {
	return o.pageSize
}

// DegradedNotice is the informational message shown when the fallback
// provider serves a session.
func DegradedNotice(primary, fallback string) string {
	return fmt.Sprintf("%s unavailable — showing results from %s.", primary, fallback)
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	session := o.session
	session.Genres = append([]string(nil), o.session.Genres...)
	return Snapshot{
		State:    o.state,
		Session:  session,
		Books:    append([]booksource.Book(nil), o.books...),
		Loading:  o.loading,
		Degraded: o.degraded,
		Notice:   o.notice,
		Err:      o.err,
	}
}

// PerformSearch starts a new session for q. The previous session is reset
// before any provider is called, and a fetch still running for it is
// superseded: its result is discarded when it arrives. The new search waits
// for that fetch to return before calling a provider, and gives up without
// calling one if it has itself been superseded by then.
//
// Provider failures never surface as a return value; they are reflected in
// the snapshot's State and Err.
func (o *Orchestrator) PerformSearch(ctx context.Context, q Query) Snapshot {
	q.Text = strings.TrimSpace(q.Text)

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.session = Session{
		Query:    q.Text,
		Filter:   q.Filter,
		Genres:   append([]string(nil), q.Genres...),
		PageSize: o.pageSize,
	}
	o.books = nil
	o.err = nil
	o.notice = ""
	o.degraded = false
	o.active = nil
	o.state = StateSearchingPrimary
	o.loading = true
	params := o.session.params(0)
	o.mu.Unlock()

	o.logger.Debug("Starting search", "query", q.Text, "filter", q.Filter, "genres", q.Genres)

	o.callMu.Lock()
	defer o.callMu.Unlock()

	if o.superseded(gen) {
		o.logger.Debug("Search superseded before it started", "query", q.Text)
		return o.Snapshot()
	}

	page, primaryErr := o.fetch(ctx, o.primary, params)
	if primaryErr == nil {
		o.commitSearch(gen, o.primary, page, false)
		return o.Snapshot()
	}

	o.logger.Warn("Primary provider failed, trying fallback",
		"provider", o.primary.Name(),
		"fallback", o.fallback.Name(),
		"error", primaryErr,
	)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return o.Snapshot()
	}
	o.state = StateSearchingFallback
	o.mu.Unlock()

	page, fallbackErr := o.fetch(ctx, o.fallback, params)
	if fallbackErr == nil {
		o.commitSearch(gen, o.fallback, page, true)
		return o.Snapshot()
	}

	o.logger.Error("Both providers failed",
		"query", q.Text,
		"primary_error", primaryErr,
		"fallback_error", fallbackErr,
	)

	o.mu.Lock()
	if gen == o.generation {
		o.state = StateFailed
		o.books = nil
		o.session.HasMore = false
		o.session.TotalItems = 0
		o.err = apperrors.NewUnavailableError(primaryErr, fallbackErr)
		o.loading = false
		metrics.SearchesTotal.WithLabelValues(metrics.ResultFailed).Inc()
	}
	o.mu.Unlock()

	return o.Snapshot()
}

func (o *Orchestrator) superseded(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen != o.generation
}

func (o *Orchestrator) commitSearch(gen uint64, src booksource.Source, page *booksource.Page, degraded bool) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		o.logger.Debug("Discarding superseded search result", "provider", src.Name())
		return
	}

	o.state = StateSuccess
	o.books = append([]booksource.Book(nil), page.Books...)
	o.session.TotalItems = page.TotalItems
	o.session.HasMore = page.HasMore && len(page.Books) > 0
	o.session.ActiveProvider = src.Name()
	o.active = src
	o.degraded = degraded
	o.loading = false
	if degraded {
		o.notice = DegradedNotice(o.primary.Name(), o.fallback.Name())
	}
	query := o.session.Query
	o.mu.Unlock()

	result := metrics.ResultSuccess
	if degraded {
		result = metrics.ResultDegraded
	}
	metrics.SearchesTotal.WithLabelValues(result).Inc()

	o.logger.Info("Search completed",
		"query", query,
		"provider", src.Name(),
		"results", len(page.Books),
		"total", page.TotalItems,
		"degraded", degraded,
	)

	if o.history != nil && query != "" {
		o.history.Add(query)
	}
}

// LoadMore fetches the next page from the provider that served the session
// and appends it. It reports false without doing anything when there is no
// next page, no successful session, or a fetch is already running; such
// calls are dropped, not queued.
//
// A failed page keeps the results loaded so far, sets Err and leaves the page
// counter where it was, so the next LoadMore asks for the same page again.
func (o *Orchestrator) LoadMore(ctx context.Context) (Snapshot, bool) {
	o.mu.Lock()
	if o.loading || o.state != StateSuccess || o.active == nil || !o.session.HasMore {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		metrics.LoadMoreTotal.WithLabelValues(metrics.OutcomeDropped).Inc()
		return snap, false
	}

	o.loading = true
	o.err = nil
	o.session.Page++
	gen := o.generation
	src := o.active
	params := o.session.params(o.session.Page)
	o.mu.Unlock()

	o.callMu.Lock()
	page, err := o.fetch(ctx, src, params)
	o.callMu.Unlock()

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.logger.Debug("Discarding superseded page", "provider", src.Name(), "page", params.Page)
		return o.snapshotLocked(), true
	}

	o.loading = false
	if err != nil {
		o.session.Page--
		o.err = err
		metrics.LoadMoreTotal.WithLabelValues(metrics.OutcomeError).Inc()
		o.logger.Warn("Failed to load more results", "provider", src.Name(), "page", params.Page, "error", err)
		return o.snapshotLocked(), true
	}

	o.books = append(o.books, page.Books...)
	o.session.TotalItems = page.TotalItems
	o.session.HasMore = page.HasMore && len(page.Books) > 0
	metrics.LoadMoreTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	o.logger.Debug("Loaded more results",
		"provider", src.Name(),
		"page", params.Page,
		"results", len(page.Books),
		"accumulated", len(o.books),
	)
	return o.snapshotLocked(), true
}

// fetch calls one provider and records the outcome.
func (o *Orchestrator) fetch(ctx context.Context, src booksource.Source, params booksource.Params) (*booksource.Page, error) {
	start := time.Now()
	page, err := src.SearchBooks(ctx, params)
	metrics.ProviderRequestDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())

	if err == nil && page == nil {
		err = fmt.Errorf("%s returned no page", src.Name())
	}
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(src.Name(), metrics.OutcomeError).Inc()
		if wait, ok := apperrors.RetryAfter(err); ok {
			o.logger.Warn("Provider rate limited", "provider", src.Name(), "retry_after", wait)
		}
		return nil, err
	}
	metrics.ProviderRequestsTotal.WithLabelValues(src.Name(), metrics.OutcomeOK).Inc()
	return page, nil
}
