// Package suggest merges recent searches and catalog lookups into one short,
// ordered suggestion list and tracks keyboard selection over it.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/marginalia/internal/catalog"
	"github.com/lepinkainen/marginalia/internal/metrics"
)

// LookupLimit is the row limit of each catalog lookup.
const LookupLimit = 3

// Lookup searches the entity catalog.
type Lookup interface {
	SearchQuotes(ctx context.Context, q string, limit int) ([]catalog.Quote, error)
	SearchBooks(ctx context.Context, q string, limit int) ([]catalog.BookEntry, error)
	SearchAuthors(ctx context.Context, q string, limit int) ([]catalog.Author, error)
}

// RecentSource lists recent searches, most recent first.
type RecentSource interface {
	List() []string
}

// State is a copy of the aggregator's observable state. Selected is -1 when
// nothing is selected.
type State struct {
	Query       string
	Suggestions []Suggestion
	Loading     bool
	Err         error
	Selected    int
}

// Aggregator owns the visible suggestion list.
type Aggregator struct {
	lookup Lookup
	recent RecentSource
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an Aggregator. recent may be nil.
func NewAggregator(lookup Lookup, recent RecentSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		lookup: lookup,
		recent: recent,
		logger: slog.Default(),
		state:  State{Selected: -1},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns a copy of the current state.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Suggestions = append([]Suggestion(nil), a.state.Suggestions...)
	return s
}

// FetchSuggestions looks up suggestions for query and applies them unless a
// later fetch has started in the meantime.
func (a *Aggregator) FetchSuggestions(ctx context.Context, query string) {
	a.FetchIfCurrent(ctx, query, nil)
}

// FetchIfCurrent is FetchSuggestions with an extra staleness check: results
// are applied only if current reports true at commit time. current is called
// with the aggregator lock held and must not call back into the aggregator.
//
// An empty or whitespace query clears the list without any lookup. Any lookup
// failure clears the list and sets Err; partial results are never shown.
func (a *Aggregator) FetchIfCurrent(ctx context.Context, query string, current func() bool) {
	trimmed := strings.TrimSpace(query)

	a.mu.Lock()
	a.generation++
	gen := a.generation
	if trimmed == "" {
		a.state = State{Selected: -1}
		a.mu.Unlock()
		return
	}
	a.state.Query = query
	a.state.Loading = true
	a.mu.Unlock()

	isCurrent := func() bool {
		return gen == a.generation && (current == nil || current())
	}

	recent := a.matchRecent(trimmed)

	var (
		quotes  []catalog.Quote
		books   []catalog.BookEntry
		authors []catalog.Author
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quotes, err = a.lookup.SearchQuotes(gctx, trimmed, LookupLimit)
		if err != nil {
			return fmt.Errorf("quotes lookup: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		books, err = a.lookup.SearchBooks(gctx, trimmed, LookupLimit)
		if err != nil {
			return fmt.Errorf("books lookup: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		authors, err = a.lookup.SearchAuthors(gctx, trimmed, LookupLimit)
		if err != nil {
			return fmt.Errorf("authors lookup: %w", err)
		}
		return nil
	})
	err := g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !isCurrent() {
		metrics.SuggestionRequestsTotal.WithLabelValues(metrics.OutcomeStale).Inc()
		a.logger.Debug("Discarding stale suggestions", "query", query)
		return
	}

	a.state.Loading = false
	a.state.Selected = -1
	if err != nil {
		a.state.Suggestions = nil
		a.state.Err = fmt.Errorf("failed to fetch suggestions: %w", err)
		metrics.SuggestionRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		a.logger.Warn("Suggestion lookup failed", "query", query, "error", err)
		return
	}

	a.state.Err = nil
	a.state.Suggestions = merge(recent, quotes, authors, books)
	metrics.SuggestionRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	a.logger.Debug("Suggestions updated", "query", query, "count", len(a.state.Suggestions))
}

// Clear empties the list and makes every running fetch stale.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.state = State{Selected: -1}
}

// ShowTrending replaces the list with trending suggestions for an empty
// input. Running fetches become stale.
func (a *Aggregator) ShowTrending(terms []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.state = State{Suggestions: TrendingSuggestions(terms), Selected: -1}
}

// matchRecent returns up to MaxRecent recent searches containing q, ignoring case.
func (a *Aggregator) matchRecent(q string) []string {
	if a.recent == nil {
		return nil
	}
	needle := strings.ToLower(q)
	var out []string
	for _, entry := range a.recent.List() {
		if strings.Contains(strings.ToLower(entry), needle) {
			out = append(out, entry)
			if len(out) == MaxRecent {
				break
			}
		}
	}
	return out
}

// merge builds the list in fixed category order with per-category caps.
func merge(recent []string, quotes []catalog.Quote, authors []catalog.Author, books []catalog.BookEntry) []Suggestion {
	out := make([]Suggestion, 0, MaxRecent+MaxQuotes+MaxAuthors+MaxBooks)
	for i, r := range recent {
		if i == MaxRecent {
			break
		}
		out = append(out, Suggestion{Type: TypeRecent, Text: r})
	}
	for i, q := range quotes {
		if i == MaxQuotes {
			break
		}
		out = append(out, Suggestion{Type: TypeQuote, Text: q.Text, ID: q.ID})
	}
	for i, au := range authors {
		if i == MaxAuthors {
			break
		}
		out = append(out, Suggestion{Type: TypeAuthor, Text: au.Name, ID: au.ID})
	}
	for i, b := range books {
		if i == MaxBooks {
			break
		}
		out = append(out, Suggestion{Type: TypeBook, Text: b.Title, ID: b.ID})
	}
	return out
}

// MoveDown selects the next suggestion, stopping at the last one.
func (a *Aggregator) MoveDown() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.state.Suggestions); n > 0 && a.state.Selected < n-1 {
		a.state.Selected++
	}
	return a.state.Selected
}

// MoveUp selects the previous suggestion, stopping at none selected (-1).
func (a *Aggregator) MoveUp() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Selected > -1 {
		a.state.Selected--
	}
	return a.state.Selected
}

// Activate reports what the selected suggestion should do. ok is false when
// nothing is selected.
func (a *Aggregator) Activate() (Activation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sel := a.state.Selected
	if sel < 0 || sel >= len(a.state.Suggestions) {
		return Activation{}, false
	}
	return activationFor(a.state.Suggestions[sel]), true
}
