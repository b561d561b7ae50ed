// Package recent keeps the short, most-recently-used list of submitted
// search queries and persists it between runs.
package recent

import (
	"log/slog"
	"strings"
	"sync"
)

// Capacity is the maximum number of remembered queries.
const Capacity = 5

// Persistence loads and saves the recent-search list.
type Persistence interface {
	Load() ([]string, error)
	Save(queries []string) error
}

// Store is the in-memory recent-search list backed by a Persistence.
// Entries are ordered most recent first and are unique by exact match.
type Store struct {
	mu          sync.RWMutex
	queries     []string
	persistence Persistence
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore loads the persisted list. Missing data yields an empty list; a
// corrupt or unreachable backend is logged and also yields an empty list.
// A nil persistence keeps the list in memory only.
func NewStore(p Persistence, opts ...Option) *Store {
	s := &Store{
		persistence: p,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if p == nil {
		return s
	}

	loaded, err := p.Load()
	if err != nil {
		s.logger.Warn("Failed to load recent searches, starting empty", "error", err)
		return s
	}
	s.queries = sanitize(loaded)
	return s
}

// Add records a submitted query. Whitespace is trimmed and empty queries are
// ignored. An existing identical entry moves to the front.
func (s *Store) Add(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	s.mu.Lock()
	next := make([]string, 0, Capacity)
	next = append(next, query)
	for _, q := range s.queries {
		if q == query {
			continue
		}
		if len(next) == Capacity {
			break
		}
		next = append(next, q)
	}
	s.queries = next
	snapshot := append([]string(nil), next...)
	s.mu.Unlock()

	s.save(snapshot)
}

// List returns a copy of the recent queries, most recent first.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.queries...)
}

// Clear forgets every recent query.
func (s *Store) Clear() {
	s.mu.Lock()
	s.queries = nil
	s.mu.Unlock()

	s.save([]string{})
}

func (s *Store) save(queries []string) {
	if s.persistence == nil {
		return
	}
	if err := s.persistence.Save(queries); err != nil {
		s.logger.Warn("Failed to persist recent searches", "error", err)
	}
}

// sanitize applies the list invariants to data read from storage.
func sanitize(loaded []string) []string {
	out := make([]string, 0, Capacity)
	seen := make(map[string]bool, len(loaded))
	for _, q := range loaded {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == Capacity {
			break
		}
	}
	return out
}
