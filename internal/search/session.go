package search

import (
	"github.com/lepinkainen/marginalia/internal/booksource"
)

// State is the lifecycle state of a search session.
type State int

const (
	StateIdle State = iota
	StateSearchingPrimary
	StateSearchingFallback
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearchingPrimary:
		return "searching-primary"
	case StateSearchingFallback:
		return "searching-fallback"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Query is what a user submits to start a new session.
type Query struct {
	Text   string
	Filter booksource.Filter
	Genres []string
}

// Session tracks pagination for the active search.
//
// Page is the last page successfully loaded. HasMore follows
// booksource.HasMore, so it is false after any empty page.
type Session struct {
	Query          string            `json:"query"`
	Filter         booksource.Filter `json:"filter"`
	Genres         []string          `json:"genres,omitempty"`
	Page           int               `json:"page"`
	PageSize       int               `json:"pageSize"`
	TotalItems     int               `json:"totalItems"`
	HasMore        bool              `json:"hasMore"`
	ActiveProvider string            `json:"activeProvider,omitempty"`
}

func (s Session) params(page int) booksource.Params {
	return booksource.Params{
		Query:    s.Query,
		Filter:   s.Filter,
		Genres:   s.Genres,
		Page:     page,
		PageSize: s.PageSize,
	}
}

// Snapshot is an immutable copy of the orchestrator's observable state.
type Snapshot struct {
	State    State
	Session  Session
	Books    []booksource.Book
	Loading  bool
	Degraded bool
	Notice   string
	Err      error
}
