package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/search"
	"github.com/lepinkainen/marginalia/internal/suggest"
)

// SearchResponse is the body returned by the search and load-more endpoints.
type SearchResponse struct {
	Session  string            `json:"session"`
	State    string            `json:"state"`
	Books    []booksource.Book `json:"books"`
	Page     int               `json:"page"`
	HasMore  bool              `json:"hasMore"`
	Total    int               `json:"totalItems"`
	Provider string            `json:"provider,omitempty"`
	Degraded bool              `json:"degraded"`
	Notice   string            `json:"notice,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// SuggestResponse is the body returned by the suggest endpoint.
type SuggestResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Error       string               `json:"error,omitempty"`
}

// RecentResponse lists recent searches, most recent first.
type RecentResponse struct {
	Queries []string `json:"queries"`
}

type addRecentRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newSearchResponse(id string, snap search.Snapshot) SearchResponse {
	resp := SearchResponse{
		Session:  id,
		State:    snap.State.String(),
		Books:    snap.Books,
		Page:     snap.Session.Page,
		HasMore:  snap.Session.HasMore,
		Total:    snap.Session.TotalItems,
		Provider: snap.Session.ActiveProvider,
		Degraded: snap.Degraded,
		Notice:   snap.Notice,
	}
	if resp.Books == nil {
		resp.Books = []booksource.Book{}
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}

// handleSearch starts a new session: GET /api/search?q=&filter=&genres=a,b
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := search.Query{
		Text:   params.Get("q"),
		Filter: booksource.ParseFilter(params.Get("filter")),
		Genres: splitGenres(params.Get("genres")),
	}

	orch := s.newOrchestrator()
	snap := orch.PerformSearch(r.Context(), q)
	id := s.sessions.add(orch)

	status := http.StatusOK
	if snap.State == search.StateFailed {
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, newSearchResponse(id, snap))
}

// handleLoadMore appends the next page: POST /api/search/{session}/more
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	orch, ok := s.sessions.get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown search session")
		return
	}

	snap, accepted := orch.LoadMore(r.Context())
	status := http.StatusOK
	switch {
	case !accepted:
		status = http.StatusConflict
	case snap.Err != nil:
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, newSearchResponse(id, snap))
}

// handleSuggest returns merged suggestions: GET /api/suggest?q=
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var recent suggest.RecentSource
	if s.deps.Recent != nil {
		recent = s.deps.Recent
	}
	agg := suggest.NewAggregator(s.deps.Lookup, recent, suggest.WithLogger(s.logger))
	agg.FetchSuggestions(r.Context(), r.URL.Query().Get("q"))

	state := agg.State()
	resp := SuggestResponse{Suggestions: state.Suggestions}
	if resp.Suggestions == nil {
		resp.Suggestions = []suggest.Suggestion{}
	}
	if state.Err != nil {
		resp.Error = state.Err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRecent(w http.ResponseWriter, r *http.Request) {
	queries := []string{}
	if s.deps.Recent != nil {
		queries = append(queries, s.deps.Recent.List()...)
	}
	s.writeJSON(w, http.StatusOK, RecentResponse{Queries: queries})
}

func (s *Server) handleAddRecent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recent == nil {
		s.writeError(w, http.StatusServiceUnavailable, "recent searches are not configured")
		return
	}

	var req addRecentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	s.deps.Recent.Add(req.Query)
	s.writeJSON(w, http.StatusOK, RecentResponse{Queries: s.deps.Recent.List()})
}

func splitGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var genres []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
