// Package booksource defines the canonical book shape shared by every external
// catalog provider and the contract each provider adapter implements.
package booksource

import (
	"context"
	"strings"
)

// PlaceholderCoverURL is used for books the provider returned without a cover,
// so consumers never have to handle a missing image.
const PlaceholderCoverURL = "https://placehold.co/128x192?text=No+Cover"

// DefaultSubject is searched when a request carries neither a query nor genres.
const DefaultSubject = "fiction"

// Filter selects a provider-specific search bias.
type Filter string

const (
	// FilterNone searches by the query text alone.
	FilterNone Filter = ""
	// FilterGenre ORs the requested genres as subject terms.
	FilterGenre Filter = "genre"
	// FilterLatest biases results toward the newest publication date.
	FilterLatest Filter = "latest"
	// FilterTrending biases results toward popularity signals of the provider.
	FilterTrending Filter = "trending"
)

// ParseFilter converts user input into a Filter. Unknown values map to FilterNone.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterGenre:
		return FilterGenre
	case FilterLatest:
		return FilterLatest
	case FilterTrending:
		return FilterTrending
	default:
		return FilterNone
	}
}

// Book is the canonical, provider-independent book record.
// IDs are only unique within the Source that produced them.
type Book struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	CoverURL     string   `json:"coverUrl"`
	Rating       float64  `json:"rating"`
	PublishYear  int      `json:"publishYear,omitempty"`
	Description  string   `json:"description,omitempty"`
	PageCount    int      `json:"pageCount,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	RatingsCount int      `json:"ratingsCount,omitempty"`
	Source       string   `json:"source"`
}

// Params describes one page of a search.
type Params struct {
	Query    string
	Filter   Filter
	Genres   []string
	Page     int
	PageSize int
}

// Page is one normalized page of search results.
type Page struct {
	Books      []Book `json:"books"`
	TotalItems int    `json:"totalItems"`
	HasMore    bool   `json:"hasMore"`
}

// Source is an external book catalog normalized to the canonical Book shape.
type Source interface {
	// Name returns the human-readable name of the provider (e.g. "Google Books").
	Name() string

	// SearchBooks fetches one page of results. Zero results is a valid empty
	// Page; errors are returned only for transport or decoding failures.
	SearchBooks(ctx context.Context, p Params) (*Page, error)
}

// HasMore reports whether another page may follow. It relies on the number of
// items actually returned rather than trusting the provider's stated total.
func HasMore(page, pageSize, returned, totalItems int) bool {
	if returned <= 0 {
		return false
	}
	return page*pageSize+returned < totalItems
}

// CoverOrPlaceholder returns url, or PlaceholderCoverURL when url is empty.
func CoverOrPlaceholder(url string) string {
	if strings.TrimSpace(url) == "" {
		return PlaceholderCoverURL
	}
	return url
}

// SubjectClause ORs the given genres as provider subject terms, e.g.
// `subject:"fantasy" OR subject:"poetry"`. Blank genres are skipped.
func SubjectClause(genres []string) string {
	terms := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		terms = append(terms, `subject:"`+g+`"`)
	}
	return strings.Join(terms, " OR ")
}

// Normalize fills defaults into p: a non-negative page and a positive page size.
func (p Params) Normalize(defaultPageSize int) Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// Key returns a canonical cache key for the params.
func (p Params) Key() string {
	return strings.Join([]string{
		"q=" + strings.ToLower(p.Query),
		"f=" + string(p.Filter),
		"g=" + strings.ToLower(strings.Join(p.Genres, ",")),
		"p=" + itoa(p.Page),
		"n=" + itoa(p.PageSize),
	}, "&")
}
