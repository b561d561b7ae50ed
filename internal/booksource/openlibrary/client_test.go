package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(nil),
		WithRetryDelay(0),
	)
}

func writeDocs(t *testing.T, w http.ResponseWriter, numFound int, docs []map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"numFound": numFound,
		"docs":     docs,
	}))
}

func TestSearchBooksNormalizesDocs(t *testing.T) {
	var captured url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		captured = r.URL.Query()
		writeDocs(t, w, 2, []map[string]any{
			{
				"key":                    "/works/OL27448W",
				"title":                  "The Lord of the Rings",
				"author_name":            []string{"J.R.R. Tolkien"},
				"cover_i":                9255566,
				"first_publish_year":     1954,
				"edition_count":          120,
				"ratings_average":        4.5,
				"ratings_count":          900,
				"subject":                []string{"Fantasy", "Fiction", "Middle Earth", "Quests", "Rings", "Wizards"},
				"number_of_pages_median": 1193,
			},
			{
				"key":   "/works/OL1W",
				"title": "Untitled pamphlet",
			},
		})
	})

	page, err := client.SearchBooks(context.Background(), booksource.Params{Query: "tolkien", Page: 0, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Books, 2)

	assert.Equal(t, "tolkien", captured.Get("q"))
	assert.Equal(t, "0", captured.Get("offset"))
	assert.Equal(t, "10", captured.Get("limit"))
	assert.Empty(t, captured.Get("sort"))

	lotr := page.Books[0]
	assert.Equal(t, "OL27448W", lotr.ID)
	assert.Equal(t, "J.R.R. Tolkien", lotr.Author)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/9255566-L.jpg", lotr.CoverURL)
	assert.Equal(t, 1954, lotr.PublishYear)
	assert.Equal(t, 1193, lotr.PageCount)
	assert.Len(t, lotr.Categories, 5)
	assert.Equal(t, "OpenLibrary", lotr.Source)

	assert.Equal(t, booksource.PlaceholderCoverURL, page.Books[1].CoverURL)
	assert.False(t, page.HasMore)
}

func TestSearchBooksLatestAndGenre(t *testing.T) {
	var captured url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		writeDocs(t, w, 0, nil)
	})

	_, err := client.SearchBooks(context.Background(), booksource.Params{Query: "life", Filter: booksource.FilterLatest, Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "new", captured.Get("sort"))
	assert.Equal(t, "10", captured.Get("offset"))

	_, err = client.SearchBooks(context.Background(), booksource.Params{Filter: booksource.FilterGenre, Genres: []string{"horror", "gothic"}, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, `(subject:"horror" OR subject:"gothic")`, captured.Get("q"))
}

func TestSearchBooksTrendingSortsThenTruncates(t *testing.T) {
	var captured url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		docs := make([]map[string]any, 0, 6)
		for i, editions := range []int{3, 50, 7, 50, 90, 1} {
			docs = append(docs, map[string]any{
				"key":           fmt.Sprintf("/works/OL%dW", i),
				"title":         fmt.Sprintf("Book %d", i),
				"edition_count": editions,
			})
		}
		writeDocs(t, w, 100, docs)
	})

	page, err := client.SearchBooks(context.Background(), booksource.Params{Query: "war", Filter: booksource.FilterTrending, Page: 1, PageSize: 3})
	require.NoError(t, err)

	// Raw page is twice the client page, at the client page offset
	assert.Equal(t, "6", captured.Get("limit"))
	assert.Equal(t, "3", captured.Get("offset"))

	ids := make([]string, 0, len(page.Books))
	for _, b := range page.Books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"OL4W", "OL1W", "OL3W"}, ids, "sorted by editions, ties keep provider order")
	assert.True(t, page.HasMore)
}

func TestSearchBooksHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.SearchBooks(context.Background(), booksource.Params{Query: "life"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestSearchBooksEmptyQueryUsesDefaultSubject(t *testing.T) {
	var captured url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		writeDocs(t, w, 0, nil)
	})

	page, err := client.SearchBooks(context.Background(), booksource.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Books)
	assert.Equal(t, "subject:fiction", captured.Get("q"))
	assert.Equal(t, "20", captured.Get("limit"))
}
