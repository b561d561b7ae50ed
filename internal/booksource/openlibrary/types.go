package openlibrary

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/marginalia/internal/booksource"
)

const (
	coverBaseURL = "https://covers.openlibrary.org/b/id"
	// maxCategories caps how many subjects are carried over as categories.
	maxCategories = 5
)

// searchResponse matches the OpenLibrary search.json response.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	CoverID             int      `json:"cover_i"`
	FirstPublishYear    int      `json:"first_publish_year"`
	EditionCount        int      `json:"edition_count"`
	RatingsAverage      float64  `json:"ratings_average"`
	RatingsCount        int      `json:"ratings_count"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

// normalizeDoc converts a raw search document into the canonical book shape.
func normalizeDoc(d searchDoc) booksource.Book {
	author := "Unknown author"
	if len(d.AuthorName) > 0 {
		author = strings.Join(d.AuthorName, ", ")
	}

	categories := d.Subject
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}

	return booksource.Book{
		ID:           strings.TrimPrefix(d.Key, "/works/"),
		Title:        d.Title,
		Author:       author,
		CoverURL:     booksource.CoverOrPlaceholder(coverURL(d.CoverID)),
		Rating:       d.RatingsAverage,
		PublishYear:  d.FirstPublishYear,
		PageCount:    d.NumberOfPagesMedian,
		Categories:   categories,
		RatingsCount: d.RatingsCount,
		Source:       providerName,
	}
}

// coverURL constructs the large cover image URL from a cover ID.
func coverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/%d-L.jpg", coverBaseURL, coverID)
}
