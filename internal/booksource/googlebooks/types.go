package googlebooks

import (
	"strconv"
	"strings"

	"github.com/lepinkainen/marginalia/internal/booksource"
)

// volumesResponse matches the Google Books volumes search response.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Subtitle      string   `json:"subtitle"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		RatingsCount  int      `json:"ratingsCount"`
		ImageLinks    struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// normalizeVolume converts a raw volume into the canonical book shape.
func normalizeVolume(v volume) booksource.Book {
	info := v.VolumeInfo

	author := "Unknown author"
	if len(info.Authors) > 0 {
		author = strings.Join(info.Authors, ", ")
	}

	return booksource.Book{
		ID:           v.ID,
		Title:        info.Title,
		Author:       author,
		CoverURL:     booksource.CoverOrPlaceholder(coverURL(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)),
		Rating:       info.AverageRating,
		PublishYear:  publishYear(info.PublishedDate),
		Description:  info.Description,
		PageCount:    info.PageCount,
		Categories:   info.Categories,
		RatingsCount: info.RatingsCount,
		Source:       providerName,
	}
}

// coverURL prefers the larger thumbnail and requests the unzoomed image over https.
func coverURL(thumbnail, small string) string {
	u := thumbnail
	if u == "" {
		u = small
	}
	if u == "" {
		return ""
	}
	u = strings.Replace(u, "zoom=1", "zoom=0", 1)
	return strings.Replace(u, "http://", "https://", 1)
}

// publishYear extracts the year from "2006", "2006-01" or "2006-01-02".
func publishYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
