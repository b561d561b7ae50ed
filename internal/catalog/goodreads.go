package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lepinkainen/marginalia/internal/csvutil"
)

// Goodreads library export columns read by LoadGoodreadsExport.
const (
	goodreadsBookID  = "Book Id"
	goodreadsTitle   = "Title"
	goodreadsAuthor  = "Author"
	goodreadsAuthors = "Additional Authors"
)

type goodreadsRow struct {
	id      string
	title   string
	authors []string
}

// LoadGoodreadsExport turns a Goodreads library export CSV into a Seed of
// books and their authors. Book ids are prefixed with "gr-"; author ids are
// slugs of the name, so an author appearing on several books is kept once.
func LoadGoodreadsExport(path string) (*Seed, error) {
	rows, err := csvutil.ProcessCSVFile(path, parseGoodreadsRow, csvutil.ProcessorOptions{
		Required:    []string{goodreadsBookID, goodreadsTitle, goodreadsAuthor},
		SkipInvalid: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read Goodreads export: %w", err)
	}

	seed := &Seed{}
	seen := map[string]bool{}
	for _, row := range rows {
		seed.Books = append(seed.Books, BookEntry{
			ID:     "gr-" + row.id,
			Title:  row.title,
			Author: strings.Join(row.authors, ", "),
		})
		for _, name := range row.authors {
			id := authorSlug(name)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			seed.Authors = append(seed.Authors, Author{ID: id, Name: name})
		}
	}
	return seed, nil
}

func parseGoodreadsRow(r csvutil.Record) (goodreadsRow, error) {
	row := goodreadsRow{id: r.Get(goodreadsBookID), title: r.Get(goodreadsTitle)}
	if row.id == "" || row.title == "" {
		return row, errors.New("book id and title are required")
	}
	if author := r.Get(goodreadsAuthor); author != "" {
		row.authors = append(row.authors, author)
	}
	for _, extra := range strings.Split(r.Get(goodreadsAuthors), ",") {
		if extra = strings.TrimSpace(extra); extra != "" {
			row.authors = append(row.authors, extra)
		}
	}
	return row, nil
}

// authorSlug lowercases name and joins its alphanumeric runs with dashes.
func authorSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
