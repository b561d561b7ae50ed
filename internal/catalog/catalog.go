// Package catalog looks up quotes, books and authors by substring for live
// search suggestions. Entries live either in a local SQLite database or in a
// remote Datasette instance.
package catalog

import (
	"context"
	"fmt"
)

// Table names shared by every backend.
const (
	TableQuotes  = "quotes"
	TableBooks   = "books"
	TableAuthors = "authors"
)

// Quote is a catalogued quotation.
type Quote struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// BookEntry is a catalogued book. It is distinct from provider search results.
type BookEntry struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Author is a catalogued author.
type Author struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Store is an entity lookup backend.
type Store interface {
	// SearchQuotes returns up to limit quotes whose text contains q, ignoring case.
	SearchQuotes(ctx context.Context, q string, limit int) ([]Quote, error)
	// SearchBooks returns up to limit books whose title contains q, ignoring case.
	SearchBooks(ctx context.Context, q string, limit int) ([]BookEntry, error)
	// SearchAuthors returns up to limit authors whose name contains q, ignoring case.
	SearchAuthors(ctx context.Context, q string, limit int) ([]Author, error)

	// BatchInsert inserts records into table.
	BatchInsert(ctx context.Context, table string, records []map[string]any) error

	Close() error
}

// searchColumn maps a table to the column matched by substring search.
var searchColumn = map[string]string{
	TableQuotes:  "text",
	TableBooks:   "title",
	TableAuthors: "name",
}

// tableColumns lists the selected columns per table, in scan order.
var tableColumns = map[string][]string{
	TableQuotes:  {"id", "text", "author"},
	TableBooks:   {"id", "title", "author"},
	TableAuthors: {"id", "name"},
}

func validateTable(table string) error {
	if _, ok := searchColumn[table]; !ok {
		return fmt.Errorf("unknown catalog table: %s", table)
	}
	return nil
}
