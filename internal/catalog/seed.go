package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document accepted by LoadSeed.
//
//	quotes:
//	  - id: q1
//	    text: Not all those who wander are lost.
//	    author: J.R.R. Tolkien
//	books:
//	  - id: b1
//	    title: The Hobbit
//	authors:
//	  - id: a1
//	    name: J.R.R. Tolkien
type Seed struct {
	Quotes  []Quote     `yaml:"quotes"`
	Books   []BookEntry `yaml:"books"`
	Authors []Author    `yaml:"authors"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	for i, q := range s.Quotes {
		if q.ID == "" || q.Text == "" {
			return fmt.Errorf("quote %d needs id and text", i)
		}
	}
	for i, b := range s.Books {
		if b.ID == "" || b.Title == "" {
			return fmt.Errorf("book %d needs id and title", i)
		}
	}
	for i, a := range s.Authors {
		if a.ID == "" || a.Name == "" {
			return fmt.Errorf("author %d needs id and name", i)
		}
	}
	return nil
}

// Records converts the seed into per-table insert records.
func (s *Seed) Records() map[string][]map[string]any {
	records := map[string][]map[string]any{}
	for _, q := range s.Quotes {
		records[TableQuotes] = append(records[TableQuotes], map[string]any{"id": q.ID, "text": q.Text, "author": q.Author})
	}
	for _, b := range s.Books {
		records[TableBooks] = append(records[TableBooks], map[string]any{"id": b.ID, "title": b.Title, "author": b.Author})
	}
	for _, a := range s.Authors {
		records[TableAuthors] = append(records[TableAuthors], map[string]any{"id": a.ID, "name": a.Name})
	}
	return records
}

// Apply inserts the seed into store, table by table.
func (s *Seed) Apply(ctx context.Context, store Store) error {
	records := s.Records()
	for _, table := range []string{TableQuotes, TableBooks, TableAuthors} {
		if err := store.BatchInsert(ctx, table, records[table]); err != nil {
			return fmt.Errorf("failed to seed %s: %w", table, err)
		}
		slog.Info("Seeded catalog table", "table", table, "rows", len(records[table]))
	}
	return nil
}
