package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Schemas holds the CREATE statements for the catalog tables.
var Schemas = []string{
	`CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
}

// SQLiteStore implements Store on a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens the database and creates the catalog tables
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	for _, schema := range Schemas {
		if err := s.CreateTable(schema); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable creates a new table with the given schema if it doesn't exist
func (s *SQLiteStore) CreateTable(schema string) error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// BatchInsert inserts or replaces multiple records in the specified table
func (s *SQLiteStore) BatchInsert(ctx context.Context, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}
	if err := validateTable(table); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	// Column order comes from the first record, sorted for a stable statement
	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, record := range records {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = record[col]
		}

		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SearchQuotes implements Store.
func (s *SQLiteStore) SearchQuotes(ctx context.Context, q string, limit int) ([]Quote, error) {
	var quotes []Quote
	err := s.search(ctx, TableQuotes, q, limit, func(rows *sql.Rows) error {
		var quote Quote
		if err := rows.Scan(&quote.ID, &quote.Text, &quote.Author); err != nil {
			return err
		}
		quotes = append(quotes, quote)
		return nil
	})
	return quotes, err
}

// SearchBooks implements Store.
func (s *SQLiteStore) SearchBooks(ctx context.Context, q string, limit int) ([]BookEntry, error) {
	var books []BookEntry
	err := s.search(ctx, TableBooks, q, limit, func(rows *sql.Rows) error {
		var book BookEntry
		if err := rows.Scan(&book.ID, &book.Title, &book.Author); err != nil {
			return err
		}
		books = append(books, book)
		return nil
	})
	return books, err
}

// SearchAuthors implements Store.
func (s *SQLiteStore) SearchAuthors(ctx context.Context, q string, limit int) ([]Author, error) {
	var authors []Author
	err := s.search(ctx, TableAuthors, q, limit, func(rows *sql.Rows) error {
		var author Author
		if err := rows.Scan(&author.ID, &author.Name); err != nil {
			return err
		}
		authors = append(authors, author)
		return nil
	})
	return authors, err
}

// search runs a case-insensitive substring match on the table's search
// column. LIKE wildcards in q are matched literally.
func (s *SQLiteStore) search(ctx context.Context, table, q string, limit int, scan func(*sql.Rows) error) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if s.db == nil {
		return fmt.Errorf("catalog database %s is not connected", s.dbPath)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE LOWER(%s) LIKE '%%' || LOWER(?) || '%%' ESCAPE '\' ORDER BY rowid LIMIT ?`,
		strings.Join(tableColumns[table], ", "),
		table,
		searchColumn[table],
	)

	rows, err := s.db.QueryContext(ctx, query, escapeLike(q), limit)
	if err != nil {
		return fmt.Errorf("failed to search %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s rows: %w", table, err)
	}
	return nil
}

func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
