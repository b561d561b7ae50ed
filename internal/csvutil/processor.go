// Package csvutil reads headered CSV exports into typed records.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// Required lists header columns that must be present.
	Required []string

	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// Record is one CSV row addressed by header name.
type Record struct {
	index  map[string]int
	fields []string
	Line   int
}

// Get returns the trimmed value of column, or "" when the column is absent.
func (r Record) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// ProcessCSVFile opens filename and hands it to ProcessCSV.
func ProcessCSVFile[T any](filename string, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("CSV file is empty or cannot be read")
	}

	return ProcessCSV(csvFile, parser, opts)
}

// ProcessCSV parses each row after the header into T. Rows the reader cannot
// split are logged and skipped; rows the parser rejects fail the whole read
// unless SkipInvalid is set.
func ProcessCSV[T any](r io.Reader, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports prefix the first column with a BOM
		name = strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF")
		index[name] = i
	}
	for _, col := range opts.Required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var items []T
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("Error reading record", "line", line, "error", err)
			continue
		}

		item, err := parser(Record{index: index, fields: fields, Line: line})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}
