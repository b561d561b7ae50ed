package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	apperrors "github.com/lepinkainen/marginalia/internal/errors"
)

const (
	datasetteProvider = "Datasette"
	// DefaultDatasetteDatabase is the database name used when none is configured.
	DefaultDatasetteDatabase = "marginalia"
)

// DatasetteClient implements Store for remote Datasette instances
type DatasetteClient struct {
	baseURL  string
	database string
	apiToken string
	client   *http.Client
}

// Compile-time check that DatasetteClient implements Store.
var _ Store = (*DatasetteClient)(nil)

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, database, apiToken string) *DatasetteClient {
	if database == "" {
		database = DefaultDatasetteDatabase
	}
	return &DatasetteClient{
		baseURL:  baseURL,
		database: database,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Connect verifies the configured base URL
func (c *DatasetteClient) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.baseURL)
	}
	return nil
}

// SearchQuotes implements Store.
func (c *DatasetteClient) SearchQuotes(ctx context.Context, q string, limit int) ([]Quote, error) {
	var quotes []Quote
	err := c.search(ctx, TableQuotes, q, limit, &quotes)
	return quotes, err
}

// SearchBooks implements Store.
func (c *DatasetteClient) SearchBooks(ctx context.Context, q string, limit int) ([]BookEntry, error) {
	var books []BookEntry
	err := c.search(ctx, TableBooks, q, limit, &books)
	return books, err
}

// SearchAuthors implements Store.
func (c *DatasetteClient) SearchAuthors(ctx context.Context, q string, limit int) ([]Author, error) {
	var authors []Author
	err := c.search(ctx, TableAuthors, q, limit, &authors)
	return authors, err
}

// searchURL builds the table JSON endpoint with a __contains filter on the
// table's search column.
func (c *DatasetteClient) searchURL(table, q string, limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, c.database, table+".json")

	params := url.Values{}
	params.Set("_shape", "array")
	params.Set(searchColumn[table]+"__contains", q)
	params.Set("_size", strconv.Itoa(limit))
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *DatasetteClient) search(ctx context.Context, table, q string, limit int, target any) error {
	if err := validateTable(table); err != nil {
		return err
	}

	endpoint, err := c.searchURL(table, q, limit)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewProviderError(datasetteProvider, "search "+table, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewProviderError(datasetteProvider, "search "+table, resp.StatusCode, errors.New(string(bytes.TrimSpace(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewProviderError(datasetteProvider, "search "+table, 0, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// BatchInsert sends records to the Datasette insert API
func (c *DatasetteClient) BatchInsert(ctx context.Context, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}
	if err := validateTable(table); err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "-/insert", c.database, table)

	payload := map[string]any{
		"rows":    records,
		"replace": true,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("API error: %v", errResp)
	}

	return nil
}

func (c *DatasetteClient) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}

// Close is a no-op for the HTTP client
func (c *DatasetteClient) Close() error {
	return nil
}
