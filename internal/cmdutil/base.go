// Package cmdutil builds the configured services shared by the CLI commands
// and the HTTP API.
package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/booksource/googlebooks"
	"github.com/lepinkainen/marginalia/internal/booksource/openlibrary"
	"github.com/lepinkainen/marginalia/internal/cache"
	"github.com/lepinkainen/marginalia/internal/catalog"
	"github.com/lepinkainen/marginalia/internal/config"
	"github.com/lepinkainen/marginalia/internal/recent"
	"github.com/lepinkainen/marginalia/internal/search"
	"github.com/lepinkainen/marginalia/internal/suggest"
)

// OpenCache opens the cache database configured by cache.dbfile and cache.ttl.
func OpenCache() (*cache.DB, error) {
	db, err := cache.Open(viper.GetString("cache.dbfile"), viper.GetDuration("cache.ttl"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	return db, nil
}

// NewSources builds the primary (Google Books) and fallback (OpenLibrary)
// adapters. Pages are cached in db when caching is enabled; db may be nil.
func NewSources(db *cache.DB) (primary, fallback booksource.Source) {
	var pageCache *cache.DB
	if config.CacheEnabled {
		pageCache = db
	}

	primary = googlebooks.NewClient(
		googlebooks.WithBaseURL(viper.GetString("googlebooks.baseurl")),
		googlebooks.WithAPIKey(config.GoogleBooksAPIKey),
		googlebooks.WithRetryAttempts(config.RetryAttempts),
		googlebooks.WithRetryDelay(config.RetryDelay),
		googlebooks.WithCache(pageCache),
	)
	fallback = openlibrary.NewClient(
		openlibrary.WithBaseURL(viper.GetString("openlibrary.baseurl")),
		openlibrary.WithRetryAttempts(config.RetryAttempts),
		openlibrary.WithRetryDelay(config.RetryDelay),
		openlibrary.WithCache(pageCache),
	)
	return primary, fallback
}

// NewOrchestrator creates a search orchestrator with the configured page
// size. history may be nil.
func NewOrchestrator(primary, fallback booksource.Source, history search.History) *search.Orchestrator {
	opts := []search.Option{search.WithPageSize(config.PageSize)}
	if history != nil {
		opts = append(opts, search.WithHistory(history))
	}
	return search.NewOrchestrator(primary, fallback, opts...)
}

// OpenCatalog connects the backend selected by catalog.backend.
func OpenCatalog() (catalog.Store, error) {
	switch backend := viper.GetString("catalog.backend"); backend {
	case "", "sqlite":
		store := catalog.NewSQLiteStore(viper.GetString("catalog.dbfile"))
		if err := store.Connect(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		return store, nil
	case "datasette":
		url := viper.GetString("catalog.datasette.url")
		if url == "" {
			return nil, fmt.Errorf("catalog.datasette.url is required for the datasette backend")
		}
		client := catalog.NewDatasetteClient(url,
			viper.GetString("catalog.datasette.database"),
			viper.GetString("catalog.datasette.token"),
		)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to datasette: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q (valid: sqlite, datasette)", backend)
	}
}

// NewRecentStore creates the recent-search store backed by recent.backend.
// The sqlite backend keeps the list in db, which must then be non-nil.
func NewRecentStore(db *cache.DB) (*recent.Store, error) {
	switch backend := viper.GetString("recent.backend"); backend {
	case "", "file":
		return recent.NewStore(recent.FilePersistence{Path: viper.GetString("recent.file")}), nil
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("recent.backend sqlite needs the cache database")
		}
		return recent.NewStore(recent.KVPersistence{DB: db}), nil
	case "memory":
		slog.Warn("Recent searches are kept in memory only")
		return recent.NewStore(recent.NewMemoryPersistence()), nil
	default:
		return nil, fmt.Errorf("unknown recent backend %q (valid: file, sqlite, memory)", backend)
	}
}

// NewAggregator creates a suggestion aggregator over the catalog and the
// recent searches.
func NewAggregator(store catalog.Store, recents *recent.Store) *suggest.Aggregator {
	return suggest.NewAggregator(store, recents)
}
