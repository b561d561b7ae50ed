package cache

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: googlebooks, openlibrary" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	dbPath := viper.GetString("cache.dbfile")

	slog.Info("Invalidating cache", "source", i.Source, "database", dbPath)

	tableName := i.Source + "_cache"
	if !ValidCacheTableNames[tableName] {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: googlebooks, openlibrary", i.Source)
	}

	db, err := Open(dbPath, viper.GetDuration("cache.ttl"))
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rowsDeleted, err := db.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

// PruneCacheCmd represents the cache prune subcommand
type PruneCacheCmd struct{}

func (p *PruneCacheCmd) Run() error {
	dbPath := viper.GetString("cache.dbfile")

	db, err := Open(dbPath, viper.GetDuration("cache.ttl"))
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("Pruning expired cache entries", "database", dbPath, "ttl", db.TTL())

	var total int64
	for tableName := range ValidCacheTableNames {
		rows, err := db.ClearExpired(tableName)
		if err != nil {
			return fmt.Errorf("failed to prune %s: %w", tableName, err)
		}
		total += rows
	}

	slog.Info("Cache pruned", "rows_deleted", total)
	return nil
}
