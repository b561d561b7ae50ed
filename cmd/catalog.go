package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lepinkainen/marginalia/internal/catalog"
	"github.com/lepinkainen/marginalia/internal/cmdutil"
)

var errSeedFileRequired = errors.New("seed file is required (provide via --file flag or catalog.seedfile in config)")

// CatalogCmd represents the catalog command and its subcommands
type CatalogCmd struct {
	Seed      CatalogSeedCmd      `cmd:"" help:"Load quotes, books and authors from a YAML file"`
	Goodreads CatalogGoodreadsCmd `cmd:"" help:"Load books and authors from a Goodreads library export"`
}

// CatalogSeedCmd represents the catalog seed command
type CatalogSeedCmd struct {
	File string `short:"f" help:"Path to the YAML seed file (defaults to catalog.seedfile)"`
}

func (c *CatalogSeedCmd) Run() error {
	path := c.File
	if path == "" {
		path = viper.GetString("catalog.seedfile")
	}
	if path == "" {
		return errSeedFileRequired
	}

	seed, err := catalog.LoadSeed(path)
	if err != nil {
		return err
	}

	store, err := cmdutil.OpenCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return seed.Apply(context.Background(), store)
}

// CatalogGoodreadsCmd represents the catalog goodreads command
type CatalogGoodreadsCmd struct {
	Input string `short:"f" help:"Path to Goodreads library export CSV file (defaults to goodreads.csvfile)"`
}

func (c *CatalogGoodreadsCmd) Run() error {
	input := c.Input
	if input == "" {
		input = viper.GetString("goodreads.csvfile")
	}
	if input == "" {
		return fmt.Errorf("input CSV file is required (provide via --input flag or goodreads.csvfile in config)")
	}

	seed, err := catalog.LoadGoodreadsExport(input)
	if err != nil {
		return err
	}

	store, err := cmdutil.OpenCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return seed.Apply(context.Background(), store)
}
