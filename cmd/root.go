package cmd

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/marginalia/internal/cache"
	"github.com/lepinkainen/marginalia/internal/config"
)

// CLI represents the complete command structure for the marginalia application
type CLI struct {
	// Global flags
	Verbose  bool   `short:"v" help:"Enable debug logging"`
	PageSize int    `help:"Number of books per search page (overrides search.pagesize)"`
	NoCache  bool   `help:"Do not read or write cached provider pages"`
	Config   string `help:"Path to a YAML config file" type:"path"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 1h)" default:"1h"`

	Search  SearchCmd  `cmd:"" help:"Search books, falling back to OpenLibrary when Google Books fails"`
	Suggest SuggestCmd `cmd:"" help:"Interactive search box with type-ahead suggestions"`
	Recent  RecentCmd  `cmd:"" help:"Show or edit recent searches"`
	Catalog CatalogCmd `cmd:"" help:"Manage the quotes, books and authors used for suggestions"`
	Cache   CacheCmd   `cmd:"" help:"Manage the provider page cache"`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Remove all cached pages of one provider"`
	Prune      cache.PruneCacheCmd      `cmd:"" help:"Remove cached pages older than the cache TTL"`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("marginalia"),
		kong.Description("Book discovery with provider fallback and type-ahead suggestions."),
		kong.UsageOnError(),
	}, opts...)
	return kong.New(cli, opts...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(cli.Verbose)
	initConfig(cli.Config)
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig(path string) {
	config.SetDefaults()

	// Enable environment variable support
	viper.SetEnvPrefix("MARGINALIA")
	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.PageSize > 0 {
		viper.Set("search.pagesize", cli.PageSize)
		config.SetPageSize(cli.PageSize)
	}
	if cli.NoCache {
		viper.Set("cache.enabled", false)
		config.CacheEnabled = false
	}

	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Logs go to stderr so command output on stdout stays pipeable
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
