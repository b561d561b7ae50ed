package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// PageSize is the number of books requested per search page
	PageSize int
	// RetryAttempts bounds transport-level attempts per provider call
	RetryAttempts int
	// RetryDelay is the fixed pause between transport retries
	RetryDelay time.Duration
	// GoogleBooksAPIKey is the optional API key for Google Books
	GoogleBooksAPIKey string
	// DebounceWindow is the quiet period before suggestions are fetched
	DebounceWindow time.Duration
	// TrendingTerms are suggested while the search input is empty
	TrendingTerms []string
	// CacheEnabled controls whether provider pages are cached
	CacheEnabled bool
	// MaxSessions bounds the number of live API search sessions
	MaxSessions int
)

// SetDefaults registers the default value of every configuration key.
func SetDefaults() {
	viper.SetDefault("search.pagesize", 20)
	viper.SetDefault("providers.retries", 3)
	viper.SetDefault("providers.retrydelay", "1s")
	viper.SetDefault("googlebooks.baseurl", "https://www.googleapis.com/books/v1")
	viper.SetDefault("openlibrary.baseurl", "https://openlibrary.org")
	viper.SetDefault("suggest.debounce", "300ms")
	viper.SetDefault("suggest.trending", []string{})
	viper.SetDefault("catalog.backend", "sqlite")
	viper.SetDefault("catalog.dbfile", "./catalog.db")
	viper.SetDefault("catalog.datasette.database", "marginalia")
	viper.SetDefault("recent.backend", "file")
	viper.SetDefault("recent.file", "./recent_searches.json")
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("api.maxsessions", 256)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	PageSize = viper.GetInt("search.pagesize")
	RetryAttempts = viper.GetInt("providers.retries")
	RetryDelay = viper.GetDuration("providers.retrydelay")
	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	DebounceWindow = viper.GetDuration("suggest.debounce")
	TrendingTerms = viper.GetStringSlice("suggest.trending")
	CacheEnabled = viper.GetBool("cache.enabled")
	MaxSessions = viper.GetInt("api.maxsessions")
}

// SetPageSize sets the PageSize, ignoring non-positive values
func SetPageSize(size int) {
	if size > 0 {
		PageSize = size
	}
}
