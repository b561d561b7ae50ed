package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/marginalia/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	PageSize          int
	RetryAttempts     int
	RetryDelay        time.Duration
	GoogleBooksAPIKey string
	DebounceWindow    time.Duration
	TrendingTerms     []string
	CacheEnabled      bool
	MaxSessions       int
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		PageSize:          config.PageSize,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
		GoogleBooksAPIKey: config.GoogleBooksAPIKey,
		DebounceWindow:    config.DebounceWindow,
		TrendingTerms:     append([]string(nil), config.TrendingTerms...),
		CacheEnabled:      config.CacheEnabled,
		MaxSessions:       config.MaxSessions,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.PageSize = state.PageSize
	config.RetryAttempts = state.RetryAttempts
	config.RetryDelay = state.RetryDelay
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.DebounceWindow = state.DebounceWindow
	config.TrendingTerms = state.TrendingTerms
	config.CacheEnabled = state.CacheEnabled
	config.MaxSessions = state.MaxSessions
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig sets up a test configuration with fast, offline-friendly
// defaults. It saves the current state and restores it when the test
// completes.
func SetTestConfig(t *testing.T) {
	t.Helper()
	SetTestConfigWithOptions(t)
}

// SetTestConfigOption is a functional option for configuring test config.
type SetTestConfigOption func(*ConfigState)

// WithPageSize sets the search page size.
func WithPageSize(size int) SetTestConfigOption {
	return func(o *ConfigState) {
		o.PageSize = size
	}
}

// WithGoogleBooksAPIKey sets the Google Books API key.
func WithGoogleBooksAPIKey(key string) SetTestConfigOption {
	return func(o *ConfigState) {
		o.GoogleBooksAPIKey = key
	}
}

// WithDebounceWindow sets the suggestion debounce window.
func WithDebounceWindow(window time.Duration) SetTestConfigOption {
	return func(o *ConfigState) {
		o.DebounceWindow = window
	}
}

// WithTrendingTerms sets the trending suggestions.
func WithTrendingTerms(terms ...string) SetTestConfigOption {
	return func(o *ConfigState) {
		o.TrendingTerms = terms
	}
}

// WithCacheEnabled toggles provider page caching.
func WithCacheEnabled(v bool) SetTestConfigOption {
	return func(o *ConfigState) {
		o.CacheEnabled = v
	}
}

// SetTestConfigWithOptions sets up a test configuration with custom options.
// It saves the current state and restores it when the test completes.
func SetTestConfigWithOptions(t *testing.T, opts ...SetTestConfigOption) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	options := ConfigState{
		PageSize:          20,
		RetryAttempts:     1,
		RetryDelay:        time.Millisecond,
		GoogleBooksAPIKey: "test-google-key",
		DebounceWindow:    10 * time.Millisecond,
		CacheEnabled:      false,
		MaxSessions:       256,
	}
	for _, opt := range opts {
		opt(&options)
	}
	RestoreConfigState(options)

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so a previously unset key keeps the test value
	})
}

// SetupTestCache configures viper for test caching with a temporary directory.
// It creates the cache directory and sets up viper configuration.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	cacheDir := env.Path("cache")
	env.MkdirAll("cache")

	viper.Set("cache.dbfile", env.Path("cache", "test-cache.db"))
	viper.Set("cache.ttl", "24h")

	return cacheDir
}

// SetupCatalog points the sqlite catalog backend at a file in env.
// Returns the database path.
func SetupCatalog(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("catalog.db")
	SetViperValue(t, "catalog.backend", "sqlite")
	SetViperValue(t, "catalog.dbfile", dbPath)

	return dbPath
}

// SetupRecentFile points the file-backed recent-search store at env.
// Returns the file path.
func SetupRecentFile(t *testing.T, env *TestEnv) string {
	t.Helper()

	path := env.Path("recent.json")
	SetViperValue(t, "recent.backend", "file")
	SetViperValue(t, "recent.file", path)

	return path
}
