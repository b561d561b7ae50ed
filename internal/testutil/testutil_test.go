package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/marginalia/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnvPath(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(env.RootDir(), "subdir", "file.txt"), path)
	assert.Equal(t, env.RootDir(), env.Path("."))
}

func TestTestEnvWriteRead(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/test.txt", "hello world")

	assert.Equal(t, "hello world", env.ReadFileString("nested/dir/test.txt"))
	env.AssertFileContains("nested/dir/test.txt", "world")
	env.RequireFileExists("nested/dir/test.txt")
}

func TestTestEnvMkdirAndList(t *testing.T) {
	env := NewTestEnv(t)

	env.MkdirAll("a/b")
	env.WriteFileString("a/one.txt", "1")

	info, err := os.Stat(env.Path("a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.ElementsMatch(t, []string{"b", "one.txt"}, env.ListFiles("a"))
}

func TestTestEnvFileExists(t *testing.T) {
	env := NewTestEnv(t)

	assert.False(t, env.FileExists("missing.txt"))
	env.RequireFileNotExists("missing.txt")

	env.WriteFileString("exists.txt", "content")
	assert.True(t, env.FileExists("exists.txt"))
}

func TestTestEnvString(t *testing.T) {
	env := NewTestEnv(t)
	assert.Contains(t, env.String(), env.RootDir())
}

// Config management tests

func TestResetConfig(t *testing.T) {
	origPageSize := config.PageSize
	origCache := config.CacheEnabled

	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)

		config.PageSize = origPageSize + 5
		config.CacheEnabled = !origCache

		assert.NotEqual(t, origPageSize, config.PageSize)
		assert.NotEqual(t, origCache, config.CacheEnabled)
	})

	assert.Equal(t, origPageSize, config.PageSize)
	assert.Equal(t, origCache, config.CacheEnabled)
}

func TestSetTestConfig(t *testing.T) {
	origKey := config.GoogleBooksAPIKey
	origWindow := config.DebounceWindow

	t.Run("inner", func(t *testing.T) {
		SetTestConfig(t)

		assert.Equal(t, 20, config.PageSize)
		assert.Equal(t, 1, config.RetryAttempts)
		assert.False(t, config.CacheEnabled)
		assert.Equal(t, "test-google-key", config.GoogleBooksAPIKey)
		assert.Equal(t, 10*time.Millisecond, config.DebounceWindow)
	})

	assert.Equal(t, origKey, config.GoogleBooksAPIKey)
	assert.Equal(t, origWindow, config.DebounceWindow)
}

func TestSetTestConfigWithOptions(t *testing.T) {
	origPageSize := config.PageSize

	t.Run("inner", func(t *testing.T) {
		SetTestConfigWithOptions(t,
			WithPageSize(3),
			WithTrendingTerms("dune", "emma"),
			WithCacheEnabled(true),
		)

		assert.Equal(t, 3, config.PageSize)
		assert.Equal(t, []string{"dune", "emma"}, config.TrendingTerms)
		assert.True(t, config.CacheEnabled)
	})

	assert.Equal(t, origPageSize, config.PageSize)
}

func TestSetViperValue(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Run("inner", func(t *testing.T) {
		SetViperValue(t, "test.key", "test-value")
		assert.Equal(t, "test-value", viper.GetString("test.key"))
	})
}

func TestSetupTestCache(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	env := NewTestEnv(t)
	cacheDir := SetupTestCache(t, env)

	assert.DirExists(t, cacheDir)
	assert.Contains(t, viper.GetString("cache.dbfile"), "test-cache.db")
	assert.Equal(t, "24h", viper.GetString("cache.ttl"))
}

func TestSetupCatalogAndRecent(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	env := NewTestEnv(t)
	dbPath := SetupCatalog(t, env)
	recentPath := SetupRecentFile(t, env)

	assert.Equal(t, dbPath, viper.GetString("catalog.dbfile"))
	assert.Equal(t, "sqlite", viper.GetString("catalog.backend"))
	assert.Equal(t, recentPath, viper.GetString("recent.file"))
	assert.Equal(t, "file", viper.GetString("recent.backend"))
}

func TestSaveRestoreConfigState(t *testing.T) {
	config.PageSize = 12
	config.GoogleBooksAPIKey = "saved-key"
	config.TrendingTerms = []string{"saved"}

	state := SaveConfigState()

	config.PageSize = 1
	config.GoogleBooksAPIKey = "modified"
	config.TrendingTerms[0] = "modified"

	RestoreConfigState(state)

	assert.Equal(t, 12, config.PageSize)
	assert.Equal(t, "saved-key", config.GoogleBooksAPIKey)
	assert.Equal(t, []string{"saved"}, config.TrendingTerms)
}
