package cmdutil

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/marginalia/internal/catalog"
	"github.com/lepinkainen/marginalia/internal/config"
	"github.com/lepinkainen/marginalia/internal/search"
	"github.com/lepinkainen/marginalia/internal/testutil"
)

func TestOpenCatalogSQLite(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupCatalog(t, env)

	store, err := OpenCatalog()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok := store.(*catalog.SQLiteStore)
	assert.True(t, ok)
	env.RequireFileExists("catalog.db")
}

func TestOpenCatalogDatasette(t *testing.T) {
	testutil.ResetConfig(t)
	viper.Set("catalog.backend", "datasette")

	_, err := OpenCatalog()
	require.Error(t, err, "url is required")

	viper.Set("catalog.datasette.url", "http://localhost:8001")
	store, err := OpenCatalog()
	require.NoError(t, err)
	_, ok := store.(*catalog.DatasetteClient)
	assert.True(t, ok)
}

func TestOpenCatalogUnknownBackend(t *testing.T) {
	testutil.ResetConfig(t)
	viper.Set("catalog.backend", "postgres")

	_, err := OpenCatalog()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown catalog backend")
}

func TestNewRecentStoreBackends(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)

	testutil.SetupRecentFile(t, env)
	store, err := NewRecentStore(nil)
	require.NoError(t, err)
	store.Add("dune")
	env.RequireFileExists("recent.json")

	viper.Set("recent.backend", "sqlite")
	_, err = NewRecentStore(nil)
	require.Error(t, err)

	db, err := OpenCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err = NewRecentStore(db)
	require.NoError(t, err)
	store.Add("emma")
	value, found, err := db.GetValue("recentSearches")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["emma"]`, value)

	viper.Set("recent.backend", "carrier-pigeon")
	_, err = NewRecentStore(db)
	require.Error(t, err)
}

func TestNewSourcesAndOrchestrator(t *testing.T) {
	testutil.SetTestConfig(t)
	config.PageSize = 7

	primary, fallback := NewSources(nil)
	assert.Equal(t, "Google Books", primary.Name())
	assert.Equal(t, "OpenLibrary", fallback.Name())

	o := NewOrchestrator(primary, fallback, nil)
	assert.Equal(t, 7, o.PageSize())
	assert.Equal(t, search.StateIdle, o.Snapshot().State)
}
