package cache

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/marginalia/internal/testutil"
)

func countRows(t *testing.T, c *DB, tableName string) int {
	t.Helper()

	var n int
	require.NoError(t, c.db.QueryRow("SELECT COUNT(*) FROM "+tableName).Scan(&n))
	return n
}

func TestPruneCacheCmdRemovesOnlyExpiredEntries(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)

	db, err := Open(viper.GetString("cache.dbfile"), viper.GetDuration("cache.ttl"))
	require.NoError(t, err)
	require.NoError(t, db.Set("googlebooks_cache", "stale", "{}"))
	require.NoError(t, db.Set("googlebooks_cache", "fresh", "{}"))
	require.NoError(t, db.Set("openlibrary_cache", "stale", "{}"))
	setCachedAt(t, db, "googlebooks_cache", "stale", time.Now().Add(-48*time.Hour))
	setCachedAt(t, db, "openlibrary_cache", "stale", time.Now().Add(-48*time.Hour))
	require.NoError(t, db.Close())

	cmd := &PruneCacheCmd{}
	require.NoError(t, cmd.Run())

	db, err = Open(viper.GetString("cache.dbfile"), viper.GetDuration("cache.ttl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 1, countRows(t, db, "googlebooks_cache"))
	assert.Equal(t, 0, countRows(t, db, "openlibrary_cache"))
	_, found, err := db.Get("googlebooks_cache", "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInvalidateCacheCmdRejectsUnknownSource(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)

	cmd := &InvalidateCacheCmd{Source: "imdb"}
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache source")
}
