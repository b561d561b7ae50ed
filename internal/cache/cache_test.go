package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/lepinkainen/marginalia/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	Titles []string `json:"titles"`
	Total  int      `json:"total"`
}

func setupTestCache(t *testing.T) *DB {
	t.Helper()

	env := testutil.NewTestEnv(t)
	db, err := Open(env.Path("cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setCachedAt(t *testing.T, c *DB, tableName, key string, at time.Time) {
	t.Helper()

	_, err := c.db.Exec("UPDATE "+tableName+" SET cached_at = ? WHERE cache_key = ?", at.UTC(), key)
	require.NoError(t, err)
}

func TestGetOrFetch_CacheMissThenHit(t *testing.T) {
	db := setupTestCache(t)

	calls := 0
	fetch := func() (testPage, error) {
		calls++
		return testPage{Titles: []string{"Dune"}, Total: 1}, nil
	}

	page, fromCache, err := GetOrFetch(db, "googlebooks_cache", "q=dune", fetch)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, []string{"Dune"}, page.Titles)

	page, fromCache, err = GetOrFetch(db, "googlebooks_cache", "q=dune", fetch)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	db := setupTestCache(t)

	fetchErr := errors.New("upstream down")
	_, _, err := GetOrFetch(db, "openlibrary_cache", "q=life", func() (testPage, error) {
		return testPage{}, fetchErr
	})
	require.ErrorIs(t, err, fetchErr)

	_, found, err := db.Get("openlibrary_cache", "q=life")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetOrFetch_NilDBFetchesDirectly(t *testing.T) {
	calls := 0
	for range 2 {
		_, fromCache, err := GetOrFetch(nil, "googlebooks_cache", "k", func() (testPage, error) {
			calls++
			return testPage{}, nil
		})
		require.NoError(t, err)
		assert.False(t, fromCache)
	}
	assert.Equal(t, 2, calls)
}

func TestGet_RespectsTTL(t *testing.T) {
	db := setupTestCache(t)

	require.NoError(t, db.Set("googlebooks_cache", "stale", `{"total":1}`))
	setCachedAt(t, db, "googlebooks_cache", "stale", time.Now().Add(-2*time.Hour))

	_, found, err := db.Get("googlebooks_cache", "stale")
	require.NoError(t, err)
	assert.False(t, found)

	rows, err := db.ClearExpired("googlebooks_cache")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestInvalidTableNameRejected(t *testing.T) {
	db := setupTestCache(t)

	err := db.Set("users; DROP TABLE kv_store", "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache table name")

	_, err = db.InvalidateSource("kv_store")
	require.Error(t, err)
}

func TestInvalidateSource(t *testing.T) {
	db := setupTestCache(t)

	require.NoError(t, db.Set("openlibrary_cache", "a", "{}"))
	require.NoError(t, db.Set("openlibrary_cache", "b", "{}"))

	rows, err := db.InvalidateSource("openlibrary_cache")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
}

func TestKeyValueRoundTrip(t *testing.T) {
	db := setupTestCache(t)

	_, found, err := db.GetValue("recentSearches")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.PutValue("recentSearches", `["orwell"]`))
	require.NoError(t, db.PutValue("recentSearches", `["tolkien","orwell"]`))

	value, found, err := db.GetValue("recentSearches")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["tolkien","orwell"]`, value)
}

func TestOpenDefaultsTTL(t *testing.T) {
	env := testutil.NewTestEnv(t)
	db, err := Open(env.Path("ttl.db"), 0)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, DefaultTTL, db.TTL())
	assert.Equal(t, env.Path("ttl.db"), db.Path())
}
