package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/marginalia/internal/testutil"
)

const goodreadsExport = `Book Id,Title,Author,Author l-f,Additional Authors,ISBN,My Rating
5907,The Hobbit,J.R.R. Tolkien,"Tolkien, J.R.R.",,"=""0618260307""",5
33,The Lord of the Rings,J.R.R. Tolkien,"Tolkien, J.R.R.","Alan Lee, Christopher Tolkien",,4
,Missing Id,Nobody,,,,0
`

func TestLoadGoodreadsExport(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("goodreads_library_export.csv", goodreadsExport)

	seed, err := LoadGoodreadsExport(env.Path("goodreads_library_export.csv"))
	require.NoError(t, err)

	assert.Equal(t, []BookEntry{
		{ID: "gr-5907", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{ID: "gr-33", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien, Alan Lee, Christopher Tolkien"},
	}, seed.Books)
	assert.Equal(t, []Author{
		{ID: "j-r-r-tolkien", Name: "J.R.R. Tolkien"},
		{ID: "alan-lee", Name: "Alan Lee"},
		{ID: "christopher-tolkien", Name: "Christopher Tolkien"},
	}, seed.Authors)
	assert.Empty(t, seed.Quotes)
}

func TestLoadGoodreadsExportIntoStore(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("export.csv", goodreadsExport)

	seed, err := LoadGoodreadsExport(env.Path("export.csv"))
	require.NoError(t, err)

	store := NewSQLiteStore(filepath.Join(env.RootDir(), "catalog.db"))
	require.NoError(t, store.Connect())
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, seed.Apply(context.Background(), store))

	authors, err := store.SearchAuthors(context.Background(), "tolkien", 5)
	require.NoError(t, err)
	assert.Len(t, authors, 2)
}

func TestLoadGoodreadsExportWrongFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("other.csv", "name,city\nAlice,NYC\n")

	_, err := LoadGoodreadsExport(env.Path("other.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestAuthorSlug(t *testing.T) {
	assert.Equal(t, "ursula-k-le-guin", authorSlug("Ursula K. Le Guin"))
	assert.Equal(t, "", authorSlug("  ..."))
}
