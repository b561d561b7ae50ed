package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/marginalia/internal/search"
)

func TestSessionTableEvictsLeastRecentlyUsed(t *testing.T) {
	table := newSessionTable(2)

	first := table.add(search.NewOrchestrator(nil, nil))
	second := table.add(search.NewOrchestrator(nil, nil))

	// touching first makes second the eviction candidate
	_, ok := table.get(first)
	require.True(t, ok)

	third := table.add(search.NewOrchestrator(nil, nil))
	assert.Equal(t, 2, table.len())

	_, ok = table.get(second)
	assert.False(t, ok)
	_, ok = table.get(first)
	assert.True(t, ok)
	_, ok = table.get(third)
	assert.True(t, ok)
}

func TestSessionTableDefaultLimit(t *testing.T) {
	table := newSessionTable(0)
	assert.Equal(t, DefaultMaxSessions, table.max)
}
