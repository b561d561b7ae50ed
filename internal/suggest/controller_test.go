package suggest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestControllerCollapsesBurstToOneFetch(t *testing.T) {
	lookup := &fakeLookup{quotes: 1}
	var (
		mu      sync.Mutex
		updates []State
	)
	c := NewController(NewAggregator(lookup, nil), 40*time.Millisecond, WithOnUpdate(func(s State) {
		mu.Lock()
		updates = append(updates, s)
		mu.Unlock()
	}))
	defer c.Close()

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("abc")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) == 1
	}, timeout, tick)

	// Let a stray second fetch surface if the burst was not collapsed
	time.Sleep(100 * time.Millisecond)

	lookup.mu.Lock()
	assert.Equal(t, 3, lookup.calls, "one fetch of three lookups")
	lookup.mu.Unlock()

	state := c.State()
	assert.Equal(t, "abc", state.Query)
	require.Len(t, state.Suggestions, 1)
	assert.Equal(t, "quote abc 0", state.Suggestions[0].Text)
}

func TestControllerEmptyInputClearsImmediately(t *testing.T) {
	lookup := &fakeLookup{quotes: 1}
	c := NewController(NewAggregator(lookup, nil), time.Hour)
	defer c.Close()

	c.SetQuery("dune")
	c.SetQuery("")

	state := c.State()
	assert.Empty(t, state.Suggestions)
	assert.False(t, state.Loading)

	lookup.mu.Lock()
	assert.Zero(t, lookup.calls, "pending fetch was cancelled")
	lookup.mu.Unlock()
}

func TestControllerShowsTrendingOnEmptyInput(t *testing.T) {
	c := NewController(NewAggregator(&fakeLookup{}, nil), time.Hour, WithTrending([]string{"horror"}))
	defer c.Close()

	assert.Equal(t, []Suggestion{{Type: TypeTrending, Text: "horror"}}, c.State().Suggestions)

	c.SetQuery("   ")
	assert.Equal(t, TypeTrending, c.State().Suggestions[0].Type)
}

func TestControllerCloseStopsPendingFetch(t *testing.T) {
	lookup := &fakeLookup{quotes: 1}
	c := NewController(NewAggregator(lookup, nil), 20*time.Millisecond)

	c.SetQuery("hobbit")
	c.Close()
	c.SetQuery("silmarillion")

	time.Sleep(80 * time.Millisecond)
	lookup.mu.Lock()
	assert.Zero(t, lookup.calls)
	lookup.mu.Unlock()
	assert.Empty(t, c.State().Suggestions)
}
