package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/marginalia/internal/catalog"
	"github.com/lepinkainen/marginalia/internal/recent"
	"github.com/lepinkainen/marginalia/internal/suggest"
)

type stubLookup struct {
	err error
}

func (s stubLookup) SearchQuotes(context.Context, string, int) ([]catalog.Quote, error) {
	return nil, s.err
}

func (s stubLookup) SearchBooks(_ context.Context, q string, _ int) ([]catalog.BookEntry, error) {
	return []catalog.BookEntry{{ID: "b1", Title: "The Hobbit"}}, s.err
}

func (s stubLookup) SearchAuthors(context.Context, string, int) ([]catalog.Author, error) {
	return nil, s.err
}

func newTestBox(t *testing.T, lookup suggest.Lookup, recents ...string) (*boxModel, *suggest.Aggregator) {
	t.Helper()
	agg := suggest.NewAggregator(lookup, recent.NewStore(recent.NewMemoryPersistence(recents...)))
	ctrl := suggest.NewController(agg, time.Hour)
	t.Cleanup(ctrl.Close)
	return newBoxModel(ctrl), agg
}

func typeText(m *boxModel, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBoxNavigatesToActivatedEntity(t *testing.T) {
	m, agg := newTestBox(t, stubLookup{}, "hobbit illustrated")
	typeText(m, "hob")
	assert.Equal(t, "hob", m.input.Value())

	// Simulate the debounced fetch completing
	agg.FetchSuggestions(context.Background(), "hob")
	m.Update(stateMsg{})
	require.Len(t, m.state.Suggestions, 2)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.state.Selected)
	assert.Contains(t, m.View(), "> book")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, BoxNavigate, m.result.Action)
	assert.Equal(t, suggest.Activation{Kind: suggest.ActionNavigate, Type: suggest.TypeBook, ID: "b1"}, m.result.Activation)
}

func TestBoxRecentReplacesQuery(t *testing.T) {
	m, agg := newTestBox(t, stubLookup{}, "hobbit illustrated")
	typeText(m, "hob")
	agg.FetchSuggestions(context.Background(), "hob")
	m.Update(stateMsg{})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd, "box stays open")
	assert.Equal(t, "hobbit illustrated", m.input.Value())
	assert.Equal(t, BoxCancelled, m.result.Action)
}

func TestBoxSubmitsTypedQuery(t *testing.T) {
	m, _ := newTestBox(t, stubLookup{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input is not submitted")

	typeText(m, "dune")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, BoxResult{Action: BoxSubmitted, Query: "dune"}, m.result)
}

func TestBoxShowsLookupError(t *testing.T) {
	m, agg := newTestBox(t, stubLookup{err: errors.New("catalog offline")})
	typeText(m, "x")
	agg.FetchSuggestions(context.Background(), "x")
	m.Update(stateMsg{})

	assert.Empty(t, m.state.Suggestions)
	assert.Contains(t, m.View(), "Suggestions unavailable")
}

func TestBoxSurvivesClearingInput(t *testing.T) {
	agg := suggest.NewAggregator(stubLookup{}, recent.NewStore(recent.NewMemoryPersistence("hobbit")))
	var out bytes.Buffer
	program, ctrl := newSuggestProgram(agg, time.Hour, nil, tea.WithInput(nil), tea.WithOutput(&out))
	defer ctrl.Close()

	type runResult struct {
		res BoxResult
		err error
	}
	done := make(chan runResult, 1)
	go func() {
		res, err := runBox(program)
		done <- runResult{res, err}
	}()

	go func() {
		program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
		program.Send(tea.KeyMsg{Type: tea.KeyBackspace})
		program.Send(tea.KeyMsg{Type: tea.KeyEsc})
	}()

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, BoxCancelled, got.res.Action)
	case <-time.After(2 * time.Second):
		program.Kill()
		t.Fatal("suggestion box stopped processing input after the query was cleared")
	}
}
