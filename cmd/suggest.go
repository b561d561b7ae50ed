package cmd

import (
	"fmt"

	"github.com/lepinkainen/marginalia/internal/cmdutil"
	"github.com/lepinkainen/marginalia/internal/config"
	"github.com/lepinkainen/marginalia/internal/suggest"
	"github.com/lepinkainen/marginalia/internal/tui"
)

var runSuggestBox = tui.RunSuggestBox

// SuggestCmd represents the interactive suggestion box. Submitting a query
// runs it as a search.
type SuggestCmd struct {
	Browse bool `short:"b" help:"Browse the results of the submitted query interactively"`
}

func (s *SuggestCmd) Run() error {
	store, err := cmdutil.OpenCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	db, err := cmdutil.OpenCache()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recents, err := cmdutil.NewRecentStore(db)
	if err != nil {
		return err
	}

	agg := cmdutil.NewAggregator(store, recents)
	result, err := runSuggestBox(agg, config.DebounceWindow, config.TrendingTerms)
	if err != nil {
		return fmt.Errorf("suggestion box failed: %w", err)
	}

	switch result.Action {
	case tui.BoxSubmitted:
		search := &SearchCmd{Query: []string{result.Query}, Pages: 1, Browse: s.Browse}
		return search.Run()
	case tui.BoxNavigate:
		printActivation(result.Activation)
	}
	return nil
}

func printActivation(a suggest.Activation) {
	_, _ = fmt.Fprintf(stdout, "Open %s %s\n", a.Type, a.ID)
}
