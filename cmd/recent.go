package cmd

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/marginalia/internal/cmdutil"
	"github.com/lepinkainen/marginalia/internal/recent"
)

// RecentCmd represents the recent command and its subcommands
type RecentCmd struct {
	List  RecentListCmd  `cmd:"" default:"1" help:"List recent searches, most recent first"`
	Add   RecentAddCmd   `cmd:"" help:"Record a search query"`
	Clear RecentClearCmd `cmd:"" help:"Forget all recent searches"`
}

type RecentListCmd struct{}

type RecentAddCmd struct {
	Query []string `arg:"" help:"Query to record"`
}

type RecentClearCmd struct{}

// openRecent opens the configured store; the returned func releases it.
func openRecent() (*recent.Store, func(), error) {
	db, err := cmdutil.OpenCache()
	if err != nil {
		return nil, nil, err
	}
	store, err := cmdutil.NewRecentStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}

func (r *RecentListCmd) Run() error {
	store, done, err := openRecent()
	if err != nil {
		return err
	}
	defer done()

	for _, q := range store.List() {
		_, _ = fmt.Fprintln(stdout, q)
	}
	return nil
}

func (r *RecentAddCmd) Run() error {
	query := strings.TrimSpace(strings.Join(r.Query, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	store, done, err := openRecent()
	if err != nil {
		return err
	}
	defer done()

	store.Add(query)
	return nil
}

func (r *RecentClearCmd) Run() error {
	store, done, err := openRecent()
	if err != nil {
		return err
	}
	defer done()

	store.Clear()
	return nil
}
