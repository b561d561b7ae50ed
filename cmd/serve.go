package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lepinkainen/marginalia/internal/api"
	"github.com/lepinkainen/marginalia/internal/cmdutil"
	"github.com/lepinkainen/marginalia/internal/config"
)

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Address to listen on" default:":8080"`
}

func (s *ServeCmd) Run() error {
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

	primary, fallback := cmdutil.NewSources(db)
	server := api.NewServer(api.Deps{
		Primary:     primary,
		Fallback:    fallback,
		Lookup:      store,
		Recent:      recents,
		PageSize:    config.PageSize,
		MaxSessions: config.MaxSessions,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, s.Addr)
}
