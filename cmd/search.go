package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/cmdutil"
	"github.com/lepinkainen/marginalia/internal/search"
	"github.com/lepinkainen/marginalia/internal/tui"
)

var (
	browseResults           = tui.BrowseResults
	stdout        io.Writer = os.Stdout
)

// SearchCmd represents the search command
type SearchCmd struct {
	Query  []string `arg:"" optional:"" help:"Search text; may be empty when filtering by genre"`
	Filter string   `short:"F" enum:"none,genre,latest,trending" default:"none" help:"Result bias: none, genre, latest or trending"`
	Genre  []string `short:"g" help:"Genre to OR into the search (repeatable)"`
	Pages  int      `short:"n" default:"1" help:"Number of pages to fetch"`
	Browse bool     `short:"b" help:"Browse results interactively"`
}

func (s *SearchCmd) query() search.Query {
	return search.Query{
		Text:   strings.Join(s.Query, " "),
		Filter: booksource.ParseFilter(s.Filter),
		Genres: s.Genre,
	}
}

func (s *SearchCmd) Run() error {
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
	orch := cmdutil.NewOrchestrator(primary, fallback, recents)

	return s.run(context.Background(), orch)
}

func (s *SearchCmd) run(ctx context.Context, orch *search.Orchestrator) error {
	q := s.query()
	snap := orch.PerformSearch(ctx, q)
	if snap.State == search.StateFailed {
		return snap.Err
	}

	for page := 1; page < s.Pages && snap.Session.HasMore; page++ {
		var accepted bool
		snap, accepted = orch.LoadMore(ctx)
		if !accepted {
			break
		}
		if snap.Err != nil {
			return fmt.Errorf("failed to load page %d: %w", page+1, snap.Err)
		}
	}

	if s.Browse {
		result, err := browseResults(q.Text, snap, orch.LoadMore)
		if err != nil {
			return fmt.Errorf("result browser failed: %w", err)
		}
		if result.Action == tui.ActionSelected && result.Selection != nil {
			printBook(stdout, 0, *result.Selection)
		}
		return nil
	}

	printSnapshot(stdout, snap)
	return nil
}

func printSnapshot(w io.Writer, snap search.Snapshot) {
	if snap.Notice != "" {
		_, _ = fmt.Fprintln(w, snap.Notice)
	}
	if len(snap.Books) == 0 {
		_, _ = fmt.Fprintln(w, "No books found.")
		return
	}
	for i, book := range snap.Books {
		printBook(w, i+1, book)
	}
	more := ""
	if snap.Session.HasMore {
		more = ", more available"
	}
	_, _ = fmt.Fprintf(w, "\n%d of %d results from %s%s\n",
		len(snap.Books), snap.Session.TotalItems, snap.Session.ActiveProvider, more)
}

func printBook(w io.Writer, n int, b booksource.Book) {
	prefix := ""
	if n > 0 {
		prefix = fmt.Sprintf("%3d. ", n)
	}
	year := ""
	if b.PublishYear > 0 {
		year = fmt.Sprintf(" (%d)", b.PublishYear)
	}
	_, _ = fmt.Fprintf(w, "%s%s%s by %s [%s %s]\n", prefix, b.Title, year, b.Author, b.Source, b.ID)
}
