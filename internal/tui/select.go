// Package tui provides the interactive terminal search surface: a debounced
// suggestion box and a result browser with incremental loading.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/search"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the result browser.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected a book.
	ActionSelected
	// ActionCancelled indicates the user left without selecting.
	ActionCancelled
)

// SelectionResult holds the result of browsing search results.
type SelectionResult struct {
	Action    SelectionAction
	Selection *booksource.Book
}

// LoadMoreFunc fetches the next page of the current search session.
type LoadMoreFunc func(ctx context.Context) (search.Snapshot, bool)

type bookItem struct {
	booksource.Book
}

func (i bookItem) Title() string {
	return fmt.Sprintf("%s (%s)", strings.ToUpper(i.Book.Title), yearLabel(i.PublishYear))
}

func (i bookItem) FilterValue() string {
	return i.Book.Title
}

func (i bookItem) Description() string {
	return i.Book.Description
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	typeStyle     lipgloss.Style
	titleStyle    lipgloss.Style
	ratingStyle   lipgloss.Style
	metadataStyle lipgloss.Style
	overviewStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		typeStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		ratingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		overviewStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 5 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	book, ok := item.(bookItem)
	if !ok {
		return
	}

	sourceLine := d.styles.typeStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(book.Source)))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(book.Book, m.Width()-4))
	titleLine := d.styles.titleStyle.Render(truncate(fmt.Sprintf("%s by %s", book.Book.Title, book.Author), m.Width()-4))
	ratingLine := d.styles.ratingStyle.Render(formatRating(book.Rating, book.RatingsCount))
	descriptionLine := d.styles.overviewStyle.Render(truncate(book.Book.Description, m.Width()-4))

	content := lipgloss.JoinVertical(lipgloss.Left, sourceLine, metadataLine, titleLine, ratingLine, descriptionLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

// loadedMsg carries the snapshot returned by a load-more call.
type loadedMsg struct {
	snapshot search.Snapshot
	ok       bool
}

type model struct {
	list     list.Model
	query    string
	snapshot search.Snapshot
	loadMore LoadMoreFunc
	loading  bool
	result   SelectionResult
}

func newModel(query string, snap search.Snapshot, loadMore LoadMoreFunc) *model {
	delegate := newDelegate()
	l := list.New(bookItems(snap.Books), delegate, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:     l,
		query:    query,
		snapshot: snap,
		loadMore: loadMore,
		result: SelectionResult{
			Action: ActionNone,
		},
	}
}

func bookItems(books []booksource.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{Book: b}
	}
	return items
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.ok {
			m.snapshot = msg.snapshot
			index := m.list.Index()
			cmd := m.list.SetItems(bookItems(msg.snapshot.Books))
			m.list.Select(index)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(bookItem); ok {
				book := selected.Book
				m.result = SelectionResult{
					Action:    ActionSelected,
					Selection: &book,
				}
				return m, tea.Quit
			}
		case "m":
			if !m.loading && m.loadMore != nil && m.snapshot.Session.HasMore {
				m.loading = true
				return m, m.loadMoreCmd()
			}
			return m, nil
		case "ctrl+c", "q", "esc":
			m.result = SelectionResult{Action: ActionCancelled}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-8, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) loadMoreCmd() tea.Cmd {
	loadMore := m.loadMore
	return func() tea.Msg {
		snap, ok := loadMore(context.Background())
		return loadedMsg{snapshot: snap, ok: ok}
	}
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("%d results for: %s", len(m.snapshot.Books), m.query))
	parts := []string{header}
	if m.snapshot.Notice != "" {
		parts = append(parts, noticeStyle.Render(m.snapshot.Notice))
	}
	parts = append(parts, m.list.View())

	status := ""
	switch {
	case m.loading:
		status = "Loading more..."
	case m.snapshot.Err != nil:
		status = errorStyle.Render("Error: " + m.snapshot.Err.Error())
	case m.snapshot.Session.HasMore:
		status = "More results available"
	}
	if status != "" {
		parts = append(parts, status)
	}

	help := helpStyle.Render("Up/Down navigate | Enter select | m load more | q quit")
	parts = append(parts, help)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// BrowseResults presents the books of snap and lets the user page through the
// session with loadMore. An empty snapshot returns ActionCancelled at once.
func BrowseResults(query string, snap search.Snapshot, loadMore LoadMoreFunc) (SelectionResult, error) {
	if len(snap.Books) == 0 {
		return SelectionResult{Action: ActionCancelled}, nil
	}

	m := newModel(query, snap, loadMore)
	finalModel, err := runProgram(m)
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

// formatMetadata creates the metadata line with year, page count and categories
func formatMetadata(book booksource.Book, availableWidth int) string {
	var parts []string

	if book.PublishYear > 0 {
		parts = append(parts, fmt.Sprintf("%d", book.PublishYear))
	}

	if book.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", book.PageCount))
	}

	if len(book.Categories) > 0 {
		parts = append(parts, strings.Join(book.Categories, ", "))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}

	metadata := strings.Join(parts, " | ")
	if availableWidth > 0 && len(metadata) > availableWidth {
		metadata = truncate(metadata, availableWidth)
	}

	return metadata
}

// formatRating formats the average rating with a compact ratings count
func formatRating(rating float64, count int) string {
	if rating <= 0 {
		return "Not rated"
	}
	if count >= 1000 {
		return fmt.Sprintf("%.1f/5 (%.1fK ratings)", rating, float64(count)/1000)
	}
	if count > 0 {
		return fmt.Sprintf("%.1f/5 (%d ratings)", rating, count)
	}
	return fmt.Sprintf("%.1f/5", rating)
}

func yearLabel(year int) string {
	if year <= 0 {
		return "n.d."
	}
	return fmt.Sprintf("%d", year)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
