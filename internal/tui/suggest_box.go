package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/marginalia/internal/suggest"
)

// BoxAction is how the suggestion box was left.
type BoxAction int

const (
	// BoxCancelled means the user left without submitting.
	BoxCancelled BoxAction = iota
	// BoxSubmitted means the user submitted the query text.
	BoxSubmitted
	// BoxNavigate means the user activated an entity suggestion.
	BoxNavigate
)

// BoxResult is the outcome of RunSuggestBox.
type BoxResult struct {
	Action     BoxAction
	Query      string
	Activation suggest.Activation
}

// stateMsg signals that the controller state changed. Update reads the
// current state itself, so signals arriving out of order are harmless.
type stateMsg struct{}

type boxModel struct {
	input  textinput.Model
	ctrl   *suggest.Controller
	state  suggest.State
	result BoxResult
}

func newBoxModel(ctrl *suggest.Controller) *boxModel {
	input := textinput.New()
	input.Placeholder = "Search books, authors, quotes..."
	input.Prompt = "> "
	input.CharLimit = 200
	input.Width = defaultListWidth - 4
	input.Focus()

	return &boxModel{
		input: input,
		ctrl:  ctrl,
		state: ctrl.State(),
	}
}

func (m *boxModel) Init() tea.Cmd { return textinput.Blink }

func (m *boxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = m.ctrl.State()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result = BoxResult{Action: BoxCancelled}
			return m, tea.Quit
		case "up", "ctrl+p":
			m.ctrl.Aggregator().MoveUp()
			m.state = m.ctrl.State()
			return m, nil
		case "down", "ctrl+n":
			m.ctrl.Aggregator().MoveDown()
			m.state = m.ctrl.State()
			return m, nil
		case "enter":
			return m.activate()
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.SetQuery(after)
		m.state = m.ctrl.State()
	}
	return m, cmd
}

func (m *boxModel) activate() (tea.Model, tea.Cmd) {
	act, ok := m.ctrl.Aggregator().Activate()
	if !ok {
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.result = BoxResult{Action: BoxSubmitted, Query: query}
		return m, tea.Quit
	}

	if act.Kind == suggest.ActionReplaceQuery {
		m.input.SetValue(act.Query)
		m.input.CursorEnd()
		m.ctrl.SetQuery(act.Query)
		m.state = m.ctrl.State()
		return m, nil
	}

	m.result = BoxResult{Action: BoxNavigate, Query: m.input.Value(), Activation: act}
	return m, tea.Quit
}

func (m *boxModel) View() string {
	parts := []string{
		headerStyle.Render("Search"),
		m.input.View(),
	}

	switch {
	case m.state.Err != nil:
		parts = append(parts, errorStyle.Render("Suggestions unavailable: "+m.state.Err.Error()))
	case m.state.Loading && len(m.state.Suggestions) == 0:
		parts = append(parts, suggestionStyle.Render("Looking up suggestions..."))
	}

	for i, s := range m.state.Suggestions {
		line := fmt.Sprintf("%s %s", typeLabelStyle.Render(fmt.Sprintf("%-8s", s.Type)), truncate(s.Text, defaultListWidth-12))
		if i == m.state.Selected {
			parts = append(parts, selectedSuggestionStyle.Render("> "+line))
			continue
		}
		parts = append(parts, suggestionStyle.Render("  "+line))
	}

	parts = append(parts, helpStyle.Render("Type to search | Up/Down choose | Enter submit | Esc quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	typeLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedSuggestionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("237"))
)

// newSuggestProgram builds the suggestion box program. Controller updates
// are delivered as stateMsg from their own goroutine: SetQuery notifies
// synchronously from inside Update, where a blocking Send would wait on the
// event loop that is running it.
func newSuggestProgram(agg *suggest.Aggregator, window time.Duration, trending []string, opts ...tea.ProgramOption) (*tea.Program, *suggest.Controller) {
	var program *tea.Program
	ctrl := suggest.NewController(agg, window,
		suggest.WithTrending(trending),
		suggest.WithOnUpdate(func(suggest.State) {
			if program != nil {
				go program.Send(stateMsg{})
			}
		}),
	)
	program = tea.NewProgram(newBoxModel(ctrl), opts...)
	return program, ctrl
}

// RunSuggestBox runs the interactive suggestion box until the user submits a
// query, activates an entity suggestion or quits.
func RunSuggestBox(agg *suggest.Aggregator, window time.Duration, trending []string) (BoxResult, error) {
	program, ctrl := newSuggestProgram(agg, window, trending)
	defer ctrl.Close()
	return runBox(program)
}

func runBox(program *tea.Program) (BoxResult, error) {
	finalModel, err := program.Run()
	if err != nil {
		return BoxResult{}, err
	}
	if typed, ok := finalModel.(*boxModel); ok {
		return typed.result, nil
	}
	return BoxResult{}, fmt.Errorf("unexpected program result")
}
