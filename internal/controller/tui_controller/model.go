package tui_controller

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
)

var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpText      = "/ search • s series • r rarity • 1-9 color • o ownership • c clear • +/- owned • w/W wishlist • n more • q quit"
	headerLines   = 5
	allSeriesName = "All series"
)

type Presenter interface {
	State() presenter.State
	SelectSeries(ctx context.Context, id string) error
	SetSearchText(ctx context.Context, text string) error
	LoadMore(ctx context.Context) error
	SetRarity(rarity string)
	ToggleColor(color string)
	SetOwnership(o presenter.Ownership)
	ClearFilters(ctx context.Context) error
	Increment(cardID string, c model.Counter) (model.InventoryEntry, error)
	Decrement(cardID string, c model.Counter) (model.InventoryEntry, error)
}

type stateMsg presenter.State

type errMsg struct {
	err error
}

type rowItem struct {
	row presenter.Row
}

func (i rowItem) Title() string {
	return fmt.Sprintf("%s  %s", i.row.Card.CardCode, i.row.Card.Title)
}

func (i rowItem) Description() string {
	parts := []string{i.row.Card.Rarity}
	if c := i.row.Card.ColorName(); c != "" {
		parts = append(parts, c)
	}
	if i.row.Card.Level != nil {
		parts = append(parts, fmt.Sprintf("lv %d", *i.row.Card.Level))
	}
	parts = append(parts,
		fmt.Sprintf("owned %d", i.row.Entry.Owned),
		fmt.Sprintf("wishlist %d", i.row.Entry.Wishlist),
	)
	return strings.Join(parts, " · ")
}

func (i rowItem) FilterValue() string {
	return i.row.Card.Title
}

type Model struct {
	ctx    context.Context
	pr     Presenter
	states <-chan presenter.State

	list   list.Model
	search textinput.Model
	state  presenter.State
	err    error

	quitting bool
}

func NewModel(ctx context.Context, pr Presenter, states <-chan presenter.State) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "title or card code"
	ti.Prompt = "search: "
	ti.CharLimit = 128

	m := Model{
		ctx:    ctx,
		pr:     pr,
		states: states,
		list:   l,
		search: ti,
	}
	m.applyState(pr.State())

	return m
}

func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-headerLines)
		return m, nil

	case stateMsg:
		m.applyState(presenter.State(msg))
		return m, m.waitForState()

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		text := m.search.Value()
		return m, m.call(func() error { return m.pr.SetSearchText(m.ctx, text) })
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue(m.state.Filters.SearchText)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit, true

	case "/":
		m.err = nil
		return m.search.Focus(), true

	case "s":
		next := nextSeries(m.state)
		return m.call(func() error { return m.pr.SelectSeries(m.ctx, next) }), true

	case "r":
		next := nextOf(m.state.Rarities, m.state.Filters.Rarity)
		return m.call(func() error { m.pr.SetRarity(next); return nil }), true

	case "o":
		next := m.state.Filters.Ownership.Next()
		return m.call(func() error { m.pr.SetOwnership(next); return nil }), true

	case "c":
		return m.call(func() error { return m.pr.ClearFilters(m.ctx) }), true

	case "n":
		return m.call(func() error { return m.pr.LoadMore(m.ctx) }), true

	case "+", "-", "w", "W":
		item, ok := m.list.SelectedItem().(rowItem)
		if !ok {
			return nil, true
		}
		id := item.row.Card.ID
		return m.call(func() error {
			var err error
			switch key {
			case "+":
				_, err = m.pr.Increment(id, model.CounterOwned)
			case "-":
				_, err = m.pr.Decrement(id, model.CounterOwned)
			case "w":
				_, err = m.pr.Increment(id, model.CounterWishlist)
			case "W":
				_, err = m.pr.Decrement(id, model.CounterWishlist)
			}
			return err
		}), true
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx >= len(m.state.Colors) {
			return nil, true
		}
		color := m.state.Colors[idx]
		return m.call(func() error { m.pr.ToggleColor(color); return nil }), true
	}

	return nil, false
}

// call runs presenter input off the update loop. Resulting state comes through subscription.
func (m Model) call(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) waitForState() tea.Cmd {
	if m.states == nil {
		return nil
	}
	states := m.states
	return func() tea.Msg {
		st, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (m *Model) applyState(st presenter.State) {
	m.state = st
	if st.Err == "" {
		m.err = nil
	}

	items := make([]list.Item, 0, len(st.Rows))
	for _, row := range st.Rows {
		items = append(items, rowItem{row: row})
	}

	idx := m.list.Index()
	_ = m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}

	if !m.search.Focused() {
		m.search.SetValue(st.Filters.SearchText)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	b := strings.Builder{}

	seriesName := allSeriesName
	if s, ok := m.state.SelectedSeries(); ok {
		seriesName = fmt.Sprintf("%s (%s)", s.Name, s.SetCode)
	}
	b.WriteString(titleStyle.Render(seriesName))
	b.WriteString("\n")

	b.WriteString(m.search.View())
	b.WriteString("\n")

	b.WriteString(m.filtersView())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
	case m.state.Err != "":
		b.WriteString(errStyle.Render("error: " + m.state.Err))
	case m.state.Loading:
		b.WriteString(filterStyle.Render("loading..."))
	default:
		more := ""
		if m.state.HasMore {
			more = ", n for more"
		}
		b.WriteString(filterStyle.Render(fmt.Sprintf(
			"%d shown, %d of %d loaded%s",
			len(m.state.Rows), len(m.state.Loaded), m.state.Total, more,
		)))
	}
	b.WriteString("\n")

	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))

	return docStyle.Render(b.String())
}

func (m Model) filtersView() string {
	rarity := m.state.Filters.Rarity
	if rarity == "" {
		rarity = "any"
	}

	colors := make([]string, 0, len(m.state.Colors))
	for idx, c := range m.state.Colors {
		label := fmt.Sprintf("%d:%s", idx+1, c)
		if slices.Contains(m.state.Filters.Colors, c) {
			label = activeStyle.Render("[" + label + "]")
		}
		colors = append(colors, label)
	}

	return filterStyle.Render(fmt.Sprintf(
		"rarity %s • ownership %s • colors ",
		rarity, m.state.Filters.Ownership,
	)) + strings.Join(colors, " ")
}

// nextSeries cycles through all series, then back to all cards.
func nextSeries(st presenter.State) string {
	ids := make([]string, 0, len(st.Series))
	for _, s := range st.Series {
		ids = append(ids, s.ID)
	}
	return nextOf(ids, st.SelectedSeriesID)
}

// nextOf cycles "" -> values[0] -> ... -> values[n-1] -> "".
func nextOf(values []string, current string) string {
	idx := slices.Index(values, current)
	if idx+1 >= len(values) {
		return ""
	}
	return values[idx+1]
}
