package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// pane identifies which panel has focus
type pane int

const (
	paneList pane = iota
	paneReport
)

// appItem adapts an AppEntry to the bubbles list
type appItem struct {
	entry AppEntry
}

// Title returns the list row's primary line
func (i appItem) Title() string {
	if i.entry.Flagged {
		return FlaggedItemStyle.Render("✗ " + i.entry.ID)
	}
	return i.entry.ID
}

// Description returns the list row's secondary line
func (i appItem) Description() string {
	return i.entry.Note
}

// FilterValue makes "/" filtering match on the app id
func (i appItem) FilterValue() string {
	return i.entry.ID
}

// browserKeyMap defines key bindings for the browser
type browserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Back   key.Binding
	Filter key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Filter, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Filter, k.Back, k.Quit},
	}
}

// BrowserModel is the installed-app browser: a filterable list of apps on
// the left of the flow, and a scrollable report view once an app is
// opened.
type BrowserModel struct {
	source Source

	List     list.Model
	Viewport viewport.Model

	// Focus tracks which panel receives key input
	Focus pane

	// SelectedApp is the app whose report the viewport shows
	SelectedApp string

	// LastError is surfaced inline instead of crashing the browser
	LastError error

	Width  int
	Height int

	Help help.Model
	Keys browserKeyMap
}

// NewBrowserModel builds the browser over a dump source
func NewBrowserModel(source Source) BrowserModel {
	entries := source.Apps()
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, appItem{entry: entry})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(HighlightColor).
		BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(HighlightColor).
		BorderForeground(HighlightColor)

	l := list.New(items, delegate, 0, 0)
	l.Title = fmt.Sprintf("Installed apps (%d)", len(entries))
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.Styles.Title = TitleStyle

	keys := browserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open report"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return BrowserModel{
		source:   source,
		List:     l,
		Viewport: viewport.New(0, 0),
		Focus:    paneList,
		Help:     help.New(),
		Keys:     keys,
	}
}

// Init initializes the browser
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		contentHeight := msg.Height - ChromeHeight
		if contentHeight < 5 {
			contentHeight = 5
		}
		m.List.SetSize(msg.Width-6, contentHeight)
		m.Viewport.Width = msg.Width - 6
		m.Viewport.Height = contentHeight
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.Focus {
	case paneList:
		return m.updateList(msg)
	case paneReport:
		return m.updateReport(msg)
	}
	return m, nil
}

// updateList handles input while the app list has focus
func (m BrowserModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.List.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "q", "esc":
			if m.List.FilterState() == list.FilterApplied {
				break // let the list clear its filter
			}
			return m, tea.Quit

		case "enter":
			return m.openReport()
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// openReport renders the selected app's report into the viewport
func (m BrowserModel) openReport() (tea.Model, tea.Cmd) {
	item, ok := m.List.SelectedItem().(appItem)
	if !ok {
		return m, nil
	}

	content, err := m.source.Report(item.entry.ID)
	if err != nil {
		m.LastError = err
		return m, nil
	}

	m.LastError = nil
	m.SelectedApp = item.entry.ID
	m.Viewport.SetContent(content)
	m.Viewport.GotoTop()
	m.Focus = paneReport
	return m, nil
}

// updateReport handles input while the report viewport has focus
func (m BrowserModel) updateReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "backspace":
			m.Focus = paneList
			m.SelectedApp = ""
			return m, nil

		case "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the browser
func (m BrowserModel) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	var content, footer string
	switch m.Focus {
	case paneReport:
		content = m.Viewport.View()
		footer = "↑/↓ scroll • esc back • q quit"
	default:
		content = m.List.View()
		if m.LastError != nil {
			content += "\n" + ErrorStyle.Render("✗ "+m.LastError.Error())
		}
		footer = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, footer, m.source.Label(), m.Width, m.Height)
}

// Run starts the interactive browser over a dump source
func Run(source Source) error {
	p := tea.NewProgram(NewBrowserModel(source), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("app browser failed: %w", err)
	}
	return nil
}
