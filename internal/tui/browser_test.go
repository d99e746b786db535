package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeSource is a test double for a dump source
type fakeSource struct {
	label   string
	apps    []AppEntry
	reports map[string]string
	err     error
}

func (f *fakeSource) Label() string {
	return f.label
}

func (f *fakeSource) Apps() []AppEntry {
	return f.apps
}

func (f *fakeSource) Report(appID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reports[appID], nil
}

func testSource() *fakeSource {
	return &fakeSource{
		label: "dump.txt",
		apps: []AppEntry{
			{ID: "com.android.settings", Note: "system app"},
			{ID: "com.example.sideloaded", Note: "offstore install", Flagged: true},
			{ID: "com.amazon.mShop.android.shopping", Note: "store install"},
		},
		reports: map[string]string{
			"com.android.settings":   "settings report body",
			"com.example.sideloaded": "sideloaded report body",
		},
	}
}

func sized(m BrowserModel) BrowserModel {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(BrowserModel)
}

func TestNewBrowserModel(t *testing.T) {
	m := NewBrowserModel(testSource())

	if got := len(m.List.Items()); got != 3 {
		t.Errorf("list has %d items, want 3", got)
	}
	if m.Focus != paneList {
		t.Errorf("initial focus = %v, want list pane", m.Focus)
	}
	if !strings.Contains(m.List.Title, "(3)") {
		t.Errorf("list title = %q, want app count", m.List.Title)
	}
}

func TestAppItem_Flagged(t *testing.T) {
	flagged := appItem{entry: AppEntry{ID: "com.example.sideloaded", Flagged: true}}
	if !strings.Contains(flagged.Title(), "✗") {
		t.Errorf("flagged item title %q missing marker", flagged.Title())
	}

	clean := appItem{entry: AppEntry{ID: "com.android.settings"}}
	if strings.Contains(clean.Title(), "✗") {
		t.Errorf("unflagged item title %q carries marker", clean.Title())
	}

	if got := flagged.FilterValue(); got != "com.example.sideloaded" {
		t.Errorf("FilterValue() = %q, want app id", got)
	}
}

func TestBrowserModel_WindowSize(t *testing.T) {
	m := sized(NewBrowserModel(testSource()))

	if m.Width != 100 || m.Height != 40 {
		t.Errorf("model size = %dx%d, want 100x40", m.Width, m.Height)
	}
	if m.Viewport.Width != 94 {
		t.Errorf("viewport width = %d, want 94", m.Viewport.Width)
	}
}

func TestBrowserModel_OpenReport(t *testing.T) {
	m := sized(NewBrowserModel(testSource()))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)

	if m.Focus != paneReport {
		t.Fatalf("focus = %v after enter, want report pane", m.Focus)
	}
	if m.SelectedApp != "com.android.settings" {
		t.Errorf("SelectedApp = %q, want com.android.settings", m.SelectedApp)
	}
	if !strings.Contains(m.Viewport.View(), "settings report body") {
		t.Error("viewport does not show the report content")
	}
}

func TestBrowserModel_ReportError(t *testing.T) {
	src := testSource()
	src.err = errors.New("no appops section")
	m := sized(NewBrowserModel(src))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)

	if m.Focus != paneList {
		t.Errorf("focus = %v after failed open, want list pane", m.Focus)
	}
	if m.LastError == nil {
		t.Fatal("LastError = nil, want source error")
	}
	if !strings.Contains(m.View(), "no appops section") {
		t.Error("view does not surface the error")
	}
}

func TestBrowserModel_BackFromReport(t *testing.T) {
	m := sized(NewBrowserModel(testSource()))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(BrowserModel)

	if m.Focus != paneList {
		t.Errorf("focus = %v after esc, want list pane", m.Focus)
	}
	if m.SelectedApp != "" {
		t.Errorf("SelectedApp = %q after esc, want empty", m.SelectedApp)
	}
}

func TestBrowserModel_QuitFromReport(t *testing.T) {
	m := sized(NewBrowserModel(testSource()))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q in report pane returned nil cmd, want quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("q in report pane produced %T, want tea.QuitMsg", msg)
	}
}

func TestBrowserModel_View(t *testing.T) {
	m := sized(NewBrowserModel(testSource()))

	out := m.View()
	if !strings.Contains(out, "dump.txt") {
		t.Error("view missing source label in header")
	}
	if !strings.Contains(out, "PHONEDUMP") {
		t.Error("view missing application header")
	}
}
