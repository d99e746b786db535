package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for report rendering
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - clean findings
	ErrorColor   = lipgloss.Color("#FF5555") // Red - flagged findings
	WarningColor = lipgloss.Color("#FFA500") // Orange - recent use, offstore apps
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles for report rendering
var (
	// TitleStyle is for report and section titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// SubtitleStyle is for the line under a title (device, dump path)
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// StatKeyStyle is for stat labels (e.g., "Permissions:")
	StatKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(22)

	// StatValueStyle is for stat values
	StatValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// PermissionLabelStyle is for the permission's human-readable label
	PermissionLabelStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true)

	// RecentUseStyle marks a permission with a recent app-ops event
	RecentUseStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// NeverUsedStyle marks a permission with no recorded recent use
	NeverUsedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// FlaggedStyle marks offstore or otherwise suspicious entries
	FlaggedStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ListItemStyle is for plain list rows (app ids, devices)
	ListItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// NoteStyle is for advice lines and footnotes
	NoteStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// Row markers
const (
	RecentMarker  = "●"
	IdleMarker    = "·"
	FlaggedMarker = "✗"
)

// IsTerminal reports whether stdout is attached to a terminal. Rendering
// falls back to unstyled text when it is not, so output stays pipeable.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// HeaderBoxStyle returns the border style for report headers
func HeaderBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 2)
}

// SectionBoxStyle returns the border style for report body sections
func SectionBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 2).
		Padding(0, 1)
}
