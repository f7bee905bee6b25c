package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the doorctl TUI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, open
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, failures
	WarningColor = lipgloss.Color("#FFA500") // Orange - in-flight operations
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	// TitleStyle is for the screen header
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	// SubtitleStyle is for the registry path under the header
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// SelectedRowStyle is for the focused device row
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// RowStyle is for unfocused device rows
	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// OnlineStyle marks reachable devices
	OnlineStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// OfflineStyle marks unreachable devices
	OfflineStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// OperatingStyle is for the in-flight operation line
	OperatingStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			PaddingLeft(2)

	// ResultOKStyle is for successful operation results
	ResultOKStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			PaddingLeft(2)

	// ResultFailStyle is for failed operation results
	ResultFailStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(2)

	// HelpStyle is for the key hint footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// GetTerminalWidth returns the current terminal width, with fallback.
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
