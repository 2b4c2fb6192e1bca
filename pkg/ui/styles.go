package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the scanner views. Components repeat the hex values
// because they cannot import this package.
var (
	accent  = lipgloss.Color("#7C3AED")
	profit  = lipgloss.Color("#10B981")
	loss    = lipgloss.Color("#EF4444")
	caution = lipgloss.Color("#F59E0B")
	muted   = lipgloss.Color("#6B7280")
	frame   = lipgloss.Color("#374151")
)

var (
	// PanelStyle frames the routes/costs and stats/history columns.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frame).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 2)

	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	ProfitStyle  = lipgloss.NewStyle().Foreground(profit)
	NoticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(caution)
	FailureStyle = lipgloss.NewStyle().Foreground(loss)
	FailureTitle = lipgloss.NewStyle().Bold(true).Foreground(loss)
	FaintStyle   = lipgloss.NewStyle().Foreground(muted)
	KeyHelpStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
)
