package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds running totals for display.
type Stats struct {
	BlocksScanned   int64
	RoutesEvaluated int64
	Profitable      int64
	Failures        int64
	Opportunities   int64
	AvgScanMs       float64
	Errors          int64
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update replaces the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	profitableRate := float64(0)
	if s.stats.RoutesEvaluated > 0 {
		profitableRate = float64(s.stats.Profitable) / float64(s.stats.RoutesEvaluated) * 100
	}

	failuresDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Failures))
	if s.stats.Failures > 0 {
		failuresDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Failures))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Blocks: %s  │  Routes evaluated: %s  │  Profitable: %s (%.1f%%)\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.BlocksScanned)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.RoutesEvaluated)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Profitable)),
			profitableRate,
		) +
		fmt.Sprintf("Opportunities: %s  │  Avg scan: %s  │  Failures: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.AvgScanMs)),
			failuresDisplay,
		)
}
