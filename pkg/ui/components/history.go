package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ScanRow summarizes one block scan.
type ScanRow struct {
	BlockNumber uint64
	Time        string
	BestRoute   string
	NetProfit   string
	Profitable  int
	Failed      int
	Routes      int
	Opportunity bool
}

// HistoryComponent renders the most recent scans, newest first.
type HistoryComponent struct {
	rows    []ScanRow
	maxRows int
	visible int
	offset  int
}

// NewHistoryComponent creates a history keeping at most maxRows scans.
func NewHistoryComponent(maxRows, visible int) *HistoryComponent {
	return &HistoryComponent{
		rows:    make([]ScanRow, 0),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add prepends a scan.
func (h *HistoryComponent) Add(row ScanRow) {
	h.rows = append([]ScanRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
}

// Clear removes all scans.
func (h *HistoryComponent) Clear() {
	h.rows = make([]ScanRow, 0)
	h.offset = 0
}

// Len returns the number of stored scans.
func (h *HistoryComponent) Len() int {
	return len(h.rows)
}

// ScrollUp moves the window towards newer scans.
func (h *HistoryComponent) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// ScrollDown moves the window towards older scans.
func (h *HistoryComponent) ScrollDown() {
	if h.offset+h.visible < len(h.rows) {
		h.offset++
	}
}

// View renders the history component.
func (h *HistoryComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	if len(h.rows) == 0 {
		return headerStyle.Render("SCANS") + "\n\nNo blocks scanned yet..."
	}

	profitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unprofitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	result := headerStyle.Render(fmt.Sprintf("SCANS (%d stored)", len(h.rows))) + "\n"
	result += "┌──────────┬──────────┬──────────┬────────────────┬──────────┐\n"
	result += "│  Block   │   Time   │   Best   │   Net profit   │ Prof/All │\n"
	result += "├──────────┼──────────┼──────────┼────────────────┼──────────┤\n"

	end := h.offset + h.visible
	if end > len(h.rows) {
		end = len(h.rows)
	}
	for _, row := range h.rows[h.offset:end] {
		style := unprofitableStyle
		if row.Opportunity {
			style = profitableStyle
		}
		result += fmt.Sprintf("│%9d │ %8s │ %8s │ %s │ %8s │\n",
			row.BlockNumber,
			row.Time,
			row.BestRoute,
			style.Render(fmt.Sprintf("%14s", row.NetProfit)),
			fmt.Sprintf("%d/%d", row.Profitable, row.Routes),
		)
	}
	result += "└──────────┴──────────┴──────────┴────────────────┴──────────┘"

	return result
}
