// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/holiman/uint256"
)

// RouteOrder selects how the routes table is sorted.
type RouteOrder int

const (
	OrderByID RouteOrder = iota
	OrderByProfit
)

func (o RouteOrder) String() string {
	if o == OrderByProfit {
		return "net profit"
	}
	return "route id"
}

// RouteRow is one route's result for the latest block.
type RouteRow struct {
	ID         uint64
	Path       string // e.g. WETH→USDC→WETH
	Venues     string // e.g. Uniswap V3 / SushiSwap
	NetProfit  string
	ProfitWei  *uint256.Int // raw net profit in borrow-asset units, nil on failure
	Profitable bool
	Failure    string // error code when the route could not be evaluated
	Best       bool
}

// RoutesComponent renders the per-route table for the latest block.
type RoutesComponent struct {
	rows  []RouteRow
	block uint64
	order RouteOrder
}

// NewRoutesComponent creates a new routes component.
func NewRoutesComponent() *RoutesComponent {
	return &RoutesComponent{rows: make([]RouteRow, 0)}
}

// Update replaces the rows with the latest block's results.
func (r *RoutesComponent) Update(block uint64, rows []RouteRow) {
	r.block = block
	r.rows = rows
}

// ToggleOrder switches between route id and net profit ordering.
func (r *RoutesComponent) ToggleOrder() RouteOrder {
	if r.order == OrderByID {
		r.order = OrderByProfit
	} else {
		r.order = OrderByID
	}
	return r.order
}

// Order returns the active ordering.
func (r *RoutesComponent) Order() RouteOrder { return r.order }

// Sorted returns a copy of the rows in display order. Profit ordering puts
// profitable routes first, then unprofitable ones, then failures; ties keep
// route id order.
func (r *RoutesComponent) Sorted() []RouteRow {
	out := slices.Clone(r.rows)
	if r.order == OrderByID {
		slices.SortStableFunc(out, func(a, b RouteRow) int { return compareID(a, b) })
		return out
	}
	slices.SortStableFunc(out, func(a, b RouteRow) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		if a.ProfitWei != nil && b.ProfitWei != nil {
			if c := b.ProfitWei.Cmp(a.ProfitWei); c != 0 {
				return c
			}
		}
		return compareID(a, b)
	})
	return out
}

func rank(row RouteRow) int {
	switch {
	case row.Failure != "" || row.ProfitWei == nil:
		return 2
	case row.Profitable:
		return 0
	default:
		return 1
	}
}

func compareID(a, b RouteRow) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// View renders the routes component.
func (r *RoutesComponent) View() string {
	if len(r.rows) == 0 {
		return "Waiting for the first scan..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	bestStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("ROUTES (block #%d)", r.block)))
	sb.WriteString(dimStyle.Render(" by " + r.order.String()))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  %-4s %-24s %-26s %14s\n", "ID", "Path", "Venues", "Net profit"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 70)) + "\n")

	for _, row := range r.Sorted() {
		marker := " "
		if row.Best {
			marker = bestStyle.Render("★")
		}

		var profit string
		switch {
		case row.Failure != "":
			profit = dimStyle.Render(fmt.Sprintf("%14s", row.Failure))
		case row.Profitable:
			profit = positiveStyle.Render(fmt.Sprintf("%14s", row.NetProfit))
		default:
			profit = negativeStyle.Render(fmt.Sprintf("%14s", row.NetProfit))
		}

		sb.WriteString(fmt.Sprintf("%s #%-3d %-24s %-26s %s\n",
			marker, row.ID, truncate(row.Path, 24), truncate(row.Venues, 26), profit))
	}

	return sb.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
