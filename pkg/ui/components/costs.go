package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CostBreakdown holds the best route's pre-computed breakdown for display.
// Amounts are formatted in the borrow asset; shares are basis points of the
// total cost.
type CostBreakdown struct {
	Route        string
	BorrowAmount string
	Leg1Out      string
	Leg2Out      string
	FlashLoanFee string
	GasCost      string
	BuilderTip   string
	SafetyBuffer string
	TotalCosts   string
	GrossProfit  string
	NetProfit    string
	NetProfitBps uint64
	FeeShareBps  uint64
	GasShareBps  uint64
	TipShareBps  uint64
	BufShareBps  uint64
	IsProfitable bool
}

// CostsComponent renders the cost breakdown of the best route.
type CostsComponent struct {
	breakdown *CostBreakdown
}

// NewCostsComponent creates a new costs component.
func NewCostsComponent() *CostsComponent {
	return &CostsComponent{}
}

// Set replaces the displayed breakdown. Nil clears it.
func (c *CostsComponent) Set(b *CostBreakdown) {
	c.breakdown = b
}

// View renders the costs component.
func (c *CostsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	if c.breakdown == nil {
		return headerStyle.Render("BEST ROUTE") + "\n\n" + dimStyle.Render("  Waiting for cost analysis...")
	}
	cb := c.breakdown

	var sb strings.Builder
	if cb.IsProfitable {
		sb.WriteString(headerStyle.Render("OPPORTUNITY FOUND!"))
	} else {
		sb.WriteString(headerStyle.Render("BEST ROUTE (not profitable)"))
	}
	sb.WriteString("\n\n")

	line := func(label, value string, style lipgloss.Style) {
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", label, style.Render(value)))
	}
	share := func(bps uint64) string {
		return fmt.Sprintf(" (%d.%02d%%)", bps/100, bps%100)
	}

	line("Route", cb.Route, dimStyle)
	line("Borrow", cb.BorrowAmount, dimStyle)
	line("Leg 1 out", cb.Leg1Out, dimStyle)
	line("Leg 2 out", cb.Leg2Out, dimStyle)
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 40)) + "\n")
	line("Gross profit", cb.GrossProfit, warnStyle)
	line("Flash loan fee", "-"+cb.FlashLoanFee+share(cb.FeeShareBps), negativeStyle)
	line("Gas", "-"+cb.GasCost+share(cb.GasShareBps), negativeStyle)
	line("Builder tip", "-"+cb.BuilderTip+share(cb.TipShareBps), negativeStyle)
	line("Safety buffer", "-"+cb.SafetyBuffer+share(cb.BufShareBps), negativeStyle)
	line("Total costs", cb.TotalCosts, negativeStyle)

	if cb.IsProfitable {
		line("Net profit", fmt.Sprintf("+%s (%d bps)", cb.NetProfit, cb.NetProfitBps), positiveStyle)
	} else {
		line("Net profit", cb.NetProfit, negativeStyle)
	}

	return sb.String()
}
