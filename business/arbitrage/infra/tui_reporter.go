package infra

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/pkg/ui"
	"github.com/fd1az/arbitrage-analyzer/pkg/ui/components"
)

// TUIReporter implements Reporter for the Bubble Tea TUI. It converts each
// scan into display-ready rows so the UI never touches domain math.
type TUIReporter struct {
	labels *TokenLabels
	send   func(tea.Msg)
}

// NewTUIReporter creates a TUIReporter sending to the running ui.Program.
func NewTUIReporter(labels *TokenLabels) *TUIReporter {
	return &TUIReporter{labels: labels, send: ui.Send}
}

// Start initializes the TUI reporter.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.LogMsg{Level: "info", Message: "route scanner started"})
	return nil
}

// Report sends a block scan to the TUI.
func (r *TUIReporter) Report(res *domain.ScanResult) {
	if res == nil {
		return
	}
	r.send(r.scanMsg(res))
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.send(ui.ConnectionStatusMsg{Name: displayName(name), Connected: connected, Latency: latency})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	r.send(ui.LogMsg{Level: "info", Message: "route scanner stopped"})
	return nil
}

func (r *TUIReporter) scanMsg(res *domain.ScanResult) ui.ScanMsg {
	msg := ui.ScanMsg{
		BlockNumber: res.BlockNumber,
		Timestamp:   res.Timestamp,
		Routes:      make([]components.RouteRow, len(res.Routes)),
		Duration:    res.Duration,
	}
	if res.GasPriceWei != nil {
		msg.GasGwei = fixedpoint.ToDecimal(res.GasPriceWei, 9).InexactFloat64()
	}

	for i, route := range res.Routes {
		row := components.RouteRow{
			ID:     uint64(route.ID),
			Path:   r.labels.Path(route),
			Venues: Venues(route),
			Best:   res.Best != nil && res.Best.Index == i,
		}
		if i < len(res.Analysis.Errors) && res.Analysis.Errors[i] != nil {
			row.Failure = failureLabel(res.Analysis.Errors[i])
		} else if i < len(res.Analysis.Profits) {
			row.NetProfit = r.labels.Amount(route.BorrowAsset(), res.Analysis.Profits[i])
			row.ProfitWei = res.Analysis.Profits[i]
			row.Profitable = res.Analysis.Profitable[i]
		}
		msg.Routes[i] = row
	}

	msg.Summary = components.ScanRow{
		BlockNumber: res.BlockNumber,
		Time:        res.Timestamp.Format("15:04:05"),
		BestRoute:   "-",
		NetProfit:   "-",
		Profitable:  res.Analysis.ProfitableCount(),
		Failed:      res.Analysis.Failures(),
		Routes:      len(res.Routes),
		Opportunity: res.HasOpportunity(),
	}

	route, b, ok := bestBreakdown(res)
	if !ok {
		return msg
	}
	asset := route.BorrowAsset()
	mid, _ := route.ClosingHop()
	shares := b.CostShares()

	msg.Summary.BestRoute = "#" + strconv.FormatUint(uint64(route.ID), 10)
	msg.Summary.NetProfit = r.labels.Amount(asset, b.NetProfit)
	msg.Best = &components.CostBreakdown{
		Route:        "#" + strconv.FormatUint(uint64(route.ID), 10) + " " + r.labels.Path(route),
		BorrowAmount: r.labels.Amount(asset, b.BorrowAmount),
		Leg1Out:      r.labels.Amount(mid, b.Leg1Out),
		Leg2Out:      r.labels.Amount(asset, b.Leg2Out),
		FlashLoanFee: r.labels.Amount(asset, b.FlashLoanFee),
		GasCost:      r.labels.Amount(asset, b.GasCost),
		BuilderTip:   r.labels.Amount(asset, b.BuilderTip),
		SafetyBuffer: r.labels.Amount(asset, b.SafetyBuffer),
		TotalCosts:   r.labels.Amount(asset, b.TotalCosts),
		GrossProfit:  r.labels.Amount(asset, b.GrossProfit),
		NetProfit:    r.labels.Amount(asset, b.NetProfit),
		NetProfitBps: b.NetProfitBps(),
		FeeShareBps:  shares.FlashLoanFeeBps,
		GasShareBps:  shares.GasCostBps,
		TipShareBps:  shares.BuilderTipBps,
		BufShareBps:  shares.SafetyBufferBps,
		IsProfitable: b.IsProfitable,
	}
	return msg
}

func displayName(name string) string {
	switch name {
	case "ethereum":
		return "Ethereum"
	case "binance":
		return "Binance"
	case "chainlink":
		return "Chainlink"
	}
	return name
}
