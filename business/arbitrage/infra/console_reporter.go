package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out     io.Writer
	labels  *TokenLabels
	verbose bool // print every scan, not only opportunities
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter(labels *TokenLabels, verbose bool) *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout, labels, verbose)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to w.
func NewConsoleReporterTo(w io.Writer, labels *TokenLabels, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{out: w, labels: labels, verbose: verbose}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Route Scanner Started")
	fmt.Fprintln(r.out, "=====================")
	return nil
}

// Report outputs a block scan to the console. Unless verbose, scans without
// a profitable route are summarized on one line.
func (r *ConsoleReporter) Report(res *domain.ScanResult) {
	if res == nil {
		return
	}
	if !res.HasOpportunity() && !r.verbose {
		fmt.Fprintf(r.out, "[%s] block #%d: %d routes, %d failed, no opportunity (%dms)\n",
			res.Timestamp.Format("15:04:05"), res.BlockNumber, len(res.Routes),
			res.Analysis.Failures(), res.Duration.Milliseconds())
		return
	}

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	if res.HasOpportunity() {
		fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	} else {
		fmt.Fprintln(r.out, "BLOCK SCAN")
	}
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Block:          #%d\n", res.BlockNumber)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", res.Timestamp.Format(time.RFC3339))
	if res.GasPriceWei != nil {
		fmt.Fprintf(r.out, "Gas price:      %s gwei\n", gweiString(res.GasPriceWei))
	}
	fmt.Fprintf(r.out, "Scan time:      %dms\n", res.Duration.Milliseconds())

	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "ROUTES")
	for i, route := range res.Routes {
		marker := " "
		if res.Best != nil && res.Best.Index == i {
			marker = "*"
		}
		var outcome string
		switch {
		case i < len(res.Analysis.Errors) && res.Analysis.Errors[i] != nil:
			outcome = "failed: " + failureLabel(res.Analysis.Errors[i])
		case i < len(res.Analysis.Profits):
			outcome = r.labels.Amount(route.BorrowAsset(), res.Analysis.Profits[i])
			if res.Analysis.Profitable[i] {
				outcome += " (profitable)"
			}
		}
		fmt.Fprintf(r.out, " %s #%-3d %-28s %-26s %s\n",
			marker, route.ID, r.labels.Path(route), Venues(route), outcome)
	}

	route, b, ok := bestBreakdown(res)
	if ok {
		asset := route.BorrowAsset()
		mid, _ := route.ClosingHop()
		shares := b.CostShares()
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintf(r.out, "BEST ROUTE #%d\n", route.ID)
		fmt.Fprintf(r.out, "  Borrow:         %s\n", r.labels.Amount(asset, b.BorrowAmount))
		fmt.Fprintf(r.out, "  Leg 1 out:      %s\n", r.labels.Amount(mid, b.Leg1Out))
		fmt.Fprintf(r.out, "  Leg 2 out:      %s\n", r.labels.Amount(asset, b.Leg2Out))
		fmt.Fprintf(r.out, "  Gross profit:   %s\n", r.labels.Amount(asset, b.GrossProfit))
		fmt.Fprintf(r.out, "  Flash loan fee: %s (%s)\n", r.labels.Amount(asset, b.FlashLoanFee), bpsPercent(shares.FlashLoanFeeBps))
		fmt.Fprintf(r.out, "  Gas:            %s (%s)\n", r.labels.Amount(asset, b.GasCost), bpsPercent(shares.GasCostBps))
		fmt.Fprintf(r.out, "  Builder tip:    %s (%s)\n", r.labels.Amount(asset, b.BuilderTip), bpsPercent(shares.BuilderTipBps))
		fmt.Fprintf(r.out, "  Safety buffer:  %s (%s)\n", r.labels.Amount(asset, b.SafetyBuffer), bpsPercent(shares.SafetyBufferBps))
		fmt.Fprintf(r.out, "  Total costs:    %s\n", r.labels.Amount(asset, b.TotalCosts))
		fmt.Fprintf(r.out, "  Net profit:     %s (%d bps)\n", r.labels.Amount(asset, b.NetProfit), b.NetProfitBps())
	}

	if res.Settlement != nil {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		if res.Settlement.Success {
			fmt.Fprintf(r.out, "SETTLEMENT SIMULATION: ok (gas %d)\n", res.Settlement.GasEstimate)
		} else {
			fmt.Fprintf(r.out, "SETTLEMENT SIMULATION: reverted: %s\n", res.Settlement.Reason)
		}
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency)
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Route Scanner Stopped")
	return nil
}
