package infra

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/pkg/ui"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

func testLabels() *TokenLabels {
	return NewTokenLabels([]config.TokenConfig{
		{Symbol: "WETH", Address: weth.Hex(), Decimals: 18},
		{Symbol: "USDC", Address: usdc.Hex(), Decimals: 6},
	})
}

func eth(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func profitableScan() *domain.ScanResult {
	routes := []routingDomain.Route{
		{ID: 0, Path: []common.Address{weth, usdc, weth}, VenueA: routingDomain.VenueUniswapV3, VenueB: routingDomain.VenueSushiSwap},
		{ID: 1, Path: []common.Address{weth, dai, weth}, VenueA: routingDomain.VenueUniswapV2, VenueB: routingDomain.VenueUniswapV3},
	}
	b := &domain.Breakdown{
		BorrowAmount: eth("10000000000000000000"),
		Leg1Out:      eth("20100000000"),
		Leg2Out:      eth("10100000000000000000"),
		FlashLoanFee: eth("9000000000000000"),
		GasCost:      eth("10000000000000000"),
		BuilderTip:   eth("10000000000000000"),
		SafetyBuffer: eth("50000000000000000"),
		TotalCosts:   eth("79000000000000000"),
		GrossProfit:  eth("100000000000000000"),
		NetProfit:    eth("21000000000000000"),
		IsProfitable: true,
	}
	return &domain.ScanResult{
		BlockNumber:  19_000_000,
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		GasPriceWei:  eth("25000000000"),
		BorrowAmount: b.BorrowAmount,
		Routes:       routes,
		Analysis: domain.RouteAnalysis{
			Profits:    []*uint256.Int{b.NetProfit, eth("0")},
			Profitable: []bool{true, false},
			Errors:     []error{nil, apperror.New(apperror.CodeQuoteUnavailable)},
		},
		Best:       &domain.OptimalRoute{Index: 0, RouteID: 0, HighestProfit: b.NetProfit, IsProfitable: true, Breakdown: b},
		Settlement: &routingDomain.SettlementResult{Success: true, GasEstimate: 310_000},
		Duration:   42 * time.Millisecond,
	}
}

func TestTokenLabels(t *testing.T) {
	l := testLabels()

	if got := l.Amount(usdc, eth("20100000000")); got != "20100.000000 USDC" {
		t.Errorf("Amount(usdc) = %q", got)
	}
	if got := l.Amount(weth, eth("21000000000000000")); got != "0.021000 WETH" {
		t.Errorf("Amount(weth) = %q", got)
	}
	if got := l.Symbol(dai); got != dai.Hex()[:8] {
		t.Errorf("unknown token symbol = %q, want short address", got)
	}
}

func TestConsoleReporter_Opportunity(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf, testLabels(), false)
	r.Report(profitableScan())

	out := buf.String()
	for _, want := range []string{
		"ARBITRAGE OPPORTUNITY DETECTED",
		"#19000000",
		"25.0 gwei",
		"WETH→USDC→WETH",
		"Uniswap V3 / SushiSwap",
		"failed: " + string(apperror.CodeQuoteUnavailable),
		"Flash loan fee: 0.009000 WETH (11.39%)",
		"Net profit:     0.021000 WETH",
		"SETTLEMENT SIMULATION: ok (gas 310000)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_QuietWithoutOpportunity(t *testing.T) {
	res := profitableScan()
	res.Best.IsProfitable = false

	var buf bytes.Buffer
	NewConsoleReporterTo(&buf, testLabels(), false).Report(res)

	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "no opportunity") {
		t.Errorf("expected a one-line summary, got:\n%s", out)
	}

	buf.Reset()
	NewConsoleReporterTo(&buf, testLabels(), true).Report(res)
	if !strings.Contains(buf.String(), "BLOCK SCAN") {
		t.Errorf("verbose reporter should print the full scan:\n%s", buf.String())
	}
}

func TestTUIReporter_ScanMsg(t *testing.T) {
	var sent []tea.Msg
	r := &TUIReporter{labels: testLabels(), send: func(m tea.Msg) { sent = append(sent, m) }}

	r.Report(profitableScan())
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	msg, ok := sent[0].(ui.ScanMsg)
	if !ok {
		t.Fatalf("sent %T, want ui.ScanMsg", sent[0])
	}

	if msg.GasGwei != 25 {
		t.Errorf("gas = %v, want 25", msg.GasGwei)
	}
	if len(msg.Routes) != 2 || !msg.Routes[0].Best || !msg.Routes[0].Profitable {
		t.Errorf("route rows = %+v", msg.Routes)
	}
	if msg.Routes[1].Failure != string(apperror.CodeQuoteUnavailable) {
		t.Errorf("failed route = %+v", msg.Routes[1])
	}
	if msg.Best == nil || msg.Best.NetProfit != "0.021000 WETH" || msg.Best.Leg1Out != "20100.000000 USDC" {
		t.Errorf("best = %+v", msg.Best)
	}
	if s := msg.Summary; s.Profitable != 1 || s.Failed != 1 || s.Routes != 2 || !s.Opportunity || s.BestRoute != "#0" {
		t.Errorf("summary = %+v", s)
	}
}

func TestTUIReporter_NoBreakdown(t *testing.T) {
	res := profitableScan()
	res.Best.Breakdown = nil

	r := &TUIReporter{labels: testLabels(), send: func(tea.Msg) {}}
	msg := r.scanMsg(res)
	if msg.Best != nil || msg.Summary.BestRoute != "-" {
		t.Errorf("expected no best route detail, got %+v / %+v", msg.Best, msg.Summary)
	}
}
