package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	analyticsApp "github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	analyticsDI "github.com/fd1az/arbitrage-analyzer/business/analytics/di"
	analyticsDomain "github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	tradecsv "github.com/fd1az/arbitrage-analyzer/business/analytics/infra/csv"
	"github.com/fd1az/arbitrage-analyzer/business/arbitrage"
	arbitrageApp "github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"
	routingDI "github.com/fd1az/arbitrage-analyzer/business/routing/di"
	"github.com/fd1az/arbitrage-analyzer/internal/asset"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

// commandEnv is what an offline command gets after modules have started.
type commandEnv struct {
	cfg  *config.Config
	mono monolith.Monolith
	log  *logger.Logger
	out  io.Writer
}

type commandFunc func(ctx context.Context, env commandEnv, args []string) error

// scan is handled by runScan; its entry only marks it as known.
var commands = map[string]commandFunc{
	"scan":     nil,
	"routes":   routesCommand,
	"analyze":  analyzeCommand,
	"sweep":    sweepCommand,
	"backtest": backtestCommand,
	"optimize": optimizeCommand,
}

func eth(v *uint256.Int) string {
	return asset.ETH.Format(v)
}

func gweiToWei(gwei uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(gwei), fixedpoint.Pow10(9))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func routesCommand(_ context.Context, env commandEnv, args []string) error {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	tokens := fs.Bool("tokens", false, "list known tokens instead of routes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	registry := routingDI.GetRegistry(env.mono.Services())
	assets := env.mono.AssetRegistry()
	chainID := env.cfg.Ethereum.ChainID

	tw := newTable(env.out)
	if *tokens {
		fmt.Fprintln(tw, "SYMBOL\tNAME\tDECIMALS\tADDRESS")
		for _, a := range assets.Tokens(chainID) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.Symbol(), a.Name(), a.Decimals(), a.Address().Hex())
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "ID\tPATH\tVENUE A\tVENUE B\tMIN PROFIT")
	for _, r := range registry.Snapshot() {
		symbols := make([]string, len(r.Path))
		for i, addr := range r.Path {
			symbols[i] = tokenLabel(assets, chainID, addr)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, strings.Join(symbols, " > "), r.VenueA, r.VenueB, eth(r.MinProfit))
	}
	return tw.Flush()
}

func tokenLabel(assets *asset.Registry, chainID uint64, addr common.Address) string {
	if a, ok := assets.GetToken(chainID, addr); ok {
		return a.Symbol()
	}
	hex := addr.Hex()
	return hex[:6] + ".." + hex[len(hex)-4:]
}

// loadTrades reads trades from a CSV file when path is set.
func loadTrades(path string) ([]analyticsDomain.TradeData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trades file: %w", err)
	}
	defer f.Close()
	return tradecsv.ReadTrades(f)
}

func analyzeCommand(ctx context.Context, env commandEnv, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	file := fs.String("trades", "", "CSV file of trades to analyze instead of the configured store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	service := analyticsDI.GetAnalyticsService(env.mono.Services())

	var (
		report analyticsDomain.AnalysisReport
		err    error
	)
	if *file != "" {
		trades, loadErr := loadTrades(*file)
		if loadErr != nil {
			return loadErr
		}
		report, err = service.AnalyzeTrades(ctx, trades)
	} else {
		report, err = service.Analyze(ctx)
	}
	if err != nil {
		return err
	}

	a, rec, gas := report.Analysis, report.Recommendation, report.Gas
	tw := newTable(env.out)
	fmt.Fprintf(tw, "trades\t%d\n", a.TotalTrades)
	fmt.Fprintf(tw, "mean profit\t%s\n", eth(a.MeanProfit))
	fmt.Fprintf(tw, "median profit\t%s\n", eth(a.MedianProfit))
	fmt.Fprintf(tw, "std deviation\t%s\n", eth(a.StdDeviation))
	fmt.Fprintf(tw, "min / max\t%s / %s\n", eth(a.MinProfit), eth(a.MaxProfit))
	fmt.Fprintf(tw, "success rate\t%d bps\n", a.SuccessRateBps)
	fmt.Fprintf(tw, "average gas\t%d\n", a.AverageGasUsed)
	fmt.Fprintf(tw, "gas min / max\t%d / %d\n", gas.MinGasUsed, gas.MaxGasUsed)
	fmt.Fprintf(tw, "profit per gas\t%s wei\n", gas.ProfitPerGas.Dec())
	fmt.Fprintf(tw, "above average gas\t%d bps\n", gas.AboveAverageBps)
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "recommended min profit\t%d bps\n", rec.MinProfitBps)
	fmt.Fprintf(tw, "recommended max slippage\t%d bps\n", rec.MaxSlippageBps)
	fmt.Fprintf(tw, "recommended deadline\t%d s\n", rec.DeadlineSeconds)
	fmt.Fprintf(tw, "recommended gas units\t%d\n", rec.GasUnitsEstimate)
	fmt.Fprintf(tw, "confidence\t%d bps\n", rec.ConfidenceBps)
	fmt.Fprintf(tw, "reasoning\t%s\n", rec.Reasoning)
	return tw.Flush()
}

func sweepCommand(_ context.Context, env commandEnv, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	profit := fs.String("profit", env.cfg.Analytics.BaseProfit, "Gross profit in ETH before costs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	base, err := fixedpoint.ParseAmount(*profit)
	if err != nil {
		return fmt.Errorf("invalid profit: %w", err)
	}
	borrow, err := env.cfg.Profitability.BorrowAmountWei()
	if err != nil {
		return fmt.Errorf("invalid borrow_amount: %w", err)
	}

	gasPrices := make([]*uint256.Int, len(env.cfg.Analytics.GasPricesGwei))
	for i, g := range env.cfg.Analytics.GasPricesGwei {
		gasPrices[i] = gweiToWei(g)
	}

	p := env.cfg.Profitability
	results, err := analyticsApp.SensitivityAnalysis(analyticsDomain.SensitivityInput{
		BaseProfit:       base,
		BorrowAmount:     borrow,
		GasPricesWei:     gasPrices,
		PremiumsBps:      env.cfg.Analytics.PremiumsBps,
		GasUnitsEstimate: p.GasUnitsEstimate,
		BuilderTipBps:    p.BuilderTipBps,
		SafetyBufferBps:  p.SafetyBufferBps,
	})
	if err != nil {
		return err
	}

	tw := newTable(env.out)
	fmt.Fprintln(tw, "GAS (GWEI)\tPREMIUM (BPS)\tCOSTS\tNET\tPROFITABLE")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%d\t-\t-\t%v\n", fixedpoint.ToDecimal(r.GasPriceWei, 9), r.PremiumBps, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%t\n",
			fixedpoint.ToDecimal(r.GasPriceWei, 9), r.PremiumBps, eth(r.TotalCosts), eth(r.NetProfit), r.IsProfitable)
	}
	return tw.Flush()
}

func backtestCommand(ctx context.Context, env commandEnv, args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	file := fs.String("trades", "", "CSV file of trades to replay instead of the configured store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	minGrid, slipGrid := env.cfg.Analytics.MinProfitBpsGrid, env.cfg.Analytics.MaxSlippageBpsGrid

	var (
		results []analyticsDomain.BacktestResult
		best    int
		err     error
	)
	if *file != "" {
		trades, loadErr := loadTrades(*file)
		if loadErr != nil {
			return loadErr
		}
		results, err = analyticsApp.BacktestParameters(trades, minGrid, slipGrid)
		best = analyticsApp.BestBacktest(results)
	} else {
		results, best, err = analyticsDI.GetAnalyticsService(env.mono.Services()).Backtest(ctx, minGrid, slipGrid)
	}
	if err != nil {
		return err
	}

	tw := newTable(env.out)
	fmt.Fprintln(tw, "MIN PROFIT (BPS)\tMAX SLIPPAGE (BPS)\tTRADES\tTOTAL PROFIT\tROI (BPS)\t")
	for i, r := range results {
		marker := ""
		if i == best {
			marker = "best"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			r.MinProfitBps, r.MaxSlippageBps, r.SuccessfulTrades, eth(r.TotalProfit), eth(r.ROI), marker)
	}
	return tw.Flush()
}

func optimizeCommand(ctx context.Context, env commandEnv, args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	ratio := fs.String("ratio", "1.003", "Expected round-trip output per unit borrowed")
	gasGwei := fs.Uint64("gas-gwei", 30, "Gas price in gwei")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := fixedpoint.ParseAmount(*ratio)
	if err != nil {
		return fmt.Errorf("invalid ratio: %w", err)
	}
	params, err := arbitrage.CostParamsFromConfig(env.cfg)
	if err != nil {
		return err
	}
	params.GasPriceWei = gweiToWei(*gasGwei)

	min, max, step, err := env.cfg.Profitability.BorrowRangeWei()
	if err != nil {
		return err
	}
	if steps := arbitrageApp.StepCount(min, max, step); steps > env.cfg.Profitability.MaxSweepSteps {
		return fmt.Errorf("borrow range needs %d steps, limit is %d; raise borrow_step", steps, env.cfg.Profitability.MaxSweepSteps)
	}

	best, err := arbitrageApp.FindOptimalBorrowAmount(min, max, step, r, params)
	if err != nil {
		return err
	}
	env.log.Debug(ctx, "borrow sweep finished", "steps", best.Steps)

	tw := newTable(env.out)
	fmt.Fprintf(tw, "steps\t%d\n", best.Steps)
	fmt.Fprintf(tw, "best amount\t%s\n", eth(best.Amount))
	fmt.Fprintf(tw, "max net profit\t%s\n", eth(best.MaxProfit))
	if b := best.Breakdown; b != nil {
		fmt.Fprintf(tw, "flash loan fee\t%s\n", eth(b.FlashLoanFee))
		fmt.Fprintf(tw, "gas cost\t%s\n", eth(b.GasCost))
		fmt.Fprintf(tw, "builder tip\t%s\n", eth(b.BuilderTip))
		fmt.Fprintf(tw, "safety buffer\t%s\n", eth(b.SafetyBuffer))
		fmt.Fprintf(tw, "profitable\t%t\n", b.IsProfitable)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "note: leg outputs are modelled as amount x ratio with no slippage; results are illustrative, not achievable on-market profit")
	return nil
}
