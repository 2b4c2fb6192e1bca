// Package arbitrage implements the arbitrage bounded context: route
// evaluation, profitability and per-block scanning.
package arbitrage

import (
	"context"
	"fmt"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbitrage-analyzer/business/arbitrage/di"
	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/infra"
	blockchainDI "github.com/fd1az/arbitrage-analyzer/business/blockchain/di"
	pricingDI "github.com/fd1az/arbitrage-analyzer/business/pricing/di"
	routingDI "github.com/fd1az/arbitrage-analyzer/business/routing/di"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Evaluator - private dependency
	di.RegisterToken(c, arbitrageDI.Evaluator, func(sr di.ServiceRegistry) app.RouteEvaluator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		pricing := pricingDI.GetPricingService(sr)

		var secondary app.PriceOracle
		if feed := pricing.Secondary(); feed != nil {
			secondary = feed
		}

		return app.NewEvaluator(pricing, pricing.Primary(), secondary, pricing, EvaluatorConfigFromConfig(cfg), log)
	})

	// Register Optimizer (public - used by the CLI commands)
	di.RegisterToken(c, arbitrageDI.Optimizer, func(sr di.ServiceRegistry) *app.Optimizer {
		log := sr.Get("logger").(logger.LoggerInterface)

		optimizer, err := app.NewOptimizer(arbitrageDI.GetEvaluator(sr), log)
		if err != nil {
			panic("failed to create optimizer: " + err.Error())
		}
		return optimizer
	})

	// Register Reporter (TUI or console based on mode) - private dependency
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		labels := infra.NewTokenLabels(cfg.Tokens)

		if cfg.TUIMode {
			return infra.NewTUIReporter(labels)
		}
		return infra.NewConsoleReporter(labels, cfg.App.LogLevel == "debug")
	})

	// Register Scanner (public - started by the scan command)
	di.RegisterToken(c, arbitrageDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		scannerCfg, err := ScannerConfigFromConfig(cfg)
		if err != nil {
			panic("failed to build scanner config: " + err.Error())
		}

		return app.NewScanner(
			blockchainDI.GetBlockchainService(sr),
			routingDI.GetRegistry(sr),
			arbitrageDI.GetOptimizer(sr),
			arbitrageDI.GetReporter(sr),
			scannerCfg,
			log,
		)
	})

	return nil
}

// Startup initializes the arbitrage module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	scanner := arbitrageDI.GetScanner(mono.Services())
	cfg := scanner.Config()

	mono.Logger().Info(ctx, "arbitrage module started",
		"borrow_amount", cfg.BorrowAmount.Dec(),
		"min_profit_bps", cfg.Params.MinProfitBps,
		"gas_units", cfg.Params.GasUnitsEstimate,
		"simulate_settlement", cfg.Simulate)
	return nil
}

// EvaluatorConfigFromConfig maps the oracle section onto the evaluator's checks.
func EvaluatorConfigFromConfig(cfg *config.Config) app.EvaluatorConfig {
	return app.EvaluatorConfig{
		OracleEnabled:            cfg.Oracle.Enabled,
		MaxPriceAge:              cfg.Oracle.MaxPriceAge,
		MaxDeviationBps:          cfg.Oracle.MaxDeviationBps,
		SecondaryMaxDeviationBps: cfg.Oracle.SecondaryMaxDeviationBps,
	}
}

// CostParamsFromConfig builds cost parameters from the profitability
// section. The gas price is left unset; callers supply it per evaluation.
func CostParamsFromConfig(cfg *config.Config) (domain.CostParams, error) {
	floor, err := cfg.Profitability.MinProfitAbsoluteWei()
	if err != nil {
		return domain.CostParams{}, fmt.Errorf("invalid min_profit_absolute: %w", err)
	}
	return domain.CostParams{
		FlashLoanPremiumBps: cfg.Profitability.FlashLoanPremiumBps,
		GasUnitsEstimate:    cfg.Profitability.GasUnitsEstimate,
		BuilderTipBps:       cfg.Profitability.BuilderTipBps,
		SafetyBufferBps:     cfg.Profitability.SafetyBufferBps,
		MinProfitBps:        cfg.Profitability.MinProfitBps,
		MinProfitAbsolute:   floor,
	}, nil
}

// ScannerConfigFromConfig builds the block scanner's configuration.
func ScannerConfigFromConfig(cfg *config.Config) (app.ScannerConfig, error) {
	params, err := CostParamsFromConfig(cfg)
	if err != nil {
		return app.ScannerConfig{}, err
	}
	borrow, err := cfg.Profitability.BorrowAmountWei()
	if err != nil {
		return app.ScannerConfig{}, fmt.Errorf("invalid borrow_amount: %w", err)
	}
	return app.ScannerConfig{
		BorrowAmount: borrow,
		Params:       params,
		Simulate:     cfg.Settlement.Simulate,
	}, nil
}
