// Package main is the entry point for the flash-loan arbitrage analyzer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/arbitrage-analyzer/business/analytics"
	analyticsDI "github.com/fd1az/arbitrage-analyzer/business/analytics/di"
	"github.com/fd1az/arbitrage-analyzer/business/arbitrage"
	arbitrageApp "github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbitrage-analyzer/business/arbitrage/di"
	"github.com/fd1az/arbitrage-analyzer/business/blockchain"
	blockchainDI "github.com/fd1az/arbitrage-analyzer/business/blockchain/di"
	"github.com/fd1az/arbitrage-analyzer/business/pricing"
	"github.com/fd1az/arbitrage-analyzer/business/routing"
	routingDI "github.com/fd1az/arbitrage-analyzer/business/routing/di"
	"github.com/fd1az/arbitrage-analyzer/internal/apm"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/health"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/metrics"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
	"github.com/fd1az/arbitrage-analyzer/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// headSilence is how long the health check tolerates no new heads.
const headSilence = time.Minute

const usage = `usage: arbitrage [flags] <command> [command flags]

commands:
  scan      evaluate every route on each new block (default)
  routes    list the configured routes
  analyze   compute trade statistics and parameter recommendations
  sweep     gas price x flash-loan premium sensitivity grid
  backtest  replay stored trades over threshold grids
  optimize  search the borrow range for the most profitable amount

flags:
`

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run scan in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbitrage-analyzer %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	command := "scan"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	// TUI is the default for scan, CLI is for debugging
	tuiMode := command == "scan" && !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, command, args, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, configPath string, tuiMode bool) error {
	cmd, ok := commands[command]
	if !ok {
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.TUIMode = tuiMode

	if command == "scan" {
		if err := cfg.ValidateLive(); err != nil {
			return fmt.Errorf("invalid config for scan: %w", err)
		}
	} else {
		// Offline commands never need a node.
		cfg.Ethereum.HTTPURL = ""
		cfg.Ethereum.WebSocketURL = ""
	}

	var out io.Writer = os.Stderr
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting arbitrage analyzer",
		"version", version,
		"command", command,
		"environment", cfg.App.Environment)

	shutdownTelemetry, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&blockchain.Module{}, // block subscription and gas oracle
		&routing.Module{},    // route registry and settlement backend
		&pricing.Module{},    // venue quoters and price feeds
		&arbitrage.Module{},  // depends on blockchain, routing and pricing
		&analytics.Module{},  // applies recommendations to the scanner
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	startModules := func() error {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		return nil
	}

	if command == "scan" {
		return runScan(ctx, cfg, mono, startModules, log)
	}

	if err := startModules(); err != nil {
		return err
	}
	return cmd(ctx, commandEnv{cfg: cfg, mono: mono, log: log, out: os.Stdout}, args)
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	headers := metrics.ParseHeaders(cfg.Telemetry.OTLPHeaders)
	traceProvider, err := apm.NewTraceProvider(ctx, apm.TraceConfig{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     headers,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	meterProvider, err := metrics.NewMetricProvider(ctx,
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	promServer := metrics.NewPrometheusServer(log, metrics.WithPort(cfg.Telemetry.PrometheusPort))
	promServer.Start()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := promServer.Stop(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "failed to stop metrics server", "error", err)
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "failed to flush metrics", "error", err)
		}
		if err := traceProvider.Stop(); err != nil {
			log.Warn(shutdownCtx, "failed to flush traces", "error", err)
		}
	}, nil
}

func runScan(ctx context.Context, cfg *config.Config, mono monolith.Monolith, startModules func() error, log *logger.Logger) error {
	if cfg.Health.Enabled {
		healthServer := newHealthServer(cfg, mono, log)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthServer.Stop(stopCtx)
		}()
	}

	closeBlocks := func() error {
		return blockchainDI.GetBlockchainService(mono.Services()).Close()
	}

	if cfg.TUIMode {
		// TUI mode: start modules in background so the TUI shows immediately
		startFunc := func() error {
			if err := startModules(); err != nil {
				return err
			}
			return arbitrageDI.GetScanner(mono.Services()).Start(ctx)
		}
		stopFunc := func() {
			_ = arbitrageDI.GetScanner(mono.Services()).Stop()
			_ = closeBlocks()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	if err := startModules(); err != nil {
		return err
	}
	return runCLI(ctx, arbitrageDI.GetScanner(mono.Services()), closeBlocks, log)
}

func newHealthServer(cfg *config.Config, mono monolith.Monolith, log *logger.Logger) *health.Server {
	server := health.NewServer(cfg.Health.Port, version, log)
	services := mono.Services()

	server.RegisterCheck("block_subscription", func(context.Context) (bool, string) {
		status := blockchainDI.GetBlockchainService(services).Status()
		return status.Healthy(time.Now(), headSilence), status.String()
	})
	server.RegisterCheck("routes", func(context.Context) (bool, string) {
		n := routingDI.GetRegistry(services).Count()
		return n > 0, fmt.Sprintf("%d routes", n)
	})
	server.RegisterCheck("trade_store", func(ctx context.Context) (bool, string) {
		if err := analyticsDI.GetTradeStore(services).Ping(ctx); err != nil {
			return false, err.Error()
		}
		return true, cfg.Analytics.Store
	})
	return server
}

func runCLI(ctx context.Context, scanner *arbitrageApp.Scanner, closeBlocks func() error, log *logger.Logger) error {
	log.Info(ctx, "all modules started, scanning routes on each block")

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}

	<-ctx.Done()

	log.Info(context.Background(), "shutting down", "last_block", scanner.LastBlock())
	if err := scanner.Stop(); err != nil {
		log.Error(context.Background(), "error stopping scanner", "error", err)
	}
	return closeBlocks()
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		stopFunc()
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
