package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

// BlockSource delivers new blocks.
type BlockSource interface {
	SubscribeBlocks(ctx context.Context) (<-chan *blockchainDomain.Block, error)
	GetGasPrice(ctx context.Context) (*blockchainDomain.GasPrice, error)
}

// RouteSource supplies the routes to scan and settles a chosen one.
type RouteSource interface {
	Snapshot() []routingDomain.Route
	InitiateSettlement(ctx context.Context, id routingDomain.RouteID, amount *uint256.Int) (routingDomain.SettlementResult, error)
}

// ScannerConfig holds configuration for the block scanner.
type ScannerConfig struct {
	BorrowAmount *uint256.Int
	Params       domain.CostParams
	Simulate     bool // simulate settlement of a profitable best route
}

// Scanner evaluates every registered route on each new block.
type Scanner struct {
	blocks    BlockSource
	routes    RouteSource
	optimizer *Optimizer
	reporter  Reporter
	logger    logger.LoggerInterface

	mu     sync.RWMutex
	config ScannerConfig

	lastBlock atomic.Uint64
}

// NewScanner creates a new Scanner.
func NewScanner(
	blocks BlockSource,
	routes RouteSource,
	optimizer *Optimizer,
	reporter Reporter,
	cfg ScannerConfig,
	log logger.LoggerInterface,
) *Scanner {
	return &Scanner{
		blocks:    blocks,
		routes:    routes,
		optimizer: optimizer,
		reporter:  reporter,
		config:    cfg,
		logger:    log,
	}
}

// ApplyRecommendation overrides the profit floor and gas estimate with
// values learned from historical trades. Zero values are ignored.
func (s *Scanner) ApplyRecommendation(minProfitBps, gasUnitsEstimate uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if minProfitBps > 0 {
		s.config.Params.MinProfitBps = minProfitBps
	}
	if gasUnitsEstimate > 0 {
		s.config.Params.GasUnitsEstimate = gasUnitsEstimate
	}
}

// Config returns the scanner's current configuration.
func (s *Scanner) Config() ScannerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// LastBlock returns the number of the last block scanned.
func (s *Scanner) LastBlock() uint64 {
	return s.lastBlock.Load()
}

// Start subscribes to blocks and scans each one on a single goroutine.
func (s *Scanner) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting route scanner")

	blocks, err := s.blocks.SubscribeBlocks(ctx)
	if err != nil {
		return err
	}

	if err := s.reporter.Start(ctx); err != nil {
		return err
	}
	s.reporter.UpdateConnectionStatus("ethereum", true, 0)

	go s.run(ctx, blocks)

	return nil
}

func (s *Scanner) run(ctx context.Context, blocks <-chan *blockchainDomain.Block) {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scanner stopping", "reason", ctx.Err())
			return
		case block, ok := <-blocks:
			if !ok {
				s.logger.Warn(ctx, "block stream closed")
				s.reporter.UpdateConnectionStatus("ethereum", false, 0)
				return
			}
			if block == nil {
				continue
			}
			result, err := s.ScanBlock(ctx, block)
			if err != nil {
				s.logger.Warn(ctx, "block scan failed", "block", block.Number, "error", err)
				continue
			}
			s.reporter.Report(result)
		}
	}
}

// ScanBlock prices every route at the block's gas price and picks the best.
func (s *Scanner) ScanBlock(ctx context.Context, block *blockchainDomain.Block) (*domain.ScanResult, error) {
	start := time.Now()
	cfg := s.Config()

	gas, err := s.blocks.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	params := cfg.Params.WithGasPrice(gas.Wei)

	result := &domain.ScanResult{
		BlockNumber:  block.Number,
		Timestamp:    block.Timestamp,
		GasPriceWei:  gas.Wei,
		BorrowAmount: cfg.BorrowAmount,
		Routes:       s.routes.Snapshot(),
	}
	s.lastBlock.Store(block.Number)
	s.logger.Debug(ctx, "scanning block", "block", block.Number,
		"age", block.Age(start), "utilization_bps", block.Utilization())

	if len(result.Routes) == 0 {
		s.logger.Debug(ctx, "no routes registered", "block", block.Number)
		result.Duration = time.Since(start)
		return result, nil
	}

	analysis, best, err := s.optimizer.Scan(ctx, cfg.BorrowAmount, result.Routes, params)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	result.Best = &best

	if best.IsProfitable && cfg.Simulate {
		settlement, err := s.routes.InitiateSettlement(ctx, best.RouteID, cfg.BorrowAmount)
		if err != nil {
			s.logger.Warn(ctx, "settlement simulation failed",
				"route_id", best.RouteID,
				"code", apperror.GetCode(err),
				"error", err)
		} else {
			result.Settlement = &settlement
		}
	}

	result.Duration = time.Since(start)
	s.logger.Info(ctx, "block scanned",
		"block", block.Number,
		"routes", len(result.Routes),
		"profitable", analysis.ProfitableCount(),
		"failed", analysis.Failures(),
		"best_route", best.RouteID,
		"best_net_profit", best.HighestProfit.Dec(),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// Stop gracefully shuts down the scanner.
func (s *Scanner) Stop() error {
	s.logger.Info(context.Background(), "stopping route scanner")
	return s.reporter.Stop()
}
