package app

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
)

// QuoteSource quotes a single hop on a venue.
type QuoteSource interface {
	Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, venue routingDomain.Venue) (*uint256.Int, error)
}

// PriceOracle returns a token's USD reference price.
type PriceOracle interface {
	LatestPrice(ctx context.Context, token common.Address) (pricingDomain.OraclePrice, error)
}

// TokenDecimals resolves ERC-20 decimals for oracle cross-rate scaling.
type TokenDecimals interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// RouteEvaluator prices one route end to end.
type RouteEvaluator interface {
	EvaluateRoute(ctx context.Context, route routingDomain.Route, borrow *uint256.Int, params domain.CostParams) (*domain.Breakdown, error)
}

// Reporter displays scan results.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report publishes the result of one block's scan.
	Report(result *domain.ScanResult)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
