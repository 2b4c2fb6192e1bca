// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
)

// VenueQuoter quotes a single-hop swap on one DEX venue.
type VenueQuoter interface {
	// Quote returns the output of swapping amountIn of tokenIn into tokenOut.
	Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*domain.Quote, error)
}

// PriceFeed provides a token's USD reference price.
type PriceFeed interface {
	// LatestPrice returns the most recent observation. Staleness is judged
	// by the caller from ObservedAt.
	LatestPrice(ctx context.Context, token common.Address) (domain.OraclePrice, error)
}

// TokenMetadata resolves ERC-20 metadata.
type TokenMetadata interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}
