// Package app contains the route registry and its ports.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/routing/domain"
)

// SettlementBackend is the executor that would carry out a route on chain.
// The registry only asks it which tokens and venues it can handle.
type SettlementBackend interface {
	IsTokenSupported(token common.Address) bool
	VenueRouterConfigured(venue domain.Venue) bool
	InitiateSettlement(ctx context.Context, asset common.Address, amount *uint256.Int, routeID domain.RouteID) (domain.SettlementResult, error)
}
