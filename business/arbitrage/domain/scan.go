package domain

import (
	"time"

	"github.com/holiman/uint256"

	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
)

// ScanResult is the outcome of evaluating the registry at one block.
type ScanResult struct {
	BlockNumber  uint64
	Timestamp    time.Time
	GasPriceWei  *uint256.Int
	BorrowAmount *uint256.Int
	Routes       []routingDomain.Route
	Analysis     RouteAnalysis
	Best         *OptimalRoute
	Settlement   *routingDomain.SettlementResult
	Duration     time.Duration
}

// HasOpportunity reports whether the best route clears every floor.
func (r *ScanResult) HasOpportunity() bool {
	return r.Best != nil && r.Best.IsProfitable
}

// BestRoute returns the winning route, if any.
func (r *ScanResult) BestRoute() (routingDomain.Route, bool) {
	if r.Best == nil || r.Best.Index < 0 || r.Best.Index >= len(r.Routes) {
		return routingDomain.Route{}, false
	}
	return r.Routes[r.Best.Index], true
}
