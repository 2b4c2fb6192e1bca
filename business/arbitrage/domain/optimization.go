package domain

import (
	"github.com/holiman/uint256"

	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
)

// OptimalRoute is the most profitable route of a scan.
type OptimalRoute struct {
	Index         int
	RouteID       routingDomain.RouteID
	HighestProfit *uint256.Int
	IsProfitable  bool
	Breakdown     *Breakdown
}

// RouteAnalysis holds per-route results aligned index-for-index with the
// routes that were analyzed. A route that failed evaluation has profit 0,
// Profitable false and its error recorded.
type RouteAnalysis struct {
	Profits    []*uint256.Int
	Profitable []bool
	Errors     []error
}

// Failures counts routes whose evaluation returned an error.
func (a RouteAnalysis) Failures() int {
	n := 0
	for _, err := range a.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// ProfitableCount counts routes flagged profitable.
func (a RouteAnalysis) ProfitableCount() int {
	n := 0
	for _, ok := range a.Profitable {
		if ok {
			n++
		}
	}
	return n
}

// BorrowOptimum is the most profitable borrow amount of a grid sweep.
type BorrowOptimum struct {
	Amount    *uint256.Int
	MaxProfit *uint256.Int
	Breakdown *Breakdown
	Steps     uint64
}
