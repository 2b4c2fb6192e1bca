// Package domain contains the core domain types for the analytics context.
package domain

import (
	"time"

	"github.com/holiman/uint256"
)

// TradeData is one historical arbitrage execution. Profit is in the borrow
// asset's base units and never negative.
type TradeData struct {
	Profit               *uint256.Int
	GasUsed              uint64
	SlippageBps          uint64
	ExecutionTimeSeconds uint64

	// Optional metadata, not used by the statistics.
	RouteID    uint64
	ExecutedAt time.Time
}

// IsSuccess reports whether the trade realized any profit.
func (t TradeData) IsSuccess() bool {
	return t.Profit != nil && !t.Profit.IsZero()
}

// StatisticalAnalysis summarizes a trade sample.
type StatisticalAnalysis struct {
	MeanProfit     *uint256.Int
	MedianProfit   *uint256.Int
	StdDeviation   *uint256.Int // population
	MinProfit      *uint256.Int
	MaxProfit      *uint256.Int
	SuccessRateBps uint64
	AverageGasUsed uint64
	TotalTrades    uint64
}

// ParameterRecommendation is the set of cost parameters derived from a
// trade sample.
type ParameterRecommendation struct {
	MinProfitBps     uint64
	MaxSlippageBps   uint64
	DeadlineSeconds  uint64
	GasUnitsEstimate uint64
	ConfidenceBps    uint64
	Reasoning        string
	GeneratedAt      time.Time
}

// GasEfficiency summarizes gas consumption across a trade sample.
type GasEfficiency struct {
	AverageGasUsed  uint64
	MinGasUsed      uint64
	MaxGasUsed      uint64
	ProfitPerGas    *uint256.Int // total profit / total gas, base units per gas unit
	AboveAverageBps uint64       // share of trades using more than the average
	TotalTrades     uint64
}

// AnalysisReport bundles one analysis run.
type AnalysisReport struct {
	Analysis       StatisticalAnalysis
	Recommendation ParameterRecommendation
	Gas            GasEfficiency
}
