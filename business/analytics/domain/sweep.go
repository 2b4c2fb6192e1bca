package domain

import (
	"github.com/holiman/uint256"
)

// SensitivityInput is a cost grid evaluated against a fixed gross profit.
type SensitivityInput struct {
	BaseProfit       *uint256.Int
	BorrowAmount     *uint256.Int
	GasPricesWei     []*uint256.Int
	PremiumsBps      []uint64
	GasUnitsEstimate uint64
	BuilderTipBps    uint64
	SafetyBufferBps  uint64
}

// SensitivityResult is one (gas price, premium) cell. A cell whose cost
// arithmetic failed carries Err with zero profit.
type SensitivityResult struct {
	GasPriceWei  *uint256.Int
	PremiumBps   uint64
	TotalCosts   *uint256.Int
	NetProfit    *uint256.Int
	IsProfitable bool
	Err          error
}

// BacktestResult is one (min profit, max slippage) cell replayed over the
// trade sample.
type BacktestResult struct {
	MinProfitBps     uint64
	MaxSlippageBps   uint64
	SuccessfulTrades uint64
	TotalProfit      *uint256.Int
	ROI              *uint256.Int // TotalProfit * BPS / total trades
}
