package domain

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

const weiPerGwei = 1_000_000_000

// GasPrice is a gas price observation.
type GasPrice struct {
	Wei       *uint256.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *uint256.Int) *GasPrice {
	return &GasPrice{
		Wei:       wei,
		Timestamp: time.Now(),
	}
}

// GweiToWei converts whole gwei to wei.
func GweiToWei(gwei uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(gwei), uint256.NewInt(weiPerGwei))
}

// Gwei returns the price in gwei for display and metrics.
func (g *GasPrice) Gwei() float64 {
	return fixedpoint.ToDecimal(g.Wei, 9).InexactFloat64()
}

// GasEstimate is the total cost of an operation at a gas price.
type GasEstimate struct {
	GasLimit uint64
	GasPrice *GasPrice
	TotalWei *uint256.Int
}

// NewGasEstimate computes gasLimit * price. The product of a uint64 and a
// realistic gas price cannot overflow 256 bits.
func NewGasEstimate(gasLimit uint64, price *GasPrice) *GasEstimate {
	return &GasEstimate{
		GasLimit: gasLimit,
		GasPrice: price,
		TotalWei: new(uint256.Int).Mul(price.Wei, uint256.NewInt(gasLimit)),
	}
}

// TotalGwei returns the total cost in gwei.
func (e *GasEstimate) TotalGwei() float64 {
	return fixedpoint.ToDecimal(e.TotalWei, 9).InexactFloat64()
}
