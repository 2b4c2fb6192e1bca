// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// CostParams are the per-evaluation cost inputs. Amounts are in the borrow
// asset's base units; rates are in basis points.
type CostParams struct {
	FlashLoanPremiumBps uint64
	GasPriceWei         *uint256.Int
	GasUnitsEstimate    uint64
	BuilderTipBps       uint64
	SafetyBufferBps     uint64
	MinProfitBps        uint64
	MinProfitAbsolute   *uint256.Int
}

// WithGasPrice returns a copy using the given gas price.
func (p CostParams) WithGasPrice(wei *uint256.Int) CostParams {
	p.GasPriceWei = wei
	return p
}

// WithMinProfitAbsolute returns a copy using the given absolute floor.
func (p CostParams) WithMinProfitAbsolute(floor *uint256.Int) CostParams {
	p.MinProfitAbsolute = floor
	return p
}

// Breakdown itemizes one profitability evaluation.
type Breakdown struct {
	BorrowAmount *uint256.Int
	Leg1Out      *uint256.Int
	Leg2Out      *uint256.Int
	FlashLoanFee *uint256.Int
	GasCost      *uint256.Int
	BuilderTip   *uint256.Int
	SafetyBuffer *uint256.Int
	TotalCosts   *uint256.Int
	GrossProfit  *uint256.Int
	NetProfit    *uint256.Int
	IsProfitable bool
}

// CostShares is each cost term's share of the total, in basis points.
type CostShares struct {
	FlashLoanFeeBps uint64
	GasCostBps      uint64
	BuilderTipBps   uint64
	SafetyBufferBps uint64
}

// CostShares splits TotalCosts into per-term shares. All shares are zero
// when there are no costs.
func (b *Breakdown) CostShares() CostShares {
	if b.TotalCosts == nil || b.TotalCosts.IsZero() {
		return CostShares{}
	}
	share := func(term *uint256.Int) uint64 {
		if term == nil {
			return 0
		}
		// term <= total, so the share never exceeds BPS
		v, err := fixedpoint.MulDiv(term, fixedpoint.BPSScale(), b.TotalCosts)
		if err != nil {
			return 0
		}
		return v.Uint64()
	}
	return CostShares{
		FlashLoanFeeBps: share(b.FlashLoanFee),
		GasCostBps:      share(b.GasCost),
		BuilderTipBps:   share(b.BuilderTip),
		SafetyBufferBps: share(b.SafetyBuffer),
	}
}

// NetProfitBps is net profit per unit of principal, in basis points.
func (b *Breakdown) NetProfitBps() uint64 {
	if b.BorrowAmount == nil || b.BorrowAmount.IsZero() || b.NetProfit == nil {
		return 0
	}
	v, err := fixedpoint.MulDiv(b.NetProfit, fixedpoint.BPSScale(), b.BorrowAmount)
	if err != nil || !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
