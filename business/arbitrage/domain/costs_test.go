package domain

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestBreakdown_CostShares(t *testing.T) {
	b := &Breakdown{
		FlashLoanFee: uint256.NewInt(9),
		GasCost:      uint256.NewInt(21),
		BuilderTip:   uint256.NewInt(10),
		SafetyBuffer: uint256.NewInt(60),
		TotalCosts:   uint256.NewInt(100),
	}

	got := b.CostShares()
	want := CostShares{FlashLoanFeeBps: 900, GasCostBps: 2100, BuilderTipBps: 1000, SafetyBufferBps: 6000}
	if got != want {
		t.Errorf("CostShares = %+v, want %+v", got, want)
	}
}

func TestBreakdown_CostShares_ZeroTotal(t *testing.T) {
	b := &Breakdown{TotalCosts: uint256.NewInt(0)}
	if got := b.CostShares(); got != (CostShares{}) {
		t.Errorf("CostShares = %+v, want all zero", got)
	}
}

func TestBreakdown_NetProfitBps(t *testing.T) {
	b := &Breakdown{
		BorrowAmount: uint256.MustFromDecimal("10000000000000000000"),
		NetProfit:    uint256.MustFromDecimal("706000000000000000"),
	}
	if got := b.NetProfitBps(); got != 706 {
		t.Errorf("NetProfitBps = %d, want 706", got)
	}
}
