package app

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

func wei(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

// defaultParams mirrors a mainnet setup: 9 bps Aave premium, 50 gwei, 500k gas.
func defaultParams() domain.CostParams {
	return domain.CostParams{
		FlashLoanPremiumBps: 9,
		GasPriceWei:         wei("50000000000"),
		GasUnitsEstimate:    500_000,
		BuilderTipBps:       10,
		SafetyBufferBps:     50,
		MinProfitBps:        100,
		MinProfitAbsolute:   uint256.NewInt(0),
	}
}

func TestCalculate_EndToEndScenario(t *testing.T) {
	b, err := Calculate(
		wei("10000000000000000000"),
		wei("10500000000000000000"),
		wei("10800000000000000000"),
		defaultParams(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  *uint256.Int
		want string
	}{
		{"flashLoanFee", b.FlashLoanFee, "9000000000000000"},
		{"gasCost", b.GasCost, "25000000000000000"},
		{"builderTip", b.BuilderTip, "10000000000000000"},
		{"safetyBuffer", b.SafetyBuffer, "50000000000000000"},
		{"totalCosts", b.TotalCosts, "94000000000000000"},
		{"grossProfit", b.GrossProfit, "800000000000000000"},
		{"netProfit", b.NetProfit, "706000000000000000"},
	}
	for _, c := range checks {
		if c.got.Dec() != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.got.Dec(), c.want)
		}
	}
	if !b.IsProfitable {
		t.Error("expected profitable (706 bps >= 100 bps)")
	}
	if got := b.NetProfitBps(); got != 706 {
		t.Errorf("NetProfitBps = %d, want 706", got)
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	one := uint256.NewInt(1)
	zero := uint256.NewInt(0)

	tests := []struct {
		name               string
		borrow, leg1, leg2 *uint256.Int
	}{
		{"zero_borrow", zero, one, one},
		{"nil_borrow", nil, one, one},
		{"zero_leg1", one, zero, one},
		{"zero_leg2", one, one, zero},
		{"nil_leg2", one, one, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.borrow, tt.leg1, tt.leg2, defaultParams())
			if apperror.GetCode(err) != apperror.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestCalculate_MonotonicCosts(t *testing.T) {
	borrow := wei("10000000000000000000")
	leg2 := wei("10800000000000000000")

	bumps := []struct {
		name string
		bump func(p *domain.CostParams, step uint64)
	}{
		{"flash_loan_premium", func(p *domain.CostParams, s uint64) { p.FlashLoanPremiumBps += s }},
		{"gas_price", func(p *domain.CostParams, s uint64) {
			p.GasPriceWei = new(uint256.Int).Add(p.GasPriceWei, uint256.NewInt(s*10_000_000_000))
		}},
		{"builder_tip", func(p *domain.CostParams, s uint64) { p.BuilderTipBps += s }},
		{"safety_buffer", func(p *domain.CostParams, s uint64) { p.SafetyBufferBps += s }},
	}

	for _, bb := range bumps {
		t.Run(bb.name, func(t *testing.T) {
			params := defaultParams()
			prev, err := Calculate(borrow, borrow, leg2, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := 0; i < 20; i++ {
				bb.bump(&params, 50)
				next, err := Calculate(borrow, borrow, leg2, params)
				if err != nil {
					t.Fatalf("step %d: unexpected error: %v", i, err)
				}
				if next.NetProfit.Gt(prev.NetProfit) {
					t.Fatalf("step %d: net profit rose from %s to %s", i, prev.NetProfit.Dec(), next.NetProfit.Dec())
				}
				prev = next
			}
			if !prev.NetProfit.IsZero() {
				t.Errorf("expected costs to eventually consume all profit, net = %s", prev.NetProfit.Dec())
			}
		})
	}
}

func TestCalculate_Saturation(t *testing.T) {
	borrow := wei("10000000000000000000")

	tests := []struct {
		name string
		leg2 string
	}{
		{"loss", "9000000000000000000"},
		{"break_even", "10000000000000000000"},
		{"profit_below_costs", "10050000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Calculate(borrow, borrow, wei(tt.leg2), defaultParams())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !b.NetProfit.IsZero() {
				t.Errorf("netProfit = %s, want 0", b.NetProfit.Dec())
			}
			if b.IsProfitable {
				t.Error("expected not profitable")
			}
			if wei(tt.leg2).Cmp(borrow) <= 0 && !b.GrossProfit.IsZero() {
				t.Errorf("grossProfit = %s, want 0", b.GrossProfit.Dec())
			}
		})
	}
}

func TestCalculate_ProfitabilityPredicate(t *testing.T) {
	borrow := wei("10000000000000000000")
	leg2 := wei("10800000000000000000") // net 0.706e18, 706 bps

	tests := []struct {
		name   string
		leg2   *uint256.Int
		modify func(p *domain.CostParams)
		want   bool
	}{
		{"all_conditions_hold", leg2, func(p *domain.CostParams) {}, true},
		{"net_profit_zero", wei("10094000000000000000"), func(p *domain.CostParams) {
			p.MinProfitBps = 0
		}, false},
		{"below_min_profit_bps", leg2, func(p *domain.CostParams) {
			p.MinProfitBps = 707
		}, false},
		{"exactly_min_profit_bps", leg2, func(p *domain.CostParams) {
			p.MinProfitBps = 706
		}, true},
		{"below_min_profit_absolute", leg2, func(p *domain.CostParams) {
			p.MinProfitAbsolute = wei("706000000000000001")
		}, false},
		{"exactly_min_profit_absolute", leg2, func(p *domain.CostParams) {
			p.MinProfitAbsolute = wei("706000000000000000")
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := defaultParams()
			tt.modify(&params)
			b, err := Calculate(borrow, borrow, tt.leg2, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.IsProfitable != tt.want {
				t.Errorf("IsProfitable = %v, want %v (net %s)", b.IsProfitable, tt.want, b.NetProfit.Dec())
			}
		})
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	borrow := wei("10000000000000000000")
	leg1 := wei("10500000000000000000")
	leg2 := wei("10800000000000000000")

	a, err := Calculate(borrow, leg1, leg2, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Calculate(borrow, leg1, leg2, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ:\n%+v\n%+v", a, b)
	}
	if a.BorrowAmount == borrow {
		t.Error("breakdown must not alias caller inputs")
	}
}

func TestCalculate_NilGasPriceIsZeroCost(t *testing.T) {
	params := defaultParams()
	params.GasPriceWei = nil
	params.MinProfitAbsolute = nil

	b, err := Calculate(wei("1000"), wei("1000"), wei("2000"), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.GasCost.IsZero() {
		t.Errorf("gasCost = %s, want 0", b.GasCost.Dec())
	}
}

func TestCalculateForRoute_RouteFloorRaisesAbsoluteMinimum(t *testing.T) {
	borrow := wei("10000000000000000000")
	leg2 := wei("10800000000000000000")

	route := routingDomain.NewRoute(0, routingDomain.RouteParams{
		Path:      []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02"), common.HexToAddress("0x01")},
		MinProfit: wei("1000000000000000000"),
		VenueA:    routingDomain.VenueUniswapV3,
		VenueB:    routingDomain.VenueSushiSwap,
	})

	b, err := CalculateForRoute(route, borrow, borrow, leg2, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.IsProfitable {
		t.Error("route floor of 1e18 should reject 0.706e18 net profit")
	}

	// A global floor above the route's floor wins.
	params := defaultParams()
	params.MinProfitAbsolute = wei("2000000000000000000")
	route.MinProfit = wei("1")
	if got := EffectiveParams(route, params).MinProfitAbsolute; got.Dec() != "2000000000000000000" {
		t.Errorf("effective floor = %s, want 2e18", got.Dec())
	}
}
