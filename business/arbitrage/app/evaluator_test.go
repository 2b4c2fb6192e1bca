package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	pricingDomain "github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

var evalNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type evalFixture struct {
	quotes    *fakeQuotes
	primary   *fakeOracle
	secondary *fakeOracle
	cfg       EvaluatorConfig
}

// newEvalFixture prices WETH at $2000 and quotes WETH->USDC at 2000 on
// Uniswap V3 and USDC->WETH at 1990 on SushiSwap.
func newEvalFixture() *evalFixture {
	q := newFakeQuotes()
	q.set(weth, usdc, routingDomain.VenueUniswapV3, 2000, 1_000_000_000_000)
	q.set(usdc, weth, routingDomain.VenueSushiSwap, 1_000_000_000_000, 1990)
	q.set(usdc, dai, routingDomain.VenueUniswapV3, 1_000_000_000_000, 1)
	q.set(dai, weth, routingDomain.VenueSushiSwap, 1, 1990)

	fresh := evalNow.Add(-time.Minute)
	return &evalFixture{
		quotes: q,
		primary: &fakeOracle{prices: map[common.Address]pricingDomain.OraclePrice{
			weth: usdPrice(weth, "2000", fresh),
			usdc: usdPrice(usdc, "1", fresh),
			dai:  usdPrice(dai, "1", fresh),
		}},
		cfg: EvaluatorConfig{
			OracleEnabled:            true,
			MaxPriceAge:              time.Hour,
			MaxDeviationBps:          200,
			SecondaryMaxDeviationBps: 300,
		},
	}
}

func (f *evalFixture) evaluator() *Evaluator {
	var secondary PriceOracle
	if f.secondary != nil {
		secondary = f.secondary
	}
	e := NewEvaluator(f.quotes, f.primary, secondary, testDecimals, f.cfg, logger.NewDiscard())
	e.now = func() time.Time { return evalNow }
	return e
}

func TestEvaluator_QuotesBothLegs(t *testing.T) {
	f := newEvalFixture()
	route := testRoute(0, 0, weth, usdc, weth)

	b, err := f.evaluator().EvaluateRoute(context.Background(), route, wei("10000000000000000000"), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.Leg1Out.Dec(); got != "20000000000" {
		t.Errorf("leg1Out = %s, want 20000000000 (20000 USDC)", got)
	}
	if got := b.Leg2Out.Dec(); got != "10050251256281407035" {
		t.Errorf("leg2Out = %s, want 10050251256281407035", got)
	}

	want := []hopKey{
		{weth, usdc, routingDomain.VenueUniswapV3},
		{usdc, weth, routingDomain.VenueSushiSwap},
	}
	if len(f.quotes.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.quotes.calls, want)
	}
	for i := range want {
		if f.quotes.calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, f.quotes.calls[i], want[i])
		}
	}
}

func TestEvaluator_MultiHopLeg1StaysOnVenueA(t *testing.T) {
	f := newEvalFixture()
	route := testRoute(3, 0, weth, usdc, dai, weth)

	b, err := f.evaluator().EvaluateRoute(context.Background(), route, wei("10000000000000000000"), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.Leg1Out.Dec(); got != "20000000000000000000000" {
		t.Errorf("leg1Out = %s, want 20000e18 DAI", got)
	}

	want := []hopKey{
		{weth, usdc, routingDomain.VenueUniswapV3},
		{usdc, dai, routingDomain.VenueUniswapV3},
		{dai, weth, routingDomain.VenueSushiSwap},
	}
	for i := range want {
		if f.quotes.calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, f.quotes.calls[i], want[i])
		}
	}
}

func TestEvaluator_Failures(t *testing.T) {
	borrow := wei("10000000000000000000")

	tests := []struct {
		name   string
		route  routingDomain.Route
		modify func(f *evalFixture)
		want   apperror.Code
	}{
		{
			name:  "quote_unavailable",
			route: testRoute(0, 0, weth, dai, weth),
			modify: func(f *evalFixture) {
				delete(f.quotes.rates, hopKey{dai, weth, routingDomain.VenueSushiSwap})
			},
			want: apperror.CodeQuoteUnavailable,
		},
		{
			name:   "no_intermediate_token",
			route:  testRoute(0, 0, weth, weth),
			modify: func(f *evalFixture) {},
			want:   apperror.CodeQuoteUnavailable,
		},
		{
			name:  "primary_deviation",
			route: testRoute(0, 0, weth, usdc, weth),
			modify: func(f *evalFixture) {
				f.primary.prices[weth] = usdPrice(weth, "2500", evalNow)
			},
			want: apperror.CodePriceDeviationTooHigh,
		},
		{
			name:  "stale_feed",
			route: testRoute(0, 0, weth, usdc, weth),
			modify: func(f *evalFixture) {
				f.primary.prices[usdc] = usdPrice(usdc, "1", evalNow.Add(-2*time.Hour))
			},
			want: apperror.CodeStalePriceFeed,
		},
		{
			name:  "zero_price",
			route: testRoute(0, 0, weth, usdc, weth),
			modify: func(f *evalFixture) {
				f.primary.prices[weth] = pricingDomain.OraclePrice{Token: weth, Value: uint256.NewInt(0), ObservedAt: evalNow}
			},
			want: apperror.CodeInvalidOraclePrice,
		},
		{
			name:  "secondary_deviation",
			route: testRoute(0, 0, weth, usdc, weth),
			modify: func(f *evalFixture) {
				f.secondary = &fakeOracle{prices: map[common.Address]pricingDomain.OraclePrice{
					weth: usdPrice(weth, "2100", evalNow),
					usdc: usdPrice(usdc, "1", evalNow),
				}}
			},
			want: apperror.CodeSecondaryPriceDeviationTooHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEvalFixture()
			tt.modify(f)
			_, err := f.evaluator().EvaluateRoute(context.Background(), tt.route, borrow, defaultParams())
			if got := apperror.GetCode(err); got != tt.want {
				t.Errorf("code = %s, want %s (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestEvaluator_SecondaryUnavailableIsSkipped(t *testing.T) {
	f := newEvalFixture()
	f.secondary = &fakeOracle{err: errors.New("binance down")}

	_, err := f.evaluator().EvaluateRoute(context.Background(), testRoute(0, 0, weth, usdc, weth), wei("10000000000000000000"), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluator_OracleDisabled(t *testing.T) {
	f := newEvalFixture()
	f.cfg.OracleEnabled = false
	f.primary.prices[weth] = usdPrice(weth, "9999", evalNow.Add(-48*time.Hour))

	_, err := f.evaluator().EvaluateRoute(context.Background(), testRoute(0, 0, weth, usdc, weth), wei("10000000000000000000"), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluator_RejectsZeroBorrow(t *testing.T) {
	f := newEvalFixture()
	_, err := f.evaluator().EvaluateRoute(context.Background(), testRoute(0, 0, weth, usdc, weth), uint256.NewInt(0), defaultParams())
	if apperror.GetCode(err) != apperror.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExpectedOutput(t *testing.T) {
	eth := wei("2000000000000000000000")
	usd := wei("1000000000000000000")

	tests := []struct {
		name          string
		amountIn      string
		priceIn       *uint256.Int
		priceOut      *uint256.Int
		decIn, decOut uint8
		want          string
	}{
		{"weth_to_usdc", "1000000000000000000", eth, usd, 18, 6, "2000000000"},
		{"usdc_to_weth", "2000000000", usd, eth, 6, 18, "1000000000000000000"},
		{"dai_to_usdc", "5000000000000000000", usd, usd, 18, 6, "5000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpectedOutput(wei(tt.amountIn), tt.priceIn, tt.priceOut, tt.decIn, tt.decOut)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Dec() != tt.want {
				t.Errorf("ExpectedOutput = %s, want %s", got.Dec(), tt.want)
			}
		})
	}
}
