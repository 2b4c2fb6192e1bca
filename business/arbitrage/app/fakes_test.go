package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

type hopKey struct {
	in, out common.Address
	venue   routingDomain.Venue
}

// rate is out = in * num / den.
type rate struct {
	num, den uint64
}

type fakeQuotes struct {
	mu    sync.Mutex
	rates map[hopKey]rate
	calls []hopKey
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{rates: make(map[hopKey]rate)}
}

func (f *fakeQuotes) set(in, out common.Address, venue routingDomain.Venue, num, den uint64) {
	f.rates[hopKey{in, out, venue}] = rate{num, den}
}

func (f *fakeQuotes) Quote(_ context.Context, in, out common.Address, amountIn *uint256.Int, venue routingDomain.Venue) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := hopKey{in, out, venue}
	f.calls = append(f.calls, key)
	r, ok := f.rates[key]
	if !ok {
		return nil, errors.New("no liquidity")
	}
	v := new(uint256.Int).Mul(amountIn, uint256.NewInt(r.num))
	return v.Div(v, uint256.NewInt(r.den)), nil
}

type fakeOracle struct {
	prices map[common.Address]pricingDomain.OraclePrice
	err    error
}

func (f *fakeOracle) LatestPrice(_ context.Context, token common.Address) (pricingDomain.OraclePrice, error) {
	if f.err != nil {
		return pricingDomain.OraclePrice{}, f.err
	}
	p, ok := f.prices[token]
	if !ok {
		return p, apperror.New(apperror.CodeInvalidOraclePrice, apperror.WithContext("no feed"))
	}
	return p, nil
}

func usdPrice(token common.Address, usd string, at time.Time) pricingDomain.OraclePrice {
	v := uint256.MustFromDecimal(usd)
	v.Mul(v, uint256.NewInt(1_000_000_000_000_000_000))
	return pricingDomain.OraclePrice{Token: token, Value: v, ObservedAt: at, Source: "test"}
}

type fakeDecimals map[common.Address]uint8

func (f fakeDecimals) Decimals(_ context.Context, token common.Address) (uint8, error) {
	d, ok := f[token]
	if !ok {
		return 0, apperror.New(apperror.CodeUnsupportedToken)
	}
	return d, nil
}

var testDecimals = fakeDecimals{weth: 18, usdc: 6, dai: 18}

// stubEvaluator returns precomputed results per route ID.
type stubEvaluator struct {
	results map[routingDomain.RouteID]*domain.Breakdown
	errs    map[routingDomain.RouteID]error
}

func (s *stubEvaluator) EvaluateRoute(_ context.Context, route routingDomain.Route, _ *uint256.Int, _ domain.CostParams) (*domain.Breakdown, error) {
	if err, ok := s.errs[route.ID]; ok {
		return nil, err
	}
	return s.results[route.ID], nil
}

func testRoute(id routingDomain.RouteID, minProfit uint64, path ...common.Address) routingDomain.Route {
	return routingDomain.NewRoute(id, routingDomain.RouteParams{
		Path:      path,
		MinProfit: uint256.NewInt(minProfit),
		VenueA:    routingDomain.VenueUniswapV3,
		VenueB:    routingDomain.VenueSushiSwap,
	})
}
