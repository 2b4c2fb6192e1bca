package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const tracerName = "github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"

// EvaluatorConfig controls the oracle sanity checks applied to quotes.
type EvaluatorConfig struct {
	OracleEnabled            bool
	MaxPriceAge              time.Duration // 0 disables the staleness check
	MaxDeviationBps          uint64
	SecondaryMaxDeviationBps uint64
}

// Evaluator quotes a route's two legs and prices the result.
type Evaluator struct {
	quotes    QuoteSource
	primary   PriceOracle
	secondary PriceOracle
	decimals  TokenDecimals
	config    EvaluatorConfig
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	now       func() time.Time
}

var _ RouteEvaluator = (*Evaluator)(nil)

// NewEvaluator creates an Evaluator. secondary may be nil.
func NewEvaluator(
	quotes QuoteSource,
	primary PriceOracle,
	secondary PriceOracle,
	decimals TokenDecimals,
	cfg EvaluatorConfig,
	log logger.LoggerInterface,
) *Evaluator {
	return &Evaluator{
		quotes:    quotes,
		primary:   primary,
		secondary: secondary,
		decimals:  decimals,
		config:    cfg,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// EvaluateRoute quotes leg1 on VenueA across every hop but the closing
// one, then the closing hop on VenueB with leg1's output, and returns the
// profitability breakdown. Quotes are not retried.
func (e *Evaluator) EvaluateRoute(ctx context.Context, route routingDomain.Route, borrow *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	ctx, span := e.tracer.Start(ctx, "arbitrage.evaluate_route",
		trace.WithAttributes(
			attribute.Int64("route_id", int64(route.ID)),
			attribute.String("venue_a", route.VenueA.String()),
			attribute.String("venue_b", route.VenueB.String()),
			attribute.Int("hops", len(route.Path)-1),
		),
	)
	defer span.End()

	b, err := e.evaluate(ctx, route, borrow, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperror.GetCode(err)))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("net_profit", b.NetProfit.Dec()),
		attribute.Bool("profitable", b.IsProfitable),
	)
	span.SetStatus(codes.Ok, "evaluated")
	return b, nil
}

func (e *Evaluator) evaluate(ctx context.Context, route routingDomain.Route, borrow *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	if borrow == nil || borrow.IsZero() {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "borrow amount must be positive")
	}
	if len(route.Path) < routingDomain.MinPathLength {
		return nil, apperror.Validation(apperror.CodeInvalidPathLength,
			fmt.Sprintf("route %d has %d tokens", route.ID, len(route.Path)))
	}

	hops := route.Leg1Path()
	if len(hops) < 2 {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext(fmt.Sprintf("route %d has no intermediate token", route.ID)))
	}

	leg1Out := borrow
	for i := 0; i+1 < len(hops); i++ {
		out, err := e.quoteHop(ctx, hops[i], hops[i+1], leg1Out, route.VenueA)
		if err != nil {
			return nil, err
		}
		leg1Out = out
	}

	closeIn, closeOut := route.ClosingHop()
	leg2Out, err := e.quoteHop(ctx, closeIn, closeOut, leg1Out, route.VenueB)
	if err != nil {
		return nil, err
	}

	if e.config.OracleEnabled {
		if err := e.checkLegs(ctx, route, borrow, leg1Out, leg2Out); err != nil {
			return nil, err
		}
	}

	return CalculateForRoute(route, borrow, leg1Out, leg2Out, params)
}

func (e *Evaluator) quoteHop(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, venue routingDomain.Venue) (*uint256.Int, error) {
	out, err := e.quotes.Quote(ctx, tokenIn, tokenOut, amountIn, venue)
	if err != nil {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s %s->%s", venue, tokenIn.Hex(), tokenOut.Hex())))
	}
	if out == nil || out.IsZero() {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext(fmt.Sprintf("%s %s->%s returned no output", venue, tokenIn.Hex(), tokenOut.Hex())))
	}
	return out, nil
}

// legCheck is one leg's realized swap, compared against oracle cross rates.
type legCheck struct {
	tokenIn, tokenOut   common.Address
	amountIn, amountOut *uint256.Int
}

func (e *Evaluator) checkLegs(ctx context.Context, route routingDomain.Route, borrow, leg1Out, leg2Out *uint256.Int) error {
	closeIn, closeOut := route.ClosingHop()
	legs := []legCheck{
		{tokenIn: route.BorrowAsset(), tokenOut: closeIn, amountIn: borrow, amountOut: leg1Out},
		{tokenIn: closeIn, tokenOut: closeOut, amountIn: leg1Out, amountOut: leg2Out},
	}

	primary := make(map[common.Address]pricingDomain.OraclePrice, 2)
	for i, leg := range legs {
		dev, err := e.deviation(ctx, e.primary, primary, leg, true)
		if err != nil {
			return err
		}
		if dev > e.config.MaxDeviationBps {
			return apperror.New(apperror.CodePriceDeviationTooHigh,
				apperror.WithContext(fmt.Sprintf("route %d leg%d deviates %d bps from oracle (max %d)",
					route.ID, i+1, dev, e.config.MaxDeviationBps)))
		}
	}

	if e.secondary == nil {
		return nil
	}

	secondary := make(map[common.Address]pricingDomain.OraclePrice, 2)
	for i, leg := range legs {
		dev, err := e.deviation(ctx, e.secondary, secondary, leg, false)
		if err != nil {
			e.logger.Debug(ctx, "secondary oracle check skipped",
				"route_id", route.ID, "leg", i+1, "error", err)
			continue
		}
		if dev > e.config.SecondaryMaxDeviationBps {
			return apperror.New(apperror.CodeSecondaryPriceDeviationTooHigh,
				apperror.WithContext(fmt.Sprintf("route %d leg%d deviates %d bps from secondary oracle (max %d)",
					route.ID, i+1, dev, e.config.SecondaryMaxDeviationBps)))
		}
	}
	return nil
}

// deviation returns how far leg's realized output is from the oracle cross
// rate, in basis points.
func (e *Evaluator) deviation(ctx context.Context, oracle PriceOracle, seen map[common.Address]pricingDomain.OraclePrice, leg legCheck, primary bool) (uint64, error) {
	priceIn, err := e.price(ctx, oracle, seen, leg.tokenIn, primary)
	if err != nil {
		return 0, err
	}
	priceOut, err := e.price(ctx, oracle, seen, leg.tokenOut, primary)
	if err != nil {
		return 0, err
	}

	decIn, err := e.decimals.Decimals(ctx, leg.tokenIn)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeUnsupportedToken, "decimals of "+leg.tokenIn.Hex())
	}
	decOut, err := e.decimals.Decimals(ctx, leg.tokenOut)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeUnsupportedToken, "decimals of "+leg.tokenOut.Hex())
	}

	expected, err := ExpectedOutput(leg.amountIn, priceIn.Value, priceOut.Value, decIn, decOut)
	if err != nil {
		return 0, err
	}
	return fixedpoint.DeviationBps(leg.amountOut, expected)
}

func (e *Evaluator) price(ctx context.Context, oracle PriceOracle, seen map[common.Address]pricingDomain.OraclePrice, token common.Address, primary bool) (pricingDomain.OraclePrice, error) {
	if p, ok := seen[token]; ok {
		return p, nil
	}

	p, err := oracle.LatestPrice(ctx, token)
	if err != nil {
		return p, apperror.Wrap(err, apperror.CodeInvalidOraclePrice, "oracle price of "+token.Hex())
	}
	if p.IsZero() {
		return p, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext("zero oracle price for "+token.Hex()))
	}
	if primary && e.config.MaxPriceAge > 0 {
		if age := p.Age(e.now()); age > e.config.MaxPriceAge {
			return p, apperror.New(apperror.CodeStalePriceFeed,
				apperror.WithContext(fmt.Sprintf("%s price is %s old (max %s)", token.Hex(), age.Truncate(time.Second), e.config.MaxPriceAge)))
		}
	}

	seen[token] = p
	return p, nil
}

// ExpectedOutput converts amountIn of a token priced priceIn into a token
// priced priceOut: amountIn*priceIn*10^decOut / (priceOut*10^decIn).
func ExpectedOutput(amountIn, priceIn, priceOut *uint256.Int, decIn, decOut uint8) (*uint256.Int, error) {
	num, err := fixedpoint.Mul(priceIn, fixedpoint.Pow10(decOut))
	if err != nil {
		return nil, err
	}
	den, err := fixedpoint.Mul(priceOut, fixedpoint.Pow10(decIn))
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(amountIn, num, den)
}
