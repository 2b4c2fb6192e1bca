package uniswap

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/evm"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const (
	tracerName = "uniswap"
	meterName  = "uniswap"

	venueName = "uniswap_v3"
)

// Ensure Quoter implements VenueQuoter.
var _ app.VenueQuoter = (*Quoter)(nil)

// quoterMetrics holds OTEL metric instruments.
type quoterMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Quoter quotes single hops against the Uniswap V3 QuoterV2 contract,
// keeping the best output across the configured fee tiers.
type Quoter struct {
	quoter   *evm.Contract
	feeTiers []uint32
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *quoterMetrics
}

// NewQuoter creates a new Uniswap V3 quoter.
func NewQuoter(client evm.ContractCaller, quoterAddr common.Address, feeTiers []int, log logger.LoggerInterface) (*Quoter, error) {
	if len(feeTiers) == 0 {
		feeTiers = DefaultFeeTiers
	}
	tiers := make([]uint32, 0, len(feeTiers))
	for _, f := range feeTiers {
		if f <= 0 || f >= 1_000_000 {
			return nil, fmt.Errorf("invalid fee tier: %d", f)
		}
		tiers = append(tiers, uint32(f))
	}

	cb := circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("uniswap-quoter"))
	contract, err := evm.NewContract(client, quoterAddr, QuoterV2ABI, cb)
	if err != nil {
		return nil, fmt.Errorf("failed to bind quoter: %w", err)
	}

	q := &Quoter{
		quoter:   contract,
		feeTiers: tiers,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	if err := q.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return q, nil
}

func (q *Quoter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	q.metrics = &quoterMetrics{}

	q.metrics.quotesTotal, err = meter.Int64Counter(
		"uniswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	q.metrics.quoteLatency, err = meter.Float64Histogram(
		"uniswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	q.metrics.quoteErrors, err = meter.Int64Counter(
		"uniswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	return err
}

// Quote returns the best single-hop quote across fee tiers.
func (q *Quoter) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, "uniswap.quote",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("amount_in", amountIn.Dec()),
		),
	)
	defer span.End()

	start := time.Now()
	q.metrics.quotesTotal.Add(ctx, 1)

	var best *quoteResult
	for _, fee := range q.feeTiers {
		res, err := q.quoteForFeeTier(ctx, tokenIn, tokenOut, amountIn, fee)
		if err != nil {
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", int(fee)),
					attribute.String("error", err.Error()),
				),
			)
			continue
		}
		if best == nil || res.amountOut.Cmp(best.amountOut) > 0 {
			best = res
		}
	}

	q.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if best == nil || best.amountOut.Sign() == 0 {
		q.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "no valid quote")
		return nil, apperror.New(apperror.CodeUniswapPoolNotFound,
			apperror.WithContext(fmt.Sprintf("no pool quoted %s->%s", tokenIn.Hex(), tokenOut.Hex())))
	}

	amountOut, err := fixedpoint.FromBig(best.amountOut)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	quote := domain.NewQuote(tokenIn, tokenOut, amountIn, amountOut, venueName)
	quote.FeeTier = best.feeTier
	quote.GasEstimate = best.gasEstimate

	span.SetAttributes(
		attribute.String("amount_out", amountOut.Dec()),
		attribute.Int("fee_tier", int(best.feeTier)),
	)
	span.SetStatus(codes.Ok, "quote received")

	return quote, nil
}

// quoteForFeeTier calls QuoterV2.quoteExactInputSingle for one fee tier.
func (q *Quoter) quoteForFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, fee uint32) (*quoteResult, error) {
	outputs, err := q.quoter.Call(ctx, "quoteExactInputSingle", newSingleHopQuery(tokenIn, tokenOut, amountIn, fee))
	if err != nil {
		return nil, err
	}
	return decodeQuote(fee, outputs)
}
