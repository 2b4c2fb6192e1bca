package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const meterName = "github.com/fd1az/arbitrage-analyzer/business/pricing/app"

// PricingService dispatches quotes to the quoter of each venue and exposes
// the reference price feeds.
type PricingService struct {
	quoters   map[routingDomain.Venue]VenueQuoter
	primary   PriceFeed
	secondary PriceFeed
	metadata  TokenMetadata
	logger    logger.LoggerInterface

	quoteLatency metric.Float64Histogram
	oracleFetch  metric.Int64Counter
}

// NewPricingService creates a new PricingService. secondary may be nil.
func NewPricingService(
	quoters map[routingDomain.Venue]VenueQuoter,
	primary PriceFeed,
	secondary PriceFeed,
	metadata TokenMetadata,
	log logger.LoggerInterface,
) (*PricingService, error) {
	meter := otel.Meter(meterName)

	quoteLatency, err := meter.Float64Histogram(
		"quote_latency_ms",
		metric.WithDescription("Venue quote latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	oracleFetch, err := meter.Int64Counter(
		"oracle_fetch_total",
		metric.WithDescription("Oracle price reads by source and outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &PricingService{
		quoters:      quoters,
		primary:      primary,
		secondary:    secondary,
		metadata:     metadata,
		logger:       log,
		quoteLatency: quoteLatency,
		oracleFetch:  oracleFetch,
	}, nil
}

// Quote returns the amount out of a single hop on venue.
func (s *PricingService) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, venue routingDomain.Venue) (*uint256.Int, error) {
	quoter, ok := s.quoters[venue]
	if !ok {
		return nil, apperror.New(apperror.CodeVenueNotConfigured,
			apperror.WithContext("no quoter for venue "+venue.String()))
	}

	start := time.Now()
	q, err := quoter.Quote(ctx, tokenIn, tokenOut, amountIn)
	s.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("venue", venue.String())))
	if err != nil {
		return nil, err
	}
	if q.IsEmpty() {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("%s returned zero output for %s->%s", venue, tokenIn.Hex(), tokenOut.Hex())))
	}

	s.logger.Debug(ctx, "venue quote",
		"venue", venue,
		"token_in", tokenIn.Hex(),
		"token_out", tokenOut.Hex(),
		"amount_in", amountIn.Dec(),
		"amount_out", q.AmountOut.Dec(),
		"fee_tier", q.FeeTier)

	return q.AmountOut, nil
}

// Decimals returns the ERC-20 decimals of token.
func (s *PricingService) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	return s.metadata.Decimals(ctx, token)
}

// Primary returns the primary reference feed.
func (s *PricingService) Primary() PriceFeed {
	return &countingFeed{feed: s.primary, source: domain.SourceChainlink, counter: s.oracleFetch}
}

// Secondary returns the secondary reference feed, or nil when none is configured.
func (s *PricingService) Secondary() PriceFeed {
	if s.secondary == nil {
		return nil
	}
	return &countingFeed{feed: s.secondary, source: domain.SourceBinance, counter: s.oracleFetch}
}

// HasVenue reports whether a quoter is registered for venue.
func (s *PricingService) HasVenue(venue routingDomain.Venue) bool {
	_, ok := s.quoters[venue]
	return ok
}

type countingFeed struct {
	feed    PriceFeed
	source  string
	counter metric.Int64Counter
}

func (f *countingFeed) LatestPrice(ctx context.Context, token common.Address) (domain.OraclePrice, error) {
	p, err := f.feed.LatestPrice(ctx, token)
	outcome := "ok"
	if err != nil {
		outcome = string(apperror.GetCode(err))
	}
	f.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", f.source),
		attribute.String("outcome", outcome),
	))
	return p, err
}
