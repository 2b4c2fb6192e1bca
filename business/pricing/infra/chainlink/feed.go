// Package chainlink implements the primary price feed over Chainlink
// AggregatorV3 contracts.
package chainlink

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/evm"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/cache"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const tracerName = "chainlink"

// AggregatorV3ABI covers the read methods used by the feed.
const AggregatorV3ABI = `[
	{
		"inputs": [],
		"name": "decimals",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "latestRoundData",
		"outputs": [
			{"internalType": "uint80", "name": "roundId", "type": "uint80"},
			{"internalType": "int256", "name": "answer", "type": "int256"},
			{"internalType": "uint256", "name": "startedAt", "type": "uint256"},
			{"internalType": "uint256", "name": "updatedAt", "type": "uint256"},
			{"internalType": "uint80", "name": "answeredInRound", "type": "uint80"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Ensure Feed implements PriceFeed.
var _ app.PriceFeed = (*Feed)(nil)

// Feed reads USD prices from one aggregator per token. Answers are cached
// for CacheTTL, roughly one block.
type Feed struct {
	aggregators map[common.Address]*evm.Contract
	decimals    *cache.Cache[common.Address, uint8]
	prices      *cache.Cache[common.Address, domain.OraclePrice]
	ttl         time.Duration
	logger      logger.LoggerInterface
	tracer      trace.Tracer
}

// NewFeed binds an aggregator for every token -> feed entry.
func NewFeed(client evm.ContractCaller, feeds map[common.Address]common.Address, ttl time.Duration, log logger.LoggerInterface) (*Feed, error) {
	cb := circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("chainlink"))

	aggregators := make(map[common.Address]*evm.Contract, len(feeds))
	for token, feed := range feeds {
		c, err := evm.NewContract(client, feed, AggregatorV3ABI, cb)
		if err != nil {
			return nil, fmt.Errorf("failed to bind aggregator %s: %w", feed.Hex(), err)
		}
		aggregators[token] = c
	}

	return &Feed{
		aggregators: aggregators,
		decimals:    cache.New[common.Address, uint8](time.Minute),
		prices:      cache.New[common.Address, domain.OraclePrice](time.Minute),
		ttl:         ttl,
		logger:      log,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// LatestPrice returns the token's latest round answer scaled to 18 decimals.
func (f *Feed) LatestPrice(ctx context.Context, token common.Address) (domain.OraclePrice, error) {
	if p, ok := f.prices.Get(ctx, token); ok {
		return p, nil
	}

	agg, ok := f.aggregators[token]
	if !ok {
		return domain.OraclePrice{}, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("no chainlink feed for "+token.Hex()))
	}

	ctx, span := f.tracer.Start(ctx, "chainlink.latest_price",
		trace.WithAttributes(
			attribute.String("token", token.Hex()),
			attribute.String("feed", agg.Address().Hex()),
		),
	)
	defer span.End()

	dec, err := f.feedDecimals(ctx, token, agg)
	if err != nil {
		span.RecordError(err)
		return domain.OraclePrice{}, err
	}

	outputs, err := agg.Call(ctx, "latestRoundData")
	if err != nil {
		span.RecordError(err)
		return domain.OraclePrice{}, err
	}
	if len(outputs) < 4 {
		return domain.OraclePrice{}, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext(fmt.Sprintf("unexpected latestRoundData length %d", len(outputs))))
	}

	answer, _ := outputs[1].(*big.Int)
	updatedAt, _ := outputs[3].(*big.Int)
	if answer == nil || answer.Sign() <= 0 {
		return domain.OraclePrice{}, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext("non-positive answer from "+agg.Address().Hex()))
	}

	raw, overflow := uint256.FromBig(answer)
	if overflow {
		return domain.OraclePrice{}, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext("answer exceeds 256 bits"))
	}
	value, err := domain.ScaleTo18(raw, dec)
	if err != nil {
		return domain.OraclePrice{}, err
	}

	var observed time.Time
	if updatedAt != nil && updatedAt.IsInt64() {
		observed = time.Unix(updatedAt.Int64(), 0)
	}

	price := domain.OraclePrice{
		Token:      token,
		Value:      value,
		ObservedAt: observed,
		Source:     domain.SourceChainlink,
	}
	f.prices.Set(ctx, token, price, f.ttl)

	span.SetAttributes(attribute.String("price_usd", price.USD().StringFixed(4)))
	f.logger.Debug(ctx, "chainlink price",
		"token", token.Hex(),
		"usd", price.USD().StringFixed(4),
		"updated_at", observed)

	return price, nil
}

func (f *Feed) feedDecimals(ctx context.Context, token common.Address, agg *evm.Contract) (uint8, error) {
	if d, ok := f.decimals.Get(ctx, token); ok {
		return d, nil
	}
	outputs, err := agg.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := outputs[0].(uint8)
	if !ok {
		return 0, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext(fmt.Sprintf("unexpected decimals type %T", outputs[0])))
	}
	f.decimals.Set(ctx, token, d, 0)
	return d, nil
}

// Close releases cached state.
func (f *Feed) Close() {
	f.prices.Close()
	f.decimals.Close()
}
