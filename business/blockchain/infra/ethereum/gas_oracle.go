package ethereum

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/cache"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const gasPriceKey = "suggested"

// GasPriceClient is the RPC surface the gas oracle needs.
type GasPriceClient interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// GasOracleConfig controls caching and sanity bounds.
type GasOracleConfig struct {
	// CacheTTL is how long a fetched price is reused, about one block.
	// Zero fetches on every call.
	CacheTTL time.Duration
	// MaxGasPrice clamps spikes; nil disables the cap.
	MaxGasPrice *uint256.Int
	// StaleAfter bounds how old the last good price may be when the RPC
	// is failing. Zero disables the fallback.
	StaleAfter time.Duration
}

func DefaultGasOracleConfig(maxGasPriceGwei uint64) GasOracleConfig {
	cfg := GasOracleConfig{
		CacheTTL:   12 * time.Second,
		StaleAfter: time.Minute,
	}
	if maxGasPriceGwei > 0 {
		cfg.MaxGasPrice = domain.GweiToWei(maxGasPriceGwei)
	}
	return cfg
}

type gasMetrics struct {
	fetches metric.Int64Counter
	gwei    metric.Float64Gauge
	lookups metric.Int64Counter
}

func newGasMetrics() (*gasMetrics, error) {
	meter := otel.Meter(meterName)
	fetches, err := meter.Int64Counter("gas_price_fetches_total",
		metric.WithDescription("Gas price RPC calls by outcome"), metric.WithUnit("{fetch}"))
	if err != nil {
		return nil, err
	}
	gwei, err := meter.Float64Gauge("gas_price_gwei",
		metric.WithDescription("Gas price used for the latest scan"), metric.WithUnit("gwei"))
	if err != nil {
		return nil, err
	}
	lookups, err := meter.Int64Counter("gas_price_cache_lookups_total",
		metric.WithDescription("Gas price cache lookups by result"), metric.WithUnit("{lookup}"))
	if err != nil {
		return nil, err
	}
	return &gasMetrics{fetches: fetches, gwei: gwei, lookups: lookups}, nil
}

// GasOracle implements app.GasOracle over eth_gasPrice. Prices are cached
// per block and clamped to MaxGasPrice. When the RPC fails the last good
// price is served until it is older than StaleAfter.
type GasOracle struct {
	cfg    GasOracleConfig
	client GasPriceClient
	log    logger.LoggerInterface

	prices *cache.Cache[string, *domain.GasPrice]
	cb     *circuitbreaker.CircuitBreaker[*big.Int]

	mu       sync.Mutex
	lastGood *domain.GasPrice

	tracer  trace.Tracer
	metrics *gasMetrics
	now     func() time.Time
}

// NewGasOracle creates a gas oracle. client may be nil when no RPC endpoint
// is configured; GetGasPrice then fails.
func NewGasOracle(client GasPriceClient, cfg GasOracleConfig, log logger.LoggerInterface) (*GasOracle, error) {
	m, err := newGasMetrics()
	if err != nil {
		return nil, apperror.Internal(apperror.CodeInternalError, "gas oracle metrics", err)
	}
	return &GasOracle{
		cfg:     cfg,
		client:  client,
		log:     log,
		prices:  cache.New[string, *domain.GasPrice](5 * time.Minute),
		cb:      circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer:  otel.Tracer(tracerName),
		metrics: m,
		now:     time.Now,
	}, nil
}

func (g *GasOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price")
	defer span.End()

	if price, ok := g.prices.Get(ctx, gasPriceKey); ok {
		g.metrics.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", true)))
		return price, nil
	}
	g.metrics.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", false)))

	if g.client == nil {
		err := apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("gas oracle has no rpc client"))
		span.RecordError(err)
		return nil, err
	}

	price, err := g.fetch(ctx)
	g.metrics.fetches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	if err != nil {
		span.RecordError(err)
		if stale, ok := g.fallback(); ok {
			span.AddEvent("stale_price_served")
			g.log.Warn(ctx, "gas price fetch failed, using last good price",
				"age", g.now().Sub(stale.Timestamp), "error", err)
			return stale, nil
		}
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	if g.cfg.CacheTTL > 0 {
		g.prices.Set(ctx, gasPriceKey, price, g.cfg.CacheTTL)
	}
	g.mu.Lock()
	g.lastGood = price
	g.mu.Unlock()

	g.metrics.gwei.Record(ctx, price.Gwei())
	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	return price, nil
}

func (g *GasOracle) fetch(ctx context.Context) (*domain.GasPrice, error) {
	raw, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, apperror.External(apperror.CodeEthereumRPCError, "eth_gasPrice", err)
	}
	wei, err := fixedpoint.FromBig(raw)
	if err != nil {
		return nil, err
	}
	if ceiling := g.cfg.MaxGasPrice; ceiling != nil && wei.Gt(ceiling) {
		g.log.Warn(ctx, "gas price above cap, clamping", "wei", wei.Dec(), "max", ceiling.Dec())
		wei = ceiling.Clone()
	}
	return &domain.GasPrice{Wei: wei, Timestamp: g.now()}, nil
}

func (g *GasOracle) fallback() (*domain.GasPrice, bool) {
	if g.cfg.StaleAfter <= 0 {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastGood == nil || g.now().Sub(g.lastGood.Timestamp) > g.cfg.StaleAfter {
		return nil, false
	}
	return g.lastGood, true
}

// Close releases the price cache.
func (g *GasOracle) Close() error {
	g.prices.Close()
	return nil
}
