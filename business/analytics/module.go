// Package analytics implements the analytics bounded context: historical
// trade statistics, parameter recommendations and what-if sweeps.
package analytics

import (
	"context"
	"time"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	analyticsDI "github.com/fd1az/arbitrage-analyzer/business/analytics/di"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/infra/csv"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/infra/memory"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/infra/postgres"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/infra/redis"
	arbitrageDI "github.com/fd1az/arbitrage-analyzer/business/arbitrage/di"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

const connectTimeout = 10 * time.Second

// Module implements the analytics bounded context.
type Module struct{}

// RegisterServices registers all analytics services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register TradeStore (public - health checks ping it)
	di.RegisterToken(c, analyticsDI.TradeStore, func(sr di.ServiceRegistry) app.TradeStore {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		store, err := newTradeStore(cfg, log)
		if err != nil {
			panic("failed to create trade store: " + err.Error())
		}
		return store
	})

	// Register RecommendationStore (private - nil when redis is disabled)
	di.RegisterToken(c, analyticsDI.RecommendationStore, func(sr di.ServiceRegistry) app.RecommendationStore {
		cfg := sr.Get("config").(*config.Config)
		if !cfg.Redis.Enabled {
			return nil
		}
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return redis.NewRecommendationStore(client, cfg.Redis.Key, cfg.Redis.TTL)
	})

	di.RegisterToken(c, analyticsDI.Analyzer, func(sr di.ServiceRegistry) *app.Analyzer {
		cfg := sr.Get("config").(*config.Config)
		return app.NewAnalyzer(cfg.Analytics.MaxSamples)
	})

	// Register AnalyticsService (public - used by the CLI commands)
	di.RegisterToken(c, analyticsDI.AnalyticsService, func(sr di.ServiceRegistry) *app.AnalyticsService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewAnalyticsService(
			analyticsDI.GetAnalyzer(sr),
			analyticsDI.GetTradeStore(sr),
			analyticsDI.GetRecommendationStore(sr),
			log,
		)
	})

	return nil
}

// Startup applies the last published recommendation to the scanner. Stores
// are only touched when a recommendation store is configured.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	recs := analyticsDI.GetRecommendationStore(mono.Services())
	if recs == nil {
		mono.Logger().Info(ctx, "analytics module started", "store", mono.Config().Analytics.Store)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rec, ok, err := recs.Latest(ctx)
	if err != nil {
		mono.Logger().Warn(ctx, "failed to load recommendation", "error", err)
		return nil
	}
	if ok {
		arbitrageDI.GetScanner(mono.Services()).ApplyRecommendation(rec.MinProfitBps, rec.GasUnitsEstimate)
		mono.Logger().Info(ctx, "applied parameter recommendation",
			"min_profit_bps", rec.MinProfitBps,
			"gas_units_estimate", rec.GasUnitsEstimate,
			"confidence_bps", rec.ConfidenceBps,
			"generated_at", rec.GeneratedAt)
	}

	mono.Logger().Info(ctx, "analytics module started", "store", mono.Config().Analytics.Store)
	return nil
}

func newTradeStore(cfg *config.Config, log logger.LoggerInterface) (app.TradeStore, error) {
	switch cfg.Analytics.Store {
	case config.StoreCSV:
		return csv.NewTradeStore(cfg.Analytics.CSVPath), nil
	case config.StorePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		store := postgres.NewTradeStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info(ctx, "postgres trade store ready", "max_conns", cfg.Postgres.MaxConns)
		return store, nil
	default:
		return memory.NewTradeStore(), nil
	}
}
