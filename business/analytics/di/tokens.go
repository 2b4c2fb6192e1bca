// Package di contains dependency injection tokens for the analytics context.
package di

import (
	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	AnalyticsService = di.NewToken[*app.AnalyticsService]("analytics.AnalyticsService")
	TradeStore       = di.NewToken[app.TradeStore]("analytics.TradeStore")
)

// Private dependency tokens - internal to analytics module
var (
	Analyzer            = di.NewToken[*app.Analyzer]("analytics:analyzer")
	RecommendationStore = di.NewToken[app.RecommendationStore]("analytics:recommendationStore")
)

func GetAnalyticsService(c di.ServiceRegistry) *app.AnalyticsService {
	return di.GetToken(c, AnalyticsService)
}

func GetTradeStore(c di.ServiceRegistry) app.TradeStore {
	return di.GetToken(c, TradeStore)
}

func GetAnalyzer(c di.ServiceRegistry) *app.Analyzer {
	return di.GetToken(c, Analyzer)
}

// GetRecommendationStore returns nil when publishing is disabled.
func GetRecommendationStore(c di.ServiceRegistry) app.RecommendationStore {
	store, _ := c.Get(RecommendationStore.Name()).(app.RecommendationStore)
	return store
}
