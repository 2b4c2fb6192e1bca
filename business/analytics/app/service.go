package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apm"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const tracerName = "github.com/fd1az/arbitrage-analyzer/business/analytics/app"

// AnalyticsService runs analyses over the trade store and publishes
// recommendations.
type AnalyticsService struct {
	analyzer *Analyzer
	trades   TradeStore
	recs     RecommendationStore
	tracer   apm.Tracer
	logger   logger.LoggerInterface
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. recs may be nil, in
// which case recommendations are not published.
func NewAnalyticsService(analyzer *Analyzer, trades TradeStore, recs RecommendationStore, log logger.LoggerInterface) *AnalyticsService {
	return &AnalyticsService{
		analyzer: analyzer,
		trades:   trades,
		recs:     recs,
		tracer:   apm.NewTracer(tracerName),
		logger:   log,
		now:      time.Now,
	}
}

// Analyzer returns the underlying analyzer.
func (s *AnalyticsService) Analyzer() *Analyzer {
	return s.analyzer
}

// Trades returns the trade store.
func (s *AnalyticsService) Trades() TradeStore {
	return s.trades
}

// Record stores an executed trade.
func (s *AnalyticsService) Record(ctx context.Context, trade domain.TradeData) error {
	return s.trades.Record(ctx, trade)
}

// Analyze loads the most recent trades from the store and analyzes them.
func (s *AnalyticsService) Analyze(ctx context.Context) (domain.AnalysisReport, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "analytics.analyze")
	defer span.End()

	trades, err := s.trades.List(ctx, s.analyzer.MaxSamples())
	if err != nil {
		span.NoticeError(err)
		return domain.AnalysisReport{}, err
	}
	return s.AnalyzeTrades(ctx, trades)
}

// AnalyzeTrades analyzes trades and publishes the resulting recommendation.
func (s *AnalyticsService) AnalyzeTrades(ctx context.Context, trades []domain.TradeData) (domain.AnalysisReport, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "analytics.analyze_trades")
	defer span.End()
	span.SetAttribute(attribute.Int("trades", len(trades)))

	analysis, err := s.analyzer.AnalyzeHistoricalTrades(trades)
	if err != nil {
		span.NoticeError(err)
		return domain.AnalysisReport{}, err
	}
	rec, err := s.analyzer.GenerateParameterRecommendations(analysis, trades)
	if err != nil {
		span.NoticeError(err)
		return domain.AnalysisReport{}, err
	}
	rec.GeneratedAt = s.now()

	gas, err := s.analyzer.AnalyzeGasEfficiency(trades)
	if err != nil {
		span.NoticeError(err)
		return domain.AnalysisReport{}, err
	}

	span.SetAttributes(
		attribute.Int64("min_profit_bps", int64(rec.MinProfitBps)),
		attribute.Int64("confidence_bps", int64(rec.ConfidenceBps)),
	)

	if s.recs != nil {
		if err := s.recs.Publish(ctx, rec); err != nil {
			// The report is still useful without a published copy.
			s.logger.Warn(ctx, "failed to publish recommendation", "error", err)
		}
	}

	s.logger.Info(ctx, "trade analysis complete",
		"trades", analysis.TotalTrades,
		"mean_profit", analysis.MeanProfit.Dec(),
		"success_rate_bps", analysis.SuccessRateBps,
		"min_profit_bps", rec.MinProfitBps,
		"gas_units_estimate", rec.GasUnitsEstimate,
		"confidence_bps", rec.ConfidenceBps)

	return domain.AnalysisReport{Analysis: analysis, Recommendation: rec, Gas: gas}, nil
}

// Backtest replays the stored trades over the parameter grid and returns the
// results with the index of the best cell.
func (s *AnalyticsService) Backtest(ctx context.Context, minProfitBpsGrid, maxSlippageBpsGrid []uint64) ([]domain.BacktestResult, int, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "analytics.backtest")
	defer span.End()

	trades, err := s.trades.List(ctx, s.analyzer.MaxSamples())
	if err != nil {
		span.NoticeError(err)
		return nil, -1, err
	}
	results, err := BacktestParameters(trades, minProfitBpsGrid, maxSlippageBpsGrid)
	if err != nil {
		span.NoticeError(err)
		return nil, -1, err
	}
	return results, BestBacktest(results), nil
}

// LatestRecommendation returns the last published recommendation, if any.
func (s *AnalyticsService) LatestRecommendation(ctx context.Context) (domain.ParameterRecommendation, bool, error) {
	if s.recs == nil {
		return domain.ParameterRecommendation{}, false, nil
	}
	return s.recs.Latest(ctx)
}
