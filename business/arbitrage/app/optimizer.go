package app

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const meterName = "github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"

// optimizerMetrics holds OTEL metric instruments.
type optimizerMetrics struct {
	routesEvaluated  metric.Int64Counter
	evaluationErrors metric.Int64Counter
	routesProfitable metric.Int64Counter
	bestNetProfitETH metric.Float64Gauge
}

// Optimizer selects the most profitable route of a candidate set.
type Optimizer struct {
	evaluator RouteEvaluator
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	metrics   *optimizerMetrics
}

// NewOptimizer creates an Optimizer over evaluator.
func NewOptimizer(evaluator RouteEvaluator, log logger.LoggerInterface) (*Optimizer, error) {
	o := &Optimizer{
		evaluator: evaluator,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return o, nil
}

func (o *Optimizer) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	o.metrics = &optimizerMetrics{}

	o.metrics.routesEvaluated, err = meter.Int64Counter(
		"routes_evaluated_total",
		metric.WithDescription("Total route evaluations attempted"),
		metric.WithUnit("{route}"),
	)
	if err != nil {
		return err
	}

	o.metrics.evaluationErrors, err = meter.Int64Counter(
		"route_evaluation_failures_total",
		metric.WithDescription("Route evaluations that failed, by error code"),
		metric.WithUnit("{route}"),
	)
	if err != nil {
		return err
	}

	o.metrics.routesProfitable, err = meter.Int64Counter(
		"routes_profitable_total",
		metric.WithDescription("Route evaluations that cleared every profit floor"),
		metric.WithUnit("{route}"),
	)
	if err != nil {
		return err
	}

	o.metrics.bestNetProfitETH, err = meter.Float64Gauge(
		"best_route_net_profit_eth",
		metric.WithDescription("Net profit of the best route of the last scan, in borrow-asset units"),
	)
	return err
}

// FindOptimalRoute evaluates routes in order and returns the one with the
// strictly highest net profit; ties keep the earliest. A route that fails
// evaluation is skipped. With no profitable route the result has profit 0
// and IsProfitable false.
func (o *Optimizer) FindOptimalRoute(ctx context.Context, borrow *uint256.Int, routes []routingDomain.Route, params domain.CostParams) (domain.OptimalRoute, error) {
	if len(routes) == 0 {
		return domain.OptimalRoute{}, apperror.New(apperror.CodeNoRoutesAvailable)
	}

	ctx, span := o.tracer.Start(ctx, "arbitrage.find_optimal_route",
		trace.WithAttributes(attribute.Int("routes", len(routes))))
	defer span.End()

	breakdowns, _ := o.evaluateAll(ctx, borrow, routes, params)
	best := o.selectBest(ctx, routes, breakdowns)

	span.SetAttributes(
		attribute.Int("best_index", best.Index),
		attribute.Bool("profitable", best.IsProfitable),
	)
	return best, nil
}

// AnalyzeAllRoutes evaluates every route and returns results aligned with
// routes. A failed route is recorded as profit 0, not profitable.
func (o *Optimizer) AnalyzeAllRoutes(ctx context.Context, borrow *uint256.Int, routes []routingDomain.Route, params domain.CostParams) domain.RouteAnalysis {
	ctx, span := o.tracer.Start(ctx, "arbitrage.analyze_all_routes",
		trace.WithAttributes(attribute.Int("routes", len(routes))))
	defer span.End()

	breakdowns, errs := o.evaluateAll(ctx, borrow, routes, params)
	return o.analysisOf(ctx, breakdowns, errs)
}

// Scan is AnalyzeAllRoutes and FindOptimalRoute over a single evaluation
// of each route.
func (o *Optimizer) Scan(ctx context.Context, borrow *uint256.Int, routes []routingDomain.Route, params domain.CostParams) (domain.RouteAnalysis, domain.OptimalRoute, error) {
	if len(routes) == 0 {
		return domain.RouteAnalysis{}, domain.OptimalRoute{}, apperror.New(apperror.CodeNoRoutesAvailable)
	}

	ctx, span := o.tracer.Start(ctx, "arbitrage.scan_routes",
		trace.WithAttributes(attribute.Int("routes", len(routes))))
	defer span.End()

	breakdowns, errs := o.evaluateAll(ctx, borrow, routes, params)
	analysis := o.analysisOf(ctx, breakdowns, errs)
	best := o.selectBest(ctx, routes, breakdowns)

	span.SetAttributes(
		attribute.Int("best_index", best.Index),
		attribute.Bool("profitable", best.IsProfitable),
		attribute.Int("failed", analysis.Failures()),
	)
	return analysis, best, nil
}

func (o *Optimizer) evaluateAll(ctx context.Context, borrow *uint256.Int, routes []routingDomain.Route, params domain.CostParams) ([]*domain.Breakdown, []error) {
	breakdowns := make([]*domain.Breakdown, len(routes))
	errs := make([]error, len(routes))
	for i, route := range routes {
		breakdowns[i], errs[i] = o.evaluate(ctx, route, borrow, params)
	}
	return breakdowns, errs
}

// selectBest scans in order keeping the strict maximum net profit among
// routes whose verdict is profitable. With no qualifying route the result
// stays at index 0 with zero profit.
func (o *Optimizer) selectBest(ctx context.Context, routes []routingDomain.Route, breakdowns []*domain.Breakdown) domain.OptimalRoute {
	best := domain.OptimalRoute{
		Index:         0,
		RouteID:       routes[0].ID,
		HighestProfit: fixedpoint.Zero(),
	}

	for i, b := range breakdowns {
		if b == nil || !b.IsProfitable {
			continue
		}
		if b.NetProfit.Gt(best.HighestProfit) {
			best = domain.OptimalRoute{
				Index:         i,
				RouteID:       routes[i].ID,
				HighestProfit: b.NetProfit.Clone(),
				IsProfitable:  true,
				Breakdown:     b,
			}
		}
	}

	o.metrics.bestNetProfitETH.Record(ctx, fixedpoint.ToDecimal(best.HighestProfit, fixedpoint.Decimals).InexactFloat64())
	return best
}

func (o *Optimizer) analysisOf(ctx context.Context, breakdowns []*domain.Breakdown, errs []error) domain.RouteAnalysis {
	analysis := domain.RouteAnalysis{
		Profits:    make([]*uint256.Int, len(breakdowns)),
		Profitable: make([]bool, len(breakdowns)),
		Errors:     errs,
	}

	for i, b := range breakdowns {
		if b == nil {
			analysis.Profits[i] = fixedpoint.Zero()
			continue
		}
		analysis.Profits[i] = b.NetProfit.Clone()
		analysis.Profitable[i] = b.IsProfitable
	}

	if failed := analysis.Failures(); failed > 0 {
		o.logger.Warn(ctx, "routes skipped during analysis",
			"failed", failed,
			"total", len(breakdowns))
	}
	return analysis
}

func (o *Optimizer) evaluate(ctx context.Context, route routingDomain.Route, borrow *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	o.metrics.routesEvaluated.Add(ctx, 1)

	b, err := o.evaluator.EvaluateRoute(ctx, route, borrow, params)
	if err != nil {
		code := apperror.GetCode(err)
		o.metrics.evaluationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(code))))
		o.logger.Debug(ctx, "route evaluation failed",
			"route_id", route.ID,
			"code", code,
			"error", err)
		return nil, err
	}
	if b == nil {
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithContext(fmt.Sprintf("route %d produced no breakdown", route.ID)))
	}

	if b.IsProfitable {
		o.metrics.routesProfitable.Add(ctx, 1)
	}
	return b, nil
}
