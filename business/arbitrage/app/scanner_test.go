package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

type stubBlocks struct {
	ch  chan *blockchainDomain.Block
	wei uint64
}

func (s *stubBlocks) SubscribeBlocks(context.Context) (<-chan *blockchainDomain.Block, error) {
	return s.ch, nil
}

func (s *stubBlocks) GetGasPrice(context.Context) (*blockchainDomain.GasPrice, error) {
	return blockchainDomain.NewGasPrice(uint256.NewInt(s.wei)), nil
}

type stubRoutes struct {
	routes  []routingDomain.Route
	settled []routingDomain.RouteID
}

func (s *stubRoutes) Snapshot() []routingDomain.Route { return s.routes }

func (s *stubRoutes) InitiateSettlement(_ context.Context, id routingDomain.RouteID, _ *uint256.Int) (routingDomain.SettlementResult, error) {
	s.settled = append(s.settled, id)
	return routingDomain.SettlementResult{Success: true, GasEstimate: 420_000}, nil
}

type recordingReporter struct {
	mu      sync.Mutex
	results []*domain.ScanResult
	got     chan struct{}
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{got: make(chan struct{}, 8)}
}

func (r *recordingReporter) Start(context.Context) error { return nil }

func (r *recordingReporter) Report(res *domain.ScanResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recordingReporter) UpdateConnectionStatus(string, bool, time.Duration) {}

func (r *recordingReporter) Stop() error { return nil }

// gasCapturingEvaluator records the gas price each evaluation saw.
type gasCapturingEvaluator struct {
	stubEvaluator
	mu   sync.Mutex
	seen []string
}

func (g *gasCapturingEvaluator) EvaluateRoute(ctx context.Context, route routingDomain.Route, borrow *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	g.mu.Lock()
	g.seen = append(g.seen, params.GasPriceWei.Dec())
	g.mu.Unlock()
	return g.stubEvaluator.EvaluateRoute(ctx, route, borrow, params)
}

func newTestScanner(t *testing.T, eval RouteEvaluator, routes *stubRoutes, blocks *stubBlocks, rep Reporter, simulate bool) *Scanner {
	t.Helper()
	return NewScanner(blocks, routes, newTestOptimizer(t, eval), rep, ScannerConfig{
		BorrowAmount: wei("10000000000000000000"),
		Params:       defaultParams(),
		Simulate:     simulate,
	}, logger.NewDiscard())
}

func TestScanner_ScanBlockUsesBlockGasPrice(t *testing.T) {
	eval := &gasCapturingEvaluator{stubEvaluator: stubEvaluator{results: map[routingDomain.RouteID]*domain.Breakdown{
		0: breakdown(5, false),
		1: breakdown(90, true),
	}}}
	routes := &stubRoutes{routes: fourRoutes()[:2]}
	blocks := &stubBlocks{wei: 33_000_000_000}

	s := newTestScanner(t, eval, routes, blocks, newRecordingReporter(), true)
	res, err := s.ScanBlock(context.Background(), &blockchainDomain.Block{Number: 100})
	if err != nil {
		t.Fatalf("ScanBlock: %v", err)
	}

	if len(eval.seen) != 2 {
		t.Fatalf("evaluations = %d, want one per route", len(eval.seen))
	}
	for _, g := range eval.seen {
		if g != "33000000000" {
			t.Errorf("evaluated with gas %s, want 33 gwei", g)
		}
	}
	if !res.HasOpportunity() || res.Best.RouteID != 1 {
		t.Errorf("best = %+v, want profitable route 1", res.Best)
	}
	if res.Settlement == nil || !res.Settlement.Success {
		t.Errorf("expected simulated settlement, got %+v", res.Settlement)
	}
	if len(routes.settled) != 1 || routes.settled[0] != 1 {
		t.Errorf("settled = %v, want [1]", routes.settled)
	}
	if s.LastBlock() != 100 {
		t.Errorf("last block = %d", s.LastBlock())
	}
}

func TestScanner_NoSettlementWhenNotProfitable(t *testing.T) {
	eval := &stubEvaluator{results: map[routingDomain.RouteID]*domain.Breakdown{0: breakdown(5, false)}}
	routes := &stubRoutes{routes: fourRoutes()[:1]}

	s := newTestScanner(t, eval, routes, &stubBlocks{wei: 1}, newRecordingReporter(), true)
	res, err := s.ScanBlock(context.Background(), &blockchainDomain.Block{Number: 1})
	if err != nil {
		t.Fatalf("ScanBlock: %v", err)
	}
	if res.Settlement != nil || len(routes.settled) != 0 {
		t.Error("unprofitable best route must not be settled")
	}
}

func TestScanner_SettlesProfitableRouteBehindHigherUnqualified(t *testing.T) {
	eval := &stubEvaluator{results: map[routingDomain.RouteID]*domain.Breakdown{
		0: breakdown(40, false),
		1: breakdown(30, true),
	}}
	routes := &stubRoutes{routes: fourRoutes()[:2]}

	s := newTestScanner(t, eval, routes, &stubBlocks{wei: 1}, newRecordingReporter(), true)
	res, err := s.ScanBlock(context.Background(), &blockchainDomain.Block{Number: 7})
	if err != nil {
		t.Fatalf("ScanBlock: %v", err)
	}
	if !res.HasOpportunity() || res.Best.RouteID != 1 {
		t.Errorf("best = %+v, want profitable route 1", res.Best)
	}
	if len(routes.settled) != 1 || routes.settled[0] != 1 {
		t.Errorf("settled = %v, want [1]", routes.settled)
	}
}

func TestScanner_EmptyRegistry(t *testing.T) {
	s := newTestScanner(t, &stubEvaluator{}, &stubRoutes{}, &stubBlocks{wei: 1}, newRecordingReporter(), false)
	res, err := s.ScanBlock(context.Background(), &blockchainDomain.Block{Number: 5})
	if err != nil {
		t.Fatalf("ScanBlock: %v", err)
	}
	if res.Best != nil || res.HasOpportunity() {
		t.Errorf("expected no best route, got %+v", res.Best)
	}
}

func TestScanner_ApplyRecommendation(t *testing.T) {
	s := newTestScanner(t, &stubEvaluator{}, &stubRoutes{}, &stubBlocks{}, newRecordingReporter(), false)

	s.ApplyRecommendation(250, 0)
	got := s.Config().Params
	if got.MinProfitBps != 250 || got.GasUnitsEstimate != 500_000 {
		t.Errorf("params = %+v, want minProfitBps 250 and unchanged gas units", got)
	}

	s.ApplyRecommendation(0, 420_000)
	if got := s.Config().Params; got.MinProfitBps != 250 || got.GasUnitsEstimate != 420_000 {
		t.Errorf("params = %+v", got)
	}
}

func TestScanner_StartReportsEachBlock(t *testing.T) {
	eval := &stubEvaluator{results: map[routingDomain.RouteID]*domain.Breakdown{0: breakdown(5, true)}}
	blocks := &stubBlocks{ch: make(chan *blockchainDomain.Block, 2), wei: 1}
	rep := newRecordingReporter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestScanner(t, eval, &stubRoutes{routes: fourRoutes()[:1]}, blocks, rep, false)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	blocks.ch <- &blockchainDomain.Block{Number: 1}
	blocks.ch <- &blockchainDomain.Block{Number: 2}
	for i := 0; i < 2; i++ {
		select {
		case <-rep.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for report %d", i+1)
		}
	}

	rep.mu.Lock()
	defer rep.mu.Unlock()
	if rep.results[0].BlockNumber != 1 || rep.results[1].BlockNumber != 2 {
		t.Errorf("reports out of order: %d, %d", rep.results[0].BlockNumber, rep.results[1].BlockNumber)
	}
}
