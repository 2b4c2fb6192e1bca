package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

type fakeTrades struct {
	trades    []domain.TradeData
	listErr   error
	lastLimit int
}

func (f *fakeTrades) Record(_ context.Context, trade domain.TradeData) error {
	f.trades = append(f.trades, trade)
	return nil
}

func (f *fakeTrades) List(_ context.Context, limit int) ([]domain.TradeData, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.trades, nil
}

func (f *fakeTrades) Ping(context.Context) error { return nil }

type fakeRecs struct {
	published  []domain.ParameterRecommendation
	publishErr error
}

func (f *fakeRecs) Publish(_ context.Context, rec domain.ParameterRecommendation) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, rec)
	return nil
}

func (f *fakeRecs) Latest(context.Context) (domain.ParameterRecommendation, bool, error) {
	if len(f.published) == 0 {
		return domain.ParameterRecommendation{}, false, nil
	}
	return f.published[len(f.published)-1], true, nil
}

func newTestService(trades *fakeTrades, recs RecommendationStore) *AnalyticsService {
	s := NewAnalyticsService(NewAnalyzer(100), trades, recs, logger.NewDiscard())
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestAnalyticsService_AnalyzePublishes(t *testing.T) {
	trades := &fakeTrades{trades: fiveTrades()}
	recs := &fakeRecs{}
	s := newTestService(trades, recs)

	report, err := s.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trades.lastLimit != 100 {
		t.Errorf("list limit = %d, want 100", trades.lastLimit)
	}
	if report.Analysis.TotalTrades != 5 {
		t.Errorf("total trades = %d, want 5", report.Analysis.TotalTrades)
	}
	if report.Recommendation.MinProfitBps != 236 {
		t.Errorf("min profit bps = %d, want 236", report.Recommendation.MinProfitBps)
	}
	if report.Gas.TotalTrades != 5 {
		t.Errorf("gas total trades = %d, want 5", report.Gas.TotalTrades)
	}

	latest, ok, err := s.LatestRecommendation(context.Background())
	if err != nil || !ok {
		t.Fatalf("latest = %v, %v", ok, err)
	}
	if latest.MinProfitBps != 236 || latest.GeneratedAt.IsZero() {
		t.Errorf("latest = %+v", latest)
	}
}

func TestAnalyticsService_PublishFailureKeepsReport(t *testing.T) {
	s := newTestService(&fakeTrades{trades: fiveTrades()}, &fakeRecs{publishErr: errors.New("redis down")})

	if _, err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyticsService_Errors(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := newTestService(&fakeTrades{}, nil)
		_, err := s.Analyze(context.Background())
		if code := apperror.GetCode(err); code != apperror.CodeInsufficientData {
			t.Errorf("code = %s, want %s", code, apperror.CodeInsufficientData)
		}
	})

	t.Run("list failure", func(t *testing.T) {
		listErr := apperror.New(apperror.CodeTradeStoreError)
		s := newTestService(&fakeTrades{listErr: listErr}, nil)
		if _, err := s.Analyze(context.Background()); !errors.Is(err, listErr) {
			t.Errorf("err = %v, want %v", err, listErr)
		}
		if _, _, err := s.Backtest(context.Background(), []uint64{10}, []uint64{50}); !errors.Is(err, listErr) {
			t.Errorf("backtest err = %v, want %v", err, listErr)
		}
	})
}

func TestAnalyticsService_NoRecommendationStore(t *testing.T) {
	s := newTestService(&fakeTrades{trades: fiveTrades()}, nil)

	if _, err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := s.LatestRecommendation(context.Background()); ok || err != nil {
		t.Errorf("latest = %v, %v; want false, nil", ok, err)
	}
}

func TestAnalyticsService_RecordAndBacktest(t *testing.T) {
	trades := &fakeTrades{}
	s := newTestService(trades, nil)
	for _, tr := range fiveTrades() {
		if err := s.Record(context.Background(), tr); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	results, best, err := s.Backtest(context.Background(), []uint64{10, 50}, []uint64{50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if best < 0 || best >= len(results) {
		t.Errorf("best = %d", best)
	}
}
