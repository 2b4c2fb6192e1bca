// Package memory implements an in-process trade store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
)

// TradeStore keeps trades in insertion order.
type TradeStore struct {
	mu     sync.RWMutex
	trades []domain.TradeData
}

var _ app.TradeStore = (*TradeStore)(nil)

// NewTradeStore creates a store seeded with trades.
func NewTradeStore(trades ...domain.TradeData) *TradeStore {
	return &TradeStore{trades: slices.Clone(trades)}
}

// Record appends a trade.
func (s *TradeStore) Record(_ context.Context, t domain.TradeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
	return nil
}

// List returns up to limit trades, most recent first.
func (s *TradeStore) List(_ context.Context, limit int) ([]domain.TradeData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.trades)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.TradeData, 0, n)
	for i := len(s.trades) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.trades[i])
	}
	return out, nil
}

// Ping always succeeds.
func (s *TradeStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored trades.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades)
}
