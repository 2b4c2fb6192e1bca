package memory

import (
	"context"
	"testing"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
)

func TestTradeStore_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore(domain.TradeData{RouteID: 1, Profit: uint256.NewInt(1)})
	for id := uint64(2); id <= 4; id++ {
		if err := s.Record(ctx, domain.TradeData{RouteID: id, Profit: uint256.NewInt(id)}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, _ := s.List(ctx, 0)
	if len(all) != 4 || all[0].RouteID != 4 || all[3].RouteID != 1 {
		t.Errorf("List(0) = %+v, want routes 4..1", all)
	}

	limited, _ := s.List(ctx, 2)
	if len(limited) != 2 || limited[0].RouteID != 4 || limited[1].RouteID != 3 {
		t.Errorf("List(2) = %+v, want routes 4, 3", limited)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}
