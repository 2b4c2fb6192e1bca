package app

import (
	"context"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
)

// TradeStore persists executed trades.
type TradeStore interface {
	// Record appends a trade.
	Record(ctx context.Context, trade domain.TradeData) error

	// List returns up to limit trades, most recent first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.TradeData, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// RecommendationStore publishes the latest parameter recommendation for the
// scanner to pick up.
type RecommendationStore interface {
	Publish(ctx context.Context, rec domain.ParameterRecommendation) error

	// Latest returns the last published recommendation and false when none exists.
	Latest(ctx context.Context) (domain.ParameterRecommendation, bool, error)
}
