// Package redis publishes parameter recommendations to Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "arbitrage:recommendation"

// RecommendationStore keeps the latest recommendation under a single key.
type RecommendationStore struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
}

var _ app.RecommendationStore = (*RecommendationStore)(nil)

// NewRecommendationStore creates a store. ttl 0 keeps the value until overwritten.
func NewRecommendationStore(client goredis.UniversalClient, key string, ttl time.Duration) *RecommendationStore {
	if key == "" {
		key = DefaultKey
	}
	return &RecommendationStore{client: client, key: key, ttl: ttl}
}

// NewClient creates a Redis client from connection settings.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type recommendationJSON struct {
	MinProfitBps     uint64    `json:"min_profit_bps"`
	MaxSlippageBps   uint64    `json:"max_slippage_bps"`
	DeadlineSeconds  uint64    `json:"deadline_seconds"`
	GasUnitsEstimate uint64    `json:"gas_units_estimate"`
	ConfidenceBps    uint64    `json:"confidence_bps"`
	Reasoning        string    `json:"reasoning"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Publish overwrites the stored recommendation.
func (s *RecommendationStore) Publish(ctx context.Context, rec domain.ParameterRecommendation) error {
	payload, err := json.Marshal(recommendationJSON(rec))
	if err != nil {
		return apperror.Wrap(err, apperror.CodeRecommendationStoreError, "encode recommendation")
	}
	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		return apperror.Wrap(err, apperror.CodeRecommendationStoreError, "set "+s.key)
	}
	return nil
}

// Latest returns the stored recommendation, or false when none is stored.
func (s *RecommendationStore) Latest(ctx context.Context) (domain.ParameterRecommendation, bool, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.ParameterRecommendation{}, false, nil
	}
	if err != nil {
		return domain.ParameterRecommendation{}, false, apperror.Wrap(err, apperror.CodeRecommendationStoreError, "get "+s.key)
	}

	var rec recommendationJSON
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.ParameterRecommendation{}, false, apperror.Wrap(err, apperror.CodeRecommendationStoreError, "decode recommendation")
	}
	return domain.ParameterRecommendation(rec), true, nil
}

// Ping checks connectivity.
func (s *RecommendationStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperror.Wrap(err, apperror.CodeRecommendationStoreError, "ping redis")
	}
	return nil
}

// Close closes the underlying client.
func (s *RecommendationStore) Close() error {
	return s.client.Close()
}
