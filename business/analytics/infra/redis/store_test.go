package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RecommendationStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRecommendationStore(client, "", ttl), server
}

func TestRecommendationStore_PublishLatest(t *testing.T) {
	store, server := newTestStore(t, 0)
	ctx := context.Background()

	_, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := domain.ParameterRecommendation{
		MinProfitBps:     236,
		MaxSlippageBps:   50,
		DeadlineSeconds:  60,
		GasUnitsEstimate: 345_000,
		ConfidenceBps:    6228,
		Reasoning:        "Good success rate",
		GeneratedAt:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Publish(ctx, rec))
	assert.True(t, server.Exists(DefaultKey))

	got, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestRecommendationStore_TTL(t *testing.T) {
	store, server := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, domain.ParameterRecommendation{MinProfitBps: 80}))
	assert.Equal(t, time.Minute, server.TTL(DefaultKey))

	server.FastForward(2 * time.Minute)
	_, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecommendationStore_CorruptPayload(t *testing.T) {
	store, server := newTestStore(t, 0)
	require.NoError(t, server.Set(DefaultKey, "{not json"))

	_, _, err := store.Latest(context.Background())
	assert.Equal(t, apperror.CodeRecommendationStoreError, apperror.GetCode(err))
}

func TestRecommendationStore_Unreachable(t *testing.T) {
	store, server := newTestStore(t, 0)
	server.Close()

	err := store.Publish(context.Background(), domain.ParameterRecommendation{})
	assert.Equal(t, apperror.CodeRecommendationStoreError, apperror.GetCode(err))
	assert.Error(t, store.Ping(context.Background()))
}
