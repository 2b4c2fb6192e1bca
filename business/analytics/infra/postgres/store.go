// Package postgres implements the trade store on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

// Querier is the subset of pgxpool.Pool used by the store.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// NewPool creates a connection pool and verifies it.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS arbitrage_trades (
		id                     BIGSERIAL PRIMARY KEY,
		route_id               BIGINT NOT NULL DEFAULT 0,
		profit_wei             NUMERIC(78, 0) NOT NULL,
		gas_used               BIGINT NOT NULL,
		slippage_bps           BIGINT NOT NULL,
		execution_time_seconds BIGINT NOT NULL,
		executed_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// TradeStore implements app.TradeStore using PostgreSQL.
type TradeStore struct {
	db Querier
}

// Compile-time interface check.
var _ app.TradeStore = (*TradeStore)(nil)

// NewTradeStore creates a new TradeStore.
func NewTradeStore(db Querier) *TradeStore {
	return &TradeStore{db: db}
}

// Migrate creates the trades table if it does not exist.
func (s *TradeStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "create arbitrage_trades")
	}
	return nil
}

// Record inserts a trade.
func (s *TradeStore) Record(ctx context.Context, t domain.TradeData) error {
	query := `
		INSERT INTO arbitrage_trades (
			route_id, profit_wei, gas_used, slippage_bps, execution_time_seconds, executed_at
		) VALUES ($1, $2::numeric, $3, $4, $5, $6)
	`

	profit := "0"
	if t.Profit != nil {
		profit = t.Profit.Dec()
	}
	executedAt := t.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, query,
		int64(t.RouteID),
		profit,
		int64(t.GasUsed),
		int64(t.SlippageBps),
		int64(t.ExecutionTimeSeconds),
		executedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "insert trade")
	}
	return nil
}

// List returns up to limit trades, most recent first.
func (s *TradeStore) List(ctx context.Context, limit int) ([]domain.TradeData, error) {
	query := `
		SELECT route_id, profit_wei::text, gas_used, slippage_bps, execution_time_seconds, executed_at
		FROM arbitrage_trades
		ORDER BY executed_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "list trades")
	}
	defer rows.Close()

	var trades []domain.TradeData
	for rows.Next() {
		var (
			routeID, gas, slippage, execSeconds int64
			profit                              string
			executedAt                          time.Time
		)
		if err := rows.Scan(&routeID, &profit, &gas, &slippage, &execSeconds, &executedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "scan trade")
		}

		p, err := uint256.FromDecimal(profit)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "invalid profit "+profit)
		}
		trades = append(trades, domain.TradeData{
			Profit:               p,
			GasUsed:              uint64(gas),
			SlippageBps:          uint64(slippage),
			ExecutionTimeSeconds: uint64(execSeconds),
			RouteID:              uint64(routeID),
			ExecutedAt:           executedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "iterate trades")
	}
	return trades, nil
}

// Ping checks connectivity.
func (s *TradeStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "ping postgres")
	}
	return nil
}
