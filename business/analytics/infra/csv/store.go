// Package csv implements a file-backed trade store.
//
// Columns: profit_wei,gas_used,slippage_bps,execution_time_seconds and the
// optional route_id,executed_at (RFC 3339). A profit containing a decimal
// point is read as a human amount of an 18-decimal asset.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/app"
	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

var header = []string{"profit_wei", "gas_used", "slippage_bps", "execution_time_seconds", "route_id", "executed_at"}

// TradeStore reads and appends trades in a CSV file.
type TradeStore struct {
	mu   sync.Mutex
	path string
}

var _ app.TradeStore = (*TradeStore)(nil)

// NewTradeStore creates a store over path. The file is created on first Record.
func NewTradeStore(path string) *TradeStore {
	return &TradeStore{path: path}
}

// Record appends a trade, writing the header when the file is new.
func (s *TradeStore) Record(_ context.Context, t domain.TradeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "open "+s.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "stat "+s.path)
	}

	w := stdcsv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return apperror.Wrap(err, apperror.CodeTradeStoreError, "write header")
		}
	}

	profit := "0"
	if t.Profit != nil {
		profit = t.Profit.Dec()
	}
	executedAt := ""
	if !t.ExecutedAt.IsZero() {
		executedAt = t.ExecutedAt.UTC().Format(time.RFC3339)
	}
	record := []string{
		profit,
		strconv.FormatUint(t.GasUsed, 10),
		strconv.FormatUint(t.SlippageBps, 10),
		strconv.FormatUint(t.ExecutionTimeSeconds, 10),
		strconv.FormatUint(t.RouteID, 10),
		executedAt,
	}
	if err := w.Write(record); err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "write trade")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "flush trades")
	}
	return nil
}

// List returns up to limit trades, last rows first.
func (s *TradeStore) List(_ context.Context, limit int) ([]domain.TradeData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "open "+s.path)
	}
	defer f.Close()

	trades, err := ReadTrades(f)
	if err != nil {
		return nil, err
	}

	n := len(trades)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.TradeData, 0, n)
	for i := len(trades) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, trades[i])
	}
	return out, nil
}

// Ping checks the file is readable or creatable.
func (s *TradeStore) Ping(context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperror.Wrap(err, apperror.CodeTradeStoreError, "stat "+s.path)
	}
	return nil
}

// ReadTrades parses trades from r. The header row is required.
func ReadTrades(r io.Reader) ([]domain.TradeData, error) {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, "read header")
	}
	if len(head) < 4 || strings.TrimSpace(head[0]) != header[0] {
		return nil, apperror.New(apperror.CodeTradeStoreError,
			apperror.WithContext(fmt.Sprintf("unexpected header %v", head)))
	}

	var trades []domain.TradeData
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeTradeStoreError, fmt.Sprintf("line %d", line))
		}
		t, err := parseRecord(rec)
		if err != nil {
			return nil, apperror.New(apperror.CodeTradeStoreError,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("line %d", line)))
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseRecord(rec []string) (domain.TradeData, error) {
	if len(rec) < 4 {
		return domain.TradeData{}, fmt.Errorf("expected at least 4 fields, got %d", len(rec))
	}

	profit, err := parseProfit(strings.TrimSpace(rec[0]))
	if err != nil {
		return domain.TradeData{}, err
	}

	var nums [3]uint64
	for i := range nums {
		if nums[i], err = strconv.ParseUint(strings.TrimSpace(rec[i+1]), 10, 64); err != nil {
			return domain.TradeData{}, fmt.Errorf("%s: %w", header[i+1], err)
		}
	}

	t := domain.TradeData{
		Profit:               profit,
		GasUsed:              nums[0],
		SlippageBps:          nums[1],
		ExecutionTimeSeconds: nums[2],
	}
	if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
		if t.RouteID, err = strconv.ParseUint(strings.TrimSpace(rec[4]), 10, 64); err != nil {
			return domain.TradeData{}, fmt.Errorf("route_id: %w", err)
		}
	}
	if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
		if t.ExecutedAt, err = time.Parse(time.RFC3339, strings.TrimSpace(rec[5])); err != nil {
			return domain.TradeData{}, fmt.Errorf("executed_at: %w", err)
		}
	}
	return t, nil
}

func parseProfit(s string) (*uint256.Int, error) {
	if strings.Contains(s, ".") {
		return fixedpoint.ParseAmount(s)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("profit_wei %q: %w", s, err)
	}
	return v, nil
}
