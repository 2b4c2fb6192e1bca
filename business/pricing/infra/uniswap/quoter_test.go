package uniswap

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

var (
	quoterAddr = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	weth       = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc       = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

// tierCaller answers quoteExactInputSingle with a fixed output per fee tier.
type tierCaller struct {
	t       *testing.T
	abi     abi.ABI
	outputs map[int64]int64 // fee -> amountOut; missing tiers revert
}

func (c *tierCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method := c.abi.Methods["quoteExactInputSingle"]
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		c.t.Fatalf("unpack input: %v", err)
	}
	params := abi.ConvertType(args[0], new(singleHopQuery)).(*singleHopQuery)

	out, ok := c.outputs[params.Fee.Int64()]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return method.Outputs.Pack(big.NewInt(out), big.NewInt(0), uint32(1), big.NewInt(120_000))
}

func newTestQuoter(t *testing.T, outputs map[int64]int64) *Quoter {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	q, err := NewQuoter(&tierCaller{t: t, abi: parsed, outputs: outputs}, quoterAddr, DefaultFeeTiers, logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewQuoter: %v", err)
	}
	return q
}

func TestQuoter_PicksBestFeeTier(t *testing.T) {
	q := newTestQuoter(t, map[int64]int64{
		FeeTier005: 2_000_000_000,
		FeeTier030: 2_010_000_000,
	})

	quote, err := q.Quote(context.Background(), weth, usdc, uint256.NewInt(1_000_000_000_000_000_000))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.AmountOut.Uint64() != 2_010_000_000 {
		t.Errorf("amountOut = %s, want 2010000000", quote.AmountOut.Dec())
	}
	if quote.FeeTier != FeeTier030 || quote.GasEstimate != 120_000 || quote.Venue != venueName {
		t.Errorf("quote = %+v", quote)
	}
}

func TestQuoter_NoPool(t *testing.T) {
	q := newTestQuoter(t, nil)
	_, err := q.Quote(context.Background(), weth, usdc, uint256.NewInt(1))
	if apperror.GetCode(err) != apperror.CodeUniswapPoolNotFound {
		t.Errorf("expected UNISWAP_POOL_NOT_FOUND, got %v", err)
	}
}

func TestQuoter_ZeroOutputIsNoQuote(t *testing.T) {
	q := newTestQuoter(t, map[int64]int64{FeeTier005: 0})
	if _, err := q.Quote(context.Background(), weth, usdc, uint256.NewInt(1)); err == nil {
		t.Error("expected an error for zero output")
	}
}

func TestNewQuoter_RejectsBadFeeTier(t *testing.T) {
	if _, err := NewQuoter(nil, quoterAddr, []int{3000, 0}, logger.NewDiscard()); err == nil {
		t.Error("expected error for zero fee tier")
	}
}

func TestDecodeQuote(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 70)

	tests := []struct {
		name    string
		outputs []any
		wantGas uint64
		wantErr bool
	}{
		{"ok", []any{big.NewInt(5), big.NewInt(0), uint32(1), big.NewInt(90_000)}, 90_000, false},
		{"gas_overflow_is_zero", []any{big.NewInt(5), big.NewInt(0), uint32(1), tooBig}, 0, false},
		{"short", []any{big.NewInt(5)}, 0, true},
		{"wrong_type", []any{"5", big.NewInt(0), uint32(1), big.NewInt(1)}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeQuote(FeeTier030, tt.outputs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.amountOut.Int64() != 5 || res.gasEstimate != tt.wantGas || res.feeTier != FeeTier030 {
				t.Errorf("got %+v", res)
			}
		})
	}
}
