package erc20

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

type decimalsCaller struct {
	decimals uint8
	calls    atomic.Int32
	err      error
}

func (c *decimalsCaller) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	parsed, err := abi.JSON(strings.NewReader(DecimalsABI))
	if err != nil {
		return nil, err
	}
	return parsed.Methods["decimals"].Outputs.Pack(c.decimals)
}

func TestMetadata_ConfiguredFirst(t *testing.T) {
	caller := &decimalsCaller{decimals: 9}
	m := NewMetadata(caller, map[common.Address]uint8{weth: 18})
	defer m.Close()

	d, err := m.Decimals(context.Background(), weth)
	if err != nil {
		t.Fatalf("Decimals: %v", err)
	}
	if d != 18 {
		t.Errorf("Decimals = %d, want 18", d)
	}
	if caller.calls.Load() != 0 {
		t.Errorf("configured token hit the chain %d times", caller.calls.Load())
	}
}

func TestMetadata_OnChainCached(t *testing.T) {
	caller := &decimalsCaller{decimals: 6}
	m := NewMetadata(caller, nil)
	defer m.Close()

	for i := 0; i < 3; i++ {
		d, err := m.Decimals(context.Background(), usdc)
		if err != nil {
			t.Fatalf("Decimals: %v", err)
		}
		if d != 6 {
			t.Errorf("Decimals = %d, want 6", d)
		}
	}
	if got := caller.calls.Load(); got != 1 {
		t.Errorf("chain calls = %d, want 1", got)
	}
}

func TestMetadata_Errors(t *testing.T) {
	m := NewMetadata(nil, nil)
	if _, err := m.Decimals(context.Background(), usdc); apperror.GetCode(err) != apperror.CodeUnsupportedToken {
		t.Errorf("expected UNSUPPORTED_TOKEN, got %v", err)
	}

	failing := NewMetadata(&decimalsCaller{err: errors.New("execution reverted")}, nil)
	if _, err := failing.Decimals(context.Background(), usdc); apperror.GetCode(err) != apperror.CodeContractCallFailed {
		t.Errorf("expected CONTRACT_CALL_FAILED, got %v", err)
	}
}
