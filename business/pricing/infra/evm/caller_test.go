package evm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
)

const decimalsABI = `[{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}]`

type callerFunc func(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)

func (f callerFunc) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return f(ctx, msg, block)
}

func newBreaker() *circuitbreaker.CircuitBreaker[[]byte] {
	return circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("test"))
}

func TestContract_Call(t *testing.T) {
	addr := common.HexToAddress("0x1")
	var c *Contract
	caller := callerFunc(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		if *msg.To != addr {
			t.Errorf("called %s, want %s", msg.To.Hex(), addr.Hex())
		}
		return c.ABI().Methods["decimals"].Outputs.Pack(uint8(6))
	})

	var err error
	c, err = NewContract(caller, addr, decimalsABI, newBreaker())
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}

	out, err := c.Call(context.Background(), "decimals")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := out[0].(uint8); got != 6 {
		t.Errorf("decimals = %d, want 6", got)
	}
}

func TestContract_CallErrors(t *testing.T) {
	failing := callerFunc(func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return nil, errors.New("execution reverted")
	})
	c, _ := NewContract(failing, common.HexToAddress("0x1"), decimalsABI, newBreaker())
	if _, err := c.Call(context.Background(), "decimals"); apperror.GetCode(err) != apperror.CodeContractCallFailed {
		t.Errorf("expected CONTRACT_CALL_FAILED, got %v", err)
	}

	garbage := callerFunc(func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return []byte{0x01}, nil
	})
	c, _ = NewContract(garbage, common.HexToAddress("0x1"), decimalsABI, newBreaker())
	if _, err := c.Call(context.Background(), "decimals"); apperror.GetCode(err) != apperror.CodeContractCallFailed {
		t.Errorf("expected CONTRACT_CALL_FAILED on bad output, got %v", err)
	}

	c, _ = NewContract(nil, common.HexToAddress("0x1"), decimalsABI, newBreaker())
	if _, err := c.Call(context.Background(), "decimals"); apperror.GetCode(err) != apperror.CodeEthereumConnectionFailed {
		t.Errorf("expected ETHEREUM_CONNECTION_FAILED without a client, got %v", err)
	}
}
