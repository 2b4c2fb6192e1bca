package router

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
)

var (
	routerAddr = common.HexToAddress("0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F")
	weth       = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc       = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

// cpCaller prices hops as amountIn * rate, like a pool with infinite depth.
type cpCaller struct {
	abi    abi.ABI
	rate   int64
	revert bool
	path   []common.Address
}

func (c *cpCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if c.revert {
		return nil, errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY")
	}
	method := c.abi.Methods["getAmountsOut"]
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	amountIn := args[0].(*big.Int)
	c.path = args[1].([]common.Address)
	out := new(big.Int).Mul(amountIn, big.NewInt(c.rate))
	return method.Outputs.Pack([]*big.Int{amountIn, out})
}

func newCaller(t *testing.T, rate int64) *cpCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(RouterV2ABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return &cpCaller{abi: parsed, rate: rate}
}

func TestQuoter_Quote(t *testing.T) {
	caller := newCaller(t, 2000)
	q, err := NewQuoter(caller, "sushiswap", routerAddr)
	if err != nil {
		t.Fatalf("NewQuoter: %v", err)
	}

	quote, err := q.Quote(context.Background(), weth, usdc, uint256.NewInt(3))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.AmountOut.Uint64() != 6000 {
		t.Errorf("amountOut = %s, want 6000", quote.AmountOut.Dec())
	}
	if quote.Venue != "sushiswap" || quote.FeeTier != 3000 {
		t.Errorf("quote = %+v", quote)
	}
	if len(caller.path) != 2 || caller.path[0] != weth || caller.path[1] != usdc {
		t.Errorf("router path = %v", caller.path)
	}
}

func TestQuoter_Revert(t *testing.T) {
	caller := newCaller(t, 1)
	caller.revert = true
	q, _ := NewQuoter(caller, "uniswap_v2", routerAddr)

	if _, err := q.Quote(context.Background(), weth, usdc, uint256.NewInt(1)); apperror.GetCode(err) != apperror.CodeContractCallFailed {
		t.Errorf("expected CONTRACT_CALL_FAILED, got %v", err)
	}
}
