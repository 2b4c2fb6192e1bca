package settlement

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const (
	wethHex     = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	executorHex = "0x00000000000000000000000000000000000000E1"
)

type fakeClient struct {
	out     []byte
	callErr error
	gas     uint64
	lastMsg ethereum.CallMsg
}

func (f *fakeClient) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.lastMsg = msg
	return f.out, f.callErr
}

func (f *fakeClient) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gas, nil
}

type revertError struct{ data string }

func (e revertError) Error() string          { return "execution reverted" }
func (e revertError) ErrorData() interface{} { return e.data }

func testConfig() *config.Config {
	return &config.Config{
		Tokens: []config.TokenConfig{{Symbol: "WETH", Address: wethHex, Decimals: 18}},
		Venues: config.VenuesConfig{
			UniswapV3: config.UniswapV3Config{RouterAddress: "0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"},
		},
		Settlement: config.SettlementConfig{ExecutorAddress: executorHex},
	}
}

func newTestBackend(t *testing.T, client ContractClient) *Backend {
	t.Helper()
	b, err := NewBackend(client, testConfig(), logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

func TestBackend_SupportChecks(t *testing.T) {
	b := newTestBackend(t, nil)

	if !b.IsTokenSupported(common.HexToAddress(wethHex)) {
		t.Error("WETH should be supported")
	}
	if b.IsTokenSupported(common.HexToAddress("0x01")) {
		t.Error("unknown token should not be supported")
	}
	if !b.VenueRouterConfigured(domain.VenueUniswapV3) {
		t.Error("uniswap v3 should be configured")
	}
	if b.VenueRouterConfigured(domain.VenueSushiSwap) {
		t.Error("sushiswap has no router in this config")
	}
}

func TestBackend_InitiateSettlementSuccess(t *testing.T) {
	client := &fakeClient{gas: 420_000}
	b := newTestBackend(t, client)

	out, err := b.executorABI.Methods["initiateArbitrage"].Outputs.Pack(true)
	if err != nil {
		t.Fatal(err)
	}
	client.out = out

	res, err := b.InitiateSettlement(context.Background(), common.HexToAddress(wethHex), uint256.NewInt(1e18), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.GasEstimate != 420_000 {
		t.Errorf("result = %+v", res)
	}
	if *client.lastMsg.To != common.HexToAddress(executorHex) {
		t.Errorf("call sent to %s", client.lastMsg.To.Hex())
	}

	args, err := b.executorABI.Methods["initiateArbitrage"].Inputs.Unpack(client.lastMsg.Data[4:])
	if err != nil {
		t.Fatalf("unpack calldata: %v", err)
	}
	if args[2].(*big.Int).Int64() != 3 {
		t.Errorf("routeId = %v, want 3", args[2])
	}
}

func TestBackend_InitiateSettlementReverted(t *testing.T) {
	// Error(string) "no profit"
	reason := "0x08c379a0" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000009" +
		"6e6f2070726f6669740000000000000000000000000000000000000000000000"
	b := newTestBackend(t, &fakeClient{callErr: revertError{data: reason}})

	res, err := b.InitiateSettlement(context.Background(), common.HexToAddress(wethHex), uint256.NewInt(1), 0)
	if err != nil {
		t.Fatalf("revert should not be an error: %v", err)
	}
	if res.Success || res.Reason != "no profit" {
		t.Errorf("result = %+v, want failed with reason 'no profit'", res)
	}
}

func TestBackend_InitiateSettlementErrors(t *testing.T) {
	b := newTestBackend(t, &fakeClient{callErr: errors.New("connection refused")})
	_, err := b.InitiateSettlement(context.Background(), common.HexToAddress(wethHex), uint256.NewInt(1), 0)
	if apperror.GetCode(err) != apperror.CodeSettlementFailed {
		t.Errorf("expected SETTLEMENT_FAILED, got %v", err)
	}

	offline := newTestBackend(t, nil)
	_, err = offline.InitiateSettlement(context.Background(), common.HexToAddress(wethHex), uint256.NewInt(1), 0)
	if apperror.GetCode(err) != apperror.CodeSettlementFailed {
		t.Errorf("expected SETTLEMENT_FAILED without client, got %v", err)
	}
}
