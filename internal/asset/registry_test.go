package asset

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		addr common.Address
		want uint8
	}{
		{AddrWETHEthereum, 18},
		{AddrUSDCEthereum, 6},
		{AddrDAIEthereum, 18},
		{AddrWBTCEthereum, 8},
	}
	for _, tt := range tests {
		got, ok := r.Decimals(ChainIDEthereum, tt.addr)
		if !ok || got != tt.want {
			t.Errorf("Decimals(%s) = %d, %v; want %d", tt.addr.Hex(), got, ok, tt.want)
		}
	}

	if _, ok := r.Decimals(ChainIDEthereum, common.HexToAddress("0x01")); ok {
		t.Error("expected unknown token to be missing")
	}
}

func TestRegistry_TryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.TryRegister(WETH); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.TryRegister(WETH); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegistry_BySymbol(t *testing.T) {
	baseUSDC := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	r := NewRegistry()
	r.Register(MustNewToken(ChainIDEthereum, AddrUSDCEthereum, "USDC", "USD Coin", 6))
	r.Register(MustNewToken(ChainIDBase, baseUSDC, "USDC", "USD Coin", 6))

	a, ok := r.BySymbol(ChainIDBase, "USDC")
	if !ok || a.Address() != baseUSDC {
		t.Errorf("BySymbol(Base, USDC) = %v, %v", a, ok)
	}
	if _, ok := r.BySymbol(ChainIDOptimism, "USDC"); ok {
		t.Error("expected no USDC on Optimism")
	}

	clash := MustNewToken(ChainIDEthereum, common.HexToAddress("0x02"), "USDC", "", 6)
	if err := r.TryRegister(clash); err == nil {
		t.Error("expected symbol clash on the same chain to fail")
	}
	if clash.Name() != "USDC" {
		t.Errorf("Name = %q, want symbol fallback", clash.Name())
	}
}

func TestRegistry_Tokens(t *testing.T) {
	r := DefaultRegistry()
	var symbols []string
	for _, a := range r.Tokens(ChainIDEthereum) {
		symbols = append(symbols, a.Symbol())
	}
	want := "DAI,USDC,USDT,WBTC,WETH"
	if got := strings.Join(symbols, ","); got != want {
		t.Errorf("Tokens = %s, want %s", got, want)
	}
	if _, ok := r.GetToken(ChainIDEthereum, common.Address{}); ok {
		t.Error("zero address must not resolve to a token")
	}
}

func TestAssetID_Kinds(t *testing.T) {
	if !IDEthereumETH.IsNative() || IDEthereumETH.IsToken() {
		t.Error("ETH should be native")
	}
	if !IDEthereumWETH.IsToken() || IDEthereumWETH.IsNative() {
		t.Error("WETH should be a token")
	}
}

func TestAsset_Format(t *testing.T) {
	tests := []struct {
		asset  *Asset
		amount *uint256.Int
		want   string
	}{
		{USDC, uint256.NewInt(1_500_000), "1.5 USDC"},
		{WBTC, uint256.NewInt(12_345), "0.00012345 WBTC"},
		{ETH, new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18)), "1 ETH"},
		{DAI, nil, "-"},
	}
	for _, tt := range tests {
		if got := tt.asset.Format(tt.amount); got != tt.want {
			t.Errorf("Format = %q, want %q", got, tt.want)
		}
	}
}

func TestRegistry_TokenDecimals(t *testing.T) {
	r := DefaultRegistry()
	r.Register(MustNewToken(ChainIDBase, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), "USDC", "USD Coin", 6))

	got := r.TokenDecimals(ChainIDEthereum)
	if len(got) != 5 {
		t.Fatalf("TokenDecimals = %d tokens, want 5", len(got))
	}
	if got[AddrWBTCEthereum] != 8 || got[AddrUSDCEthereum] != 6 {
		t.Errorf("TokenDecimals = %v", got)
	}
	if len(r.TokenDecimals(ChainIDBase)) != 1 {
		t.Error("expected one Base token")
	}
}
