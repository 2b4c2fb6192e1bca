package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "arbitrage-analyzer" {
		t.Errorf("app.name = %q", cfg.App.Name)
	}
	if len(cfg.Tokens) != 4 {
		t.Fatalf("tokens = %d, want 4", len(cfg.Tokens))
	}
	if weth, ok := cfg.TokenBySymbol("WETH"); !ok || weth.Decimals != 18 || weth.BinanceSymbol != "ETHUSDT" {
		t.Errorf("WETH = %+v, %v", weth, ok)
	}
	if usdc, _ := cfg.TokenBySymbol("USDC"); !usdc.Pegged || usdc.Decimals != 6 {
		t.Errorf("USDC = %+v", usdc)
	}
	if len(cfg.Routes) != 4 {
		t.Errorf("routes = %d, want 4", len(cfg.Routes))
	}
	if cfg.Profitability.FlashLoanPremiumBps != 9 {
		t.Errorf("flash_loan_premium_bps = %d, want 9", cfg.Profitability.FlashLoanPremiumBps)
	}

	borrow, err := cfg.Profitability.BorrowAmountWei()
	if err != nil || borrow.Dec() != "10000000000000000000" {
		t.Errorf("BorrowAmountWei = %v, %v", borrow, err)
	}
	if cfg.Analytics.MaxSamples != 1000 {
		t.Errorf("analytics.max_samples = %d, want 1000", cfg.Analytics.MaxSamples)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  log_level: debug
tokens:
  - symbol: WETH
    address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
    decimals: 18
  - symbol: USDC
    address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    decimals: 6
routes:
  - path: [WETH, USDC, WETH]
    venue_a: uniswap_v3
    venue_b: sushiswap
    min_profit: "0.01"
profitability:
  borrow_amount: "2.5"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARB_MIN_PROFIT_BPS", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.App.LogLevel)
	}
	if len(cfg.Tokens) != 2 || len(cfg.Routes) != 1 {
		t.Fatalf("tokens=%d routes=%d", len(cfg.Tokens), len(cfg.Routes))
	}
	if cfg.Routes[0].MinProfit != "0.01" {
		t.Errorf("min_profit = %q", cfg.Routes[0].MinProfit)
	}
	if cfg.Profitability.MinProfitBps != 25 {
		t.Errorf("min_profit_bps = %d, want 25 from env", cfg.Profitability.MinProfitBps)
	}
	borrow, _ := cfg.Profitability.BorrowAmountWei()
	if borrow.Dec() != "2500000000000000000" {
		t.Errorf("borrow = %s", borrow.Dec())
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base := func(t *testing.T) *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad_token_address", func(c *Config) { c.Tokens[0].Address = "0x123" }, "tokens[0].address"},
		{"duplicate_symbol", func(c *Config) { c.Tokens[1].Symbol = "WETH" }, "duplicate token symbol"},
		{"unknown_route_token", func(c *Config) { c.Routes[0].Path = []string{"WETH", "PEPE", "WETH"} }, "unknown token"},
		{"bps_too_large", func(c *Config) { c.Profitability.BuilderTipBps = 10_001 }, "builder_tip_bps"},
		{"bad_borrow", func(c *Config) { c.Profitability.BorrowAmount = "lots" }, "borrow_amount"},
		{"postgres_without_dsn", func(c *Config) { c.Analytics.Store = StorePostgres }, "postgres.dsn"},
		{"unknown_store", func(c *Config) { c.Analytics.Store = "s3" }, "unknown analytics.store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLive(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateLive(); err == nil {
		t.Error("expected error without RPC URLs")
	}
	cfg.Ethereum.WebSocketURL = "wss://node"
	cfg.Ethereum.HTTPURL = "https://node"
	if err := cfg.ValidateLive(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.Settlement.Simulate = true
	if err := cfg.ValidateLive(); err == nil {
		t.Error("expected error when simulating without executor")
	}
}

func TestVenuesConfig_RouterAddress(t *testing.T) {
	v := VenuesConfig{
		UniswapV2: RouterConfig{RouterAddress: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"},
	}
	if _, ok := v.RouterAddress(VenueUniswapV2); !ok {
		t.Error("expected uniswap_v2 router configured")
	}
	if _, ok := v.RouterAddress(VenueSushiSwap); ok {
		t.Error("expected sushiswap router missing")
	}
	if _, ok := v.RouterAddress("balancer"); ok {
		t.Error("expected unknown venue missing")
	}
}

func TestResolveToken(t *testing.T) {
	cfg := &Config{Tokens: []TokenConfig{{Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"}}}

	addr, err := cfg.ResolveToken("WETH")
	if err != nil || addr.Hex() != "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2" {
		t.Errorf("ResolveToken(WETH) = %s, %v", addr.Hex(), err)
	}
	if _, err := cfg.ResolveToken("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"); err != nil {
		t.Errorf("unexpected error for hex address: %v", err)
	}
	if _, err := cfg.ResolveToken("PEPE"); err == nil {
		t.Error("expected error for unknown symbol")
	}
}
