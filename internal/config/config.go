// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/viper"

	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// Venue names accepted in routes and venue sections.
const (
	VenueUniswapV3 = "uniswap_v3"
	VenueUniswapV2 = "uniswap_v2"
	VenueSushiSwap = "sushiswap"
)

// Trade store backends.
const (
	StoreMemory   = "memory"
	StoreCSV      = "csv"
	StorePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Ethereum      EthereumConfig      `mapstructure:"ethereum"`
	Venues        VenuesConfig        `mapstructure:"venues"`
	Tokens        []TokenConfig       `mapstructure:"tokens"`
	Routes        []RouteConfig       `mapstructure:"routes"`
	Profitability ProfitabilityConfig `mapstructure:"profitability"`
	Oracle        OracleConfig        `mapstructure:"oracle"`
	Binance       BinanceConfig       `mapstructure:"binance"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Settlement    SettlementConfig    `mapstructure:"settlement"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
	Health        HealthConfig        `mapstructure:"health"`
	TUIMode       bool                `mapstructure:"-"` // Set at runtime, not from config file
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	WebSocketURL    string        `mapstructure:"websocket_url"`
	HTTPURL         string        `mapstructure:"http_url"`
	ChainID         uint64        `mapstructure:"chain_id"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	MaxGasPriceGwei uint64        `mapstructure:"max_gas_price_gwei"`
}

// VenuesConfig holds the router/quoter addresses per swap venue.
type VenuesConfig struct {
	UniswapV3 UniswapV3Config `mapstructure:"uniswap_v3"`
	UniswapV2 RouterConfig    `mapstructure:"uniswap_v2"`
	SushiSwap RouterConfig    `mapstructure:"sushiswap"`
}

// UniswapV3Config holds Uniswap V3 contract addresses.
type UniswapV3Config struct {
	QuoterAddress string `mapstructure:"quoter_address"`
	RouterAddress string `mapstructure:"router_address"`
	FeeTiers      []int  `mapstructure:"fee_tiers"`
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *UniswapV3Config) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// RouterAddressHex returns the router address as common.Address.
func (c *UniswapV3Config) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// RouterConfig holds a constant-product router address.
type RouterConfig struct {
	RouterAddress string `mapstructure:"router_address"`
}

// RouterAddressHex returns the router address as common.Address.
func (c *RouterConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// RouterAddress returns the configured router for a venue name and whether
// one is set.
func (c *VenuesConfig) RouterAddress(venue string) (common.Address, bool) {
	var raw string
	switch venue {
	case VenueUniswapV3:
		raw = c.UniswapV3.RouterAddress
	case VenueUniswapV2:
		raw = c.UniswapV2.RouterAddress
	case VenueSushiSwap:
		raw = c.SushiSwap.RouterAddress
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(raw)
	return addr, addr != (common.Address{})
}

// TokenConfig describes a token the settlement backend supports.
type TokenConfig struct {
	Symbol        string `mapstructure:"symbol"`
	Name          string `mapstructure:"name"`
	Address       string `mapstructure:"address"`
	Decimals      uint8  `mapstructure:"decimals"`
	ChainlinkFeed string `mapstructure:"chainlink_feed"`
	BinanceSymbol string `mapstructure:"binance_symbol"`
	Pegged        bool   `mapstructure:"pegged"` // USD-pegged; secondary oracle reports 1.0
}

// AddressHex returns the token address as common.Address.
func (t *TokenConfig) AddressHex() common.Address {
	return common.HexToAddress(t.Address)
}

// RouteConfig is a route registered at startup. Path entries are token
// symbols from the tokens section or hex addresses.
type RouteConfig struct {
	Path      []string `mapstructure:"path"`
	VenueA    string   `mapstructure:"venue_a"`
	VenueB    string   `mapstructure:"venue_b"`
	MinProfit string   `mapstructure:"min_profit"`
}

// MinProfitWei parses MinProfit into base units; empty means zero.
func (r *RouteConfig) MinProfitWei() (*uint256.Int, error) {
	return parseOptional(r.MinProfit)
}

// ProfitabilityConfig holds cost parameters and borrow amounts. Amounts are
// human decimals of the borrow asset ("0.05" = 0.05 WETH).
type ProfitabilityConfig struct {
	FlashLoanPremiumBps uint64 `mapstructure:"flash_loan_premium_bps"`
	GasUnitsEstimate    uint64 `mapstructure:"gas_units_estimate"`
	BuilderTipBps       uint64 `mapstructure:"builder_tip_bps"`
	SafetyBufferBps     uint64 `mapstructure:"safety_buffer_bps"`
	MinProfitBps        uint64 `mapstructure:"min_profit_bps"`
	MinProfitAbsolute   string `mapstructure:"min_profit_absolute"`
	BorrowAsset         string `mapstructure:"borrow_asset"`
	BorrowAmount        string `mapstructure:"borrow_amount"`
	BorrowMin           string `mapstructure:"borrow_min"`
	BorrowMax           string `mapstructure:"borrow_max"`
	BorrowStep          string `mapstructure:"borrow_step"`
	MaxSweepSteps       uint64 `mapstructure:"max_sweep_steps"`
}

// MinProfitAbsoluteWei parses MinProfitAbsolute into base units.
func (c *ProfitabilityConfig) MinProfitAbsoluteWei() (*uint256.Int, error) {
	return parseOptional(c.MinProfitAbsolute)
}

// BorrowAmountWei parses BorrowAmount into base units.
func (c *ProfitabilityConfig) BorrowAmountWei() (*uint256.Int, error) {
	return fixedpoint.ParseAmount(c.BorrowAmount)
}

// BorrowRangeWei parses the borrow sweep range.
func (c *ProfitabilityConfig) BorrowRangeWei() (min, max, step *uint256.Int, err error) {
	if min, err = fixedpoint.ParseAmount(c.BorrowMin); err != nil {
		return nil, nil, nil, err
	}
	if max, err = fixedpoint.ParseAmount(c.BorrowMax); err != nil {
		return nil, nil, nil, err
	}
	if step, err = fixedpoint.ParseAmount(c.BorrowStep); err != nil {
		return nil, nil, nil, err
	}
	return min, max, step, nil
}

// OracleConfig holds price validation settings.
type OracleConfig struct {
	Enabled                  bool          `mapstructure:"enabled"`
	MaxPriceAge              time.Duration `mapstructure:"max_price_age"`
	MaxDeviationBps          uint64        `mapstructure:"max_deviation_bps"`
	SecondaryEnabled         bool          `mapstructure:"secondary_enabled"`
	SecondaryMaxDeviationBps uint64        `mapstructure:"secondary_max_deviation_bps"`
	CacheTTL                 time.Duration `mapstructure:"cache_ttl"`
}

// BinanceConfig holds the Binance REST API settings used by the secondary oracle.
type BinanceConfig struct {
	BaseURL            string        `mapstructure:"base_url"` // https://api.binance.com or https://api.binance.us for US
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// AnalyticsConfig holds historical analysis settings.
type AnalyticsConfig struct {
	MaxSamples         int      `mapstructure:"max_samples"`
	Store              string   `mapstructure:"store"`
	CSVPath            string   `mapstructure:"csv_path"`
	GasPricesGwei      []uint64 `mapstructure:"gas_prices_gwei"`
	PremiumsBps        []uint64 `mapstructure:"premiums_bps"`
	BaseProfit         string   `mapstructure:"base_profit"`
	MinProfitBpsGrid   []uint64 `mapstructure:"min_profit_bps_grid"`
	MaxSlippageBpsGrid []uint64 `mapstructure:"max_slippage_bps_grid"`
}

// PostgresConfig holds the trade store connection settings.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig holds the recommendation store settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SettlementConfig holds the flash-loan executor contract settings.
type SettlementConfig struct {
	ExecutorAddress string `mapstructure:"executor_address"`
	CallerAddress   string `mapstructure:"caller_address"`
	Simulate        bool   `mapstructure:"simulate"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.websocket_url", "ARB_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "ARB_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Venues
	v.BindEnv("venues.uniswap_v3.quoter_address", "ARB_UNISWAP_QUOTER", "UNISWAP_QUOTER")
	v.BindEnv("venues.uniswap_v3.router_address", "ARB_UNISWAP_ROUTER", "UNISWAP_ROUTER")
	v.BindEnv("venues.uniswap_v2.router_address", "ARB_UNISWAP_V2_ROUTER")
	v.BindEnv("venues.sushiswap.router_address", "ARB_SUSHISWAP_ROUTER")

	// Profitability
	v.BindEnv("profitability.borrow_amount", "ARB_BORROW_AMOUNT")
	v.BindEnv("profitability.min_profit_bps", "ARB_MIN_PROFIT_BPS")
	v.BindEnv("profitability.min_profit_absolute", "ARB_MIN_PROFIT_ABSOLUTE")

	// Stores
	v.BindEnv("postgres.dsn", "ARB_POSTGRES_DSN", "DATABASE_URL")
	v.BindEnv("redis.addr", "ARB_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("redis.password", "ARB_REDIS_PASSWORD", "REDIS_PASSWORD")

	// Settlement
	v.BindEnv("settlement.executor_address", "ARB_EXECUTOR_ADDRESS")
	v.BindEnv("settlement.caller_address", "ARB_CALLER_ADDRESS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "ARB_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
	v.BindEnv("telemetry.trace_provider", "ARB_OTEL_TRACE_PROVIDER")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbitrage-analyzer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.max_reconnects", 0) // infinite
	v.SetDefault("ethereum.initial_backoff", "1s")
	v.SetDefault("ethereum.max_backoff", "30s")
	v.SetDefault("ethereum.max_gas_price_gwei", 500)

	// Mainnet venue defaults
	v.SetDefault("venues.uniswap_v3.quoter_address", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("venues.uniswap_v3.router_address", "0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45")
	v.SetDefault("venues.uniswap_v3.fee_tiers", []int{500, 3000, 10000})
	v.SetDefault("venues.uniswap_v2.router_address", "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	v.SetDefault("venues.sushiswap.router_address", "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F")

	// Mainnet token defaults
	v.SetDefault("tokens", []map[string]any{
		{
			"symbol": "WETH", "name": "Wrapped Ether", "decimals": 18,
			"address":        "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			"chainlink_feed": "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419",
			"binance_symbol": "ETHUSDT",
		},
		{
			"symbol": "USDC", "name": "USD Coin", "decimals": 6, "pegged": true,
			"address":        "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"chainlink_feed": "0x8fFfFfd4AfB6115b954Bd326cbe7B4BA576818f6",
		},
		{
			"symbol": "DAI", "name": "Dai Stablecoin", "decimals": 18, "pegged": true,
			"address":        "0x6B175474E89094C44Da98b954EedeAC495271d0F",
			"chainlink_feed": "0xAed0c38402a5d19df6E4c03F4E2DceD6e29c1ee9",
		},
		{
			"symbol": "WBTC", "name": "Wrapped Bitcoin", "decimals": 8,
			"address":        "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599",
			"chainlink_feed": "0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c",
			"binance_symbol": "BTCUSDT",
		},
	})
	v.SetDefault("routes", []map[string]any{
		{"path": []string{"WETH", "USDC", "WETH"}, "venue_a": VenueUniswapV3, "venue_b": VenueSushiSwap},
		{"path": []string{"WETH", "USDC", "WETH"}, "venue_a": VenueSushiSwap, "venue_b": VenueUniswapV3},
		{"path": []string{"WETH", "DAI", "WETH"}, "venue_a": VenueUniswapV2, "venue_b": VenueUniswapV3},
		{"path": []string{"WETH", "WBTC", "USDC", "WETH"}, "venue_a": VenueUniswapV3, "venue_b": VenueUniswapV2},
	})

	// Profitability defaults
	v.SetDefault("profitability.flash_loan_premium_bps", 9)
	v.SetDefault("profitability.gas_units_estimate", 350000)
	v.SetDefault("profitability.builder_tip_bps", 10)
	v.SetDefault("profitability.safety_buffer_bps", 50)
	v.SetDefault("profitability.min_profit_bps", 10)
	v.SetDefault("profitability.min_profit_absolute", "0.001")
	v.SetDefault("profitability.borrow_asset", "WETH")
	v.SetDefault("profitability.borrow_amount", "10")
	v.SetDefault("profitability.borrow_min", "1")
	v.SetDefault("profitability.borrow_max", "100")
	v.SetDefault("profitability.borrow_step", "1")
	v.SetDefault("profitability.max_sweep_steps", 10000)

	// Oracle defaults
	v.SetDefault("oracle.enabled", true)
	v.SetDefault("oracle.max_price_age", "1h")
	v.SetDefault("oracle.max_deviation_bps", 200)
	v.SetDefault("oracle.secondary_enabled", false)
	v.SetDefault("oracle.secondary_max_deviation_bps", 300)
	v.SetDefault("oracle.cache_ttl", "12s")

	// Binance defaults
	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.rate_limit_per_minute", 1200)
	v.SetDefault("binance.timeout", "5s")

	// Analytics defaults
	v.SetDefault("analytics.max_samples", 1000)
	v.SetDefault("analytics.store", StoreMemory)
	v.SetDefault("analytics.gas_prices_gwei", []uint64{10, 20, 30, 50, 100})
	v.SetDefault("analytics.premiums_bps", []uint64{5, 9, 30})
	v.SetDefault("analytics.base_profit", "0.1")
	v.SetDefault("analytics.min_profit_bps_grid", []uint64{10, 50, 100})
	v.SetDefault("analytics.max_slippage_bps_grid", []uint64{50, 100, 200})

	// Store defaults
	v.SetDefault("postgres.max_conns", 4)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key", "arbitrage:recommendation")
	v.SetDefault("redis.ttl", "24h")

	// Settlement defaults
	v.SetDefault("settlement.simulate", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbitrage-analyzer")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)
}

// Validate checks the configuration structure. It does not require network
// endpoints; see ValidateLive.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.Venues.UniswapV3.QuoterAddress) {
		return fmt.Errorf("invalid venues.uniswap_v3.quoter_address: %s", c.Venues.UniswapV3.QuoterAddress)
	}
	if len(c.Venues.UniswapV3.FeeTiers) == 0 {
		return fmt.Errorf("venues.uniswap_v3.fee_tiers cannot be empty")
	}

	symbols := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Symbol == "" {
			return fmt.Errorf("tokens[%d].symbol is required", i)
		}
		if !common.IsHexAddress(t.Address) || t.AddressHex() == (common.Address{}) {
			return fmt.Errorf("invalid tokens[%d].address: %s", i, t.Address)
		}
		if t.Decimals > 30 {
			return fmt.Errorf("tokens[%d].decimals too large: %d", i, t.Decimals)
		}
		if t.ChainlinkFeed != "" && !common.IsHexAddress(t.ChainlinkFeed) {
			return fmt.Errorf("invalid tokens[%d].chainlink_feed: %s", i, t.ChainlinkFeed)
		}
		if symbols[t.Symbol] {
			return fmt.Errorf("duplicate token symbol: %s", t.Symbol)
		}
		symbols[t.Symbol] = true
	}

	for i, r := range c.Routes {
		if r.VenueA == "" || r.VenueB == "" {
			return fmt.Errorf("routes[%d]: venue_a and venue_b are required", i)
		}
		for _, p := range r.Path {
			if !symbols[p] && !common.IsHexAddress(p) {
				return fmt.Errorf("routes[%d]: unknown token %q", i, p)
			}
		}
		if _, err := r.MinProfitWei(); err != nil {
			return fmt.Errorf("routes[%d].min_profit: %w", i, err)
		}
	}

	p := c.Profitability
	for name, bps := range map[string]uint64{
		"flash_loan_premium_bps": p.FlashLoanPremiumBps,
		"builder_tip_bps":        p.BuilderTipBps,
		"safety_buffer_bps":      p.SafetyBufferBps,
		"min_profit_bps":         p.MinProfitBps,
	} {
		if bps > fixedpoint.BPS {
			return fmt.Errorf("profitability.%s exceeds %d: %d", name, fixedpoint.BPS, bps)
		}
	}
	if _, err := p.BorrowAmountWei(); err != nil {
		return fmt.Errorf("profitability.borrow_amount: %w", err)
	}
	if _, err := p.MinProfitAbsoluteWei(); err != nil {
		return fmt.Errorf("profitability.min_profit_absolute: %w", err)
	}
	if _, _, _, err := p.BorrowRangeWei(); err != nil {
		return fmt.Errorf("profitability borrow range: %w", err)
	}

	if c.Analytics.MaxSamples <= 0 {
		return fmt.Errorf("analytics.max_samples must be positive")
	}
	switch c.Analytics.Store {
	case StoreMemory:
	case StoreCSV:
		if c.Analytics.CSVPath == "" {
			return fmt.Errorf("analytics.csv_path is required when analytics.store is csv")
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when analytics.store is postgres")
		}
	default:
		return fmt.Errorf("unknown analytics.store: %s", c.Analytics.Store)
	}

	if c.Settlement.ExecutorAddress != "" && !common.IsHexAddress(c.Settlement.ExecutorAddress) {
		return fmt.Errorf("invalid settlement.executor_address: %s", c.Settlement.ExecutorAddress)
	}
	return nil
}

// ValidateLive checks the settings needed to talk to a node.
func (c *Config) ValidateLive() error {
	if c.Ethereum.WebSocketURL == "" {
		return fmt.Errorf("ethereum.websocket_url is required")
	}
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if c.Settlement.Simulate && !common.IsHexAddress(c.Settlement.ExecutorAddress) {
		return fmt.Errorf("settlement.executor_address is required when settlement.simulate is set")
	}
	return nil
}

// TokenBySymbol looks up a configured token.
func (c *Config) TokenBySymbol(symbol string) (TokenConfig, bool) {
	for _, t := range c.Tokens {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return TokenConfig{}, false
}

// ResolveToken maps a symbol or hex address to an address.
func (c *Config) ResolveToken(ref string) (common.Address, error) {
	if t, ok := c.TokenBySymbol(ref); ok {
		return t.AddressHex(), nil
	}
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	return common.Address{}, fmt.Errorf("unknown token %q", ref)
}

func parseOptional(s string) (*uint256.Int, error) {
	if s == "" {
		return fixedpoint.Zero(), nil
	}
	return fixedpoint.ParseAmount(s)
}
