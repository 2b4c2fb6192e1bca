// Package binance implements the secondary price feed over the Binance
// REST ticker.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
	"github.com/fd1az/arbitrage-analyzer/internal/httpclient"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/ratelimit"
)

const (
	tracerName = "binance"

	// Binance REST API endpoints
	BaseAPIURL   = "https://api.binance.com"
	BaseAPIURLUS = "https://api.binance.us"

	tickerEndpoint = "/api/v3/ticker/price"

	httpTimeout = 10 * time.Second
)

// Ensure TickerFeed implements PriceFeed.
var _ app.PriceFeed = (*TickerFeed)(nil)

// TickerConfig holds configuration for the ticker feed.
type TickerConfig struct {
	BaseURL            string                    // API base URL (empty = default)
	Timeout            time.Duration             // Request timeout
	RateLimitPerMinute int                       // Request weight budget
	Symbols            map[common.Address]string // token -> ticker symbol, e.g. ETHUSDT
	Pegged             map[common.Address]bool   // tokens priced at exactly $1
}

// TickerFeed reads last-trade prices from the Binance ticker endpoint.
// USDT quotes are treated as USD.
type TickerFeed struct {
	client  httpclient.Client
	config  TickerConfig
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[*tickerResponse]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	now     func() time.Time
}

// NewTickerFeed creates a new Binance ticker feed.
func NewTickerFeed(cfg TickerConfig, log logger.LoggerInterface) (*TickerFeed, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 1200
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &TickerFeed{
		client:  client,
		config:  cfg,
		limiter: ratelimit.New(cfg.RateLimitPerMinute),
		cb:      circuitbreaker.New[*tickerResponse](circuitbreaker.DefaultConfig("binance-ticker")),
		logger:  log,
		tracer:  tracer,
		now:     time.Now,
	}, nil
}

// tickerResponse is the REST API response for a single-symbol ticker.
type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// LatestPrice returns the token's USD price. Pegged tokens report exactly 1.
func (f *TickerFeed) LatestPrice(ctx context.Context, token common.Address) (domain.OraclePrice, error) {
	if f.config.Pegged[token] {
		return domain.OraclePrice{
			Token:      token,
			Value:      fixedpoint.Precision(),
			ObservedAt: f.now(),
			Source:     domain.SourceBinance,
		}, nil
	}

	symbol, ok := f.config.Symbols[token]
	if !ok {
		return domain.OraclePrice{}, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("no binance symbol for "+token.Hex()))
	}

	ctx, span := f.tracer.Start(ctx, "binance.ticker",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	if err := f.limiter.Wait(ctx); err != nil {
		return domain.OraclePrice{}, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	ticker, err := f.cb.Execute(func() (*tickerResponse, error) {
		return f.fetch(ctx, symbol)
	})
	if err != nil {
		span.RecordError(err)
		return domain.OraclePrice{}, err
	}

	d, err := decimal.NewFromString(ticker.Price)
	if err != nil || !d.IsPositive() {
		return domain.OraclePrice{}, apperror.New(apperror.CodeInvalidOraclePrice,
			apperror.WithContext(fmt.Sprintf("%s: bad price %q", symbol, ticker.Price)))
	}
	value, err := fixedpoint.FromDecimal(d, fixedpoint.Decimals)
	if err != nil {
		return domain.OraclePrice{}, err
	}

	span.SetAttributes(attribute.String("price", ticker.Price))
	f.logger.Debug(ctx, "binance price", "symbol", symbol, "price", ticker.Price)

	return domain.OraclePrice{
		Token:      token,
		Value:      value,
		ObservedAt: f.now(),
		Source:     domain.SourceBinance,
	}, nil
}

func (f *TickerFeed) fetch(ctx context.Context, symbol string) (*tickerResponse, error) {
	var result tickerResponse
	resp, err := f.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "ticker"),
			httpclient.NewLabel("symbol", symbol),
		),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get(ctx, tickerEndpoint)
	if err != nil {
		return nil, apperror.New(apperror.CodeBinanceAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch ticker for "+symbol))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeBinanceAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}
	return &result, nil
}

// BinanceAPIError represents an error response from Binance API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr BinanceAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
