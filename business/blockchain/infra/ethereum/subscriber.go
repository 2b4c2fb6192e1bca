// Package ethereum provides Ethereum blockchain infrastructure adapters.
package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arbitrage-analyzer/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/arbitrage-analyzer/business/blockchain/infra/ethereum"
)

// HeadClient is the part of an Ethereum RPC client the subscriber uses.
type HeadClient interface {
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (geth.Subscription, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	Close()
}

// Dialer opens a HeadClient for an endpoint URL.
type Dialer func(ctx context.Context, url string) (HeadClient, error)

// DialEthclient dials with go-ethereum's ethclient.
func DialEthclient(ctx context.Context, url string) (HeadClient, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SubscriberConfig holds configuration for the Ethereum subscriber.
type SubscriberConfig struct {
	WSURL          string        // streaming endpoint, preferred
	HTTPURL        string        // polled while the stream is down
	PollInterval   time.Duration // HTTP polling interval
	InitialBackoff time.Duration // first stream reconnect delay
	MaxBackoff     time.Duration // reconnect delay cap
	MaxReconnects  int           // stream reconnect attempts per outage, 0 = unlimited
	BufferSize     int           // block channel buffer size
	Dial           Dialer
}

// DefaultSubscriberConfig returns sensible defaults.
func DefaultSubscriberConfig(wsURL, httpURL string) SubscriberConfig {
	return SubscriberConfig{
		WSURL:          wsURL,
		HTTPURL:        httpURL,
		PollInterval:   12 * time.Second, // ~1 block time
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BufferSize:     16,
		Dial:           DialEthclient,
	}
}

type subscriberMetrics struct {
	blocksReceived  metric.Int64Counter
	blocksDropped   metric.Int64Counter
	subscribeErrors metric.Int64Counter
	connectionState metric.Int64Gauge
	blockLatency    metric.Float64Histogram
	pollFallbacks   metric.Int64Counter
}

// Subscriber delivers new block headers, streaming over WebSocket and
// polling over HTTP while the stream is unavailable. One supervisor
// goroutine owns the block channel and closes it on shutdown.
type Subscriber struct {
	config SubscriberConfig
	logger logger.LoggerInterface

	mu         sync.RWMutex
	wsClient   HeadClient
	httpClient HeadClient
	state      domain.ConnectionState

	usingHTTP  atomic.Bool
	lastBlock  atomic.Uint64
	reconnects atomic.Int32
	started    atomic.Bool

	blocks    chan *domain.Block
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	httpCB *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *subscriberMetrics
}

// NewSubscriber creates a new Ethereum block subscriber. Nothing is dialed
// until Subscribe.
func NewSubscriber(cfg SubscriberConfig, log logger.LoggerInterface) (*Subscriber, error) {
	def := DefaultSubscriberConfig(cfg.WSURL, cfg.HTTPURL)
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Dial == nil {
		cfg.Dial = def.Dial
	}

	s := &Subscriber{
		config: cfg,
		logger: log,
		state:  domain.StateDisconnected,
		blocks: make(chan *domain.Block, cfg.BufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		tracer: otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "init subscriber metrics")
	}

	cbCfg := circuitbreaker.DefaultConfig("eth-http")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	s.httpCB = circuitbreaker.New[*types.Header](cbCfg)

	return s, nil
}

func (s *Subscriber) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &subscriberMetrics{}

	if s.metrics.blocksReceived, err = meter.Int64Counter(
		"eth_blocks_received_total",
		metric.WithDescription("Blocks delivered to the scanner"),
		metric.WithUnit("{block}"),
	); err != nil {
		return err
	}
	if s.metrics.blocksDropped, err = meter.Int64Counter(
		"eth_blocks_dropped_total",
		metric.WithDescription("Blocks dropped because the scanner fell behind"),
		metric.WithUnit("{block}"),
	); err != nil {
		return err
	}
	if s.metrics.subscribeErrors, err = meter.Int64Counter(
		"eth_subscribe_errors_total",
		metric.WithDescription("Stream and poll failures"),
		metric.WithUnit("{error}"),
	); err != nil {
		return err
	}
	if s.metrics.connectionState, err = meter.Int64Gauge(
		"eth_connection_state",
		metric.WithDescription("0=disconnected, 1=connecting, 2=connected, 3=reconnecting"),
		metric.WithUnit("{state}"),
	); err != nil {
		return err
	}
	if s.metrics.blockLatency, err = meter.Float64Histogram(
		"eth_block_latency_ms",
		metric.WithDescription("Delay between block timestamp and receipt"),
		metric.WithUnit("ms"),
	); err != nil {
		return err
	}
	s.metrics.pollFallbacks, err = meter.Int64Counter(
		"eth_http_fallback_total",
		metric.WithDescription("Switches from streaming to HTTP polling"),
		metric.WithUnit("{fallback}"),
	)
	return err
}

// Subscribe connects and starts delivering blocks. It fails when neither
// endpoint can be reached. A subscriber can only be subscribed once.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan *domain.Block, error) {
	spanCtx, span := s.tracer.Start(ctx, "eth.subscribe",
		trace.WithAttributes(
			attribute.Bool("ws", s.config.WSURL != ""),
			attribute.Bool("http", s.config.HTTPURL != ""),
		),
	)
	defer span.End()

	select {
	case <-s.stop:
		return nil, apperror.New(apperror.CodeEthereumSubscribeFailed,
			apperror.WithContext("subscriber is closed"))
	default:
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil, apperror.New(apperror.CodeEthereumSubscribeFailed,
			apperror.WithContext("already subscribed"))
	}

	s.setState(domain.StateConnecting)

	wsErr := s.dialWS(spanCtx)
	httpErr := s.dialHTTP(spanCtx)
	if wsErr != nil && httpErr != nil {
		err := errors.Join(wsErr, httpErr)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no endpoint reachable")
		s.setState(domain.StateDisconnected)
		s.started.Store(false)
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect via WS and HTTP"))
	}
	if wsErr != nil {
		s.logger.Warn(spanCtx, "ws connection failed, polling over http", "error", wsErr)
		span.AddEvent("ws_failed_polling_http")
	}

	go s.supervise(ctx)

	span.SetStatus(codes.Ok, "subscribed")
	return s.blocks, nil
}

func (s *Subscriber) dialWS(ctx context.Context) error {
	if s.config.WSURL == "" {
		return errors.New("ws url not configured")
	}
	client, err := s.config.Dial(ctx, s.config.WSURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.wsClient = client
	s.mu.Unlock()
	return nil
}

func (s *Subscriber) dialHTTP(ctx context.Context) error {
	if s.config.HTTPURL == "" {
		return errors.New("http url not configured")
	}
	client, err := s.config.Dial(ctx, s.config.HTTPURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.httpClient = client
	s.mu.Unlock()
	return nil
}

func (s *Subscriber) clients() (ws, http HeadClient) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wsClient, s.httpClient
}

func (s *Subscriber) dropWS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wsClient != nil {
		s.wsClient.Close()
		s.wsClient = nil
	}
}

func (s *Subscriber) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// supervise alternates between streaming and polling until Close or until
// ctx is done.
func (s *Subscriber) supervise(ctx context.Context) {
	defer close(s.done)
	defer close(s.blocks)

	for {
		if ws, _ := s.clients(); ws != nil {
			err := s.stream(ctx, ws)
			if s.stopped() || ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "ws stream ended", "error", err)
			s.metrics.subscribeErrors.Add(ctx, 1)
			s.dropWS()
			s.reconnects.Add(1)
		}

		if !s.pollUntilStream(ctx) {
			return
		}
	}
}

// stream forwards headers from a new-head subscription until it fails.
func (s *Subscriber) stream(ctx context.Context, client HeadClient) error {
	headers := make(chan *types.Header, s.config.BufferSize)
	sub, err := client.SubscribeNewHead(ctx, headers)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	s.usingHTTP.Store(false)
	s.setState(domain.StateConnected)
	s.logger.Info(ctx, "subscribed to new heads via ws")

	for {
		select {
		case <-s.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return err
		case header := <-headers:
			if header != nil {
				s.emit(ctx, header, "ws")
			}
		}
	}
}

// pollUntilStream polls HTTP while retrying the stream with exponential
// backoff. It returns false when the subscriber is closed or when the
// stream cannot be used and there is nothing to poll.
func (s *Subscriber) pollUntilStream(ctx context.Context) bool {
	_, httpClient := s.clients()
	if httpClient == nil && s.config.WSURL == "" {
		s.setState(domain.StateDisconnected)
		return false
	}

	if httpClient != nil {
		s.usingHTTP.Store(true)
		s.metrics.pollFallbacks.Add(ctx, 1)
		s.setState(domain.StateConnected)
		s.logger.Info(ctx, "polling blocks over http", "interval", s.config.PollInterval)
	} else {
		s.setState(domain.StateReconnecting)
	}

	poll := time.NewTicker(s.config.PollInterval)
	defer poll.Stop()

	backoff := s.config.InitialBackoff
	attempts := 0
	retry := time.NewTimer(backoff)
	defer retry.Stop()
	canRetry := s.config.WSURL != ""
	if !canRetry {
		retry.Stop()
	}

	for {
		select {
		case <-s.stop:
			return false
		case <-ctx.Done():
			return false
		case <-poll.C:
			if httpClient != nil {
				s.pollLatest(ctx, httpClient)
			}
		case <-retry.C:
			attempts++
			err := s.dialWS(ctx)
			if err == nil {
				s.logger.Info(ctx, "ws reconnected", "attempts", attempts)
				return true
			}
			s.logger.Debug(ctx, "ws reconnect failed", "attempt", attempts, "error", err)
			if s.config.MaxReconnects > 0 && attempts >= s.config.MaxReconnects {
				if httpClient == nil {
					s.logger.Error(ctx, "ws reconnects exhausted and no http endpoint", "attempts", attempts)
					s.setState(domain.StateDisconnected)
					return false
				}
				s.logger.Warn(ctx, "ws reconnects exhausted, staying on http", "attempts", attempts)
				continue
			}
			backoff = min(backoff*2, s.config.MaxBackoff)
			retry.Reset(backoff)
		}
	}
}

func (s *Subscriber) pollLatest(ctx context.Context, client HeadClient) {
	ctx, span := s.tracer.Start(ctx, "eth.poll.block")
	defer span.End()

	header, err := s.httpCB.Execute(func() (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.subscribeErrors.Add(ctx, 1)
		s.logger.Warn(ctx, "http poll failed", "error", err)
		return
	}
	s.emit(ctx, header, "http")
}

// emit forwards a header once per block number. When the scanner falls
// behind the newest block is dropped rather than blocking the source.
func (s *Subscriber) emit(ctx context.Context, header *types.Header, source string) {
	number := header.Number.Uint64()
	if number <= s.lastBlock.Load() {
		return
	}
	s.lastBlock.Store(number)

	block := headerToBlock(header)
	latency := time.Since(block.Timestamp)
	s.metrics.blockLatency.Record(ctx, float64(latency.Milliseconds()))

	attrs := metric.WithAttributes(attribute.String("source", source))
	select {
	case s.blocks <- block:
		s.metrics.blocksReceived.Add(ctx, 1, attrs)
		s.logger.Debug(ctx, "block received",
			"number", block.Number,
			"source", source,
			"latency_ms", latency.Milliseconds())
	default:
		s.metrics.blocksDropped.Add(ctx, 1, attrs)
		s.logger.Warn(ctx, "block dropped, buffer full", "number", block.Number)
	}
}

func headerToBlock(header *types.Header) *domain.Block {
	return &domain.Block{
		Number:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Timestamp:  time.Unix(int64(header.Time), 0),
		GasLimit:   header.GasLimit,
		GasUsed:    header.GasUsed,
		BaseFee:    baseFee(header),
	}
}

func baseFee(header *types.Header) *uint256.Int {
	if header.BaseFee == nil {
		return nil
	}
	fee, overflow := uint256.FromBig(header.BaseFee)
	if overflow {
		return nil
	}
	return fee
}

// LatestBlock fetches the newest header from whichever client is connected.
func (s *Subscriber) LatestBlock(ctx context.Context) (*domain.Block, error) {
	ctx, span := s.tracer.Start(ctx, "eth.latest_block")
	defer span.End()

	ws, httpClient := s.clients()

	var (
		header *types.Header
		err    error
	)
	switch {
	case httpClient != nil:
		header, err = s.httpCB.Execute(func() (*types.Header, error) {
			return httpClient.HeaderByNumber(ctx, nil)
		})
	case ws != nil:
		header, err = ws.HeaderByNumber(ctx, nil)
	default:
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("no ethereum client connected"))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeBlockNotFound,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch latest block"))
	}
	return headerToBlock(header), nil
}

// State returns the current connection state.
func (s *Subscriber) State() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns detailed connection status.
func (s *Subscriber) Status() domain.ConnectionStatus {
	return domain.ConnectionStatus{
		State:      s.State(),
		LastBlock:  s.lastBlock.Load(),
		LastUpdate: time.Now(),
		Reconnects: int(s.reconnects.Load()),
		UsingHTTP:  s.usingHTTP.Load(),
	}
}

// BlockNumber returns the number of the last delivered block.
func (s *Subscriber) BlockNumber() uint64 {
	return s.lastBlock.Load()
}

// Close stops delivery, waits for the supervisor and closes both clients.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info(context.Background(), "closing ethereum subscriber")
		close(s.stop)
		if s.started.Load() {
			<-s.done
		}

		s.mu.Lock()
		for _, c := range []HeadClient{s.wsClient, s.httpClient} {
			if c != nil {
				c.Close()
			}
		}
		s.wsClient, s.httpClient = nil, nil
		s.mu.Unlock()

		s.setState(domain.StateDisconnected)
	})
	return nil
}

var stateValues = map[domain.ConnectionState]int64{
	domain.StateDisconnected: 0,
	domain.StateConnecting:   1,
	domain.StateConnected:    2,
	domain.StateReconnecting: 3,
}

func (s *Subscriber) setState(state domain.ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.metrics.connectionState.Record(context.Background(), stateValues[state])
}
