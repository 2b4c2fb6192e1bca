// Package httpclient is the instrumented HTTP client used by the off-chain
// quote feeds. Every request carries a span and increments a per-provider
// request counter.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	instrumentationName  = "arbitrage_http_client"
	metricRequestCounter = "http_client_requests_total"
)

// TraceOption selects which payloads are attached to request spans.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

// Client builds requests against a single upstream provider.
type Client interface {
	NewRequestWithOptions(opts ...RequestOption) Request
}

type clientOptions struct {
	providerName   string
	baseURL        string
	headers        map[string]string
	requestTimeout time.Duration
	roundTripper   http.RoundTripper
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	traceRequest   bool
	traceResponse  bool
}

// ClientOption configures NewInstrumentedClient.
type ClientOption func(*clientOptions)

// WithProviderName labels spans and metrics with the upstream name.
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) { o.providerName = name }
}

// WithBaseURL is prefixed to every relative request path.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) { o.baseURL = url }
}

func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) { o.requestTimeout = timeout }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithRoundTripper replaces the pooled default transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.roundTripper = rt }
}

func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *clientOptions) { o.meterProvider = mp }
}

// WithTraceOptions sets the tracer and which bodies are recorded as span events.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.traceRequest = true
			case TraceResponse:
				o.traceResponse = true
			}
		}
	}
}

// InstrumentedClient wraps http.Client with otel transport instrumentation.
type InstrumentedClient struct {
	http     *http.Client
	requests metric.Int64Counter
	tracer   trace.Tracer
	opts     clientOptions
}

// NewInstrumentedClient creates a client for one provider.
func NewInstrumentedClient(opts ...ClientOption) (*InstrumentedClient, error) {
	o := clientOptions{providerName: "default", requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.roundTripper
	if transport == nil {
		transport = &http.Transport{
			DialContext:     (&net.Dialer{KeepAlive: defaultDialKeepAlive}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}

	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	requests, err := mp.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(attribute.String("provider", o.providerName)),
	).Int64Counter(metricRequestCounter, metric.WithDescription("Total number of HTTP requests"))
	if err != nil {
		return nil, err
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &InstrumentedClient{
		http: &http.Client{
			Timeout: o.requestTimeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
					return otelhttptrace.NewClientTrace(ctx)
				}),
			),
		},
		requests: requests,
		tracer:   tracer,
		opts:     o,
	}, nil
}

// NewRequestWithOptions starts a request carrying the client defaults.
func (c *InstrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	r := &requestBuilder{
		client:  c,
		headers: make(map[string]string, len(c.opts.headers)),
		query:   make(map[string]string),
	}
	for k, v := range c.opts.headers {
		r.headers[k] = v
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
