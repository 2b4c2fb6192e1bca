package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// maxTracedBody caps the payload copied into span events.
const maxTracedBody = 2048

// ResponseErrorHandler turns a provider error payload into an error.
// It is called for every response; returning nil accepts it.
type ResponseErrorHandler func(statusCode int, body []byte) error

// Label is an extra metric attribute attached to a single request.
type Label struct {
	Key   string
	Value string
}

func NewLabel(key, value string) *Label {
	return &Label{Key: key, Value: value}
}

// RequestOption configures a single request.
type RequestOption func(*requestBuilder)

func WithLabels(labels ...*Label) RequestOption {
	return func(r *requestBuilder) { r.labels = append(r.labels, labels...) }
}

func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(r *requestBuilder) { r.errorHandler = handler }
}

// Request is a single-use request builder.
type Request interface {
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	// SetResult decodes a JSON body into v. Decode failures on error
	// responses are ignored so the caller still sees the status.
	SetResult(v any) Request
	Get(ctx context.Context, path string) (*Response, error)
}

// Response is the buffered upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

func (r *Response) Body() []byte   { return r.body }
func (r *Response) String() string { return string(r.body) }
func (r *Response) IsError() bool  { return r.StatusCode >= http.StatusBadRequest }

type requestBuilder struct {
	client       *InstrumentedClient
	headers      map[string]string
	query        map[string]string
	result       any
	labels       []*Label
	errorHandler ResponseErrorHandler
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	r.query[key] = value
	return r
}

func (r *requestBuilder) SetResult(v any) Request {
	r.result = v
	return r
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.do(ctx, http.MethodGet, path)
}

func (r *requestBuilder) url(path string) string {
	u := path
	if base := r.client.opts.baseURL; base != "" && !strings.HasPrefix(path, "http") {
		u = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) == 0 {
		return u
	}
	params := make(neturl.Values, len(r.query))
	for k, v := range r.query {
		params.Set(k, v)
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + params.Encode()
}

func (r *requestBuilder) do(ctx context.Context, method, path string) (*Response, error) {
	target := r.url(path)
	ctx, span := r.client.tracer.Start(ctx, "http.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
		attribute.String("provider", r.client.opts.providerName),
	))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		r.fail(ctx, span, err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.client.opts.traceRequest {
		span.AddEvent("request", trace.WithAttributes(attribute.String("http.query", req.URL.RawQuery)))
	}

	httpResp, err := r.client.http.Do(req)
	if err != nil {
		r.fail(ctx, span, err)
		return nil, err
	}
	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		r.fail(ctx, span, err)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.client.opts.traceResponse {
		span.AddEvent("response", trace.WithAttributes(attribute.String("http.response_body", truncate(body))))
	}

	if r.errorHandler != nil {
		if herr := r.errorHandler(resp.StatusCode, body); herr != nil {
			span.SetStatus(codes.Error, herr.Error())
			r.record(ctx, false)
			return resp, herr
		}
	}

	if r.result != nil && len(body) > 0 && !resp.IsError() {
		if err := json.Unmarshal(body, r.result); err != nil {
			r.fail(ctx, span, err)
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.IsError() {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	r.record(ctx, !resp.IsError())
	return resp, nil
}

func (r *requestBuilder) fail(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}
	span.SetStatus(codes.Error, err.Error())
	r.record(ctx, false)
}

func (r *requestBuilder) record(ctx context.Context, success bool) {
	attrs := make([]attribute.KeyValue, 0, len(r.labels)+2)
	attrs = append(attrs,
		attribute.String("provider", r.client.opts.providerName),
		attribute.Bool("success", success),
	)
	for _, l := range r.labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	r.client.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func truncate(b []byte) string {
	if len(b) > maxTracedBody {
		return string(b[:maxTracedBody]) + "..."
	}
	return string(b)
}
