package apm

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

// Tracer starts spans on the globally registered provider.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	SpanFromContext(ctx context.Context) Span
}

// Span is the subset of trace.Span the app layers use, plus NoticeError.
type Span interface {
	SetAttributes(kv ...attribute.KeyValue)
	SetAttribute(kv attribute.KeyValue)
	AddEvent(name string, opts ...trace.EventOption)
	NoticeError(err error)
	SpanContext() trace.SpanContext
	End(opts ...trace.SpanEndOption)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer resolves the named tracer lazily, so spans follow whichever
// provider is installed when they start.
func NewTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

func (t *otelTracer) StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, otelSpan{span}
}

func (t *otelTracer) SpanFromContext(ctx context.Context) Span {
	return otelSpan{trace.SpanFromContext(ctx)}
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) SetAttribute(kv attribute.KeyValue) {
	s.Span.SetAttributes(kv)
}

// NoticeError records err and fails the span. Coded errors also tag the
// span with their code and kind. A nil error is ignored.
func (s otelSpan) NoticeError(err error) {
	if err == nil {
		return
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		s.Span.SetAttributes(
			attribute.String("error.code", string(appErr.Code)),
			attribute.String("error.kind", appErr.Kind.String()),
		)
	}
	s.Span.RecordError(err)
	s.Span.SetStatus(codes.Error, err.Error())
}
