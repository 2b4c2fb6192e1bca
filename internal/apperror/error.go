// Package apperror carries coded errors through the analyzer. Every error
// has a stable Code, a Kind used by callers to decide whether to retry or
// reject input, and an optional cause.
package apperror

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// Kind classifies an error for callers.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	// KindUnavailable marks upstream failures that may succeed on retry.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// AppError is the error type returned across module boundaries.
type AppError struct {
	Code      Code
	Message   string
	Kind      Kind
	Context   string
	Timestamp time.Time
	cause     error
	stack     []uintptr
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Context)
		sb.WriteString(")")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches another *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// Retryable reports whether the failure came from an upstream that may recover.
func (e *AppError) Retryable() bool { return e.Kind == KindUnavailable }

// LogValue renders the error as a slog group.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", string(e.Code)),
		slog.String("kind", e.Kind.String()),
		slog.String("message", e.Message),
	}
	if e.Context != "" {
		attrs = append(attrs, slog.String("context", e.Context))
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}
	if e.Kind == KindInternal && len(e.stack) > 0 {
		attrs = append(attrs, slog.String("stack", e.formatStack()))
	}
	return slog.GroupValue(attrs...)
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates an AppError for code. The message defaults to the code's
// registered message and the kind is inferred from the code name.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		Kind:      kindOf(code),
		Timestamp: time.Now(),
		stack:     captureStack(),
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// Option configures an AppError.
type Option func(*AppError)

func WithMessage(message string) Option {
	return func(e *AppError) { e.Message = message }
}

func WithContext(context string) Option {
	return func(e *AppError) { e.Context = context }
}

func WithKind(kind Kind) Option {
	return func(e *AppError) { e.Kind = kind }
}

func WithCause(cause error) Option {
	return func(e *AppError) { e.cause = cause }
}

// Validation rejects caller input.
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithKind(KindValidation))
}

func NotFound(code Code, context string) *AppError {
	return New(code, WithContext(context), WithKind(KindNotFound))
}

func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindInternal))
}

// External wraps a failure of an upstream dependency.
func External(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindUnavailable))
}

// Wrap converts err into an AppError. An AppError anywhere in the chain is
// returned as is, gaining context if it had none.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}
	return New(code, WithContext(context), WithCause(err))
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the code of the first AppError in the chain.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// GetKind returns the kind of the first AppError in the chain.
func GetKind(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindOf(code Code) Kind {
	s := string(code)
	switch {
	case strings.Contains(s, "NOT_FOUND"):
		return KindNotFound
	case strings.HasPrefix(s, "INVALID"), strings.Contains(s, "_INVALID"),
		strings.Contains(s, "MISMATCH"), strings.Contains(s, "UNSUPPORTED"),
		strings.Contains(s, "DUPLICATE"), strings.Contains(s, "REQUIRED"):
		return KindValidation
	case strings.Contains(s, "CONNECTION"), strings.Contains(s, "TIMEOUT"),
		strings.Contains(s, "UNAVAILABLE"), strings.Contains(s, "RPC"),
		strings.Contains(s, "API_ERROR"), strings.HasPrefix(s, "CIRCUIT_"),
		code == CodeRateLimitExceeded:
		return KindUnavailable
	default:
		return KindInternal
	}
}
