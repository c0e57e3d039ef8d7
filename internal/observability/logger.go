package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Log attribute keys.
const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrVersion = "version"
	attrEnv     = "env"
	attrMode    = "mode"
)

// ServiceMeta identifies the process in every log record.
type ServiceMeta struct {
	Service string
	Version string
	Env     string
	Mode    AppMode
}

func (meta ServiceMeta) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(attrService, meta.Service),
		slog.String(attrMode, string(meta.Mode)),
	}

	if meta.Version != "" {
		attrs = append(attrs, slog.String(attrVersion, meta.Version))
	}

	if meta.Env != "" {
		attrs = append(attrs, slog.String(attrEnv, meta.Env))
	}

	return attrs
}

// TracingHandler is an [slog.Handler] that adds the trace_id and span_id
// of the active span to each record. Service metadata is attached once at
// construction, before any group, so it stays top level.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next with trace context and meta.
func NewTracingHandler(next slog.Handler, meta ServiceMeta) *TracingHandler {
	return &TracingHandler{next: next.WithAttrs(meta.attrs())}
}

// Enabled delegates to the wrapped handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.next.Enabled(ctx, level)
}

// Handle adds the span identifiers found in ctx, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := th.next.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: th.next.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: th.next.WithGroup(name)}
}

// ParseLevel maps a config level name to a [slog.Level]. Unknown names
// map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
