package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID   = "trace_id"
	attrSpanID    = "span_id"
	attrOperation = "operation"
	attrService   = "service"
	attrVersion   = "version"
	attrEnv       = "env"
	attrCommand   = "command"
	attrRepo      = "repo"
)

// LogFields are attached to every record written by a hunkstage logger.
// Empty fields are left out.
type LogFields struct {
	Service string
	Version string
	Env     string
	// Command is the CLI subcommand, e.g. "stage".
	Command string
	// Repo is the repository directory the command works on.
	Repo string
}

func (f LogFields) attrs() []slog.Attr {
	pairs := [][2]string{
		{attrService, f.Service},
		{attrVersion, f.Version},
		{attrEnv, f.Env},
		{attrCommand, f.Command},
		{attrRepo, f.Repo},
	}

	attrs := make([]slog.Attr, 0, len(pairs))

	for _, p := range pairs {
		if p[1] != "" {
			attrs = append(attrs, slog.String(p[0], p[1]))
		}
	}

	return attrs
}

// namedSpan is implemented by recording SDK spans.
type namedSpan interface {
	Name() string
}

// TracingHandler is an [slog.Handler] that tags records with the invocation's
// LogFields and, inside a span, with trace_id, span_id and the span name as
// "operation" (for example "git.add" or "stager.stage").
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. The fields are bound before any WithGroup
// so they stay at the top level.
func NewTracingHandler(inner slog.Handler, fields LogFields) *TracingHandler {
	return &TracingHandler{inner: inner.WithAttrs(fields.attrs())}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds span attributes when ctx carries a valid span.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sc := span.SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)

		if named, ok := span.(namedSpan); ok && named.Name() != "" {
			record.AddAttrs(slog.String(attrOperation, named.Name()))
		}
	}

	if err := th.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
