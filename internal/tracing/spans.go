package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRun      = "lexkit.run"
	SpanLoad     = "lexkit.load"
	SpanCompile  = "lexkit.compile"
	SpanTokenize = "lexkit.tokenize"
)

// Span attribute keys.
const (
	AttrRunID       = "lexkit.run.id"
	AttrCommand     = "lexkit.command"
	AttrDeclPath    = "decl.path"
	AttrDeclFiles   = "decl.files"
	AttrDeclDigest  = "decl.digest"
	AttrDefinitions = "decl.definitions"
	AttrCacheHit    = "cache.hit"
	AttrSourcePath  = "source.path"
	AttrSourceBytes = "source.bytes"
	AttrTokens      = "scan.tokens"
	AttrWarnings    = "scan.warnings"
	AttrErrors      = "scan.errors"
)

// Event names.
const (
	EventDiagnostic = "diagnostic"
	EventReload     = "reload"
)

// Start opens a span named name on tracer, stamping the run ID carried by
// ctx when there is one.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if id := RunIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrRunID, id))
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks span failed. A nil err leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
