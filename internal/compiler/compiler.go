// Package compiler loads declaration documents and compiles them into
// tokenizers, memoising the result by document content and tracing each
// step.
package compiler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/lexkit/internal/cachemanager"
	"github.com/zjrosen/lexkit/internal/decl"
	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/lexer"
	"github.com/zjrosen/lexkit/internal/log"
	"github.com/zjrosen/lexkit/internal/token"
	"github.com/zjrosen/lexkit/internal/tracing"
)

// Digest is the sha256 of every declaration file loaded for one document.
type Digest string

// Compiled is a tokenizer together with where it came from.
type Compiled struct {
	Tokenizer *lexer.Tokenizer
	Path      string
	Files     []string
	Digest    Digest
	CacheHit  bool
}

// Compiler turns declaration paths into tokenizers.
type Compiler struct {
	cache  *cachemanager.ReadThroughCache[Digest, *lexer.Tokenizer, []lexer.Definition]
	ttl    time.Duration
	tracer trace.Tracer
}

// New creates a compiler. A zero ttl disables caching; a nil tracer
// disables tracing.
func New(ttl time.Duration, tracer trace.Tracer) *Compiler {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracing.DefaultServiceName)
	}
	manager := cachemanager.NewInMemoryCacheManager[Digest, *lexer.Tokenizer]("tokenizers", ttl, cachemanager.DefaultCleanupInterval)
	return &Compiler{
		cache:  cachemanager.NewReadThroughCache[Digest, *lexer.Tokenizer, []lexer.Definition](manager, compile, ttl <= 0),
		ttl:    ttl,
		tracer: tracer,
	}
}

func compile(_ context.Context, defs []lexer.Definition) (*lexer.Tokenizer, error) {
	return lexer.Compile(defs...)
}

// Compile loads the document at path with its includes and returns the
// compiled tokenizer. Unchanged documents reuse the cached tokenizer, so
// tags added to its types by consumers persist across calls.
func (c *Compiler) Compile(ctx context.Context, path string) (*Compiled, error) {
	ctx, span := tracing.Start(ctx, c.tracer, tracing.SpanCompile, attribute.String(tracing.AttrDeclPath, path))
	defer span.End()

	_, loadSpan := tracing.Start(ctx, c.tracer, tracing.SpanLoad)
	res, err := decl.LoadFile(path)
	if err != nil {
		tracing.RecordError(loadSpan, err)
		loadSpan.End()
		tracing.RecordError(span, err)
		return nil, err
	}
	loadSpan.SetAttributes(
		attribute.Int(tracing.AttrDeclFiles, len(res.Files)),
		attribute.Int(tracing.AttrDefinitions, len(res.Definitions)),
	)
	loadSpan.End()

	digest := Digest(res.Digest)
	tz, hit, err := c.cache.GetWithRefresh(ctx, digest, res.Definitions, c.ttl)
	span.SetAttributes(
		attribute.String(tracing.AttrDeclDigest, res.Digest),
		attribute.Bool(tracing.AttrCacheHit, hit),
	)
	if err != nil {
		log.ErrorErr(log.CatLexer, "compile failed", err, "path", path)
		tracing.RecordError(span, err)
		return nil, err
	}

	log.Debug(log.CatLexer, "compiled", "path", path, "digest", res.Digest[:12], "cache_hit", hit)
	return &Compiled{
		Tokenizer: tz,
		Path:      path,
		Files:     res.Files,
		Digest:    digest,
		CacheHit:  hit,
	}, nil
}

// Tokenize scans src with the compiled tokenizer inside a traced span. Diagnostics
// go to sink and are also recorded as span events.
func (c *Compiler) Tokenize(ctx context.Context, compiled *Compiled, name, src string, sink diag.Sink) []token.Token {
	_, span := tracing.Start(ctx, c.tracer, tracing.SpanTokenize,
		attribute.String(tracing.AttrSourcePath, name),
		attribute.Int(tracing.AttrSourceBytes, len(src)),
	)
	defer span.End()

	var warnings, errs int
	traced := diag.SinkFunc(func(d diag.Diagnostic) {
		if d.Severity == diag.Error {
			errs++
		} else {
			warnings++
		}
		span.AddEvent(tracing.EventDiagnostic, trace.WithAttributes(
			attribute.String("severity", d.Severity.String()),
			attribute.Int("offset", d.Offset()),
			attribute.String("message", d.Message),
		))
	})

	toks := compiled.Tokenizer.Tokenize(src, diag.Tee(traced, sink))
	span.SetAttributes(
		attribute.Int(tracing.AttrTokens, len(toks)),
		attribute.Int(tracing.AttrWarnings, warnings),
		attribute.Int(tracing.AttrErrors, errs),
	)
	return toks
}
