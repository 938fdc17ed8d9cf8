package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zjrosen/lexkit/internal/compiler"
	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/lexer"
	"github.com/zjrosen/lexkit/internal/source"
	"github.com/zjrosen/lexkit/internal/stream"
	"github.com/zjrosen/lexkit/internal/token"
)

// scanOptions are the stream checks and extra tags shared by tokenize
// and watch.
type scanOptions struct {
	tags    []string // type=tag
	balance []string // open:close
	even    []string
}

// scanResult is one scan of one source.
type scanResult struct {
	file     *source.File
	compiled *compiler.Compiled
	tokens   []token.Token // after drop_tags
	diags    *diag.Collector
}

// readSource reads path, or stdin when path is "-".
func readSource(stdin io.Reader, path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided source path
	if err != nil {
		return "", "", fmt.Errorf("reading source: %w", err)
	}
	return path, string(data), nil
}

// applyTags adds tags to types by name, from "type=tag" pairs.
func applyTags(tz *lexer.Tokenizer, pairs []string) error {
	for _, pair := range pairs {
		name, tag, ok := strings.Cut(pair, "=")
		if !ok || name == "" || tag == "" {
			return fmt.Errorf("invalid --tag %q: expected type=tag", pair)
		}
		t := tz.Lookup(name)
		if t == nil {
			return fmt.Errorf("invalid --tag %q: no type named %q", pair, name)
		}
		t.Tags().Add(tag)
	}
	return nil
}

func parseBalance(specs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(specs))
	for _, spec := range specs {
		open, closeTag, ok := strings.Cut(spec, ":")
		if !ok || open == "" || closeTag == "" {
			return nil, fmt.Errorf("invalid --balance %q: expected open:close", spec)
		}
		out = append(out, [2]string{open, closeTag})
	}
	return out, nil
}

// scan compiles the declarations, tokenizes src and runs the stream checks.
// Every diagnostic goes to the returned collector and to extra.
func scan(ctx context.Context, declPath, name, src string, opts scanOptions, extra diag.Sink) (*scanResult, error) {
	pairs, err := parseBalance(opts.balance)
	if err != nil {
		return nil, err
	}

	compiled, err := comp.Compile(ctx, declPath)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", declPath, err)
	}
	if err := applyTags(compiled.Tokenizer, opts.tags); err != nil {
		return nil, err
	}

	collector := diag.NewCollector()
	sink := diag.Tee(collector, diag.LogSink, extra)
	toks := comp.Tokenize(ctx, compiled, name, src, sink)

	for _, p := range pairs {
		stream.CheckBalance(toks, p[0], p[1], sink)
	}
	for _, tag := range opts.even {
		stream.CheckEven(toks, tag, sink)
	}

	return &scanResult{
		file:     source.NewFile(name, src),
		compiled: compiled,
		tokens:   stream.Without(toks, cfg.DropTags...),
		diags:    collector,
	}, nil
}

// verdict turns the diagnostics of a scan into the command's error.
func verdict(diags *diag.Collector) error {
	warnings := diags.Count(diag.Warning)
	if diags.HasErrors() || (cfg.Strict && warnings > 0) {
		return fmt.Errorf("%w: %d errors, %d warnings", ErrDiagnostics, diags.Count(diag.Error), warnings)
	}
	return nil
}
