package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/lexkit/internal/config"
	"github.com/zjrosen/lexkit/internal/highlight"
	"github.com/zjrosen/lexkit/internal/presentation"
	"github.com/zjrosen/lexkit/internal/tracing"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file>",
	Short: "Tokenize a source file",
	Long: `Tokenize a source file ("-" reads stdin) with the declaration document and
print the tokens as text, JSON, or highlighted source.

Diagnostics are written to stderr (or included in the JSON report). The
command fails when an error was reported, or a warning with --strict.`,
	Example: `  lexkit tokenize -d lang.yaml main.src
  lexkit tokenize -d lang.yaml -o json main.src
  lexkit tokenize -d lang.yaml --tag '<(>=lparen' --tag '<)>=rparen' --balance lparen:rparen main.src`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().StringArray("tag", nil, "add a tag to a type, as type=tag (repeatable)")
	tokenizeCmd.Flags().StringArray("balance", nil, "check that tokens tagged open and close nest, as open:close (repeatable)")
	tokenizeCmd.Flags().StringArray("even", nil, "check that tokens carrying the tag occur an even number of times (repeatable)")
	rootCmd.AddCommand(tokenizeCmd)
}

func scanFlags(cmd *cobra.Command) scanOptions {
	var opts scanOptions
	opts.tags, _ = cmd.Flags().GetStringArray("tag")
	opts.balance, _ = cmd.Flags().GetStringArray("balance")
	opts.even, _ = cmd.Flags().GetStringArray("even")
	return opts
}

func runTokenize(cmd *cobra.Command, args []string) error {
	declPath, err := declarationsPath()
	if err != nil {
		return err
	}
	name, src, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	ctx, span := startRun(cmd.Context(), "tokenize")
	defer span.End()

	res, err := scan(ctx, declPath, name, src, scanFlags(cmd), nil)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int(tracing.AttrTokens, len(res.tokens)))

	if err := render(cmd.OutOrStdout(), cmd.ErrOrStderr(), tracing.RunIDFromContext(ctx), res); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return verdict(res.diags)
}

// render writes the tokens to out in the configured format. Diagnostics go
// to errOut, except in JSON where they are part of the report.
func render(out, errOut io.Writer, runID string, res *scanResult) error {
	if err := writeTokens(out, runID, res); err != nil {
		return err
	}
	if cfg.Output == config.OutputJSON {
		return nil
	}
	return presentation.NewFormatter(errOut).FormatDiagnostics(res.file, res.diags.Diagnostics())
}

func writeTokens(out io.Writer, runID string, res *scanResult) error {
	f := presentation.NewFormatter(out)
	switch cfg.Output {
	case config.OutputJSON:
		diags := res.diags.Diagnostics()
		return f.FormatReport(presentation.ReportDTO{
			RunID:        runID,
			Source:       res.file.Name,
			Declarations: res.compiled.Path,
			Digest:       string(res.compiled.Digest),
			CacheHit:     res.compiled.CacheHit,
			Summary:      presentation.Summarize(res.tokens, diags),
			Tokens:       presentation.FromTokens(res.file, res.tokens),
			Diagnostics:  presentation.FromDiagnostics(res.file, diags),
		})
	case config.OutputHighlight:
		theme, err := highlight.NewTheme(cfg.Theme)
		if err != nil {
			return err
		}
		return f.FormatHighlighted(highlight.New(theme), res.tokens)
	default:
		return f.FormatTokens(res.tokens)
	}
}
