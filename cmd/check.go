package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zjrosen/lexkit/internal/presentation"
	"github.com/zjrosen/lexkit/internal/stream"
	"github.com/zjrosen/lexkit/internal/tracing"
)

// ErrGoldenMismatch is returned when the token dump differs from the
// golden file.
var ErrGoldenMismatch = errors.New("tokens differ from golden file")

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Compile the declaration document and optionally check a source against a golden dump",
	Long: `Compile the declaration document and report what it defines.

With a source file, also tokenize it and report diagnostics. With --golden,
compare the text token dump against the golden file and print a line diff
when they differ; --update rewrites the golden file instead.`,
	Example: `  lexkit check -d lang.yaml
  lexkit check -d lang.yaml --types
  lexkit check -d lang.yaml --golden testdata/main.tokens main.src`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("types", false, "list every compiled type with its kind and tags")
	checkCmd.Flags().String("golden", "", "golden token dump to compare against")
	checkCmd.Flags().Bool("update", false, "write the golden file instead of comparing")
	checkCmd.Flags().StringArray("tag", nil, "add a tag to a type, as type=tag (repeatable)")
	checkCmd.Flags().StringArray("balance", nil, "check that tokens tagged open and close nest, as open:close (repeatable)")
	checkCmd.Flags().StringArray("even", nil, "check that tokens carrying the tag occur an even number of times (repeatable)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	declPath, err := declarationsPath()
	if err != nil {
		return err
	}
	golden, _ := cmd.Flags().GetString("golden")
	update, _ := cmd.Flags().GetBool("update")
	listTypes, _ := cmd.Flags().GetBool("types")
	if golden != "" && len(args) == 0 {
		return fmt.Errorf("--golden needs a source file")
	}

	ctx, span := startRun(cmd.Context(), "check")
	defer span.End()
	out := cmd.OutOrStdout()

	compiled, err := comp.Compile(ctx, declPath)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("compiling %s: %w", declPath, err)
	}
	if err := applyTags(compiled.Tokenizer, scanFlags(cmd).tags); err != nil {
		return err
	}
	types := compiled.Tokenizer.Types()
	_, _ = fmt.Fprintf(out, "%s: %d types from %d files (digest %.12s)\n",
		declPath, len(types), len(compiled.Files), compiled.Digest)
	if listTypes {
		for _, t := range types {
			_, _ = fmt.Fprintf(out, "  %-24s %-8s %s\n", t.Name(), t.Kind(), strings.Join(t.Tags().List(), ","))
		}
	}
	if len(args) == 0 {
		return nil
	}

	name, src, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	res, err := scan(ctx, declPath, name, src, scanFlags(cmd), nil)
	if err != nil {
		return err
	}
	if err := presentation.NewFormatter(cmd.ErrOrStderr()).FormatDiagnostics(res.file, res.diags.Diagnostics()); err != nil {
		return err
	}
	if golden != "" {
		if err := compareGolden(out, golden, stream.Dump(res.tokens), update); err != nil {
			return err
		}
	}
	return verdict(res.diags)
}

// compareGolden compares got with the golden file, or writes it when update is set.
func compareGolden(out io.Writer, path, got string, update bool) error {
	if update {
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			return fmt.Errorf("writing golden file: %w", err)
		}
		_, _ = fmt.Fprintf(out, "updated %s\n", path)
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided golden path
	if err != nil {
		return fmt.Errorf("reading golden file: %w", err)
	}
	want := string(data)
	if want == got {
		_, _ = fmt.Fprintf(out, "%s: ok\n", path)
		return nil
	}
	_, _ = io.WriteString(out, lineDiff(want, got))
	return fmt.Errorf("%w: %s", ErrGoldenMismatch, path)
}

// lineDiff renders a unified-style diff of want and got: "-" for lines only
// in want, "+" for lines only in got, and " " for shared lines.
func lineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
