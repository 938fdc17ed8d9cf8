package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/highlight"
	"github.com/zjrosen/lexkit/internal/source"
	"github.com/zjrosen/lexkit/internal/stream"
	"github.com/zjrosen/lexkit/internal/token"
)

// Formatter writes tokens and diagnostics in one of the output formats.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatReport writes report as indented JSON.
func (f *Formatter) FormatReport(report ReportDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// FormatTokens writes one "(text) as type @start-end" line per token.
func (f *Formatter) FormatTokens(toks []token.Token) error {
	_, err := io.WriteString(f.writer, stream.Dump(toks))
	return err
}

// FormatHighlighted writes the tokens' text with terminal colors.
func (f *Formatter) FormatHighlighted(h *highlight.Highlighter, toks []token.Token) error {
	out := h.Render(toks)
	if out != "" && out[len(out)-1] != '\n' {
		out += "\n"
	}
	_, err := io.WriteString(f.writer, out)
	return err
}

// FormatDiagnostics writes each diagnostic as "file:line:col: SEVERITY:
// message" followed by the source line and a caret.
func (f *Formatter) FormatDiagnostics(file *source.File, ds []diag.Diagnostic) error {
	for _, d := range ds {
		var err error
		if d.Token == nil {
			_, err = fmt.Fprintf(f.writer, "%s: %s: %s\n", file.Name, d.Severity, d.Message)
		} else {
			_, err = fmt.Fprintf(f.writer, "%s: %s: %s\n%s\n",
				file.Locate(d.Token.Offset), d.Severity, d.Message, file.Excerpt(d.Token.Offset))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
