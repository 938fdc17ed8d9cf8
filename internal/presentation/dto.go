package presentation

import (
	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/source"
	"github.com/zjrosen/lexkit/internal/token"
)

// TokenDTO is one token in a JSON report.
type TokenDTO struct {
	Text   string   `json:"text"`
	Type   string   `json:"type"`
	Kind   string   `json:"kind"`
	Tags   []string `json:"tags"`
	Offset int      `json:"offset"`
	End    int      `json:"end"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
}

// DiagnosticDTO is one diagnostic in a JSON report. Line and Column are
// zero when the diagnostic is not tied to a token.
type DiagnosticDTO struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Fatal    bool   `json:"fatal,omitempty"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// SummaryDTO counts what a run produced.
type SummaryDTO struct {
	Tokens   int `json:"tokens"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// ReportDTO is the JSON output of one tokenize run.
type ReportDTO struct {
	RunID        string          `json:"run_id"`
	Source       string          `json:"source"`
	Declarations string          `json:"declarations"`
	Digest       string          `json:"digest"`
	CacheHit     bool            `json:"cache_hit"`
	Summary      SummaryDTO      `json:"summary"`
	Tokens       []TokenDTO      `json:"tokens"`
	Diagnostics  []DiagnosticDTO `json:"diagnostics"`
}

// FromToken converts a token, resolving its position in file.
func FromToken(file *source.File, tok token.Token) TokenDTO {
	pos := file.Position(tok.Offset)
	dto := TokenDTO{
		Text:   tok.Text,
		Offset: tok.Offset,
		End:    tok.End(),
		Line:   pos.Line,
		Column: pos.Column,
	}
	if tok.Type != nil {
		dto.Type = tok.Type.Name()
		dto.Kind = tok.Type.Kind().String()
		dto.Tags = tok.Type.Tags().List()
	}
	return dto
}

// FromTokens converts every token.
func FromTokens(file *source.File, toks []token.Token) []TokenDTO {
	out := make([]TokenDTO, len(toks))
	for i, tok := range toks {
		out[i] = FromToken(file, tok)
	}
	return out
}

// FromDiagnostic converts a diagnostic, resolving its position in file.
func FromDiagnostic(file *source.File, d diag.Diagnostic) DiagnosticDTO {
	dto := DiagnosticDTO{
		Severity: d.Severity.String(),
		Message:  d.Message,
		Fatal:    d.Fatal,
		Offset:   d.Offset(),
	}
	if d.Token != nil {
		pos := file.Position(d.Token.Offset)
		dto.Line, dto.Column = pos.Line, pos.Column
	}
	return dto
}

// FromDiagnostics converts every diagnostic.
func FromDiagnostics(file *source.File, ds []diag.Diagnostic) []DiagnosticDTO {
	out := make([]DiagnosticDTO, len(ds))
	for i, d := range ds {
		out[i] = FromDiagnostic(file, d)
	}
	return out
}

// Summarize counts tokens and diagnostics by severity.
func Summarize(toks []token.Token, ds []diag.Diagnostic) SummaryDTO {
	s := SummaryDTO{Tokens: len(toks)}
	for _, d := range ds {
		if d.Severity == diag.Error || d.Fatal {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
	return s
}
