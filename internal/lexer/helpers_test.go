package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/token"
)

// tok is a comparable view of a token.
type tok struct {
	Text string
	Type string
	Off  int
}

func view(toks []token.Token) []tok {
	out := make([]tok, len(toks))
	for i, t := range toks {
		out[i] = tok{Text: t.Text, Type: t.Type.Name(), Off: t.Offset}
	}
	return out
}

func mustCompile(t testing.TB, defs ...Definition) *Tokenizer {
	t.Helper()
	tz, err := Compile(defs...)
	require.NoError(t, err)
	require.NotNil(t, tz)
	return tz
}

func scan(tz *Tokenizer, src string) ([]token.Token, *diag.Collector) {
	c := diag.NewCollector()
	return tz.Tokenize(src, c), c
}

// sampleDefs resembles a small programming language.
func sampleDefs() []Definition {
	return []Definition{
		Literal("if"),
		Literal("=="),
		Literal("==="),
		Literal("->"),
		Run("whitespace", `\t `).Ignored(),
		Run("newline", `\n\r`),
		Run("number", "[0-9]"),
		Run("identifier", "[0-9][A-Z][a-z]_"),
		Run("operator", "=-+<>!"),
		Region("string", "'", "'"),
		Region("comment", "//", `\n`).Ignored(),
		Region("block", "/*", "*/").Ignored(),
	}
}
