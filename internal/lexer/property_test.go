package lexer

import (
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/token"
)

// alphabet mixes characters every sample definition cares about with a
// few nobody declares.
const alphabet = "ifxyz019_ \t\n=->!'/*$é"

func sourceGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringOf(rapid.SampledFrom([]rune(alphabet))),
		rapid.String(),
		rapid.Map(rapid.SliceOf(rapid.Byte()), func(b []byte) string { return string(b) }),
	)
}

func requireGapFree(t require.TestingT, src string, toks []token.Token) {
	require.Equal(t, src, token.Concat(toks), "tokens must reproduce the source")
	off := 0
	for i, tok := range toks {
		require.Equal(t, off, tok.Offset, "token %d starts where the previous ended", i)
		require.NotNil(t, tok.Type)
		off = tok.End()
	}
	require.Equal(t, len(src), off)
}

func TestProperty_RoundTrip(t *testing.T) {
	tz := mustCompile(t, sampleDefs()...)
	rapid.Check(t, func(t *rapid.T) {
		src := sourceGen().Draw(t, "src")
		toks := tz.Tokenize(src, diag.Discard)
		requireGapFree(t, src, toks)
	})
}

func TestProperty_RoundTripWithRandomDefinitions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chars := rapid.SampledFrom([]rune("ab1=/*' \n"))
		piece := rapid.StringOfN(chars, 1, 3, -1)

		var defs []Definition
		for i, n := 0, rapid.IntRange(0, 3).Draw(t, "runs"); i < n; i++ {
			defs = append(defs, Run("run", piece.Draw(t, "charset")))
		}
		for i, n := 0, rapid.IntRange(0, 2).Draw(t, "regions"); i < n; i++ {
			defs = append(defs, Region("", piece.Draw(t, "opener"), piece.Draw(t, "closer")))
		}
		for i, n := 0, rapid.IntRange(0, 3).Draw(t, "literals"); i < n; i++ {
			defs = append(defs, Literal(piece.Draw(t, "literal")))
		}

		tz, err := Compile(defs...)
		require.NoError(t, err)

		src := rapid.StringOf(chars).Draw(t, "src")
		requireGapFree(t, src, tz.Tokenize(src, diag.Discard))
	})
}

func TestProperty_ZeroDeclarations(t *testing.T) {
	tz := mustCompile(t)
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.String().Draw(t, "src")
		c := diag.NewCollector()
		toks := tz.Tokenize(src, c)

		require.Len(t, toks, utf8.RuneCountInString(src))
		for _, tok := range toks {
			require.Same(t, token.Unknown, tok.Type)
			require.Equal(t, 1, utf8.RuneCountInString(tok.Text))
		}
		require.Equal(t, len(toks), c.Count(diag.Warning))
	})
}

func TestProperty_Deterministic(t *testing.T) {
	tz := mustCompile(t, sampleDefs()...)
	rapid.Check(t, func(t *rapid.T) {
		src := sourceGen().Draw(t, "src")
		first, d1 := scan(tz, src)
		second, d2 := scan(tz, src)
		require.Equal(t, first, second)
		require.Equal(t, d1.Diagnostics(), d2.Diagnostics())
	})
}

func TestProperty_ContentDiagnosticsAreNeverFatal(t *testing.T) {
	tz := mustCompile(t, sampleDefs()...)
	rapid.Check(t, func(t *rapid.T) {
		src := sourceGen().Draw(t, "src")
		_, c := scan(tz, src)
		for _, d := range c.Diagnostics() {
			require.False(t, d.Fatal)
			require.NotNil(t, d.Token)
		}
	})
}

func TestTokenizer_ConcurrentUse(t *testing.T) {
	tz := mustCompile(t, sampleDefs()...)
	src := "if a == 'b' // c\n x -> 12 /* d */ $ é"
	want, _ := scan(tz, src)

	var wg sync.WaitGroup
	results := make([][]token.Token, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tz.Tokenize(src, diag.NewCollector())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}
