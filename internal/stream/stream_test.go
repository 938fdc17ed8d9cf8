package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/lexer"
	"github.com/zjrosen/lexkit/internal/token"
)

// parens compiles a tiny language where "(" and ")" are literals tagged
// lparen and rparen, and '|' is a literal tagged bar.
func parens(t *testing.T) *lexer.Tokenizer {
	t.Helper()
	tz, err := lexer.Compile(
		lexer.Run("word", "[a-z]"),
		lexer.Run("space", " ").Ignored(),
		lexer.Literal("("),
		lexer.Literal(")"),
		lexer.Literal("|"),
		lexer.Region("string", `"`, `"`),
	)
	require.NoError(t, err)
	tz.Lookup("<(>").Tags().Add("lparen")
	tz.Lookup("<)>").Tags().Add("rparen")
	tz.Lookup("<|>").Tags().Add("bar")
	return tz
}

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

func TestWithout(t *testing.T) {
	tz := parens(t)
	toks := tz.Tokenize(`(a "b c")`, nil)

	require.Equal(t, []string{"(", "a", `"`, "b c", `"`, ")"}, texts(Without(toks, token.TagIgnore)))
	require.Equal(t, []string{"(", "a", "b c", ")"}, texts(Without(toks, token.TagIgnore, token.TagOpener, token.TagCloser)))
	require.Equal(t, texts(Without(toks, token.TagIgnore, token.TagOpener, token.TagCloser)), texts(Significant(toks)))
	require.Equal(t, toks, Without(toks))
}

func TestWithout_ByTypeName(t *testing.T) {
	tz := parens(t)
	toks := tz.Tokenize("a b", nil)
	require.Equal(t, []string{" "}, texts(Without(toks, "word")))
}

func TestOnly(t *testing.T) {
	tz := parens(t)
	toks := tz.Tokenize("(a)(b)", nil)
	require.Equal(t, []string{"(", ")", "(", ")"}, texts(Only(toks, "lparen", "rparen")))
	require.Empty(t, Only(toks))
}

func TestCheckBalance(t *testing.T) {
	tz := parens(t)
	tests := []struct {
		name    string
		src     string
		ok      bool
		offset  int
		message string
	}{
		{name: "empty", src: "", ok: true},
		{name: "nested", src: "(a (b) (c))", ok: true},
		{name: "stray closer", src: "a) (b", ok: false, offset: 1, message: `unbalanced ")": no matching "lparen"`},
		{name: "left open", src: "((a)", ok: false, offset: 0, message: `unbalanced "(": 1 left open`},
		{name: "innermost reported", src: "( (", ok: false, offset: 2, message: `unbalanced "(": 2 left open`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := diag.NewCollector()
			ok := CheckBalance(tz.Tokenize(tt.src, nil), "lparen", "rparen", c)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Zero(t, c.Len())
				return
			}
			ds := c.Diagnostics()
			require.Len(t, ds, 1)
			require.Equal(t, diag.Error, ds[0].Severity)
			require.False(t, ds[0].Fatal)
			require.Equal(t, tt.offset, ds[0].Offset())
			require.Equal(t, tt.message, ds[0].Message)
		})
	}
}

func TestCheckBalance_SameTagChecksParity(t *testing.T) {
	tz := parens(t)
	c := diag.NewCollector()
	require.True(t, CheckBalance(tz.Tokenize("|a|", nil), "bar", "bar", c))
	require.False(t, CheckBalance(tz.Tokenize("|a|b|", nil), "bar", "bar", c))

	ds := c.Diagnostics()
	require.Len(t, ds, 1)
	require.Equal(t, 4, ds[0].Offset())
	require.Equal(t, `tag count not even: "bar" (3)`, ds[0].Message)
}

func TestCheckCounts_IgnoresOrder(t *testing.T) {
	tz := parens(t)
	c := diag.NewCollector()
	require.True(t, CheckCounts(tz.Tokenize(")a(", nil), "lparen", "rparen", c))
	require.False(t, CheckCounts(tz.Tokenize("((a)", nil), "lparen", "rparen", c))

	ds := c.Diagnostics()
	require.Len(t, ds, 1)
	require.Equal(t, -1, ds[0].Offset())
	require.Contains(t, ds[0].Message, `"lparen" (2), "rparen" (1)`)
}

func TestChecks_NilSink(t *testing.T) {
	tz := parens(t)
	toks := tz.Tokenize("(", nil)
	require.False(t, CheckBalance(toks, "lparen", "rparen", nil))
	require.False(t, CheckEven(toks, "lparen", nil))
}

func TestDump(t *testing.T) {
	tz := parens(t)
	got := Dump(tz.Tokenize("(ab \n", nil))
	require.Equal(t, "(() as <(> @0\n(ab) as word @1-3\n(-) as space @3\n(\\n) as unknown-character @4\n", got)
}
