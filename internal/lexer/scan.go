package lexer

import (
	"slices"
	"unicode/utf8"

	"github.com/zjrosen/lexkit/internal/token"
)

// classify splits seg into maximal runs. The candidate set of a run is the
// intersection, over its characters, of the runs containing each one; a
// run ends when the next character would empty that set and is typed as
// its most specific surviving candidate. A character no run contains, or
// a byte that is not valid UTF-8, becomes a single Unknown token. base is
// the offset of seg in the source.
func classify(seg string, base int, runs func(rune) *Candidates[*token.Type]) []token.Token {
	var (
		out     []token.Token
		cands   []*token.Type
		scratch []*token.Type
		start   = -1
	)
	emit := func(end int) {
		out = append(out, token.Token{Text: seg[start:end], Type: cands[0], Offset: base + start})
		start = -1
	}

	for i := 0; i < len(seg); {
		r, w := utf8.DecodeRuneInString(seg[i:])
		var set *Candidates[*token.Type]
		if r != utf8.RuneError || w != 1 {
			set = runs(r)
		}

		switch {
		case set.Len() == 0:
			if start >= 0 {
				emit(i)
			}
			out = append(out, token.Token{Text: seg[i : i+w], Type: token.Unknown, Offset: base + i})
		case start < 0:
			cands = slices.AppendSeq(cands[:0], set.All())
			start = i
		default:
			scratch = scratch[:0]
			for _, c := range cands {
				if c.CharSet().Contains(r) {
					scratch = append(scratch, c)
				}
			}
			if len(scratch) == 0 {
				emit(i)
				cands = slices.AppendSeq(cands[:0], set.All())
				start = i
			} else {
				cands, scratch = scratch, cands
			}
		}
		i += w
	}
	if start >= 0 {
		emit(len(seg))
	}
	return out
}

// compose replaces, left to right, the longest sequence of elementary
// tokens spelling out a literal's pattern with a single literal token.
// Candidates are ordered longest pattern first, so the first match wins.
func compose(toks []token.Token, literals func(string) *Candidates[*token.Type]) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); {
		lit, ok := literals(toks[i].Text).First(func(lit *token.Type) bool { return matchesAt(toks, i, lit) })
		if ok {
			out = append(out, token.Token{Text: lit.Data(), Type: lit, Offset: toks[i].Offset})
			i += lit.PatternLen()
			continue
		}
		out = append(out, toks[i])
		i++
	}
	return out
}

func matchesAt(toks []token.Token, i int, lit *token.Type) bool {
	n := lit.PatternLen()
	if i+n > len(toks) {
		return false
	}
	for j := 0; j < n; j++ {
		if toks[i+j].Text != lit.PatternAt(j) {
			return false
		}
	}
	return true
}

// texts returns the text of every token.
func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}
