package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/token"
)

// Tokenizer is a sealed set of compiled definitions. It has no mutating
// methods and is safe for concurrent use.
type Tokenizer struct {
	runs     map[rune]*Candidates[*token.Type]   // by contained character, most specific first
	regions  map[rune]*Candidates[*token.Type]   // by first opener character, longest opener first
	literals map[string]*Candidates[*token.Type] // by first pattern element, longest pattern first
	types    []*token.Type
}

// Types returns every type defined, in definition order. Region markers
// are reachable through their region.
func (t *Tokenizer) Types() []*token.Type {
	return append([]*token.Type(nil), t.types...)
}

// Lookup returns the first defined type with the given name, or nil.
func (t *Tokenizer) Lookup(name string) *token.Type {
	for _, typ := range t.types {
		if typ.Name() == name {
			return typ
		}
	}
	return nil
}

// Tokenize scans src once and returns tokens covering all of it, in order.
// Content problems never fail the scan: unknown characters are reported to
// sink as warnings and an unclosed region as an error on its opener.
// A nil sink discards diagnostics.
func (t *Tokenizer) Tokenize(src string, sink diag.Sink) []token.Token {
	if sink == nil {
		sink = diag.Discard
	}
	out := make([]token.Token, 0, len(src)/4+1)
	flushed := 0

	for i := 0; i < len(src); {
		r, w := utf8.DecodeRuneInString(src[i:])
		region := t.openerAt(src, i, r)
		if region == nil {
			i += w
			continue
		}

		out = t.appendSegment(out, src[flushed:i], flushed, sink)
		opener := token.Token{Text: region.Opener(), Type: region.OpenerMarker(), Offset: i}
		out = append(out, opener)

		start := i + len(region.Opener())
		n := strings.Index(src[start:], region.Closer())
		if n < 0 {
			if strings.TrimSpace(region.Closer()) != "" {
				sink.Report(diag.Err(opener, "unclosed region %s: %q opened but not closed", region.Name(), region.Opener()))
			}
			return append(out, token.Token{Text: src[start:], Type: region, Offset: start})
		}

		end := start + n
		out = append(out,
			token.Token{Text: src[start:end], Type: region, Offset: start},
			token.Token{Text: region.Closer(), Type: region.CloserMarker(), Offset: end},
		)
		i = end + len(region.Closer())
		flushed = i
	}

	return t.appendSegment(out, src[flushed:], flushed, sink)
}

// openerAt returns the region whose opener occurs at src[i:], preferring
// the longest opener.
func (t *Tokenizer) openerAt(src string, i int, r rune) *token.Type {
	region, _ := t.regions[r].First(func(region *token.Type) bool {
		return strings.HasPrefix(src[i:], region.Opener())
	})
	return region
}

// appendSegment classifies a stretch of text outside any region and
// composes literals over it. Unknown characters left after composition
// are reported.
func (t *Tokenizer) appendSegment(out []token.Token, seg string, base int, sink diag.Sink) []token.Token {
	if seg == "" {
		return out
	}
	for _, tok := range compose(classify(seg, base, t.runsContaining), t.literalsStartingWith) {
		if tok.Type == token.Unknown {
			sink.Report(diag.Warn(tok, "unknown character %q", tok.Text))
		}
		out = append(out, tok)
	}
	return out
}

func (t *Tokenizer) runsContaining(r rune) *Candidates[*token.Type] { return t.runs[r] }

func (t *Tokenizer) literalsStartingWith(head string) *Candidates[*token.Type] {
	return t.literals[head]
}
