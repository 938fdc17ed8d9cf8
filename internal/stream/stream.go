// Package stream holds helpers that consumers run over a token sequence
// after scanning: tag filters, balance checks and a readable dump.
package stream

import (
	"fmt"
	"strings"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/token"
)

// Without returns the tokens whose type carries none of the tags.
// A type's name is always one of its tags.
func Without(tokens []token.Token, tags ...string) []token.Token {
	return filter(tokens, func(t *token.Type) bool { return !hasAny(t, tags) })
}

// Only returns the tokens whose type carries at least one of the tags.
func Only(tokens []token.Token, tags ...string) []token.Token {
	return filter(tokens, func(t *token.Type) bool { return hasAny(t, tags) })
}

// Significant drops ignored tokens together with region markers, leaving
// what a parser usually wants to see.
func Significant(tokens []token.Token) []token.Token {
	return Without(tokens, token.TagIgnore, token.TagOpener, token.TagCloser)
}

func filter(tokens []token.Token, keep func(*token.Type) bool) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type != nil && keep(tok.Type) {
			out = append(out, tok)
		}
	}
	return out
}

func hasAny(t *token.Type, tags []string) bool {
	for _, tag := range tags {
		if t.Is(tag) {
			return true
		}
	}
	return false
}

// CheckEven reports an error when the number of tokens tagged tag is odd.
// The diagnostic points at the last such token.
func CheckEven(tokens []token.Token, tag string, sink diag.Sink) bool {
	var (
		count int
		last  token.Token
	)
	for _, tok := range tokens {
		if tok.Type != nil && tok.Type.Is(tag) {
			count++
			last = tok
		}
	}
	if count%2 == 0 {
		return true
	}
	report(sink, diag.Err(last, "tag count not even: %q (%d)", tag, count))
	return false
}

// CheckCounts reports an error when tokens tagged openTag and tokens tagged
// closeTag occur a different number of times, regardless of order.
func CheckCounts(tokens []token.Token, openTag, closeTag string, sink diag.Sink) bool {
	if openTag == closeTag {
		return CheckEven(tokens, openTag, sink)
	}
	var opens, closes int
	for _, tok := range tokens {
		if tok.Type == nil {
			continue
		}
		if tok.Type.Is(openTag) {
			opens++
		}
		if tok.Type.Is(closeTag) {
			closes++
		}
	}
	if opens == closes {
		return true
	}
	report(sink, diag.Diagnostic{
		Message:  fmt.Sprintf("tag counts not equal: %q (%d), %q (%d)", openTag, opens, closeTag, closes),
		Severity: diag.Error,
	})
	return false
}

// CheckBalance reports an error at the first close token that has no
// matching open token, or at the innermost open token left unmatched at
// the end. Identical tags fall back to CheckEven.
func CheckBalance(tokens []token.Token, openTag, closeTag string, sink diag.Sink) bool {
	if openTag == closeTag {
		return CheckEven(tokens, openTag, sink)
	}
	var stack []int
	for i, tok := range tokens {
		if tok.Type == nil {
			continue
		}
		switch {
		case tok.Type.Is(openTag):
			stack = append(stack, i)
		case tok.Type.Is(closeTag):
			if len(stack) == 0 {
				report(sink, diag.Err(tok, "unbalanced %q: no matching %q", tok.Text, openTag))
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		report(sink, diag.Err(tokens[top], "unbalanced %q: %d left open", tokens[top].Text, len(stack)))
		return false
	}
	return true
}

func report(sink diag.Sink, d diag.Diagnostic) {
	if sink != nil {
		sink.Report(d)
	}
}

// Dump renders one token per line in the "(text) as type @start-end" form.
func Dump(tokens []token.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.String())
		b.WriteByte('\n')
	}
	return b.String()
}
