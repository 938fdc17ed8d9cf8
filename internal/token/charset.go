package token

import (
	"sort"
	"strings"
)

// CharSet is an immutable set of characters.
type CharSet struct {
	runes map[rune]struct{}
}

// NewCharSet builds a set from the characters of the given strings.
func NewCharSet(parts ...string) CharSet {
	cs := CharSet{runes: make(map[rune]struct{})}
	for _, part := range parts {
		for _, r := range part {
			cs.runes[r] = struct{}{}
		}
	}
	return cs
}

// Contains reports whether r is in the set.
func (cs CharSet) Contains(r rune) bool {
	_, ok := cs.runes[r]
	return ok
}

// Len returns the number of characters in the set.
func (cs CharSet) Len() int { return len(cs.runes) }

// Runes returns the characters of the set in ascending order.
func (cs CharSet) Runes() []rune {
	out := make([]rune, 0, len(cs.runes))
	for r := range cs.runes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String returns the characters of the set in ascending order.
func (cs CharSet) String() string {
	var b strings.Builder
	for _, r := range cs.Runes() {
		b.WriteRune(r)
	}
	return b.String()
}
