package lexer

import (
	"iter"
	"slices"
	"sort"

	"github.com/zjrosen/lexkit/internal/token"
)

// Candidates is a list kept in ascending order of a key function. Items
// with equal keys stay in insertion order, so every tie-break is
// deterministic.
type Candidates[T any] struct {
	key   func(T) int
	items []T
}

// NewCandidates creates an empty list ordered by key.
func NewCandidates[T any](key func(T) int) *Candidates[T] {
	return &Candidates[T]{key: key}
}

// Insert places v after every item whose key is less than or equal to its own.
func (c *Candidates[T]) Insert(v T) {
	k := c.key(v)
	i := sort.Search(len(c.items), func(i int) bool { return c.key(c.items[i]) > k })
	c.items = slices.Insert(c.items, i, v)
}

// Len returns the number of items. A nil list is empty.
func (c *Candidates[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// All iterates over the items in priority order.
func (c *Candidates[T]) All() iter.Seq[T] {
	if c == nil {
		return func(func(T) bool) {}
	}
	return slices.Values(c.items)
}

// First returns the highest-priority item satisfying pred.
func (c *Candidates[T]) First(pred func(T) bool) (T, bool) {
	for v := range c.All() {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *Candidates[T]) clone() *Candidates[T] {
	return &Candidates[T]{key: c.key, items: slices.Clone(c.items)}
}

// Key functions for the three decision points.

// bySetSize puts the most specific run first.
func bySetSize(t *token.Type) int { return t.CharSet().Len() }

// byOpenerLength puts the longest region opener first.
func byOpenerLength(t *token.Type) int { return -len(t.Opener()) }

// byPatternLength puts the literal consuming the most tokens first.
func byPatternLength(t *token.Type) int { return -t.PatternLen() }
