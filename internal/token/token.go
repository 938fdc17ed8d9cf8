// Package token defines the token records produced by the lexer and the
// closed set of token type variants they can carry.
package token

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Kind tags a Type with the variant it represents.
type Kind int

const (
	KindUnknown Kind = iota // single character matched by no run
	KindRun                 // maximal run over one character set
	KindRegion              // opaque content between an opener and a closer
	KindOpener              // opener marker of a region
	KindCloser              // closer marker of a region
	KindLiteral             // exact text composed from elementary tokens
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindRun:
		return "run"
	case KindRegion:
		return "region"
	case KindOpener:
		return "opener"
	case KindCloser:
		return "closer"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}

// Tag names attached by the lexer in addition to each type's own name.
const (
	TagOpener = "opener"
	TagCloser = "closer"
	TagIgnore = "ignore"
)

// Type is a token type. Types are compared by identity: two runs with the
// same name and character set are still different types.
type Type struct {
	kind Kind
	name string

	charSet CharSet // KindRun

	opener      string // KindRegion and its markers
	closer      string
	region      *Type // KindOpener, KindCloser
	openMarker  *Type // KindRegion
	closeMarker *Type // KindRegion

	data    string   // KindLiteral
	pattern []string // KindLiteral

	tags *Tags
}

// Unknown is the type of every character that no run contains.
var Unknown = newType(KindUnknown, "unknown-character")

func newType(kind Kind, name string) *Type {
	return &Type{kind: kind, name: name, tags: NewTags(name)}
}

// NewRun creates a run type over the given character set.
func NewRun(name string, cs CharSet) *Type {
	t := newType(KindRun, name)
	t.charSet = cs
	return t
}

// NewRegion creates a region type together with its opener and closer
// markers. An empty name defaults to "opener...closer".
func NewRegion(name, opener, closer string) *Type {
	if name == "" {
		name = opener + "..." + closer
	}
	t := newType(KindRegion, name)
	t.opener = opener
	t.closer = closer

	t.openMarker = newType(KindOpener, name+"-opener")
	t.openMarker.region = t
	t.openMarker.opener, t.openMarker.closer = opener, closer
	t.openMarker.tags.Add(TagOpener)

	t.closeMarker = newType(KindCloser, name+"-closer")
	t.closeMarker.region = t
	t.closeMarker.opener, t.closeMarker.closer = opener, closer
	t.closeMarker.tags.Add(TagCloser)
	return t
}

// NewLiteral creates a literal type. The pattern is the sequence of
// elementary token texts data decomposes into.
func NewLiteral(data string, pattern []string) *Type {
	t := newType(KindLiteral, "<"+data+">")
	t.data = data
	t.pattern = slices.Clone(pattern)
	return t
}

func (t *Type) Kind() Kind     { return t.kind }
func (t *Type) Name() string   { return t.name }
func (t *Type) String() string { return t.name }

// CharSet returns the character set of a run type.
func (t *Type) CharSet() CharSet { return t.charSet }

// Opener returns the opener string of a region or one of its markers.
func (t *Type) Opener() string { return t.opener }

// Closer returns the closer string of a region or one of its markers.
func (t *Type) Closer() string { return t.closer }

// Region returns the region a marker belongs to, or nil for other kinds.
func (t *Type) Region() *Type { return t.region }

// OpenerMarker returns the opener marker type of a region.
func (t *Type) OpenerMarker() *Type { return t.openMarker }

// CloserMarker returns the closer marker type of a region.
func (t *Type) CloserMarker() *Type { return t.closeMarker }

// Data returns the exact text of a literal type.
func (t *Type) Data() string { return t.data }

// Pattern returns the decomposed pattern of a literal type.
func (t *Type) Pattern() []string { return slices.Clone(t.pattern) }

// PatternLen returns the number of elementary tokens a literal consumes.
func (t *Type) PatternLen() int { return len(t.pattern) }

// PatternAt returns the i-th element of a literal's pattern.
func (t *Type) PatternAt(i int) string { return t.pattern[i] }

// Tags returns the mutable tag set of the type.
func (t *Type) Tags() *Tags { return t.tags }

// Is reports whether the type carries the tag.
func (t *Type) Is(tag string) bool { return t.tags.Has(tag) }

// Tags is a concurrency-safe set of strings attached to a Type.
// Consumers may add tags at any time to classify tokens.
type Tags struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewTags creates a tag set seeded with the given tags.
func NewTags(tags ...string) *Tags {
	s := &Tags{set: make(map[string]struct{}, len(tags))}
	for _, tag := range tags {
		s.set[tag] = struct{}{}
	}
	return s
}

// Add inserts tags into the set.
func (s *Tags) Add(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		s.set[tag] = struct{}{}
	}
}

// Has reports whether tag is in the set.
func (s *Tags) Has(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[tag]
	return ok
}

// List returns the tags in sorted order.
func (s *Tags) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.set))
	for tag := range s.set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Token is a lexical token. Offset is the byte offset of Text in the
// scanned source.
type Token struct {
	Text   string
	Type   *Type
	Offset int
}

// Len returns the length of the token text in bytes.
func (t Token) Len() int { return len(t.Text) }

// End returns the offset just past the token.
func (t Token) End() int { return t.Offset + len(t.Text) }

// String renders the token as "(text) as type @start-end", showing
// whitespace-only text in visible form.
func (t Token) String() string {
	var b strings.Builder
	switch {
	case t.Text == "":
		b.WriteString("()")
	case strings.TrimSpace(t.Text) == "":
		b.WriteString(VisualizeWhitespace(t.Text))
	default:
		b.WriteString("(" + t.Text + ")")
	}
	name := "<nil>"
	if t.Type != nil {
		name = t.Type.Name()
	}
	fmt.Fprintf(&b, " as %s @%d", name, t.Offset)
	if len(t.Text) > 1 {
		fmt.Fprintf(&b, "-%d", t.End())
	}
	return b.String()
}

// VisualizeWhitespace renders whitespace in parentheses with \n, \t, \r
// escaped and spaces shown as '-'. Other characters become '?'.
func VisualizeWhitespace(s string) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case ' ':
			b.WriteByte('-')
		default:
			b.WriteByte('?')
		}
	}
	b.WriteByte(')')
	return b.String()
}

// Concat joins the text of every token in order.
func Concat(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}
