package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/zjrosen/lexkit/internal/token"
)

// Builder compiles definitions into lookup indices. Once a Seal definition
// is processed the builder hands out an immutable Tokenizer and rejects
// further definitions.
type Builder struct {
	runs     map[rune]*Candidates[*token.Type]
	regions  map[rune]*Candidates[*token.Type]
	literals map[string]*Candidates[*token.Type]
	seen     map[string]struct{} // literal data already registered
	types    []*token.Type
	result   *Tokenizer
}

// NewBuilder creates an empty, unsealed builder.
func NewBuilder() *Builder {
	return &Builder{
		runs:     make(map[rune]*Candidates[*token.Type]),
		regions:  make(map[rune]*Candidates[*token.Type]),
		literals: make(map[string]*Candidates[*token.Type]),
		seen:     make(map[string]struct{}),
	}
}

// Sealed reports whether a Seal definition has been processed.
func (b *Builder) Sealed() bool { return b.result != nil }

// Define adds one definition. Runs must be defined before any literal
// whose text they classify.
func (b *Builder) Define(def Definition) error {
	if b.Sealed() {
		return fmt.Errorf("%s: %w", def, ErrSealed)
	}
	switch def.Kind {
	case DefRun:
		return b.defineRun(def)
	case DefRegion:
		return b.defineRegion(def)
	case DefLiteral:
		return b.defineLiteral(def)
	case DefSeal:
		b.seal()
		return nil
	case DefMissing:
		return ErrMissingKind
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, def.Kind)
	}
}

// Tokenizer returns the sealed tokenizer.
func (b *Builder) Tokenizer() (*Tokenizer, error) {
	if b.result == nil {
		return nil, ErrNotSealed
	}
	return b.result, nil
}

func (b *Builder) defineRun(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%s: %w", def, ErrMissingName)
	}
	cs, err := ParseCharSet(def.CharSet)
	if err != nil {
		return fmt.Errorf("%s: %w", def, err)
	}

	t := token.NewRun(def.Name, cs)
	if def.Ignore {
		t.Tags().Add(token.TagIgnore)
	}
	for _, r := range cs.Runes() {
		c, ok := b.runs[r]
		if !ok {
			c = NewCandidates(bySetSize)
			b.runs[r] = c
		}
		c.Insert(t)
	}
	b.types = append(b.types, t)
	return nil
}

func (b *Builder) defineRegion(def Definition) error {
	opener, err := Unescape(def.Opener)
	if err != nil {
		return fmt.Errorf("%s: opener: %w", def, err)
	}
	closer, err := Unescape(def.Closer)
	if err != nil {
		return fmt.Errorf("%s: closer: %w", def, err)
	}
	if opener == "" || closer == "" {
		return fmt.Errorf("%s: %w: opener and closer are required", def, ErrEmptyPattern)
	}

	t := token.NewRegion(def.Name, opener, closer)
	if def.Ignore {
		t.Tags().Add(token.TagIgnore)
		t.OpenerMarker().Tags().Add(token.TagIgnore)
		t.CloserMarker().Tags().Add(token.TagIgnore)
	}
	first, _ := utf8.DecodeRuneInString(opener)
	c, ok := b.regions[first]
	if !ok {
		c = NewCandidates(byOpenerLength)
		b.regions[first] = c
	}
	c.Insert(t)
	b.types = append(b.types, t)
	return nil
}

func (b *Builder) defineLiteral(def Definition) error {
	data, err := Unescape(def.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", def, err)
	}
	if data == "" {
		return fmt.Errorf("%s: %w", def, ErrEmptyPattern)
	}
	if _, dup := b.seen[data]; dup {
		return nil
	}
	b.seen[data] = struct{}{}

	pattern := texts(classify(data, 0, b.runsContaining))
	t := token.NewLiteral(data, pattern)
	c, ok := b.literals[pattern[0]]
	if !ok {
		c = NewCandidates(byPatternLength)
		b.literals[pattern[0]] = c
	}
	c.Insert(t)
	b.types = append(b.types, t)
	return nil
}

func (b *Builder) runsContaining(r rune) *Candidates[*token.Type] { return b.runs[r] }

// seal freezes the indices into a Tokenizer.
func (b *Builder) seal() {
	t := &Tokenizer{
		runs:     make(map[rune]*Candidates[*token.Type], len(b.runs)),
		regions:  make(map[rune]*Candidates[*token.Type], len(b.regions)),
		literals: make(map[string]*Candidates[*token.Type], len(b.literals)),
		types:    append([]*token.Type(nil), b.types...),
	}
	for r, c := range b.runs {
		t.runs[r] = c.clone()
	}
	for r, c := range b.regions {
		t.regions[r] = c.clone()
	}
	for head, c := range b.literals {
		t.literals[head] = c.clone()
	}
	b.result = t
}
