package lexer

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/lexkit/internal/log"
)

// Loader collects definitions in any order of arrival and replays them to
// a Builder ordered by kind: runs, then regions, then literals. Within a
// kind, arrival order is kept. Add is safe for concurrent use; all Adds
// must complete before Build.
type Loader struct {
	mu      sync.Mutex
	pending []Definition
	ended   bool // an explicit end definition was added
	built   bool
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Add queues definitions. An end definition closes the loader: later
// definitions are rejected with ErrSealed, as is anything added after Build.
func (l *Loader) Add(defs ...Definition) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, def := range defs {
		if l.built || l.ended {
			return fmt.Errorf("%s: %w", def, ErrSealed)
		}
		switch def.Kind {
		case DefRun, DefRegion, DefLiteral:
			l.pending = append(l.pending, def)
		case DefSeal:
			l.ended = true
		case DefMissing:
			return ErrMissingKind
		default:
			return fmt.Errorf("%w: %s", ErrUnknownKind, def.Kind)
		}
	}
	return nil
}

// Len returns the number of queued definitions.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Build defines every queued definition in kind order, seals, and returns
// the tokenizer. A loader can be built only once.
func (l *Loader) Build() (*Tokenizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.built {
		return nil, ErrSealed
	}
	l.built = true

	ordered := slices.Clone(l.pending)
	slices.SortStableFunc(ordered, func(a, b Definition) int {
		return cmp.Compare(a.Kind.priority(), b.Kind.priority())
	})

	b := NewBuilder()
	for _, def := range ordered {
		if err := b.Define(def); err != nil {
			log.ErrorErr(log.CatLexer, "definition rejected", err)
			return nil, err
		}
	}
	if err := b.Define(Seal()); err != nil {
		return nil, err
	}

	t, err := b.Tokenizer()
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatLexer, "tokenizer sealed", "definitions", len(ordered), "types", len(t.types))
	return t, nil
}

// Compile builds a sealed tokenizer from definitions given in any order.
// No tokenizer is returned if any definition is rejected.
func Compile(defs ...Definition) (*Tokenizer, error) {
	l := NewLoader()
	if err := l.Add(defs...); err != nil {
		return nil, err
	}
	return l.Build()
}
