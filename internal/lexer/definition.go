package lexer

import (
	"fmt"
	"strings"
)

// DefKind identifies the kind of a Definition.
type DefKind int

const (
	DefMissing DefKind = iota
	DefRun
	DefRegion
	DefLiteral
	DefSeal
)

func (k DefKind) String() string {
	switch k {
	case DefMissing:
		return "missing"
	case DefRun:
		return "run"
	case DefRegion:
		return "region"
	case DefLiteral:
		return "literal"
	case DefSeal:
		return "end"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// priority orders definitions for the builder: every run must exist
// before a literal is decomposed, and regions are registered before
// literals so their openers are known first.
func (k DefKind) priority() int {
	switch k {
	case DefRun:
		return 1
	case DefRegion:
		return 2
	case DefLiteral:
		return 3
	default:
		return 4
	}
}

// ParseDefKind maps a declaration kind name to a DefKind. Both the
// current names and the older streak/kept/verbatim/seal names are accepted.
func ParseDefKind(s string) (DefKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefMissing, ErrMissingKind
	case "run", "streak":
		return DefRun, nil
	case "region", "kept":
		return DefRegion, nil
	case "literal", "verbatim":
		return DefLiteral, nil
	case "end", "seal":
		return DefSeal, nil
	default:
		return DefMissing, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Definition is one pattern declaration. Which fields are meaningful
// depends on Kind:
//
//	DefRun:     Name, CharSet, Ignore
//	DefRegion:  Name (optional), Opener, Closer, Ignore
//	DefLiteral: Data
//	DefSeal:    nothing
//
// String fields hold declaration text; escapes are resolved when the
// definition is compiled.
type Definition struct {
	Kind    DefKind
	Name    string
	CharSet string
	Opener  string
	Closer  string
	Data    string
	Ignore  bool
}

// Run declares a character run over the characters described by charSet.
func Run(name, charSet string) Definition {
	return Definition{Kind: DefRun, Name: name, CharSet: charSet}
}

// Region declares a delimited region. An empty name defaults to
// "opener...closer".
func Region(name, opener, closer string) Definition {
	return Definition{Kind: DefRegion, Name: name, Opener: opener, Closer: closer}
}

// Literal declares an exact text.
func Literal(data string) Definition {
	return Definition{Kind: DefLiteral, Data: data}
}

// Seal ends the definition phase.
func Seal() Definition {
	return Definition{Kind: DefSeal}
}

// Ignored returns a copy of d whose types will carry the ignore tag.
func (d Definition) Ignored() Definition {
	d.Ignore = true
	return d
}

func (d Definition) String() string {
	switch d.Kind {
	case DefRun:
		return fmt.Sprintf("run %q [%s]", d.Name, d.CharSet)
	case DefRegion:
		return fmt.Sprintf("region %q %q...%q", d.Name, d.Opener, d.Closer)
	case DefLiteral:
		return fmt.Sprintf("literal %q", d.Data)
	default:
		return d.Kind.String()
	}
}
