// Package decl reads declaration documents: YAML files listing the runs,
// regions and literals a tokenizer is compiled from.
//
//	include:
//	  - common.yaml
//	definitions:
//	  - kind: run
//	    name: whitespace
//	    char-set: '\t '
//	    ignore: true
//	  - kind: region
//	    name: string
//	    opener: "'"
//	    closer: "'"
//	  - kind: literal
//	    data: [if, else]
//	  - kind: end
package decl

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/lexkit/internal/lexer"
	"github.com/zjrosen/lexkit/internal/log"
)

var (
	ErrIncludeCycle = errors.New("include cycle")
	ErrAfterEnd     = errors.New("definition after end")
)

// stringList accepts either a scalar or a sequence of scalars.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

type record struct {
	Kind    string     `yaml:"kind"`
	Name    string     `yaml:"name"`
	CharSet stringList `yaml:"char-set"`
	Opener  string     `yaml:"opener"`
	Closer  string     `yaml:"closer"`
	Data    stringList `yaml:"data"`
	Ignore  bool       `yaml:"ignore"`
}

type document struct {
	Include     []string    `yaml:"include"`
	Definitions []yaml.Node `yaml:"definitions"`
}

// Document is one parsed declaration file.
type Document struct {
	Includes    []string
	Definitions []lexer.Definition
	Ended       bool // the document closed with an end record
}

// Parse decodes a declaration document. name is used in error messages.
func Parse(data []byte, name string) (*Document, error) {
	var raw document
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc := &Document{Includes: raw.Include}
	for i := range raw.Definitions {
		node := &raw.Definitions[i]
		if doc.Ended {
			return nil, fmt.Errorf("%s:%d: %w", name, node.Line, ErrAfterEnd)
		}

		var rec record
		if err := node.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, node.Line, err)
		}
		defs, err := rec.definitions()
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, node.Line, err)
		}
		for _, def := range defs {
			if def.Kind == lexer.DefSeal {
				doc.Ended = true
				continue
			}
			doc.Definitions = append(doc.Definitions, def)
		}
	}
	return doc, nil
}

func (r record) definitions() ([]lexer.Definition, error) {
	kind, err := lexer.ParseDefKind(r.Kind)
	if err != nil {
		return nil, err
	}

	var def lexer.Definition
	switch kind {
	case lexer.DefRun:
		def = lexer.Run(r.Name, strings.Join(r.CharSet, ""))
	case lexer.DefRegion:
		def = lexer.Region(r.Name, r.Opener, r.Closer)
	case lexer.DefLiteral:
		if len(r.Data) == 0 {
			return nil, fmt.Errorf("literal: %w", lexer.ErrEmptyPattern)
		}
		defs := make([]lexer.Definition, len(r.Data))
		for i, data := range r.Data {
			defs[i] = lexer.Literal(data)
		}
		return defs, nil
	case lexer.DefSeal:
		return []lexer.Definition{lexer.Seal()}, nil
	}
	def.Ignore = r.Ignore
	return []lexer.Definition{def}, nil
}

// Result is the outcome of loading a document and its includes.
type Result struct {
	Definitions []lexer.Definition
	Files       []string // every file read, in load order
	Digest      string   // sha256 over the contents of Files
}

// LoadFile reads the document at path and, depth first, every document
// it includes. Include paths are relative to the including file.
// Definitions from an include precede those of the including document.
func LoadFile(path string) (*Result, error) {
	l := &loader{
		active: make(map[string]bool),
		done:   make(map[string]bool),
		digest: sha256.New(),
	}
	if err := l.load(path); err != nil {
		return nil, err
	}
	log.Debug(log.CatDecl, "loaded declarations", "path", path, "files", len(l.files), "definitions", len(l.defs))
	return &Result{
		Definitions: l.defs,
		Files:       l.files,
		Digest:      hex.EncodeToString(l.digest.Sum(nil)),
	}, nil
}

type loader struct {
	active map[string]bool
	done   map[string]bool
	files  []string
	defs   []lexer.Definition
	digest hash.Hash
}

func (l *loader) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if l.active[abs] {
		return fmt.Errorf("%s: %w", path, ErrIncludeCycle)
	}
	if l.done[abs] {
		return nil
	}
	l.active[abs] = true
	defer delete(l.active, abs)

	data, err := os.ReadFile(abs) //nolint:gosec // G304: declaration path chosen by the user
	if err != nil {
		return fmt.Errorf("reading declarations: %w", err)
	}
	doc, err := Parse(data, path)
	if err != nil {
		log.ErrorErr(log.CatDecl, "parse failed", err, "path", path)
		return err
	}

	for _, inc := range doc.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(abs), inc)
		}
		if err := l.load(inc); err != nil {
			return fmt.Errorf("%s: include: %w", path, err)
		}
	}

	l.done[abs] = true
	l.files = append(l.files, abs)
	_, _ = l.digest.Write(data)
	l.defs = append(l.defs, doc.Definitions...)
	return nil
}

// Compile loads the document at path and compiles it.
func Compile(path string) (*lexer.Tokenizer, *Result, error) {
	res, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	tz, err := lexer.Compile(res.Definitions...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return tz, res, nil
}
