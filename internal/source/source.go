// Package source maps byte offsets in a scanned text to line and column
// positions for reporting.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Position is a 1-based location. Column counts runes; Display counts
// terminal cells, so wide characters advance it by two. A tab counts as
// one cell, as Excerpt renders it.
type Position struct {
	Line    int
	Column  int
	Display int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// File is a named text with a line index.
type File struct {
	Name  string
	text  string
	lines []int // byte offset of each line start
}

// NewFile indexes text.
func NewFile(name, text string) *File {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{Name: name, text: text, lines: lines}
}

// Text returns the indexed text.
func (f *File) Text() string { return f.text }

// LineCount returns the number of lines; a trailing newline starts a new,
// empty line.
func (f *File) LineCount() int { return len(f.lines) }

// Position returns the location of offset. Offsets are clamped to the text.
func (f *File) Position(offset int) Position {
	offset = max(0, min(offset, len(f.text)))
	idx := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	prefix := f.text[f.lines[idx]:offset]
	return Position{
		Line:    idx + 1,
		Column:  len([]rune(prefix)) + 1,
		Display: runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", " ")) + 1,
	}
}

// Line returns line n (1-based) without its line terminator.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	start := f.lines[n-1]
	end := len(f.text)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	return strings.TrimSuffix(f.text[start:end], "\r")
}

// Locate formats offset as "name:line:col".
func (f *File) Locate(offset int) string {
	return fmt.Sprintf("%s:%s", f.Name, f.Position(offset))
}

// Excerpt returns the line holding offset followed by a caret under the
// offending character, aligned by display width.
func (f *File) Excerpt(offset int) string {
	pos := f.Position(offset)
	line := strings.ReplaceAll(f.Line(pos.Line), "\t", " ")
	return line + "\n" + strings.Repeat(" ", pos.Display-1) + "^"
}
