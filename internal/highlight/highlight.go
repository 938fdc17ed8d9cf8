// Package highlight renders token streams with terminal colors chosen by
// token tags.
package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/lexkit/internal/token"
)

// Theme maps tags to colors. A token uses the color of its type name when
// the theme has one, then of its other tags in sorted order, then the
// default style for its kind.
type Theme map[string]lipgloss.Color

// NewTheme validates hex colors keyed by tag, as read from configuration.
func NewTheme(colors map[string]string) (Theme, error) {
	theme := make(Theme, len(colors))
	for tag, value := range colors {
		if !IsHexColor(value) {
			return nil, fmt.Errorf("invalid hex color for %s: %s", tag, value)
		}
		theme[tag] = lipgloss.Color(value)
	}
	return theme, nil
}

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}

// Highlighter renders tokens.
type Highlighter struct {
	theme Theme
}

// New creates a highlighter. A nil theme uses only kind defaults.
func New(theme Theme) *Highlighter {
	return &Highlighter{theme: theme}
}

// Render concatenates the tokens, styling each one. Whitespace-only text
// is written unstyled so layout is preserved.
func (h *Highlighter) Render(tokens []token.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			b.WriteString(tok.Text)
			continue
		}
		style := h.Style(tok.Type)
		// lipgloss pads multi-line blocks to a common width; style each line.
		for i, line := range strings.Split(tok.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

// Style returns the style used for tokens of type t.
func (h *Highlighter) Style(t *token.Type) lipgloss.Style {
	if t == nil {
		return lipgloss.NewStyle()
	}
	if c, ok := h.theme[t.Name()]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	for _, tag := range t.Tags().List() {
		if c, ok := h.theme[tag]; ok {
			return lipgloss.NewStyle().Foreground(c)
		}
	}
	if t.Is(token.TagIgnore) {
		return IgnoredStyle
	}
	switch t.Kind() {
	case token.KindLiteral:
		return LiteralStyle
	case token.KindRegion:
		return RegionStyle
	case token.KindOpener, token.KindCloser:
		return MarkerStyle
	case token.KindRun:
		return RunStyle
	case token.KindUnknown:
		return UnknownStyle
	default:
		return lipgloss.NewStyle()
	}
}
