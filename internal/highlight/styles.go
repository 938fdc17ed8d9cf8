package highlight

import "github.com/charmbracelet/lipgloss"

// Default colors per token kind (Catppuccin inspired).
var (
	LiteralColor = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	RegionColor  = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow
	MarkerColor  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // blue
	RunColor     = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal
	IgnoredColor = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"} // overlay
	UnknownColor = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"} // red
)

var (
	// LiteralStyle for exact-text tokens such as keywords and operators
	LiteralStyle = lipgloss.NewStyle().
			Foreground(LiteralColor).
			Bold(true)

	// RegionStyle for region content
	RegionStyle = lipgloss.NewStyle().
			Foreground(RegionColor)

	// MarkerStyle for region openers and closers
	MarkerStyle = lipgloss.NewStyle().
			Foreground(MarkerColor).
			Bold(true)

	RunStyle = lipgloss.NewStyle().
			Foreground(RunColor)

	// IgnoredStyle for tokens tagged ignore (comments, whitespace)
	IgnoredStyle = lipgloss.NewStyle().
			Foreground(IgnoredColor).
			Italic(true)

	// UnknownStyle for characters no run accepts
	UnknownStyle = lipgloss.NewStyle().
			Foreground(UnknownColor).
			Underline(true)
)
