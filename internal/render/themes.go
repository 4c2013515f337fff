package render

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names
const (
	StyleAI29       = "ai29"
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// StyleInfo describes a markdown style for listings.
type StyleInfo struct {
	Name        string
	Description string
}

// MarkdownStyles lists the styles accepted by Options.Style besides file paths.
func MarkdownStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleAI29, Description: "Dark style with AI29 link and heading colors (default)"},
		{Name: StyleDark, Description: "glamour dark"},
		{Name: StyleLight, Description: "glamour light, for bright terminals"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// IsBuiltinStyle reports whether style names a built-in style rather than a file.
func IsBuiltinStyle(style string) bool {
	if style == StyleAI29 {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// styleOption selects the glamour style for a name or path
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == StyleAI29:
		return glamour.WithStyles(ai29StyleConfig())
	default:
		// WithStylePath accepts both standard style names and JSON files
		return glamour.WithStylePath(style)
	}
}

// ai29StyleConfig is glamour's dark style with the chat page's accents
func ai29StyleConfig() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	accent := "#4F8EF7"
	muted := "#8A8F98"

	cfg.Link.Color = &accent
	cfg.LinkText.Color = &accent
	cfg.H1.Color = &accent
	cfg.H2.Color = &accent
	cfg.BlockQuote.Color = &muted
	return cfg
}
