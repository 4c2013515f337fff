package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the interactive chat view
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// UserBubble colors the user's own messages
	UserBubble lipgloss.Color
	// AssistantBubble colors the assistant's replies
	AssistantBubble lipgloss.Color
	Accent          lipgloss.Color
	Warning         lipgloss.Color
	Error           lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	// AI29Theme follows the colors of the web chat widget
	AI29Theme = TUITheme{
		Name:        "ai29",
		Description: "AI29 - blue user bubbles on a neutral dark surface",

		Background: lipgloss.Color("#16181d"),
		Surface:    lipgloss.Color("#22252c"),
		Border:     lipgloss.Color("#3a3f4b"),

		UserBubble:      lipgloss.Color("#4f8ef7"),
		AssistantBubble: lipgloss.Color("#c9d1d9"),
		Accent:          lipgloss.Color("#7ee787"),
		Warning:         lipgloss.Color("#e3b341"),
		Error:           lipgloss.Color("#f85149"),

		Text:     lipgloss.Color("#e6edf3"),
		TextDim:  lipgloss.Color("#8b949e"),
		TextMute: lipgloss.Color("#484f58"),
	}

	// TokyoNightTheme is based on the Tokyo Night color scheme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		UserBubble:      lipgloss.Color("#7aa2f7"),
		AssistantBubble: lipgloss.Color("#c0caf5"),
		Accent:          lipgloss.Color("#bb9af7"),
		Warning:         lipgloss.Color("#e0af68"),
		Error:           lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	// DraculaTheme is based on the Dracula palette
	DraculaTheme = TUITheme{
		Name:        "dracula",
		Description: "Dracula - dark theme with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		UserBubble:      lipgloss.Color("#8be9fd"),
		AssistantBubble: lipgloss.Color("#f8f8f2"),
		Accent:          lipgloss.Color("#ff79c6"),
		Warning:         lipgloss.Color("#f1fa8c"),
		Error:           lipgloss.Color("#ff5555"),

		Text:     lipgloss.Color("#f8f8f2"),
		TextDim:  lipgloss.Color("#6272a4"),
		TextMute: lipgloss.Color("#44475a"),
	}

	// LightTheme is for bright terminals
	LightTheme = TUITheme{
		Name:        "light",
		Description: "Light - dark text on a bright background",

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f6f8fa"),
		Border:     lipgloss.Color("#d0d7de"),

		UserBubble:      lipgloss.Color("#0969da"),
		AssistantBubble: lipgloss.Color("#24292f"),
		Accent:          lipgloss.Color("#1a7f37"),
		Warning:         lipgloss.Color("#9a6700"),
		Error:           lipgloss.Color("#cf222e"),

		Text:     lipgloss.Color("#1f2328"),
		TextDim:  lipgloss.Color("#656d76"),
		TextMute: lipgloss.Color("#afb8c1"),
	}
)

var tuiThemes = map[string]TUITheme{
	AI29Theme.Name:       AI29Theme,
	TokyoNightTheme.Name: TokyoNightTheme,
	DraculaTheme.Name:    DraculaTheme,
	LightTheme.Name:      LightTheme,
}

var (
	tuiThemeMu      sync.RWMutex
	currentTUITheme = AI29Theme
)

// GetTUITheme returns the active TUI theme
func GetTUITheme() TUITheme {
	tuiThemeMu.RLock()
	defer tuiThemeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the named theme and reports whether it exists
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	tuiThemeMu.Lock()
	currentTUITheme = theme
	tuiThemeMu.Unlock()
	return true
}

// GetTUIThemeByName looks up a built-in theme
func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[name]
	return theme, ok
}

// TUIThemeNames returns the built-in theme names, default first
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		if name != AI29Theme.Name {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{AI29Theme.Name}, names...)
}
