package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the inspector. Frozen and Free mark component state, Text
// the detail pane.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Frozen  lipgloss.Color
	Free    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Frozen:  lipgloss.Color("#00ffff"),
		Free:    lipgloss.Color("#ff8800"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Frozen:  lipgloss.Color("#aaaaaa"),
		Free:    lipgloss.Color("#00ff00"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Frozen:  lipgloss.Color("#4488aa"),
		Free:    lipgloss.Color("#00ff88"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeMinimal, ThemeOcean}
)

func themeIndex(name string) (int, bool) {
	for i, t := range Themes {
		if t.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (t Theme) stateStyle(frozen bool) lipgloss.Style {
	if frozen {
		return lipgloss.NewStyle().Foreground(t.Frozen)
	}
	return lipgloss.NewStyle().Foreground(t.Free)
}
