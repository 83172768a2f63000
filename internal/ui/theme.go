package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines colors for the UI.
type Theme struct {
	Text      string
	Muted     string
	Accent    string
	Success   string
	Warning   string
	Danger    string
	Selection string
}

func defaultTheme() Theme {
	return Theme{
		Text:      "#f8f8f2",
		Muted:     "#6272a4",
		Accent:    "#ff79c6",
		Success:   "#50fa7b",
		Warning:   "#f1fa8c",
		Danger:    "#ff5555",
		Selection: "#44475a",
	}
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Selection)).
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),

		ProgressFill: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2),
	}
}

// Styles holds the rendered lipgloss styles.
type Styles struct {
	Title        lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Danger       lipgloss.Style
	Selected     lipgloss.Style
	ProgressFill lipgloss.Style
	Modal        lipgloss.Style
}
