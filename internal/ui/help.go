package ui

import "strings"

type helpItem struct {
	keys string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
				{"1", "Gift list"},
				{"2/s", "Stats"},
				{"esc", "Back to gifts"},
			},
		},
		{
			title: "Gifts",
			items: []helpItem{
				{"r", "Reserve gift"},
				{"c", "Contribute"},
			},
		},
		{
			title: "Owner",
			items: []helpItem{
				{"a", "Add gift"},
				{"e", "Edit gift"},
				{"d", "Delete gift"},
				{"ctrl+p", "Fill form from link"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(m.styles.Text.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(m.styles.Warning.Render(padRight(item.keys, 10)))
			b.WriteString(m.styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Press any key to close"))
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
