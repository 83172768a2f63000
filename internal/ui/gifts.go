package ui

import (
	"fmt"
	"strings"
)

const progressBarWidth = 24

// renderGifts draws the gift list with the cursor row expanded.
func (m Model) renderGifts() string {
	gifts := m.snapshot.Gifts
	if len(gifts) == 0 {
		return m.styles.Muted.Render("No gifts yet.")
	}

	var b strings.Builder
	for i, gift := range gifts {
		selected := i == m.selectedRow

		cursor := "  "
		if selected {
			cursor = "▸ "
		}

		title := gift.Title
		if gift.IsReserved {
			title += "  " + m.styles.Success.Render("reserved")
			if gift.ReservedBy != nil && gift.ReservedBy.Name != "" {
				title += m.styles.Muted.Render(" by " + gift.ReservedBy.Name)
			}
		}

		line := cursor + title
		if selected {
			b.WriteString(m.styles.Selected.Render(line))
		} else {
			b.WriteString(m.styles.Text.Render(line))
		}
		b.WriteString("\n")

		b.WriteString("    ")
		b.WriteString(m.renderProgress(gift.Progress))
		b.WriteString("  ")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s / %s", formatMoney(gift.Collected), formatMoney(gift.Price))))
		b.WriteString("\n")

		if selected {
			b.WriteString(m.renderGiftDetail(i))
		}
	}
	return b.String()
}

// renderGiftDetail expands link and contributor info for the cursor row.
func (m Model) renderGiftDetail(idx int) string {
	gift := m.snapshot.Gifts[idx]

	var b strings.Builder
	if gift.URL != "" {
		b.WriteString("    ")
		b.WriteString(m.styles.Muted.Render(gift.URL))
		b.WriteString("\n")
	}
	for _, c := range gift.Contributors {
		name := c.UserName
		if name == "" {
			name = "someone"
		}
		b.WriteString("    ")
		b.WriteString(m.styles.Text.Render(fmt.Sprintf("%s contributed %s", name, formatMoney(c.Amount))))
		b.WriteString("\n")
	}
	if !gift.IsReserved {
		remaining := gift.Remaining()
		if remaining > 0 && gift.HasContributions {
			b.WriteString("    ")
			b.WriteString(m.styles.Warning.Render(formatMoney(remaining) + " to go"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderProgress draws a fixed-width funding bar for a 0..100 percentage.
func (m Model) renderProgress(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return m.styles.ProgressFill.Render(bar) + m.styles.Muted.Render(fmt.Sprintf(" %3d%%", percent))
}
