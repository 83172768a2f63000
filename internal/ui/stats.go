package ui

import (
	"fmt"
	"strings"

	"github.com/wishly-app/wishly/internal/state"
)

// renderStats draws the aggregate totals view fed by the landing poll.
func (m Model) renderStats() string {
	if !m.snapshot.HasStats {
		return m.styles.Muted.Render("Loading stats...")
	}
	stats := m.snapshot.Stats

	percent := 0
	if stats.TotalGoal > 0 {
		percent = state.ProgressPercent(stats.TotalCollected, stats.TotalGoal)
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Across all wishlists"))
	b.WriteString("\n\n")
	b.WriteString(m.renderProgress(percent))
	b.WriteString("\n")
	b.WriteString(m.styles.Text.Render(fmt.Sprintf("%s collected of %s", formatMoney(stats.TotalCollected), formatMoney(stats.TotalGoal))))
	b.WriteString("\n")

	if len(stats.RecentContributors) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Recent contributors"))
		b.WriteString("\n")
		for _, c := range stats.RecentContributors {
			b.WriteString(m.styles.Text.Render("  " + c.Name))
			b.WriteString("\n")
		}
	}
	return b.String()
}
