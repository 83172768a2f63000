package ui

import (
	"fmt"
	"strings"

	"github.com/wishly-app/wishly/internal/push"
)

// renderHeader draws the title line: wishlist name, live indicator and any
// transient status.
func (m Model) renderHeader() string {
	parts := []string{
		m.styles.Title.Render("WISHLY"),
	}

	if title := m.snapshot.Wishlist.Title; title != "" {
		parts = append(parts, m.styles.Text.Render(title))
	}

	parts = append(parts, m.renderConnection())

	if m.snapshot.IsOffline() {
		parts = append(parts, m.styles.Danger.Render("API offline"))
	} else if m.snapshot.LastError != nil {
		parts = append(parts, m.styles.Warning.Render("stats stale"))
	}

	if m.banner != "" {
		style := m.styles.Success
		if m.bannerErr {
			style = m.styles.Danger
		}
		parts = append(parts, style.Render(m.banner))
	}

	return strings.Join(parts, "  ")
}

// renderConnection maps the push connection state to a colored indicator.
func (m Model) renderConnection() string {
	switch m.connState {
	case push.StateConnected:
		return m.styles.Success.Render("● live")
	case push.StateConnecting:
		return m.styles.Warning.Render("◌ connecting")
	case push.StateFailed:
		label := "✗ updates unavailable"
		if m.connErr != nil {
			label = "✗ " + m.connErr.Error()
		}
		return m.styles.Danger.Render(label)
	default:
		return m.styles.Muted.Render("○ offline")
	}
}

// renderCommandBar draws the bottom key hint line for the current view.
func (m Model) renderCommandBar() string {
	hints := []string{"j/k move", "s stats", "? help", "q quit"}

	if m.currentView == ViewGifts {
		if m.sess.Authenticated() {
			hints = append([]string{"r reserve", "c contribute"}, hints...)
		}
		if m.isOwner {
			hints = append([]string{"a add", "e edit", "d delete"}, hints...)
		}
	}

	return m.styles.Muted.Render(strings.Join(hints, " · "))
}

// formatMoney renders a ruble amount with space-grouped thousands.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, ".00")
	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 && r != '-' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + frac + " ₽"
}
