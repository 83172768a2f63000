package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding

	// View switching
	ViewGifts key.Binding
	ViewStats key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Gift actions
	Reserve    key.Binding
	Contribute key.Binding
	AddGift    key.Binding
	EditGift   key.Binding
	DeleteGift key.Binding

	// Forms
	NextField key.Binding
	Submit    key.Binding
	ParseLink key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		ViewGifts: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "gifts"),
		),
		ViewStats: key.NewBinding(
			key.WithKeys("2", "s"),
			key.WithHelp("s", "stats"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Reserve: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reserve"),
		),
		Contribute: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "contribute"),
		),
		AddGift: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add gift"),
		),
		EditGift: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		DeleteGift: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		ParseLink: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "fill from link"),
		),
	}
}
