package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/push"
	"github.com/wishly-app/wishly/internal/session"
	"github.com/wishly-app/wishly/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewGifts View = iota
	ViewStats
)

const refreshInterval = 500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context     context.Context
	Client      *api.Client
	Store       *state.Store
	Subscriber  *push.Subscriber
	Session     session.Session
	SessionPath string
	IsOwner     bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx     context.Context
	client  *api.Client
	store   *state.Store
	sub     *push.Subscriber
	sess    session.Session
	isOwner bool

	// UI state
	keys        keyMap
	styles      Styles
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot  state.Snapshot
	connState push.State
	connErr   error

	// Gift list state
	selectedRow int

	// Transient status line
	banner    string
	bannerErr bool

	// Modal form state
	form formModel

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctx:     ctx,
		client:  opts.Client,
		store:   opts.Store,
		sub:     opts.Subscriber,
		sess:    opts.Session,
		isOwner: opts.IsOwner,
		keys:    defaultKeyMap(),
		styles:  defaultTheme().Styles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store, m.sub))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store, m.sub))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.connState = msg.connState
		m.connErr = msg.connErr
		m.clampSelection()
		return m, nil

	case actionDoneMsg:
		m.setBanner(msg.note, false)
		return m, nil

	case actionFailedMsg:
		m.setBanner(api.UserMessage(msg.err, "request failed"), true)
		return m, nil

	case giftSavedMsg:
		return m.handleGiftSaved(msg)

	case giftDeletedMsg:
		if m.store != nil {
			m.store.RemoveGift(msg.id)
		}
		m.setBanner("gift deleted", false)
		return m, fetchSnapshotCmd(m.store, m.sub)

	case linkParsedMsg:
		m.form.fillFromLink(msg.meta)
		return m, nil

	case linkParseFailedMsg:
		m.form.err = api.UserMessage(msg.err, "could not read that link")
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.form.kind != formNone {
		return m.renderForm()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.currentView {
	case ViewStats:
		b.WriteString(m.renderStats())
	default:
		b.WriteString(m.renderGifts())
	}

	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.form.kind != formNone {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ViewGifts), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewGifts
		return m, nil

	case key.Matches(msg, m.keys.ViewStats):
		m.currentView = ViewStats
		return m, nil
	}

	if m.currentView == ViewGifts {
		return m.handleGiftsKey(msg)
	}
	return m, nil
}

// handleGiftsKey processes keyboard input for the gift list.
func (m Model) handleGiftsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gifts := m.snapshot.Gifts

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(gifts)-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(gifts) > 0 {
			m.selectedRow = len(gifts) - 1
		}

	case key.Matches(msg, m.keys.Reserve):
		gift, ok := m.selectedGift()
		if !ok {
			return m, nil
		}
		if !m.sess.Authenticated() {
			m.setBanner("sign in to reserve (wishly login)", true)
			return m, nil
		}
		if gift.IsReserved {
			m.setBanner("already reserved", true)
			return m, nil
		}
		return m, reserveCmd(m.ctx, m.client, gift.ID)

	case key.Matches(msg, m.keys.Contribute):
		gift, ok := m.selectedGift()
		if !ok {
			return m, nil
		}
		if !m.sess.Authenticated() {
			m.setBanner("sign in to contribute (wishly login)", true)
			return m, nil
		}
		if gift.IsReserved {
			m.setBanner("already reserved", true)
			return m, nil
		}
		m.form = newContributeForm(gift)
		return m, nil

	case key.Matches(msg, m.keys.AddGift):
		if !m.isOwner {
			m.setBanner("only the list owner can add gifts", true)
			return m, nil
		}
		m.form = newGiftForm(nil)
		return m, nil

	case key.Matches(msg, m.keys.EditGift):
		if !m.isOwner {
			m.setBanner("only the list owner can edit gifts", true)
			return m, nil
		}
		if gift, ok := m.selectedGift(); ok {
			m.form = newGiftForm(&gift)
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteGift):
		if !m.isOwner {
			m.setBanner("only the list owner can delete gifts", true)
			return m, nil
		}
		if gift, ok := m.selectedGift(); ok {
			m.form = newDeleteForm(gift)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleGiftSaved(msg giftSavedMsg) (tea.Model, tea.Cmd) {
	if m.store != nil {
		if msg.created {
			// Merged through the reconciler, so the push copy of the same
			// gift_added event becomes a no-op.
			m.store.ApplyEvent(giftAddedEvent(msg.gift))
		} else {
			m.store.ReplaceGift(msg.gift)
		}
	}
	if msg.created {
		m.setBanner("gift added: "+msg.gift.Title, false)
	} else {
		m.setBanner("gift updated", false)
	}
	return m, fetchSnapshotCmd(m.store, m.sub)
}

// selectedGift returns the gift under the cursor.
func (m Model) selectedGift() (api.Gift, bool) {
	gifts := m.snapshot.Gifts
	if m.selectedRow < 0 || m.selectedRow >= len(gifts) {
		return api.Gift{}, false
	}
	return gifts[m.selectedRow], true
}

func (m *Model) clampSelection() {
	if n := len(m.snapshot.Gifts); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m *Model) setBanner(text string, isErr bool) {
	m.banner = text
	m.bannerErr = isErr
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
