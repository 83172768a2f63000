package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wishly-app/wishly/internal/api"
)

type formKind int

const (
	formNone formKind = iota
	formContribute
	formGift
	formConfirmDelete
)

// Gift form field order.
const (
	giftFieldTitle = iota
	giftFieldPrice
	giftFieldURL
	giftFieldImage
)

// formModel holds the state of the active modal form.
type formModel struct {
	kind     formKind
	gift     api.Gift // target gift; zero value when creating
	inputs   []textinput.Model
	focusIdx int
	err      string
}

func newContributeForm(gift api.Gift) formModel {
	in := textinput.New()
	in.Placeholder = contributeHint(gift)
	in.CharLimit = 12
	in.Width = 24
	in.Focus()

	return formModel{
		kind:   formContribute,
		gift:   gift,
		inputs: []textinput.Model{in},
	}
}

// newGiftForm builds the add form, or the edit form when gift is non-nil.
func newGiftForm(gift *api.Gift) formModel {
	labels := []string{"Title", "Price", "Link", "Image link"}
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		in := textinput.New()
		in.Placeholder = label
		in.CharLimit = 200
		in.Width = 48
		inputs[i] = in
	}
	inputs[giftFieldPrice].CharLimit = 12
	inputs[giftFieldPrice].Width = 24

	form := formModel{kind: formGift, inputs: inputs}
	if gift != nil {
		form.gift = *gift
		inputs[giftFieldTitle].SetValue(gift.Title)
		inputs[giftFieldPrice].SetValue(strconv.FormatFloat(gift.Price, 'f', -1, 64))
		inputs[giftFieldURL].SetValue(gift.URL)
		inputs[giftFieldImage].SetValue(gift.ImageURL)
	}
	inputs[giftFieldTitle].Focus()
	return form
}

func newDeleteForm(gift api.Gift) formModel {
	return formModel{kind: formConfirmDelete, gift: gift}
}

// fillFromLink pre-fills the gift form from scraped link metadata.
func (f *formModel) fillFromLink(meta *api.LinkMetadata) {
	if f.kind != formGift || meta == nil {
		return
	}
	if meta.Title != "" {
		f.inputs[giftFieldTitle].SetValue(meta.Title)
	}
	if meta.Price > 0 {
		f.inputs[giftFieldPrice].SetValue(strconv.FormatFloat(meta.Price, 'f', -1, 64))
	}
	if meta.Image != "" {
		f.inputs[giftFieldImage].SetValue(meta.Image)
	}
	f.err = ""
}

func (f *formModel) focusField(idx int) {
	for i := range f.inputs {
		if i == idx {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	f.focusIdx = idx
}

// handleFormKey processes keyboard input while a modal form is open.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.form = formModel{}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitForm()

	case key.Matches(msg, m.keys.NextField):
		if len(m.form.inputs) > 1 {
			m.form.focusField((m.form.focusIdx + 1) % len(m.form.inputs))
		}
		return m, nil

	case key.Matches(msg, m.keys.ParseLink):
		if m.form.kind != formGift {
			return m, nil
		}
		raw := strings.TrimSpace(m.form.inputs[giftFieldURL].Value())
		if raw == "" {
			m.form.err = "enter a link first"
			return m, nil
		}
		m.form.err = "reading link..."
		return m, parseLinkCmd(m.ctx, m.client, raw)
	}

	if len(m.form.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focusIdx], cmd = m.form.inputs[m.form.focusIdx].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	switch m.form.kind {
	case formContribute:
		raw := strings.TrimSpace(m.form.inputs[0].Value())
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			m.form.err = "enter an amount"
			return m, nil
		}
		if err := api.ValidateContribution(m.form.gift, amount); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		giftID := m.form.gift.ID
		m.form = formModel{}
		return m, contributeCmd(m.ctx, m.client, giftID, amount)

	case formGift:
		title := strings.TrimSpace(m.form.inputs[giftFieldTitle].Value())
		if title == "" {
			m.form.err = "title required"
			return m, nil
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(m.form.inputs[giftFieldPrice].Value()), 64)
		if err != nil || price <= 0 {
			m.form.err = "enter a price above zero"
			return m, nil
		}
		draft := api.DraftGift{
			WishlistID: m.snapshot.Wishlist.ID,
			Title:      title,
			Price:      price,
			URL:        strings.TrimSpace(m.form.inputs[giftFieldURL].Value()),
			ImageURL:   strings.TrimSpace(m.form.inputs[giftFieldImage].Value()),
		}
		editID := m.form.gift.ID
		m.form = formModel{}
		if editID != 0 {
			return m, updateGiftCmd(m.ctx, m.client, editID, draft)
		}
		return m, createGiftCmd(m.ctx, m.client, draft)

	case formConfirmDelete:
		giftID := m.form.gift.ID
		m.form = formModel{}
		return m, deleteGiftCmd(m.ctx, m.client, giftID)
	}

	m.form = formModel{}
	return m, nil
}

// renderForm draws the active modal form centered on screen.
func (m Model) renderForm() string {
	var b strings.Builder

	switch m.form.kind {
	case formContribute:
		b.WriteString(m.styles.Title.Render("Contribute to " + m.form.gift.Title))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(contributeHint(m.form.gift)))
		b.WriteString("\n")
		b.WriteString(m.form.inputs[0].View())
		b.WriteString("\n")

	case formGift:
		heading := "Add gift"
		if m.form.gift.ID != 0 {
			heading = "Edit gift"
		}
		b.WriteString(m.styles.Title.Render(heading))
		b.WriteString("\n\n")
		labels := []string{"Title", "Price", "Link", "Image"}
		for i, in := range m.form.inputs {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%-6s", labels[i])))
			b.WriteString(" ")
			b.WriteString(in.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("ctrl+p fills title, price and image from the link"))
		b.WriteString("\n")

	case formConfirmDelete:
		b.WriteString(m.styles.Title.Render("Delete gift"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Text.Render("Delete " + m.form.gift.Title + "?"))
		b.WriteString("\n")
	}

	if m.form.err != "" {
		b.WriteString(m.styles.Danger.Render(m.form.err))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render("enter confirm · esc cancel"))

	modal := m.styles.Modal.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return modal
}

// contributeHint spells out the allowed amount range for a gift. When the
// remainder has dropped below the usual one-third minimum, only paying it
// off exactly is allowed.
func contributeHint(gift api.Gift) string {
	remaining := gift.Remaining()
	minimum := math.Ceil(gift.Price / 3)
	if remaining < minimum {
		return fmt.Sprintf("exactly %s to finish it", formatMoney(remaining))
	}
	return fmt.Sprintf("between %s and %s", formatMoney(minimum), formatMoney(remaining))
}
