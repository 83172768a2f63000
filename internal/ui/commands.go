package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
	"github.com/wishly-app/wishly/internal/push"
	"github.com/wishly-app/wishly/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot  state.Snapshot
	connState push.State
	connErr   error
}

type actionDoneMsg struct{ note string }

type actionFailedMsg struct{ err error }

type giftSavedMsg struct {
	gift    api.Gift
	created bool
}

type giftDeletedMsg struct{ id int64 }

type linkParsedMsg struct{ meta *api.LinkMetadata }

type linkParseFailedMsg struct{ err error }

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store, sub *push.Subscriber) tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{}
		if store != nil {
			msg.snapshot = store.Snapshot()
		}
		if sub != nil {
			msg.connState = sub.State()
			msg.connErr = sub.Err()
		}
		return msg
	}
}

// reserveCmd posts a reservation. The list change arrives as an
// item_reserved push event, so success only acknowledges the request.
func reserveCmd(ctx context.Context, client *api.Client, giftID int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.ReserveGift(ctx, giftID); err != nil {
			return actionFailedMsg{err}
		}
		return actionDoneMsg{note: "reserved"}
	}
}

func contributeCmd(ctx context.Context, client *api.Client, giftID int64, amount float64) tea.Cmd {
	return func() tea.Msg {
		if err := client.Contribute(ctx, giftID, amount); err != nil {
			return actionFailedMsg{err}
		}
		return actionDoneMsg{note: "contribution sent"}
	}
}

func createGiftCmd(ctx context.Context, client *api.Client, draft api.DraftGift) tea.Cmd {
	return func() tea.Msg {
		gift, err := client.CreateGift(ctx, draft)
		if err != nil {
			return actionFailedMsg{err}
		}
		return giftSavedMsg{gift: *gift, created: true}
	}
}

func updateGiftCmd(ctx context.Context, client *api.Client, id int64, draft api.DraftGift) tea.Cmd {
	return func() tea.Msg {
		gift, err := client.UpdateGift(ctx, id, draft)
		if err != nil {
			return actionFailedMsg{err}
		}
		return giftSavedMsg{gift: *gift}
	}
}

func deleteGiftCmd(ctx context.Context, client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteGift(ctx, id); err != nil {
			return actionFailedMsg{err}
		}
		return giftDeletedMsg{id: id}
	}
}

func parseLinkCmd(ctx context.Context, client *api.Client, raw string) tea.Cmd {
	return func() tea.Msg {
		meta, err := client.ParseLink(ctx, raw)
		if err != nil {
			return linkParseFailedMsg{err}
		}
		return linkParsedMsg{meta: meta}
	}
}

func giftAddedEvent(gift api.Gift) event.GiftAdded {
	return event.GiftAdded{GiftID: gift.ID, Gift: gift}
}
