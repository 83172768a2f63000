package state

import (
	"math"

	"github.com/google/uuid"
	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
)

// Apply merges one push event into a gift list and returns the resulting
// list. It is pure: the input slice is never mutated, and one event touches
// at most one gift (GiftAdded appends one). Events referencing a gift that
// is not in the list are no-ops; a gift is never synthesized from a
// reservation or contribution.
func Apply(gifts []api.Gift, ev event.Event) []api.Gift {
	switch ev := ev.(type) {
	case event.GiftAdded:
		return applyGiftAdded(gifts, ev)
	case event.ItemReserved:
		return applyItemReserved(gifts, ev)
	case event.ContributionAdded:
		return applyContributionAdded(gifts, ev)
	default:
		return gifts
	}
}

// applyGiftAdded appends the new gift unless it is already present. The
// duplicate check makes the merge idempotent: the creator's own optimistic
// insert and the subsequent push for the same gift collapse into one entry.
func applyGiftAdded(gifts []api.Gift, ev event.GiftAdded) []api.Gift {
	for _, g := range gifts {
		if g.ID == ev.GiftID {
			return gifts
		}
	}
	next := make([]api.Gift, len(gifts), len(gifts)+1)
	copy(next, gifts)
	gift := ev.Gift
	gift.ID = ev.GiftID
	return append(next, gift)
}

func applyItemReserved(gifts []api.Gift, ev event.ItemReserved) []api.Gift {
	return replaceGift(gifts, ev.GiftID, func(g api.Gift) api.Gift {
		g.IsReserved = true
		if ev.Reserver != nil {
			g.ReservedBy = &api.User{ID: ev.Reserver.UserID, Name: ev.Reserver.Name}
		}
		return g
	})
}

// applyContributionAdded overwrites the collected amount with the event's
// running total, already summed by the backend, so this is replacement,
// not addition, and re-delivery of the same event converges to the same
// state. Reaching the price forces the reserved flag: a fully crowd-funded
// gift is spoken for even without an explicit reservation.
func applyContributionAdded(gifts []api.Gift, ev event.ContributionAdded) []api.Gift {
	return replaceGift(gifts, ev.GiftID, func(g api.Gift) api.Gift {
		g.Collected = ev.Total
		g.Progress = ProgressPercent(ev.Total, g.Price)
		if ev.Contributor != nil {
			contributors := make([]api.Contributor, len(g.Contributors), len(g.Contributors)+1)
			copy(contributors, g.Contributors)
			g.Contributors = append(contributors, api.Contributor{
				LocalKey: uuid.NewString(),
				UserID:   ev.Contributor.UserID,
				UserName: ev.Contributor.Name,
				Amount:   ev.Amount,
			})
		}
		g.HasContributions = len(g.Contributors) > 0
		if g.Price > 0 && g.Collected >= g.Price {
			g.IsReserved = true
		}
		return g
	})
}

// replaceGift returns a copy of gifts with the entry matching id rewritten
// by fn, or the original slice untouched when id is absent.
func replaceGift(gifts []api.Gift, id int64, fn func(api.Gift) api.Gift) []api.Gift {
	for i, g := range gifts {
		if g.ID != id {
			continue
		}
		next := make([]api.Gift, len(gifts))
		copy(next, gifts)
		next[i] = fn(g)
		return next
	}
	return gifts
}

// ProgressPercent derives the display progress from the collected amount,
// clamped to 100 so transient overshoot from concurrent contributions never
// renders past full.
func ProgressPercent(collected, price float64) int {
	if price <= 0 {
		if collected > 0 {
			return 100
		}
		return 0
	}
	percent := int(math.Round(collected / price * 100))
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}
