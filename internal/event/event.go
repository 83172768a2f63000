// Package event defines the closed set of domain events carried by the push
// channel and the normalizer that turns raw channel payloads into them.
package event

import "github.com/wishly-app/wishly/internal/api"

// Type discriminates the known push message kinds.
type Type string

const (
	TypeItemReserved      Type = "item_reserved"
	TypeContributionAdded Type = "contribution_added"
	TypeGiftAdded         Type = "gift_added"
	TypeStatsUpdated      Type = "stats_updated"
)

// Event is one normalized push message. The concrete type is always one of
// ItemReserved, ContributionAdded, GiftAdded or StatsUpdated; a payload that
// does not decode cleanly into one of these never becomes an Event at all.
type Event interface {
	Kind() Type
}

// Actor names the user behind a reservation or contribution. It is attached
// to an event only when the channel supplied both id and name.
type Actor struct {
	UserID int64
	Name   string
}

// ItemReserved reports that a gift was claimed outright.
type ItemReserved struct {
	GiftID   int64
	Reserver *Actor
}

func (ItemReserved) Kind() Type { return TypeItemReserved }

// ContributionAdded reports a partial payment toward a gift. Total is the
// authoritative running sum after this contribution, not a delta.
type ContributionAdded struct {
	GiftID      int64
	Amount      float64
	Total       float64
	Contributor *Actor
}

func (ContributionAdded) Kind() Type { return TypeContributionAdded }

// GiftAdded reports a gift newly created on the watched wishlist, carrying
// the full gift payload.
type GiftAdded struct {
	GiftID int64
	Gift   api.Gift
}

func (GiftAdded) Kind() Type { return TypeGiftAdded }

// StatsUpdated is the aggregate channel's payload-free signal that /stats
// should be re-fetched.
type StatsUpdated struct{}

func (StatsUpdated) Kind() Type { return TypeStatsUpdated }
