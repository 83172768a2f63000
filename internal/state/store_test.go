package state

import (
	"errors"
	"testing"
	"time"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
)

func TestStore_SetWishlistAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.SetWishlist(api.Wishlist{ID: 1, Title: "Birthday"}, []api.Gift{{ID: 10}, {ID: 11}})

	snap := s.Snapshot()
	if snap.Wishlist.Title != "Birthday" {
		t.Fatalf("Wishlist = %#v, want Birthday", snap.Wishlist)
	}
	if len(snap.Gifts) != 2 || snap.Gifts[0].ID != 10 {
		t.Fatalf("Gifts = %#v, want 2 items", snap.Gifts)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Gifts[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Gifts[0].ID != 10 {
		t.Fatalf("Snapshot should clone gifts; got id %d want 10", snap2.Gifts[0].ID)
	}
}

func TestStore_SnapshotClonesContributors(t *testing.T) {
	var s Store
	s.SetWishlist(api.Wishlist{ID: 1}, []api.Gift{{
		ID:    10,
		Price: 900,
		Contributors: []api.Contributor{
			{ID: 1, UserName: "Ann", Amount: 300},
		},
	}})

	snap := s.Snapshot()
	snap.Gifts[0].Contributors[0].UserName = "Mallory"

	if got := s.Snapshot().Gifts[0].Contributors[0].UserName; got != "Ann" {
		t.Fatalf("contributor row aliases store state; got %q want Ann", got)
	}
}

func TestStore_ApplyEvent(t *testing.T) {
	var s Store
	s.SetWishlist(api.Wishlist{ID: 1}, []api.Gift{{ID: 10, Price: 900}})

	s.ApplyEvent(event.ContributionAdded{GiftID: 10, Amount: 300, Total: 300})

	snap := s.Snapshot()
	if snap.Gifts[0].Collected != 300 || snap.Gifts[0].Progress != 33 {
		t.Fatalf("gift after event = %#v, want collected 300 progress 33", snap.Gifts[0])
	}
}

func TestStore_ReplaceAndRemoveGift(t *testing.T) {
	var s Store
	s.SetWishlist(api.Wishlist{ID: 1}, []api.Gift{{ID: 10, Title: "Socks"}, {ID: 11, Title: "Lego"}})

	s.ReplaceGift(api.Gift{ID: 10, Title: "Wool socks"})
	snap := s.Snapshot()
	if snap.Gifts[0].Title != "Wool socks" {
		t.Fatalf("gift 10 = %#v, want replaced title", snap.Gifts[0])
	}

	s.RemoveGift(11)
	snap = s.Snapshot()
	if len(snap.Gifts) != 1 || snap.Gifts[0].ID != 10 {
		t.Fatalf("Gifts after remove = %#v, want only gift 10", snap.Gifts)
	}

	// Removing an unknown id is a no-op.
	s.RemoveGift(999)
	if got := len(s.Snapshot().Gifts); got != 1 {
		t.Fatalf("len = %d after removing unknown id, want 1", got)
	}
}

func TestStore_UpdateStatsErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.UpdateStats(&api.Stats{TotalCollected: 500, TotalGoal: 1000}, nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.UpdateStats(nil, origErr)

	snap := s.Snapshot()
	if !snap.HasStats || snap.Stats.TotalCollected != prev.Stats.TotalCollected {
		t.Fatalf("stats changed on error: got %#v want %#v", snap.Stats, prev.Stats)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatalf("one failure should not mark the store offline")
	}

	s.UpdateStats(nil, origErr)
	if snap := s.Snapshot(); !snap.IsOffline() {
		t.Fatalf("two consecutive failures should mark the store offline")
	}

	// A success clears the error and the failure streak.
	s.UpdateStats(&api.Stats{TotalCollected: 600, TotalGoal: 1000}, nil)
	snap = s.Snapshot()
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("success should reset error state: %#v", snap)
	}
	if snap.Stats.TotalCollected != 600 {
		t.Fatalf("TotalCollected = %v, want 600", snap.Stats.TotalCollected)
	}
}
