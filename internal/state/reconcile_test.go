package state

import (
	"testing"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
)

func TestApply_GiftAddedAppends(t *testing.T) {
	gifts := []api.Gift{{ID: 1, Title: "Socks"}}

	next := Apply(gifts, event.GiftAdded{GiftID: 2, Gift: api.Gift{Title: "Lego", Price: 4990}})
	if len(next) != 2 {
		t.Fatalf("len = %d, want 2", len(next))
	}
	if next[1].ID != 2 || next[1].Title != "Lego" {
		t.Fatalf("appended gift = %#v, want id 2 Lego", next[1])
	}
	if len(gifts) != 1 {
		t.Fatalf("input slice mutated, len = %d", len(gifts))
	}
}

func TestApply_GiftAddedDuplicateIsNoOp(t *testing.T) {
	gifts := []api.Gift{{ID: 2, Title: "Lego"}}

	next := Apply(gifts, event.GiftAdded{GiftID: 2, Gift: api.Gift{Title: "Lego again"}})
	if len(next) != 1 {
		t.Fatalf("len = %d, want 1 after duplicate", len(next))
	}
	if next[0].Title != "Lego" {
		t.Fatalf("duplicate overwrote the existing gift: %#v", next[0])
	}
}

func TestApply_ItemReserved(t *testing.T) {
	gifts := []api.Gift{{ID: 1}, {ID: 2}}

	next := Apply(gifts, event.ItemReserved{GiftID: 2, Reserver: &event.Actor{UserID: 7, Name: "Ann"}})
	if !next[1].IsReserved {
		t.Fatalf("gift 2 not reserved: %#v", next[1])
	}
	if next[1].ReservedBy == nil || next[1].ReservedBy.Name != "Ann" {
		t.Fatalf("ReservedBy = %#v, want Ann", next[1].ReservedBy)
	}
	if next[0].IsReserved {
		t.Fatalf("gift 1 should be untouched: %#v", next[0])
	}
	if gifts[1].IsReserved {
		t.Fatalf("input slice mutated: %#v", gifts[1])
	}
}

func TestApply_UnknownGiftIsNoOp(t *testing.T) {
	gifts := []api.Gift{{ID: 1}}

	next := Apply(gifts, event.ItemReserved{GiftID: 99})
	if len(next) != 1 || next[0].IsReserved {
		t.Fatalf("unknown id changed the list: %#v", next)
	}

	next = Apply(gifts, event.ContributionAdded{GiftID: 99, Amount: 10, Total: 10})
	if len(next) != 1 || next[0].Collected != 0 {
		t.Fatalf("unknown id changed the list: %#v", next)
	}
}

func TestApply_ContributionSetsRunningTotal(t *testing.T) {
	gifts := []api.Gift{{ID: 1, Title: "Bike", Price: 9000}}

	// Ann puts in a third.
	next := Apply(gifts, event.ContributionAdded{
		GiftID:      1,
		Amount:      3000,
		Total:       3000,
		Contributor: &event.Actor{UserID: 7, Name: "Ann"},
	})
	got := next[0]
	if got.Collected != 3000 {
		t.Fatalf("Collected = %v, want 3000", got.Collected)
	}
	if got.Progress != 33 {
		t.Fatalf("Progress = %d, want 33", got.Progress)
	}
	if got.IsReserved {
		t.Fatalf("partially funded gift must not be reserved")
	}
	if len(got.Contributors) != 1 || got.Contributors[0].UserName != "Ann" || got.Contributors[0].Amount != 3000 {
		t.Fatalf("Contributors = %#v, want one row for Ann/3000", got.Contributors)
	}
	if got.Contributors[0].LocalKey == "" {
		t.Fatalf("locally synthesized contributor needs a LocalKey")
	}
	if !got.HasContributions {
		t.Fatalf("HasContributions should be set")
	}

	// Bob closes the gap; the total is the backend's sum, not a delta.
	next = Apply(next, event.ContributionAdded{
		GiftID:      1,
		Amount:      6000,
		Total:       9000,
		Contributor: &event.Actor{UserID: 8, Name: "Bob"},
	})
	got = next[0]
	if got.Collected != 9000 || got.Progress != 100 {
		t.Fatalf("Collected/Progress = %v/%d, want 9000/100", got.Collected, got.Progress)
	}
	if !got.IsReserved {
		t.Fatalf("fully funded gift should be forced reserved")
	}
	if len(got.Contributors) != 2 {
		t.Fatalf("Contributors = %#v, want two rows", got.Contributors)
	}
}

func TestApply_ContributionRedeliveryConverges(t *testing.T) {
	gifts := []api.Gift{{ID: 1, Price: 9000, Collected: 3000}}
	ev := event.ContributionAdded{GiftID: 1, Amount: 3000, Total: 3000}

	next := Apply(Apply(gifts, ev), ev)
	if next[0].Collected != 3000 {
		t.Fatalf("Collected = %v after redelivery, want 3000", next[0].Collected)
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		collected float64
		price     float64
		want      int
	}{
		{0, 9000, 0},
		{3000, 9000, 33},
		{4500, 9000, 50},
		{9000, 9000, 100},
		{12000, 9000, 100},
		{500, 0, 100},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := ProgressPercent(tc.collected, tc.price); got != tc.want {
			t.Fatalf("ProgressPercent(%v, %v) = %d, want %d", tc.collected, tc.price, got, tc.want)
		}
	}
}
