package api_test

import (
	"context"
	"testing"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/stubapi"
)

// TestOwnerFlow walks the dashboard path end to end: sign in, create a
// wishlist, fill it with a gift, and clean up.
func TestOwnerFlow(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)

	client, err := api.NewClient(backend.URL(), "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	auth, err := client.Login(ctx, "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if auth.AccessToken == "" || auth.User.ID != 7 {
		t.Fatalf("auth = %#v", auth)
	}

	wl, err := client.CreateWishlist(ctx, "Anna Birthday", "the big one")
	if err != nil {
		t.Fatalf("CreateWishlist: %v", err)
	}
	if wl.Slug != "anna-birthday" || wl.OwnerID != 7 {
		t.Fatalf("wishlist = %#v", wl)
	}

	lists, err := client.Wishlists(ctx)
	if err != nil {
		t.Fatalf("Wishlists: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != wl.ID {
		t.Fatalf("lists = %#v, want the created wishlist", lists)
	}

	updated, err := client.UpdateWishlist(ctx, wl.ID, "Anna Birthday 2026", "")
	if err != nil {
		t.Fatalf("UpdateWishlist: %v", err)
	}
	if updated.Title != "Anna Birthday 2026" {
		t.Fatalf("updated = %#v", updated)
	}

	gift, err := client.CreateGift(ctx, api.DraftGift{WishlistID: wl.ID, Title: "Lego", Price: 3000})
	if err != nil {
		t.Fatalf("CreateGift: %v", err)
	}
	gifts, err := client.Gifts(ctx, wl.ID)
	if err != nil {
		t.Fatalf("Gifts: %v", err)
	}
	if len(gifts) != 1 || gifts[0].ID != gift.ID {
		t.Fatalf("gifts = %#v", gifts)
	}

	if err := client.DeleteGift(ctx, gift.ID); err != nil {
		t.Fatalf("DeleteGift: %v", err)
	}
	if err := client.DeleteWishlist(ctx, wl.ID); err != nil {
		t.Fatalf("DeleteWishlist: %v", err)
	}
	lists, err = client.Wishlists(ctx)
	if err != nil {
		t.Fatalf("Wishlists after delete: %v", err)
	}
	if len(lists) != 0 {
		t.Fatalf("lists after delete = %#v, want empty", lists)
	}
}

func TestReserveConflictSurfacesBackendMessage(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "x"}, []api.Gift{{ID: 10, Price: 900}})

	client, err := api.NewClient(backend.URL(), "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	if err := client.ReserveGift(ctx, 10); err != nil {
		t.Fatalf("first ReserveGift: %v", err)
	}
	err = client.ReserveGift(ctx, 10)
	if err == nil {
		t.Fatalf("second reserve should conflict")
	}
	if got := api.UserMessage(err, "fallback"); got != "gift is already reserved" {
		t.Fatalf("UserMessage = %q", got)
	}
}

func TestContributeOverRemainingRejected(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "x"}, []api.Gift{{ID: 10, Price: 3000}})

	client, err := api.NewClient(backend.URL(), "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	if err := client.Contribute(ctx, 10, 1000); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if err := client.Contribute(ctx, 10, 2500); err == nil {
		t.Fatalf("over-remaining contribution should be rejected")
	}

	gifts, err := client.Gifts(ctx, 1)
	if err != nil {
		t.Fatalf("Gifts: %v", err)
	}
	if gifts[0].Collected != 1000 {
		t.Fatalf("Collected = %v, want 1000", gifts[0].Collected)
	}
}

func TestGiftsRestrictedProjectionWithoutToken(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "x"}, []api.Gift{{
		ID:         10,
		Price:      900,
		IsReserved: true,
		ReservedBy: &api.User{ID: 7, Name: "Ann"},
		Contributors: []api.Contributor{
			{ID: 1, UserID: 7, UserName: "Ann", Amount: 300},
		},
	}})

	anon, err := api.NewClient(backend.URL(), "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	gifts, err := anon.Gifts(context.Background(), 1)
	if err != nil {
		t.Fatalf("Gifts: %v", err)
	}
	if gifts[0].ReservedBy != nil || gifts[0].Contributors != nil {
		t.Fatalf("anonymous projection leaked detail: %#v", gifts[0])
	}
	if !gifts[0].IsReserved {
		t.Fatalf("reserved flag should survive the restricted projection")
	}

	authed, err := api.NewClient(backend.URL(), "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	gifts, err = authed.Gifts(context.Background(), 1)
	if err != nil {
		t.Fatalf("Gifts: %v", err)
	}
	if gifts[0].ReservedBy == nil || len(gifts[0].Contributors) != 1 {
		t.Fatalf("authed projection missing detail: %#v", gifts[0])
	}
}

func TestUserLookup(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)

	client, err := api.NewClient(backend.URL(), "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	user, err := client.User(context.Background(), 42)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if user.ID != 42 {
		t.Fatalf("user = %#v", user)
	}
}
