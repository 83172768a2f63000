package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
	"github.com/wishly-app/wishly/internal/stubapi"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func receive(t *testing.T, sub *Subscriber) event.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for an event")
		return nil
	}
}

func TestSubscriber_DeliversNormalizedEvents(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "anna-bday"}, []api.Gift{{ID: 10, Price: 900}})

	sub := Subscribe(context.Background(), Options{URL: wsURL(backend.URL(), "/ws/wishlists/1")})
	t.Cleanup(sub.Close)

	waitFor(t, "subscriber to attach", func() bool { return backend.SubscriberCount(1) == 1 })
	if got := sub.State(); got != StateConnected {
		t.Fatalf("State = %v, want connected", got)
	}

	backend.Push(1, map[string]any{"type": "contribution_added", "gift_id": 10, "amount": 300, "total": 300})
	backend.Push(1, map[string]any{"kind": "presence", "users": 3}) // channel noise, dropped
	backend.Push(1, map[string]any{"type": "item_reserved", "gift_id": 10})

	contrib, ok := receive(t, sub).(event.ContributionAdded)
	if !ok || contrib.GiftID != 10 || contrib.Total != 300 {
		t.Fatalf("first event = %#v, want contribution for gift 10", contrib)
	}
	reserved, ok := receive(t, sub).(event.ItemReserved)
	if !ok || reserved.GiftID != 10 {
		t.Fatalf("second event = %#v, want reservation (noise must be dropped)", reserved)
	}
}

func TestSubscriber_CloseEndsDelivery(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "anna-bday"}, nil)

	sub := Subscribe(context.Background(), Options{URL: wsURL(backend.URL(), "/ws/wishlists/1")})
	waitFor(t, "subscriber to attach", func() bool { return backend.SubscriberCount(1) == 1 })

	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatalf("Done should be closed once Close returns")
	}

	// The channel drains and closes; nothing arrives after teardown.
	waitFor(t, "event channel to close", func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	})

	// Close is idempotent.
	sub.Close()
}

func TestSubscriber_FailsAfterRetryBudget(t *testing.T) {
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	sub := Subscribe(context.Background(), Options{
		URL:        wsURL(server.URL, "/ws/wishlists/1"),
		RetryDelay: time.Millisecond,
	})
	t.Cleanup(sub.Close)

	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("subscriber did not give up")
	}

	// The initial attempt plus five retries.
	if got := dials.Load(); got != 6 {
		t.Fatalf("dial attempts = %d, want 6", got)
	}
	if got := sub.State(); got != StateFailed {
		t.Fatalf("State = %v, want failed", got)
	}
	if !errors.Is(sub.Err(), ErrUnreachable) {
		t.Fatalf("Err = %v, want ErrUnreachable", sub.Err())
	}
}

func TestSubscriber_RetryBudgetResetsAfterSuccessfulOpen(t *testing.T) {
	const retryDelay = 2 * time.Millisecond

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch dials.Add(1) {
		case 1:
			// First connection opens and drops straight away.
			if conn, err := upgrader.Upgrade(w, r, nil); err == nil {
				_ = conn.Close()
			}
		case 2:
			// Second connection succeeds, proves itself with an event,
			// then drops too.
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stats_updated"}`))
			_ = conn.Close()
		default:
			// Backend gone for good.
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	start := time.Now()
	sub := Subscribe(context.Background(), Options{
		URL:        wsURL(server.URL, "/ws/wishlists/1"),
		RetryDelay: retryDelay,
	})
	t.Cleanup(sub.Close)

	if ev := receive(t, sub); ev.Kind() != event.TypeStatsUpdated {
		t.Fatalf("event after reconnect = %#v", ev)
	}

	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("subscriber did not give up")
	}

	// The successful second open resets the retry counter, so the final
	// outage gets a fresh budget of five attempts: two opens plus five
	// failed dials. Without the reset the first drop would already have
	// consumed one attempt and only four dials would follow.
	if got := dials.Load(); got != 7 {
		t.Fatalf("dial attempts = %d, want 7", got)
	}
	if got := sub.State(); got != StateFailed {
		t.Fatalf("State = %v, want failed", got)
	}

	// Attempt n waits n*RetryDelay, so the run cannot finish before the
	// schedule adds up: 1 unit after the first drop, then 1+2+3+4+5 units
	// during the final outage.
	if elapsed := time.Since(start); elapsed < 16*retryDelay {
		t.Fatalf("finished in %v, want at least %v of backoff", elapsed, 16*retryDelay)
	}
}

func TestSubscriber_ReconnectsAfterDrop(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	var conns atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if conns.Add(1) == 1 {
			// Drop the first connection straight away.
			_ = conn.Close()
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stats_updated"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	sub := Subscribe(context.Background(), Options{
		URL:        wsURL(server.URL, "/ws/wishlists/1"),
		RetryDelay: time.Millisecond,
	})
	t.Cleanup(sub.Close)

	if ev := receive(t, sub); ev.Kind() != event.TypeStatsUpdated {
		t.Fatalf("event after reconnect = %#v", ev)
	}
	if got := conns.Load(); got < 2 {
		t.Fatalf("connections = %d, want a reconnect", got)
	}
	waitFor(t, "connected state", func() bool { return sub.State() == StateConnected })
}

func TestSubscriber_StaleSubscriptionEventsNeverCrossOver(t *testing.T) {
	backend := stubapi.New()
	t.Cleanup(backend.Close)
	backend.AddWishlist(api.Wishlist{ID: 1, Slug: "anna-bday"}, []api.Gift{{ID: 10, Price: 900}})

	stale := Subscribe(context.Background(), Options{URL: wsURL(backend.URL(), "/ws/wishlists/1")})
	waitFor(t, "first subscriber to attach", func() bool { return backend.SubscriberCount(1) == 1 })

	// Left unconsumed on the stale subscription's buffer.
	backend.Push(1, map[string]any{"type": "item_reserved", "gift_id": 10})

	stale.Close()
	waitFor(t, "stale subscriber to detach", func() bool { return backend.SubscriberCount(1) == 0 })

	fresh := Subscribe(context.Background(), Options{URL: wsURL(backend.URL(), "/ws/wishlists/1")})
	t.Cleanup(fresh.Close)
	waitFor(t, "fresh subscriber to attach", func() bool { return backend.SubscriberCount(1) == 1 })

	backend.Push(1, map[string]any{"type": "contribution_added", "gift_id": 10, "amount": 300, "total": 300})

	// The fresh channel sees only what was pushed after it attached.
	if ev, ok := receive(t, fresh).(event.ContributionAdded); !ok {
		t.Fatalf("first event on new subscription = %#v, want the contribution", ev)
	}

	// The stale channel is closed; at most its own buffered reservation
	// drains out, never anything from the new subscription.
	for {
		ev, ok := <-stale.Events()
		if !ok {
			break
		}
		if _, isReservation := ev.(event.ItemReserved); !isReservation {
			t.Fatalf("stale channel delivered %#v after teardown", ev)
		}
	}
}
