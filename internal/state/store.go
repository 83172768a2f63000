package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Wishlist            api.Wishlist
	Gifts               []api.Gift
	Stats               api.Stats
	HasStats            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive stats poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the authoritative in-memory view of one wishlist: the gift
// list seeded from the REST snapshot and advanced by push events, plus the
// aggregate stats kept fresh by the poller. All access is serialized here;
// nothing else holds mutable list state.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetWishlist seeds the store with the one-time REST baseline.
func (s *Store) SetWishlist(wishlist api.Wishlist, gifts []api.Gift) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Wishlist = wishlist
	s.snapshot.Gifts = cloneGifts(gifts)
	s.snapshot.LastUpdated = time.Now()
}

// ApplyEvent merges one push event into the gift list.
func (s *Store) ApplyEvent(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Gifts = Apply(s.snapshot.Gifts, ev)
	s.snapshot.LastUpdated = time.Now()
}

// ReplaceGift swaps in the authoritative gift returned by a REST update.
func (s *Store) ReplaceGift(gift api.Gift) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Gifts = replaceGift(s.snapshot.Gifts, gift.ID, func(api.Gift) api.Gift {
		return gift
	})
	s.snapshot.LastUpdated = time.Now()
}

// RemoveGift drops a deleted gift from the list. There is no push event for
// deletion, so the REST caller updates the store directly.
func (s *Store) RemoveGift(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gifts := s.snapshot.Gifts
	for i, g := range gifts {
		if g.ID != id {
			continue
		}
		next := make([]api.Gift, 0, len(gifts)-1)
		next = append(next, gifts[:i]...)
		next = append(next, gifts[i+1:]...)
		s.snapshot.Gifts = next
		s.snapshot.LastUpdated = time.Now()
		return
	}
}

// UpdateStats replaces the stored aggregate stats. When err is non-nil the
// previous data is kept but the error is recorded for visibility.
func (s *Store) UpdateStats(stats *api.Stats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if stats != nil {
		s.snapshot.Stats = *stats
		s.snapshot.HasStats = true
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Gifts = cloneGifts(s.snapshot.Gifts)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// cloneGifts copies the list deeply enough that a snapshot never aliases
// store state: the gift rows and their contributor slices are duplicated.
func cloneGifts(gifts []api.Gift) []api.Gift {
	if len(gifts) == 0 {
		return nil
	}
	dup := make([]api.Gift, len(gifts))
	copy(dup, gifts)
	for i := range dup {
		if len(dup[i].Contributors) > 0 {
			dup[i].Contributors = append([]api.Contributor(nil), dup[i].Contributors...)
		}
	}
	return dup
}
