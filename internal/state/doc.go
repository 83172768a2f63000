// Package state maintains the reconciled view of a wishlist.
//
// # Overview
//
// The list shown to the user is the merge of two inputs: an authoritative
// snapshot fetched once over REST when the view mounts, and a live stream of
// push events. Apply implements that merge as a pure function with
// last-write-wins semantics per gift: duplicate gift_added events collapse,
// contribution totals replace rather than accumulate, and events for unknown
// gifts are ignored. The channel delivers at least once; idempotent merge is
// what makes that tolerable.
//
// Store wraps the merged list (plus the polled aggregate stats) behind a
// mutex and hands out defensive copies, so the UI loop and the background
// consumers never share mutable slices.
package state
