// Package app provides the orchestration layer for the wishly client.
//
// # Overview
//
// This package wires together configuration, the session, the API client,
// the reconciled state store, the push subscription and the UI, and owns the
// two background loops: the event consumer that merges push events into the
// store, and the stats watcher that keeps the aggregate stats fresh by
// polling with a push-triggered fast path.
//
// Data flows one way: REST snapshot and push events feed the store; the UI
// reads store snapshots on its own tick. The push subscription is bound to
// the run context, so leaving a wishlist tears the channel down before any
// stale event can cross into a later view.
package app
