// Package ui renders the wishlist terminal interface with Bubble Tea.
//
// # Overview
//
// The UI is a thin projection of the state store. A periodic tick copies
// the store snapshot and the push connection state into the model; render
// functions draw from that copy only. User actions dispatch REST calls as
// Bubble Tea commands, and the resulting list changes flow back through
// the store rather than being patched into the view directly, so the
// screen always shows the reconciled list.
//
// # Views
//
// Two views share the screen: the gift list for the watched wishlist and
// the aggregate stats from the landing poll. Modal forms (contribute, add
// and edit gift, delete confirmation) capture input while open and close
// on esc.
package ui
