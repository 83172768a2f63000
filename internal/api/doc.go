// Package api provides an HTTP client for the Wishly backend API.
//
// # Overview
//
// This package defines the API client for communicating with the wishlist
// backend over REST. It owns the wire types (wishlists, gifts, contributors,
// aggregate stats), base-URL normalization, bearer-token authentication, and
// the translation of non-2xx responses into user-facing error messages.
//
// The backend is the single source of truth for business rules; validation
// helpers in this package (for example contribution amount bounds) exist only
// as a fast path so obviously invalid requests are rejected before a network
// round trip.
package api
