// Package cli provides the interactive Shopkeeper command-line client.
//
// It wires configuration, the local session store, API services, and an
// interactive REPL. Typical flow: restore a previously persisted session (or
// prompt for credentials), then execute user commands against the backend.
//
// Key features:
//   - Login / Register / Logout
//   - Status: current account and access token expiry
//   - Storefront reads: cart, wishlist, orders, profile
//
// Expired access tokens are refreshed transparently by the session layer; if
// the refresh token itself is rejected the session ends and the user is
// returned to the login prompt.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
