// Package client contains client-side building blocks for Shopkeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the Shopline backend: Register/Login/RefreshTokens/Logout, Ping,
//     and the storefront reads (Cart, Wishlist, Orders, Profile).
//  2. A concrete HTTP implementation (see HTTPClient) that routes
//     application calls through the session resilience pipeline, keeps auth
//     endpoints outside of it, persists tokens on login, and maps HTTP
//     statuses to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the CLI, wiring an SQLite database and applying embedded goose
//     migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors in internal/common that
// callers can match with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrInvalidCredentials, ErrSessionRejected.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
