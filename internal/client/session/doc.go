// Package session implements the client-side session resilience layer:
// durable token storage, bearer-token request augmentation, failure
// classification, single-flight token refresh with FIFO replay of queued
// requests, and terminal session teardown.
//
// The layer sits between the API client and the network as an
// http.RoundTripper (Transport). Application code above it issues ordinary
// HTTP calls and never sees a recoverable 401: the Coordinator exchanges the
// refresh token for a new pair exactly once per overlapping batch of
// failures and replays the suspended requests in arrival order. Only an
// explicit 401/403 from the refresh endpoint terminates the session; a
// network failure during refresh leaves the stored session untouched.
package session
