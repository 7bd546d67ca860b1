// Package common contains shared constants and sentinel errors used across
// Shopkeeper components.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on outbound
	// requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName tags every outbound request with a correlation id.
	RequestIDHeaderName = "X-Request-Id"

	// BearerPrefix is the scheme prefix of the Authorization header value.
	BearerPrefix = "Bearer "
)
