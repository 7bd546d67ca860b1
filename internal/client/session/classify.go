package session

import (
	"context"
	"net/http"
	"strings"
)

// Class tags a failed HTTP exchange with the session layer's verdict.
type Class int

const (
	// ClassNone: not this layer's concern; the exchange passes through
	// untouched (success or a non-401 failure).
	ClassNone Class = iota

	// ClassNetwork: no response was received at all. Must never be treated
	// as an authorization failure.
	ClassNetwork

	// ClassAuthEndpoint: a 401 from the auth endpoints themselves. Retrying
	// would recurse into the refresh protocol.
	ClassAuthEndpoint

	// ClassRetryable: a first 401 on an ordinary endpoint; eligible for a
	// refresh-and-replay cycle.
	ClassRetryable

	// ClassTerminal: a 401 on a request that was already replayed once.
	ClassTerminal
)

func (c Class) String() string {
	switch c {
	case ClassNetwork:
		return "network"
	case ClassAuthEndpoint:
		return "auth-endpoint"
	case ClassRetryable:
		return "unauthorized-retryable"
	case ClassTerminal:
		return "unauthorized-terminal"
	default:
		return "none"
	}
}

// authPathPrefix matches the login/refresh/logout/register surface.
const authPathPrefix = "/auth/"

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, authPathPrefix)
}

type ctxKey int

const retriedKey ctxKey = iota

// markRetried records on the context that the request has been through one
// replay already. The caller's original request is never mutated.
func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey, true)
}

func wasRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey).(bool)
	return v
}

// Classify inspects a finished exchange and assigns it a Class. The rules
// are evaluated in order; checking for a missing response before looking at
// status codes is what keeps a dropped connection from ever reading as
// "session expired".
func Classify(req *http.Request, resp *http.Response, err error) Class {
	if err != nil || resp == nil {
		return ClassNetwork
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return ClassNone
	}
	if isAuthPath(req.URL.Path) {
		return ClassAuthEndpoint
	}
	if wasRetried(req.Context()) {
		return ClassTerminal
	}
	return ClassRetryable
}
