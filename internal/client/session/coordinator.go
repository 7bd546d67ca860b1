package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// DefaultRefreshTimeout bounds the refresh-endpoint call so a hung backend
// cannot grow the pending queue indefinitely. Expiry surfaces as a network
// failure.
const DefaultRefreshTimeout = 10 * time.Second

// RefreshFunc exchanges a refresh token for a fresh pair. Implementations
// must return an error wrapping common.ErrSessionRejected if, and only if,
// the server explicitly answered 401 or 403.
type RefreshFunc func(ctx context.Context, refreshToken string) (*TokenPair, error)

type callResult struct {
	resp *http.Response
	err  error
}

// pendingCall is a suspended request awaiting the outcome of the in-flight
// refresh. Owned exclusively by the Coordinator's queue.
type pendingCall struct {
	retry func(accessToken string) (*http.Response, error)
	done  chan callResult
}

// Coordinator owns the single-flight refresh protocol. At most one call to
// the refresh endpoint is in flight at any time; requests that fail while it
// runs are queued and replayed in FIFO order once it settles.
//
// The refreshing flag and the queue are private and guarded by mu, which is
// the Go rendition of the flag-and-array idiom this layer replaces.
type Coordinator struct {
	store   Store
	refresh RefreshFunc
	term    *Terminator
	timeout time.Duration
	log     logging.Logger

	mu         sync.Mutex
	refreshing bool
	queue      []*pendingCall
}

// NewCoordinator wires a Coordinator. timeout <= 0 selects
// DefaultRefreshTimeout; log may be nil.
func NewCoordinator(store Store, refresh RefreshFunc, term *Terminator, timeout time.Duration, log logging.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{store: store, refresh: refresh, term: term, timeout: timeout, log: log}
}

// Do runs the queue-or-trigger step for one recoverable 401. orig is the
// original unauthorized response; retry re-issues the request with a given
// access token.
//
// If no refresh token is stored the original response is returned untouched:
// an absent refresh token is indistinguishable from "never logged in", so the
// caller must not be logged out, merely told the call failed. Otherwise the
// call either starts the refresh (first comer) or joins the queue, and in
// both cases resolves with its replayed exchange once the refresh settles.
func (c *Coordinator) Do(ctx context.Context, orig *http.Response, retry func(accessToken string) (*http.Response, error)) (*http.Response, error) {
	c.mu.Lock()

	if c.refreshing {
		call := c.enqueue(retry)
		c.mu.Unlock()
		drainBody(orig)
		return c.await(ctx, call)
	}

	rec, err := c.store.Read(ctx)
	if err != nil {
		c.mu.Unlock()
		return orig, nil
	}
	if rec == nil || rec.RefreshToken == "" {
		c.mu.Unlock()
		return orig, nil
	}

	c.refreshing = true
	call := c.enqueue(retry)
	refreshToken := rec.RefreshToken
	c.mu.Unlock()

	drainBody(orig)
	c.runRefresh(ctx, refreshToken)
	return c.await(ctx, call)
}

// enqueue appends a pending call; callers must hold mu.
func (c *Coordinator) enqueue(retry func(string) (*http.Response, error)) *pendingCall {
	call := &pendingCall{retry: retry, done: make(chan callResult, 1)}
	c.queue = append(c.queue, call)
	return call
}

func (c *Coordinator) await(ctx context.Context, call *pendingCall) (*http.Response, error) {
	select {
	case res := <-call.done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runRefresh performs the single refresh exchange and settles the whole
// batch. It is called without mu held and runs on the triggering caller's
// goroutine.
func (c *Coordinator) runRefresh(ctx context.Context, refreshToken string) {
	// The outcome affects every queued request, not just the trigger, so the
	// exchange must survive the trigger's own cancellation.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	c.log.Debug(ctx, "refreshing session tokens")
	pair, err := c.refresh(rctx, refreshToken)

	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.refreshing = false
	c.mu.Unlock()

	if err != nil {
		if errors.Is(err, common.ErrSessionRejected) {
			// The only terminal path: the server explicitly rejected the
			// refresh token.
			c.log.Warn(ctx, "refresh token rejected, terminating session", "err", err)
			if c.term != nil {
				c.term.Terminate(ctx)
			}
		} else {
			// Network failure: the session is presumed still valid, just
			// unreachable. The store stays untouched.
			c.log.Warn(ctx, "session refresh failed", "err", err)
		}
		for _, call := range batch {
			call.done <- callResult{err: err}
		}
		return
	}

	if err := c.storePair(ctx, pair); err != nil {
		c.log.Error(ctx, "failed to persist refreshed tokens", "err", err)
		for _, call := range batch {
			call.done <- callResult{err: err}
		}
		return
	}

	c.log.Debug(ctx, "session refreshed, replaying queued requests", "queued", len(batch))
	for _, call := range batch {
		resp, err := call.retry(pair.AccessToken)
		call.done <- callResult{resp: resp, err: err}
	}
}

// storePair replaces the persisted pair as a unit, keeping the user intact.
func (c *Coordinator) storePair(ctx context.Context, pair *TokenPair) error {
	rec, err := c.store.Read(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &Record{}
	}
	rec.TokenPair = *pair
	rec.IsAuthenticated = true
	return c.store.Write(ctx, rec)
}
