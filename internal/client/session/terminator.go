package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// Terminator performs the terminal action for a conclusively invalid
// session: it clears the Store and fires the redirect side effect exactly
// once per terminal episode, no matter how many concurrent failures trigger
// it. The guard re-arms on the next successful login (Rearm).
type Terminator struct {
	store    Store
	redirect func()
	log      logging.Logger

	mu         sync.Mutex
	terminated bool
}

// NewTerminator builds a Terminator. redirect may be nil; log may be nil.
func NewTerminator(store Store, redirect func(), log logging.Logger) *Terminator {
	if log == nil {
		log = logging.Nop()
	}
	return &Terminator{store: store, redirect: redirect, log: log}
}

// Terminate clears the stored session and triggers the one-time redirect.
// Concurrent and repeated calls within one terminal episode are no-ops.
func (t *Terminator) Terminate(ctx context.Context) {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return
	}
	t.terminated = true
	t.mu.Unlock()

	if err := t.store.Clear(ctx); err != nil {
		t.log.Error(ctx, "failed to clear session store on termination", "err", err)
	}
	t.log.Info(ctx, "session terminated")

	if t.redirect != nil {
		t.redirect()
	}
}

// Rearm resets the exactly-once guard so a future terminal episode (after a
// fresh login) can redirect again.
func (t *Terminator) Rearm() {
	t.mu.Lock()
	t.terminated = false
	t.mu.Unlock()
}
