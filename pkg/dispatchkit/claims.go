package dispatchkit

import (
	"context"
	"sync"
)

// claim tracks one in-flight correlation id. The owner closes done exactly
// once after storing the final outcome; losers block on done rather than
// polling.
type claim struct {
	done    chan struct{}
	outcome Outcome
}

// claimTable is the in-process in-flight index. Acquisition is a single
// check-and-set under the mutex, so two concurrent dispatches for a
// never-seen correlation id cannot both win.
type claimTable struct {
	mu       sync.Mutex
	inflight map[string]*claim
}

func newClaimTable() *claimTable {
	return &claimTable{
		inflight: make(map[string]*claim),
	}
}

// acquire claims the correlation id. The second return is true when the
// caller is the winner and owns finalization; false when another dispatch is
// already in flight, in which case the returned claim is the one to wait on.
func (t *claimTable) acquire(correlationID string) (*claim, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.inflight[correlationID]; ok {
		return c, false
	}
	c := &claim{done: make(chan struct{})}
	t.inflight[correlationID] = c
	return c, true
}

// finalize records the outcome and wakes every waiter. Only the winner calls
// it, exactly once per claim.
func (t *claimTable) finalize(correlationID string, c *claim, out Outcome) {
	t.mu.Lock()
	delete(t.inflight, correlationID)
	t.mu.Unlock()

	c.outcome = out
	close(c.done)
}

// wait blocks until the claim owner finalizes or the caller's context
// expires. Expiry does not disturb the owner's progress.
func (t *claimTable) wait(ctx context.Context, c *claim) (Outcome, bool) {
	select {
	case <-c.done:
		return c.outcome, true
	case <-ctx.Done():
		return Outcome{}, false
	}
}

// size returns the number of in-flight claims. Useful for testing.
func (t *claimTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
