package guard

import (
	"context"
	"time"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// Source is anything that exposes session state with change notification
type Source interface {
	Snapshot() (session.State, <-chan struct{})
}

// Await evaluates g and, while the decision is Pending, re-evaluates it on
// every state change until wait elapses or ctx ends. The last decision and
// the state it was made on are returned; it may still be Pending.
func Await(ctx context.Context, src Source, g Func, wait time.Duration) (Decision, session.State) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		state, changed := src.Snapshot()
		d := g(state)
		if d.Kind != Pending {
			return d, state
		}

		select {
		case <-changed:
		case <-timer.C:
			return d, state
		case <-ctx.Done():
			return d, state
		}
	}
}
