package port

import "context"

// Gate enforces the at-most-one-concurrent-session invariant. It is acquired
// when a proposal is accepted and released exactly once on every terminal
// path.
type Gate interface {
	// TryAcquire claims the gate, returning false if it is already held.
	TryAcquire(ctx context.Context) (bool, error)

	// Release frees the gate for the next proposal.
	Release(ctx context.Context) error
}
