package storage

import (
	"context"
	"sync"
)

// MemoryGate is the in-process session gate, the default for a single bot
// process.
type MemoryGate struct {
	mu   sync.Mutex
	held bool
}

func NewMemoryGate() *MemoryGate {
	return &MemoryGate{}
}

func (g *MemoryGate) TryAcquire(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return false, nil
	}
	g.held = true
	return true, nil
}

func (g *MemoryGate) Release(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held = false
	return nil
}
