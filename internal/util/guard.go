package util

import (
	"os"
	"sync/atomic"
)

// processGuard kills a child that was started but never reaped, so an
// early return or panic in the caller cannot leave an orphaned encoder.
type processGuard struct {
	proc     *os.Process
	released atomic.Bool
}

func guardProcess(p *os.Process) *processGuard {
	return &processGuard{proc: p}
}

// Disarm marks the child as reaped; Release becomes a no-op.
func (g *processGuard) Disarm() {
	g.released.Store(true)
}

// Release kills the child unless Disarm was called first.
func (g *processGuard) Release() {
	if g.released.Swap(true) {
		return
	}
	_ = g.proc.Kill()
}
