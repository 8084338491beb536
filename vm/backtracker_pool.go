package vm

import "github.com/coregx/riftregex/bailout"

// BacktrackerPool reuses one backtracker (and its high-water-mark frame
// slice) per owner identity across many VM.Execute calls, so a Pattern
// that runs thousands of searches only pays the frame-slice growth cost
// once per owner instead of once per VM. It is bailout.ThreadLocal
// specialized to this package's unexported backtracker type, matching
// how spec.md describes the thread-safe backtracker wrapper: keyed by a
// caller-supplied owner identity (Go has no native goroutine id) and
// guarded by a per-owner mutex, so concurrent reuse of the same owner
// serializes rather than races.
type BacktrackerPool struct {
	tl *bailout.ThreadLocal[backtracker]
}

// NewBacktrackerPool returns an empty pool; backtrackers are created
// lazily on each owner's first Execute call.
func NewBacktrackerPool() *BacktrackerPool {
	return &BacktrackerPool{tl: bailout.NewThreadLocal(func() *backtracker { return newBacktracker() })}
}

// Release drops owner's pooled backtracker, letting it be collected.
// Callers that retire an owner identity (e.g. a Pattern going out of
// scope) may call this to avoid holding onto the frame slice forever,
// though it is not required for correctness.
func (p *BacktrackerPool) Release(owner int64) {
	p.tl.Release(owner)
}
