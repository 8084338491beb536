package vm

import "sync/atomic"

// Stats accumulates execution counters across one or more VM runs, in the
// teacher's idiom of exposing instrumentation as atomic counters rather
// than logging (meta.Engine.stats in the teacher uses the same pattern).
// A single Stats value may be shared across goroutines; every field is
// updated with the atomic package exclusively.
type Stats struct {
	Steps         uint64 // opcode dispatches, across all runs
	Backtracks    uint64 // FAIL-driven pops
	Bailouts      uint64 // runs that ended in LimitExceeded
	MaxDepthSeen  uint64 // largest backtracker depth observed
	NestedRuns    uint64 // lookaround/lookbehind sub-executions
}

func (s *Stats) addStep()                 { atomic.AddUint64(&s.Steps, 1) }
func (s *Stats) addBacktrack()            { atomic.AddUint64(&s.Backtracks, 1) }
func (s *Stats) addBailout()              { atomic.AddUint64(&s.Bailouts, 1) }
func (s *Stats) addNestedRun()            { atomic.AddUint64(&s.NestedRuns, 1) }
func (s *Stats) observeDepth(depth int) {
	d := uint64(depth)
	for {
		cur := atomic.LoadUint64(&s.MaxDepthSeen)
		if d <= cur || atomic.CompareAndSwapUint64(&s.MaxDepthSeen, cur, d) {
			return
		}
	}
}

// Reset zeros every counter. Safe to call while other goroutines hold a
// reference to this Stats, though in-flight increments racing a Reset
// may be lost, matching the teacher's documented ResetStats contract.
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.Steps, 0)
	atomic.StoreUint64(&s.Backtracks, 0)
	atomic.StoreUint64(&s.Bailouts, 0)
	atomic.StoreUint64(&s.MaxDepthSeen, 0)
	atomic.StoreUint64(&s.NestedRuns, 0)
}

// Snapshot returns a copy of the current counter values.
func (s *Stats) Snapshot() Stats {
	return Stats{
		Steps:        atomic.LoadUint64(&s.Steps),
		Backtracks:   atomic.LoadUint64(&s.Backtracks),
		Bailouts:     atomic.LoadUint64(&s.Bailouts),
		MaxDepthSeen: atomic.LoadUint64(&s.MaxDepthSeen),
		NestedRuns:   atomic.LoadUint64(&s.NestedRuns),
	}
}
