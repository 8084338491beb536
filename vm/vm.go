package vm

import (
	"time"

	"github.com/coregx/riftregex/bailout"
	"github.com/coregx/riftregex/common"
	"github.com/coregx/riftregex/compiler"
)

// Options configures one VM run: where the search may start, whether it
// is pinned to that exact position, the bailout limits in effect, and an
// optional shared Stats sink.
type Options struct {
	// Start is the first byte offset the search may begin at.
	Start int

	// Anchored means the search tries exactly one starting position
	// (Start) instead of scanning forward through the input looking for
	// the leftmost match.
	Anchored bool

	// Limits bounds backtrack depth, wall-clock duration, and opcode
	// dispatch count. A zero field means "no limit" for that dimension;
	// bailout.Registry.GetEffective never returns an all-zero Effective
	// once DefaultConfig has been layered in, so this only arises from a
	// caller-constructed Options that skipped the registry on purpose.
	Limits bailout.Effective

	// Stats, if non-nil, receives atomic counters from this run.
	Stats *Stats

	// Pool, if non-nil, hands Execute a reused backtracker scoped to
	// Owner instead of allocating a fresh one, so a Pattern that runs
	// many searches does not pay backtracker frame-slice growth on every
	// call. Owner is typically the compiled pattern's own identity: the
	// pool's Local mutex fully serializes concurrent reuse of the same
	// owner's backtracker, so sharing one Pool/Owner across goroutines
	// is safe, just contended, never incorrect. Leave nil for the
	// previous one-backtracker-per-VM behavior.
	Pool *BacktrackerPool

	// Owner identifies which of Pool's backtrackers to reuse; ignored
	// when Pool is nil.
	Owner int64
}

// VM executes one compiler.Program over one input byte string. A VM is
// single-threaded: it owns its backtrack stack and capture container
// exclusively, so concurrent matching requires one VM per goroutine
// (spec.md §5) — Program itself is immutable and freely shared.
type VM struct {
	prog  *compiler.Program
	input []byte
	opts  Options

	caps *Captures
	bt   *backtracker

	steps         int64
	startTime     time.Time
	limitExceeded bool
}

// New creates a VM ready to execute prog over input under opts. If
// opts.Pool is set, the VM's backtracker is acquired from the pool for
// the duration of each Execute call instead of being allocated here.
func New(prog *compiler.Program, input []byte, opts Options) *VM {
	v := &VM{
		prog:  prog,
		input: input,
		opts:  opts,
		caps:  NewCaptures(prog.GroupCount),
	}
	if opts.Pool == nil {
		v.bt = newBacktracker()
	}
	return v
}

// Reset rebinds the VM to a new input/opts pair, reusing its allocated
// backtrack frames and capture slices. A Reset VM run produces the same
// outcome as a freshly created one over the same (program, input, opts).
// Not valid on a pool-backed VM (opts.Pool != nil), whose backtracker is
// acquired fresh by each Execute call rather than held across resets.
func (v *VM) Reset(input []byte, opts Options) {
	v.input = input
	v.opts = opts
	v.caps.Reset()
	if v.bt != nil {
		v.bt.reset()
	}
	v.steps = 0
	v.limitExceeded = false
}

// Free drops the VM's references so its allocations can be collected
// before the VM value itself goes out of scope.
func (v *VM) Free() {
	v.prog = nil
	v.input = nil
	v.caps = nil
	v.bt = nil
}

// GetGroup returns capture group i's (start, end), ok=false if unset.
func (v *VM) GetGroup(i int) (start, end int, ok bool) {
	return v.caps.Get(i)
}

// Execute runs the program against the VM's input, trying successive
// start positions (or exactly one, if Anchored) until a match is found,
// the input is exhausted, or a bailout limit fires.
func (v *VM) Execute() (*Match, Outcome) {
	if v.opts.Pool != nil {
		var m *Match
		var outcome Outcome
		v.opts.Pool.tl.GetLocal(v.opts.Owner).With(func(bt *backtracker) {
			v.bt = bt
			m, outcome = v.execute()
			v.bt = nil
		})
		return m, outcome
	}
	return v.execute()
}

// execute is Execute's body, run with v.bt already bound (either
// allocated by New or, for a pool-backed VM, bound for the scope of the
// With call above).
func (v *VM) execute() (*Match, Outcome) {
	v.steps = 0
	v.limitExceeded = false
	v.startTime = time.Now()

	start := v.opts.Start
	if start < 0 {
		start = 0
	}
	for pos := start; pos <= len(v.input); pos++ {
		m, outcome := v.runAt(pos)
		if v.limitExceeded {
			if v.opts.Stats != nil {
				v.opts.Stats.addBailout()
			}
			return nil, LimitExceeded
		}
		if outcome == Matched {
			return m, Matched
		}
		if v.opts.Anchored {
			break
		}
	}
	return nil, NoMatch
}

// runAt attempts one match anchored at the given start offset.
func (v *VM) runAt(start int) (*Match, Outcome) {
	v.caps.Reset()
	v.bt.reset()
	var atomicMarkers []int

	ip := 0
	sp := start
	matchStart := start

	for {
		if !v.checkStep() {
			return nil, NoMatch
		}
		ins := &v.prog.Instructions[ip]
		ci := ins.Flags.Has(common.CaseInsensitive)

		ok := true
		switch ins.Op {
		case compiler.MatchChar:
			if sp < len(v.input) && byteMatches(v.input[sp], ins.Char, ci) {
				sp++
				ip++
			} else {
				ok = false
			}
		case compiler.MatchAny:
			if sp < len(v.input) && (ins.Flags.Has(common.DotAll) || v.input[sp] != '\n') {
				sp++
				ip++
			} else {
				ok = false
			}
		case compiler.MatchClass:
			cs, err := lookupClass(ins.ClassBody)
			if err != nil || sp >= len(v.input) || !cs.match(v.input[sp], ci) {
				ok = false
			} else {
				sp++
				ip++
			}
		case compiler.Jump:
			ip = ins.Target
		case compiler.Split:
			v.bt.push(ins.Alt, sp, matchStart, v.caps)
			if !v.checkChoicePoint() {
				return nil, NoMatch
			}
			ip = ins.Target
		case compiler.SaveStart:
			v.caps.SetStart(ins.GroupIndex, sp)
			ip++
		case compiler.SaveEnd:
			v.caps.SetEnd(ins.GroupIndex, sp)
			ip++
		case compiler.Boundary:
			if v.checkBoundary(ins, sp) {
				ip++
			} else {
				ok = false
			}
		case compiler.Backref:
			if next, matched := v.matchBackref(ins, sp, ci); matched {
				sp = next
				ip++
			} else {
				ok = false
			}
		case compiler.Lookahead:
			if v.runLookaround(ip, sp, false, false) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.NegLookahead:
			if v.runLookaround(ip, sp, true, false) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.Lookbehind:
			if v.runLookaround(ip, sp, false, true) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.NegLookbehind:
			if v.runLookaround(ip, sp, true, true) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.AtomicStart:
			atomicMarkers = append(atomicMarkers, v.bt.depth)
			ip++
		case compiler.AtomicEnd:
			if n := len(atomicMarkers); n > 0 {
				v.bt.truncate(atomicMarkers[n-1])
				atomicMarkers = atomicMarkers[:n-1]
			}
			ip++
		case compiler.ResetMatchStart:
			matchStart = sp
			ip++
		case compiler.Accept:
			return &Match{Start: matchStart, End: sp, Captures: v.caps.Clone()}, Matched
		default: // Fail, Nop, RepeatStart/End (never emitted by Compile)
			ok = false
		}

		if v.limitExceeded {
			return nil, NoMatch
		}
		if ok {
			continue
		}

		f, popped := v.bt.pop()
		if !popped {
			return nil, NoMatch
		}
		if v.opts.Stats != nil {
			v.opts.Stats.addBacktrack()
		}
		if !v.checkChoicePoint() {
			return nil, NoMatch
		}
		ip, sp, matchStart = f.ip, f.sp, f.matchStart
		v.caps.restore(f.groupStart, f.groupEnd)
		for len(atomicMarkers) > 0 && atomicMarkers[len(atomicMarkers)-1] > v.bt.depth {
			atomicMarkers = atomicMarkers[:len(atomicMarkers)-1]
		}
	}
}

// checkStep increments the transition counter and checks it against
// MaxTransitions; called once per opcode dispatch so the bailout fires
// at exactly the dispatch after the limit is reached (spec.md §8).
func (v *VM) checkStep() bool {
	if v.limitExceeded {
		return false
	}
	v.steps++
	if v.opts.Stats != nil {
		v.opts.Stats.addStep()
	}
	if v.opts.Limits.MaxTransitions > 0 && v.steps > v.opts.Limits.MaxTransitions {
		v.limitExceeded = true
		return false
	}
	return true
}

// checkChoicePoint checks backtrack depth and elapsed wall-clock time;
// called at every SPLIT push and FAIL pop (spec.md §4.4).
func (v *VM) checkChoicePoint() bool {
	if v.limitExceeded {
		return false
	}
	if v.opts.Stats != nil {
		v.opts.Stats.observeDepth(v.bt.depth)
	}
	if v.opts.Limits.MaxDepth > 0 && v.bt.depth > v.opts.Limits.MaxDepth {
		v.limitExceeded = true
		return false
	}
	if v.opts.Limits.MaxDuration > 0 && time.Since(v.startTime) > v.opts.Limits.MaxDuration {
		v.limitExceeded = true
		return false
	}
	return true
}

func byteMatches(have, want byte, caseInsensitive bool) bool {
	if have == want {
		return true
	}
	return caseInsensitive && swapCase(have) == want
}

func (v *VM) matchBackref(ins *compiler.Instruction, sp int, caseInsensitive bool) (next int, ok bool) {
	start, end, closed := v.caps.Get(ins.GroupIndex)
	if !closed {
		return sp, false
	}
	glen := end - start
	if sp+glen > len(v.input) {
		return sp, false
	}
	for i := 0; i < glen; i++ {
		if !byteMatches(v.input[sp+i], v.input[start+i], caseInsensitive) {
			return sp, false
		}
	}
	return sp + glen, true
}

func (v *VM) checkBoundary(ins *compiler.Instruction, sp int) bool {
	switch ins.AnchorKind {
	case compiler.AnchorStartOfLine:
		if sp == 0 {
			return true
		}
		return ins.Flags.Has(common.Multiline) && v.input[sp-1] == '\n'
	case compiler.AnchorEndOfLine:
		if sp == len(v.input) {
			return true
		}
		return ins.Flags.Has(common.Multiline) && v.input[sp] == '\n'
	case compiler.AnchorWordBoundary:
		return isWordBoundaryAt(v.input, sp)
	case compiler.AnchorNotWordBoundary:
		return !isWordBoundaryAt(v.input, sp)
	case compiler.AnchorStartOfInput:
		return sp == 0
	case compiler.AnchorEndOfInput:
		return sp == len(v.input)
	default:
		return false
	}
}

func isWordBoundaryAt(input []byte, sp int) bool {
	before := sp > 0 && isWordByte(input[sp-1])
	after := sp < len(input) && isWordByte(input[sp])
	return before != after
}

// runLookaround executes the nested program belonging to the Lookahead/
// NegLookahead/Lookbehind/NegLookbehind instruction at ip, reporting
// whether the assertion holds at sp. It never advances the caller's sp;
// capture writes made by a successful positive assertion persist, all
// others are rolled back.
func (v *VM) runLookaround(ip, sp int, negate, behind bool) bool {
	if v.opts.Stats != nil {
		v.opts.Stats.addNestedRun()
	}
	ins := &v.prog.Instructions[ip]
	bodyIP := ip + 1
	limitIP := ip + 1 + ins.NestedLen

	startCaps, endCaps := v.caps.snapshot()
	var matched bool
	if behind {
		matched = v.runLookbehind(bodyIP, limitIP, sp)
	} else {
		matched, _ = v.runSub(bodyIP, limitIP, sp)
	}
	if v.limitExceeded {
		v.caps.restore(startCaps, endCaps)
		return false
	}

	result := matched
	if negate {
		result = !matched
	}
	if !result || negate {
		// Negative assertions never contribute captures; a failed
		// positive assertion must undo whatever it tried.
		v.caps.restore(startCaps, endCaps)
	}
	return result
}

// runLookbehind tries every start position from sp down to 0, looking
// for one whose forward match of [bodyIP, limitIP) ends exactly at sp —
// there is no native right-to-left instruction set, so lookbehind is
// implemented as a bounded search over candidate start offsets.
func (v *VM) runLookbehind(bodyIP, limitIP, sp int) bool {
	for j := sp; j >= 0; j-- {
		matched, end := v.runSub(bodyIP, limitIP, j)
		if v.limitExceeded {
			return false
		}
		if matched && end == sp {
			return true
		}
	}
	return false
}

// runSub executes the self-contained nested program in [startIP, limitIP)
// starting at input position sp, using a private backtrack stack but the
// VM's shared captures (so a successful positive lookaround's SAVE_START/
// SAVE_END writes are visible to the caller). The nested program always
// ends with its own ACCEPT (compiler.lowerer.lookaround's contract), so
// reaching it anywhere within the region is success.
func (v *VM) runSub(startIP, limitIP, sp int) (matched bool, end int) {
	sub := newBacktracker()
	var atomicMarkers []int
	ip := startIP
	cur := sp
	for {
		if !v.checkStep() {
			return false, cur
		}
		ins := &v.prog.Instructions[ip]
		ci := ins.Flags.Has(common.CaseInsensitive)
		ok := true
		switch ins.Op {
		case compiler.MatchChar:
			if cur < len(v.input) && byteMatches(v.input[cur], ins.Char, ci) {
				cur++
				ip++
			} else {
				ok = false
			}
		case compiler.MatchAny:
			if cur < len(v.input) && (ins.Flags.Has(common.DotAll) || v.input[cur] != '\n') {
				cur++
				ip++
			} else {
				ok = false
			}
		case compiler.MatchClass:
			cs, err := lookupClass(ins.ClassBody)
			if err != nil || cur >= len(v.input) || !cs.match(v.input[cur], ci) {
				ok = false
			} else {
				cur++
				ip++
			}
		case compiler.Jump:
			ip = ins.Target
		case compiler.Split:
			sub.push(ins.Alt, cur, cur, v.caps)
			if !v.checkChoicePoint() {
				return false, cur
			}
			ip = ins.Target
		case compiler.SaveStart:
			v.caps.SetStart(ins.GroupIndex, cur)
			ip++
		case compiler.SaveEnd:
			v.caps.SetEnd(ins.GroupIndex, cur)
			ip++
		case compiler.Boundary:
			if v.checkBoundary(ins, cur) {
				ip++
			} else {
				ok = false
			}
		case compiler.Backref:
			if next, bok := v.matchBackref(ins, cur, ci); bok {
				cur = next
				ip++
			} else {
				ok = false
			}
		case compiler.Lookahead:
			if v.runLookaround(ip, cur, false, false) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.NegLookahead:
			if v.runLookaround(ip, cur, true, false) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.Lookbehind:
			if v.runLookaround(ip, cur, false, true) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.NegLookbehind:
			if v.runLookaround(ip, cur, true, true) {
				ip += 1 + ins.NestedLen
			} else {
				ok = false
			}
		case compiler.AtomicStart:
			atomicMarkers = append(atomicMarkers, sub.depth)
			ip++
		case compiler.AtomicEnd:
			if n := len(atomicMarkers); n > 0 {
				sub.truncate(atomicMarkers[n-1])
				atomicMarkers = atomicMarkers[:n-1]
			}
			ip++
		case compiler.ResetMatchStart:
			ip++
		case compiler.Accept:
			return true, cur
		default:
			ok = false
		}

		if v.limitExceeded {
			return false, cur
		}
		if ok {
			if ip >= limitIP {
				// Ran past the nested region without hitting its
				// terminating ACCEPT: treat as failure of this path.
				ok = false
			} else {
				continue
			}
		}

		f, popped := sub.pop()
		if !popped {
			return false, cur
		}
		if !v.checkChoicePoint() {
			return false, cur
		}
		ip, cur = f.ip, f.sp
		v.caps.restore(f.groupStart, f.groupEnd)
		for len(atomicMarkers) > 0 && atomicMarkers[len(atomicMarkers)-1] > sub.depth {
			atomicMarkers = atomicMarkers[:len(atomicMarkers)-1]
		}
	}
}
