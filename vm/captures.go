// Package vm executes a compiled compiler.Program over an input byte
// string: a classical backtracking simulation driven by an instruction
// pointer and input cursor, with an explicit frame stack standing in for
// the call stack a recursive matcher would use.
package vm

// Unset is the sentinel reported for a capture group that has not
// started, or has started but not yet closed.
const Unset = -1

// Captures records start/end byte offsets for up to N groups (group 0 is
// the overall match, tracked separately by the VM; Captures here holds
// only the pattern's numbered capturing groups, 1..N). Snapshot/restore
// operate on plain slice copies so backtracking can undo a capture
// write in O(n) without a full clone of the Captures value.
type Captures struct {
	starts []int
	ends   []int
}

// NewCaptures allocates a Captures for n groups, all initially unset.
func NewCaptures(n int) *Captures {
	c := &Captures{starts: make([]int, n+1), ends: make([]int, n+1)}
	c.Reset()
	return c
}

// Reset marks every group unset.
func (c *Captures) Reset() {
	for i := range c.starts {
		c.starts[i] = Unset
		c.ends[i] = Unset
	}
}

// SetStart records the start offset of group i.
func (c *Captures) SetStart(i, pos int) { c.starts[i] = pos }

// SetEnd records the end offset of group i.
func (c *Captures) SetEnd(i, pos int) { c.ends[i] = pos }

// Get returns group i's (start, end), and ok=false if the group never
// closed (either offset is still Unset).
func (c *Captures) Get(i int) (start, end int, ok bool) {
	if i < 0 || i >= len(c.starts) {
		return Unset, Unset, false
	}
	s, e := c.starts[i], c.ends[i]
	return s, e, s != Unset && e != Unset
}

// Len reports the number of group slots, including slot 0.
func (c *Captures) Len() int { return len(c.starts) }

// Clone returns an independent deep copy.
func (c *Captures) Clone() *Captures {
	return &Captures{
		starts: append([]int(nil), c.starts...),
		ends:   append([]int(nil), c.ends...),
	}
}

// snapshot copies the current start/end slices, for a backtrack frame to
// hold and later restore.
func (c *Captures) snapshot() (starts, ends []int) {
	return append([]int(nil), c.starts...), append([]int(nil), c.ends...)
}

// restore replaces the current start/end slices with a previously taken
// snapshot.
func (c *Captures) restore(starts, ends []int) {
	copy(c.starts, starts)
	copy(c.ends, ends)
}
