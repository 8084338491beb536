package compiler

import (
	"fmt"
	"strings"

	"github.com/coregx/riftregex/common"
)

// Compiler incrementally assembles a Program: callers append instructions
// and set their operands, then Validate (and usually Optimize) before
// handing the Program to vm.VM. Compile, below, drives a Compiler over an
// AST; callers needing hand-rolled programs (tests, tooling) can drive one
// directly.
type Compiler struct {
	prog *Program
}

// Create returns a Compiler with its instruction slice pre-sized to
// initialCapacity (purely an allocation hint; AddInstruction always
// grows as needed) and flags recorded on the eventual Program.
func Create(initialCapacity int, flags common.Flags) *Compiler {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &Compiler{
		prog: &Program{
			Instructions: make([]Instruction, 0, initialCapacity),
			Flags:        flags,
		},
	}
}

// EnsureCapacity grows the backing instruction slice's capacity to at
// least n, without changing its length.
func (c *Compiler) EnsureCapacity(n int) {
	if cap(c.prog.Instructions) >= n {
		return
	}
	grown := make([]Instruction, len(c.prog.Instructions), n)
	copy(grown, c.prog.Instructions)
	c.prog.Instructions = grown
}

// AddInstruction appends an instruction with the given opcode and returns
// its index, for the operand setters below to address.
func (c *Compiler) AddInstruction(op Opcode) int {
	idx := len(c.prog.Instructions)
	c.prog.Instructions = append(c.prog.Instructions, Instruction{Op: op})
	return idx
}

func (c *Compiler) SetChar(idx int, b byte)             { c.prog.Instructions[idx].Char = b }
func (c *Compiler) SetClassBody(idx int, body string)   { c.prog.Instructions[idx].ClassBody = body }
func (c *Compiler) SetTarget(idx int, target int)       { c.prog.Instructions[idx].Target = target }
func (c *Compiler) SetAlt(idx int, alt int)             { c.prog.Instructions[idx].Alt = alt }
func (c *Compiler) SetGroupIndex(idx int, group int)    { c.prog.Instructions[idx].GroupIndex = group }
func (c *Compiler) SetAnchorKind(idx int, k AnchorKind) { c.prog.Instructions[idx].AnchorKind = k }
func (c *Compiler) SetNestedLen(idx int, n int)         { c.prog.Instructions[idx].NestedLen = n }
func (c *Compiler) SetInstructionFlags(idx int, f common.Flags) {
	c.prog.Instructions[idx].Flags = f
}

// SetPattern records the original pattern source on the Program, carried
// for diagnostics and serialized into the bytecode header.
func (c *Compiler) SetPattern(src string) { c.prog.PatternSource = src }

// SetGroupCount records the pattern's capture group count.
func (c *Compiler) SetGroupCount(n int) { c.prog.GroupCount = n }

// Clone returns a Compiler holding an independent copy of the in-progress
// Program.
func (c *Compiler) Clone() *Compiler {
	return &Compiler{prog: c.prog.Clone()}
}

// Free drops the Compiler's reference to its Program. Safe to call once
// the finished Program has been retrieved via Program.
func (c *Compiler) Free() { c.prog = nil }

// Program returns the Compiler's current, possibly not-yet-validated
// Program.
func (c *Compiler) Program() *Program { return c.prog }

// Validate checks every jump/split/lookaround target is in range, every
// group index is within [0, GroupCount], and MATCH_CLASS instructions
// carry a non-empty body. It does not check semantic reachability (dead
// code is harmless, just wasted).
func (c *Compiler) Validate() error {
	n := len(c.prog.Instructions)
	if n == 0 {
		return common.NewError(common.InvalidBytecode, 0, "empty program")
	}
	for i, ins := range c.prog.Instructions {
		switch ins.Op {
		case Jump:
			if ins.Target < 0 || ins.Target >= n {
				return common.NewError(common.InvalidBytecode, 0, fmt.Sprintf("instruction %d: jump target out of range", i))
			}
		case Split:
			if ins.Target < 0 || ins.Target >= n || ins.Alt < 0 || ins.Alt >= n {
				return common.NewError(common.InvalidBytecode, 0, fmt.Sprintf("instruction %d: split target out of range", i))
			}
		case SaveStart, SaveEnd, Backref:
			if ins.GroupIndex < 0 || ins.GroupIndex > c.prog.GroupCount {
				return common.NewError(common.InvalidBytecode, 0, fmt.Sprintf("instruction %d: group index out of range", i))
			}
		case MatchClass:
			if len(ins.ClassBody) == 0 {
				return common.NewError(common.InvalidBytecode, 0, fmt.Sprintf("instruction %d: empty class body", i))
			}
		case Lookahead, NegLookahead, Lookbehind, NegLookbehind:
			if ins.NestedLen < 0 || i+1+ins.NestedLen > n {
				return common.NewError(common.InvalidBytecode, 0, fmt.Sprintf("instruction %d: nested program length out of range", i))
			}
		}
	}
	return nil
}

// DebugInfo renders a human-readable instruction listing, one line per
// instruction: "<index>: <opcode> <relevant operands>".
func (c *Compiler) DebugInfo() string {
	var b strings.Builder
	for i, ins := range c.prog.Instructions {
		fmt.Fprintf(&b, "%4d: %s", i, ins.Op)
		switch ins.Op {
		case MatchChar:
			fmt.Fprintf(&b, " %q", ins.Char)
		case MatchClass:
			fmt.Fprintf(&b, " %q", ins.ClassBody)
		case Jump:
			fmt.Fprintf(&b, " -> %d", ins.Target)
		case Split:
			fmt.Fprintf(&b, " -> %d | %d", ins.Target, ins.Alt)
		case SaveStart, SaveEnd, Backref:
			fmt.Fprintf(&b, " #%d", ins.GroupIndex)
		case Boundary:
			fmt.Fprintf(&b, " kind=%d", ins.AnchorKind)
		case Lookahead, NegLookahead, Lookbehind, NegLookbehind:
			fmt.Fprintf(&b, " len=%d", ins.NestedLen)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
