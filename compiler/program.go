package compiler

import "github.com/coregx/riftregex/common"

// Instruction is one bytecode operation plus whichever of its operand
// fields the Op uses; unused fields stay zero. Flags carries the regex
// flags active at the AST node this instruction was lowered from, so the
// VM can honor inline "(?i:...)" scoping per instruction instead of only
// a single pattern-wide setting.
type Instruction struct {
	Op Opcode

	Char      byte   // MatchChar
	ClassBody string // MatchClass, raw class body bytes (parsed lazily by the VM)

	Target int // Jump target; Split's "continue now" target
	Alt    int // Split's "push as backtrack point" target

	GroupIndex int // SaveStart, SaveEnd, Backref

	AnchorKind AnchorKind // Boundary

	NestedLen int // Lookahead, NegLookahead, Lookbehind, NegLookbehind

	Flags common.Flags
}

// Program is a compiled, linear instruction sequence ready for vm.VM.
// After Validate succeeds it is immutable and safe to share across
// goroutines.
type Program struct {
	Instructions  []Instruction
	GroupCount    int
	Flags         common.Flags
	PatternSource string
}

// NumInstructions reports the instruction count.
func (p *Program) NumInstructions() int { return len(p.Instructions) }

// Clone returns a deep, independent copy of the program.
func (p *Program) Clone() *Program {
	out := &Program{
		Instructions:  append([]Instruction(nil), p.Instructions...),
		GroupCount:    p.GroupCount,
		Flags:         p.Flags,
		PatternSource: p.PatternSource,
	}
	return out
}
