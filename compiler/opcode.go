package compiler

import "fmt"

// Opcode identifies the operation a compiled Instruction performs.
type Opcode uint8

const (
	// Nop is a placeholder instruction removed by Optimize; surviving
	// programs never contain one.
	Nop Opcode = iota

	MatchChar  // compare input[SP] to Char, advance SP
	MatchAny   // compare input[SP] to any byte (DotAll controls '\n'), advance SP
	MatchClass // interpret ClassBody against input[SP], advance SP

	Jump  // IP = Target
	Split // push a backtrack point at Alt, continue at Target

	SaveStart // group_starts[GroupIndex] = SP
	SaveEnd   // group_ends[GroupIndex] = SP

	Boundary // zero-width check; AnchorKind selects ^ $ \b \B \A \Z
	Backref  // compare input[SP..] to captured group GroupIndex

	Lookahead    // run nested program (NestedLen instrs) without advancing SP
	NegLookahead // as Lookahead, inverted
	Lookbehind   // run nested program ending exactly at SP, scanning backward
	NegLookbehind

	AtomicStart // mark current backtrack-stack depth
	AtomicEnd   // discard backtrack points pushed since the matching AtomicStart

	RepeatStart // cooperative bounded-loop counter (defined, never emitted by Compile)
	RepeatEnd

	ResetMatchStart // '\K': move the overall match's reported start to SP

	Accept // terminal success
	Fail   // terminal failure of this path
)

var opcodeNames = [...]string{
	Nop: "Nop", MatchChar: "MatchChar", MatchAny: "MatchAny", MatchClass: "MatchClass",
	Jump: "Jump", Split: "Split", SaveStart: "SaveStart", SaveEnd: "SaveEnd",
	Boundary: "Boundary", Backref: "Backref", Lookahead: "Lookahead",
	NegLookahead: "NegLookahead", Lookbehind: "Lookbehind", NegLookbehind: "NegLookbehind",
	AtomicStart: "AtomicStart", AtomicEnd: "AtomicEnd", RepeatStart: "RepeatStart",
	RepeatEnd: "RepeatEnd", ResetMatchStart: "ResetMatchStart", Accept: "Accept", Fail: "Fail",
}

// String renders the opcode's name, used by DebugInfo and diagnostics.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// AnchorKind selects which zero-width assertion a Boundary instruction
// checks.
type AnchorKind uint8

const (
	AnchorNone AnchorKind = iota
	AnchorStartOfLine
	AnchorEndOfLine
	AnchorWordBoundary
	AnchorNotWordBoundary
	AnchorStartOfInput
	AnchorEndOfInput
)
