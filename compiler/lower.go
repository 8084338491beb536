package compiler

import (
	"github.com/coregx/riftregex/ast"
	"github.com/coregx/riftregex/common"
)

// Compile lowers a validated AST into a Program: a direct, Pike-style
// emission (SPLIT/JUMP for alternation and repetition, SAVE_START/
// SAVE_END bracketing capturing groups), followed by Optimize and
// Validate.
func Compile(a *ast.AST, flags common.Flags) (*Program, error) {
	if !a.IsValid {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	c := Create(len(a.Nodes)*2, flags)
	c.SetGroupCount(a.GroupCount)

	names := collectGroupNames(a)
	lw := &lowerer{c: c, a: a, names: names}
	rootChild := a.Nodes[a.Root].Children[0]
	if err := lw.node(rootChild); err != nil {
		return nil, err
	}
	c.AddInstruction(Accept)

	c.Optimize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.Program(), nil
}

func collectGroupNames(a *ast.AST) map[string]int {
	names := make(map[string]int)
	for _, n := range a.Nodes {
		if n.Kind == ast.NamedGroup {
			names[n.GroupName] = n.GroupIndex
		}
	}
	return names
}

type lowerer struct {
	c     *Compiler
	a     *ast.AST
	names map[string]int
}

func (lw *lowerer) node(i int) error {
	n := &lw.a.Nodes[i]
	switch n.Kind {
	case ast.Literal:
		return lw.literal(n)
	case ast.Dot:
		idx := lw.c.AddInstruction(MatchAny)
		lw.c.SetInstructionFlags(idx, n.Flags)
		return nil
	case ast.CharacterClass:
		idx := lw.c.AddInstruction(MatchClass)
		lw.c.SetClassBody(idx, n.Value)
		lw.c.SetInstructionFlags(idx, n.Flags)
		return nil
	case ast.Anchor:
		return lw.anchor(n)
	case ast.BackrefReset:
		lw.c.AddInstruction(ResetMatchStart)
		return nil
	case ast.Comment:
		return nil // compiles to nothing
	case ast.Concatenation:
		for _, ch := range n.Children {
			if err := lw.node(ch); err != nil {
				return err
			}
		}
		return nil
	case ast.Alternation:
		return lw.alternation(n.Children)
	case ast.Group:
		startIdx := lw.c.AddInstruction(SaveStart)
		lw.c.SetGroupIndex(startIdx, n.GroupIndex)
		if err := lw.node(n.Children[0]); err != nil {
			return err
		}
		endIdx := lw.c.AddInstruction(SaveEnd)
		lw.c.SetGroupIndex(endIdx, n.GroupIndex)
		return nil
	case ast.NamedGroup:
		startIdx := lw.c.AddInstruction(SaveStart)
		lw.c.SetGroupIndex(startIdx, n.GroupIndex)
		if err := lw.node(n.Children[0]); err != nil {
			return err
		}
		endIdx := lw.c.AddInstruction(SaveEnd)
		lw.c.SetGroupIndex(endIdx, n.GroupIndex)
		return nil
	case ast.NonCapturingGroup:
		return lw.node(n.Children[0])
	case ast.Option:
		if len(n.Children) == 0 {
			return nil
		}
		return lw.node(n.Children[0])
	case ast.AtomicGroup:
		lw.c.AddInstruction(AtomicStart)
		if err := lw.node(n.Children[0]); err != nil {
			return err
		}
		lw.c.AddInstruction(AtomicEnd)
		return nil
	case ast.Quantifier:
		return lw.quantifier(n)
	case ast.Lookahead:
		return lw.lookaround(n, Lookahead)
	case ast.NegativeLookahead:
		return lw.lookaround(n, NegLookahead)
	case ast.Lookbehind:
		return lw.lookaround(n, Lookbehind)
	case ast.NegativeLookbehind:
		return lw.lookaround(n, NegLookbehind)
	case ast.Backreference:
		return lw.backref(n)
	}
	return common.NewError(common.Internal, 0, "lower: unhandled node kind "+n.Kind.String())
}

func (lw *lowerer) literal(n *ast.Node) error {
	for i := 0; i < len(n.Value); i++ {
		idx := lw.c.AddInstruction(MatchChar)
		lw.c.SetChar(idx, n.Value[i])
		lw.c.SetInstructionFlags(idx, n.Flags)
	}
	return nil
}

func (lw *lowerer) anchor(n *ast.Node) error {
	idx := lw.c.AddInstruction(Boundary)
	lw.c.SetInstructionFlags(idx, n.Flags)
	var kind AnchorKind
	switch n.Value {
	case "^":
		kind = AnchorStartOfLine
	case "$":
		kind = AnchorEndOfLine
	case `\b`:
		kind = AnchorWordBoundary
	case `\B`:
		kind = AnchorNotWordBoundary
	case `\A`:
		kind = AnchorStartOfInput
	case `\Z`:
		kind = AnchorEndOfInput
	}
	lw.c.SetAnchorKind(idx, kind)
	return nil
}

func (lw *lowerer) backref(n *ast.Node) error {
	idx := lw.c.AddInstruction(Backref)
	lw.c.SetInstructionFlags(idx, n.Flags)
	if group, ok := parseDigits(n.Value); ok {
		lw.c.SetGroupIndex(idx, group)
		return nil
	}
	if group, ok := lw.names[n.Value]; ok {
		lw.c.SetGroupIndex(idx, group)
		return nil
	}
	return common.NewError(common.UnexpectedToken, 0, "backreference to undefined group "+n.Value)
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// alternation emits a right-leaning chain of 2-way SPLITs:
//
//	SPLIT body|rest; code(children[0]); JUMP end; rest: <recurse>; end:
func (lw *lowerer) alternation(children []int) error {
	if len(children) == 1 {
		return lw.node(children[0])
	}
	splitIdx := lw.c.AddInstruction(Split)
	bodyStart := len(lw.c.prog.Instructions)
	lw.c.SetTarget(splitIdx, bodyStart)
	if err := lw.node(children[0]); err != nil {
		return err
	}
	jumpIdx := lw.c.AddInstruction(Jump)
	altStart := len(lw.c.prog.Instructions)
	lw.c.SetAlt(splitIdx, altStart)
	if err := lw.alternation(children[1:]); err != nil {
		return err
	}
	lw.c.SetTarget(jumpIdx, len(lw.c.prog.Instructions))
	return nil
}

func (lw *lowerer) quantifier(n *ast.Node) error {
	child := n.Children[0]
	for k := 0; k < n.Min; k++ {
		if err := lw.node(child); err != nil {
			return err
		}
	}
	switch {
	case n.Max == -1:
		return lw.unboundedTail(child, n.Greedy)
	case n.Max > n.Min:
		return lw.boundedTail(child, n.Max-n.Min, n.Greedy)
	}
	return nil
}

// unboundedTail emits the classic Pike loop for '*' (min==0) / '+' tails
// (min==1 already unrolled by the caller): SPLIT body/exit; body; JUMP
// split; exit — with target/alt swapped for non-greedy.
func (lw *lowerer) unboundedTail(child int, greedy bool) error {
	splitIdx := lw.c.AddInstruction(Split)
	bodyStart := len(lw.c.prog.Instructions)
	if err := lw.node(child); err != nil {
		return err
	}
	jumpBack := lw.c.AddInstruction(Jump)
	lw.c.SetTarget(jumpBack, splitIdx)
	exitStart := len(lw.c.prog.Instructions)
	if greedy {
		lw.c.SetTarget(splitIdx, bodyStart)
		lw.c.SetAlt(splitIdx, exitStart)
	} else {
		lw.c.SetTarget(splitIdx, exitStart)
		lw.c.SetAlt(splitIdx, bodyStart)
	}
	return nil
}

// boundedTail emits `remaining` right-nested optional copies of child, so
// skipping at any level jumps past every remaining copy.
func (lw *lowerer) boundedTail(child, remaining int, greedy bool) error {
	if remaining == 0 {
		return nil
	}
	splitIdx := lw.c.AddInstruction(Split)
	bodyStart := len(lw.c.prog.Instructions)
	if err := lw.node(child); err != nil {
		return err
	}
	if err := lw.boundedTail(child, remaining-1, greedy); err != nil {
		return err
	}
	endIdx := len(lw.c.prog.Instructions)
	if greedy {
		lw.c.SetTarget(splitIdx, bodyStart)
		lw.c.SetAlt(splitIdx, endIdx)
	} else {
		lw.c.SetTarget(splitIdx, endIdx)
		lw.c.SetAlt(splitIdx, bodyStart)
	}
	return nil
}

// lookaround emits op, reserves its NestedLen operand, compiles the
// nested body, terminates it with its own ACCEPT, and patches NestedLen
// to span exactly the nested region (body + that ACCEPT) so the VM never
// has to guess where a nested program ends.
func (lw *lowerer) lookaround(n *ast.Node, op Opcode) error {
	idx := lw.c.AddInstruction(op)
	lw.c.SetInstructionFlags(idx, n.Flags)
	bodyStart := len(lw.c.prog.Instructions)
	if err := lw.node(n.Children[0]); err != nil {
		return err
	}
	lw.c.AddInstruction(Accept)
	lw.c.SetNestedLen(idx, len(lw.c.prog.Instructions)-bodyStart)
	return nil
}
