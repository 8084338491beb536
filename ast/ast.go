package ast

import (
	"strings"

	"github.com/coregx/riftregex/common"
	"github.com/coregx/riftregex/internal/sparse"
)

const maxNestingDepth = 256

// AST is a parsed pattern: a node arena rooted at Root, the active flags
// it was parsed under, and the number of capturing groups it assigns.
type AST struct {
	Nodes      []Node
	Root       int
	Flags      common.Flags
	GroupCount int
	IsValid    bool
}

// node returns a pointer into the arena; callers must not retain it across
// an append (the backing array may move).
func (a *AST) node(i int) *Node { return &a.Nodes[i] }

// NumChildren reports how many children node i has.
func (a *AST) NumChildren(i int) int { return len(a.Nodes[i].Children) }

// Clone produces a deep, independent copy: a fresh arena with identical
// shape, so mutating the clone never affects the original.
func (a *AST) Clone() *AST {
	out := &AST{
		Nodes:      make([]Node, len(a.Nodes)),
		Root:       a.Root,
		Flags:      a.Flags,
		GroupCount: a.GroupCount,
		IsValid:    a.IsValid,
	}
	for i, n := range a.Nodes {
		cp := n
		cp.Children = append([]int(nil), n.Children...)
		out.Nodes[i] = cp
	}
	return out
}

// Validate walks every reachable node and checks its shape: child counts
// appropriate to its kind, quantifier operands present, and backreference
// indices within [1, GroupCount]. Sets IsValid and returns the first
// structural error found, if any.
func (a *AST) Validate() error {
	a.IsValid = false
	if len(a.Nodes) == 0 {
		return common.NewError(common.InvalidAutomaton, 0, "empty AST")
	}
	visited := sparse.NewSparseSet(uint32(len(a.Nodes)))
	var stack []int
	stack = append(stack, a.Root)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Contains(uint32(i)) {
			continue
		}
		visited.Insert(uint32(i))
		n := &a.Nodes[i]
		if err := a.validateShape(i, n); err != nil {
			return err
		}
		stack = append(stack, n.Children...)
	}
	a.IsValid = true
	return nil
}

func (a *AST) validateShape(i int, n *Node) error {
	switch n.Kind {
	case Root:
		if len(n.Children) != 1 {
			return common.NewError(common.InvalidAutomaton, 0, "Root must have exactly 1 child")
		}
	case Alternation:
		if len(n.Children) < 2 {
			return common.NewError(common.InvalidAutomaton, 0, "Alternation needs >=2 children")
		}
	case Quantifier:
		if len(n.Children) != 1 {
			return common.NewError(common.InvalidAutomaton, 0, "Quantifier needs exactly 1 child")
		}
		if n.Max != -1 && n.Min > n.Max {
			return common.NewError(common.InvalidAutomaton, 0, "Quantifier min > max")
		}
	case Group, NamedGroup, NonCapturingGroup, Lookahead, NegativeLookahead,
		Lookbehind, NegativeLookbehind, AtomicGroup:
		if len(n.Children) != 1 {
			return common.NewError(common.InvalidAutomaton, 0, "group-like node needs exactly 1 child")
		}
	case Option:
		if len(n.Children) > 1 {
			return common.NewError(common.InvalidAutomaton, 0, "Option needs 0 or 1 children")
		}
	case Backreference:
		idx, ok := a.backrefIndex(n, nil)
		if ok && (idx < 1 || idx > a.GroupCount) {
			return common.NewError(common.InvalidAutomaton, 0, "backreference index exceeds group count")
		}
	}
	_ = i
	return nil
}

// backrefIndex resolves n.Value (digits or a name) to a 1-based group
// index. names, if non-nil, maps group names to indices for named
// backreference resolution; callers that don't track names pass nil and
// only numeric backreferences resolve.
func (a *AST) backrefIndex(n *Node, names map[string]int) (int, bool) {
	if idx, ok := parseUint(n.Value); ok {
		return idx, true
	}
	if names != nil {
		if idx, ok := names[n.Value]; ok {
			return idx, true
		}
	}
	return 0, false
}

func parseUint(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// ToString renders the tree as a parenthesized s-expression, e.g.
// "(Root (Concatenation (Literal a) (Quantifier * (Literal b))))", for debugging
// and golden-file tests.
func (a *AST) ToString() string {
	var b strings.Builder
	a.writeNode(&b, a.Root)
	return b.String()
}

func (a *AST) writeNode(b *strings.Builder, i int) {
	n := &a.Nodes[i]
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	if n.Value != "" {
		b.WriteByte(' ')
		b.WriteString(n.Value)
	}
	if n.Kind == Quantifier {
		b.WriteByte(' ')
		b.WriteString(quantifierTag(n))
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		a.writeNode(b, c)
	}
	b.WriteByte(')')
}

func quantifierTag(n *Node) string {
	switch {
	case n.Min == 0 && n.Max == -1:
		if n.Greedy {
			return "*"
		}
		return "*?"
	case n.Min == 1 && n.Max == -1:
		if n.Greedy {
			return "+"
		}
		return "+?"
	case n.Min == 0 && n.Max == 1:
		if n.Greedy {
			return "?"
		}
		return "??"
	default:
		return ""
	}
}
