// Package ast builds and manipulates the syntax tree produced by parsing
// a pattern's token stream, and lowers it toward package compiler.
package ast

import (
	"fmt"

	"github.com/coregx/riftregex/common"
)

// Kind identifies the syntactic category of a Node.
type Kind uint8

const (
	// Root wraps the whole parsed pattern; it has exactly one child.
	Root Kind = iota

	Alternation    // >=2 children, one per '|'-separated branch
	Concatenation  // 0..N children, matched in sequence
	Literal        // single byte in Value
	Dot            // '.'
	CharacterClass // raw class body (between '[' ']') in Value
	Group          // numbered capturing group; GroupIndex set, 1 child
	NonCapturingGroup
	NamedGroup // numbered + named; GroupIndex and GroupName set, 1 child
	Backreference
	Quantifier // Min/Max/Greedy set, exactly 1 child
	Anchor     // Value is one of "^" "$" "\\b" "\\B" "\\A" "\\Z"
	Lookahead
	NegativeLookahead
	Lookbehind
	NegativeLookbehind
	AtomicGroup
	Comment      // Value is the comment text, no children, compiles to nothing
	Option       // inline flag modifier; Flags set; 1 child: the rest of the
	             // enclosing concatenation ("(?flags)") or the explicit
	             // "(?flags:...)" scope
	BackrefReset // '\K'

	// Conditional, PosixClass, and UnicodeProperty are reserved node kinds
	// for syntax no grammar production currently produces; declared so the
	// wire/debug format has stable numbering if a later grammar extension
	// adds them.
	Conditional
	PosixClass
	UnicodeProperty
)

var kindNames = [...]string{
	Root: "Root", Alternation: "Alternation", Concatenation: "Concatenation",
	Literal: "Literal", Dot: "Dot", CharacterClass: "CharacterClass",
	Group: "Group", NonCapturingGroup: "NonCapturingGroup", NamedGroup: "NamedGroup",
	Backreference: "Backreference", Quantifier: "Quantifier", Anchor: "Anchor",
	Lookahead: "Lookahead", NegativeLookahead: "NegativeLookahead",
	Lookbehind: "Lookbehind", NegativeLookbehind: "NegativeLookbehind",
	AtomicGroup: "AtomicGroup", Comment: "Comment", Option: "Option",
	BackrefReset: "BackrefReset", Conditional: "Conditional",
	PosixClass: "PosixClass", UnicodeProperty: "UnicodeProperty",
}

// String renders the node kind's name, used for diagnostics and ToString.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// noParent marks a node with no parent (the root node).
const noParent = -1

// Node is one element of the syntax tree, stored in an AST's flat arena.
// Parent and Children reference sibling Nodes by arena index rather than
// by pointer, so Clone and Free operate on index ranges without chasing
// pointer graphs.
type Node struct {
	Kind     Kind
	Value    string
	Children []int
	Parent   int

	// Flags holds the regex flags in effect at this node (the AST's base
	// flags, modified by any enclosing inline "(?flags...)" Option node).
	Flags common.Flags

	// Quantifier fields.
	Min, Max int // Max == -1 means unbounded
	Greedy   bool

	// Group fields (Group, NamedGroup).
	GroupIndex int // 1-based; 0 for non-capturing kinds
	GroupName  string
}
