// Package literal provides types and operations for extracting literal sequences
// from regex patterns for prefilter optimization.
package literal

import (
	"github.com/coregx/riftregex/ast"
	"github.com/coregx/riftregex/common"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals that hurt cache locality
//   - MaxClassSize: prevents expanding large character classes like [a-z]
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 64,
//	    MaxClassSize:  10,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the maximum number of literals to extract.
	// For patterns with many alternations like (a|b|c|...|z), this prevents
	// unbounded memory growth. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the maximum length of each extracted literal.
	// Very long literals hurt prefilter performance due to cache misses.
	// Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of character classes to expand.
	// Character classes like [abc] are expanded to ["a", "b", "c"].
	// Large classes like [a-z] (26 chars) are NOT expanded if > MaxClassSize.
	// Default: 10.
	MaxClassSize int

	// CrossProductLimit is the maximum total number of intermediate literals allowed
	// during cross-product expansion when walking a Concatenation. When a
	// concatenation contains small character classes (e.g., ag[act]gtaaa), the
	// extractor computes the cross-product of accumulated literals with each
	// class expansion. This limit prevents combinatorial explosion from
	// patterns with many classes.
	//
	// When exceeded, literals are truncated to 4 bytes (Teddy fingerprint size),
	// deduplicated, and marked as inexact. Default: 250 (matching Rust regex-syntax).
	CrossProductLimit int
}

// DefaultConfig returns the default extractor configuration.
//
// Defaults are tuned for typical regex patterns:
//   - MaxLiterals: 64 (handles most alternations without bloat)
//   - MaxLiteralLen: 64 (good cache locality for prefilters)
//   - MaxClassSize: 10 (small classes only, avoids [a-z] explosion)
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:       64,
		MaxLiteralLen:     64,
		MaxClassSize:      10,
		CrossProductLimit: 250,
	}
}

// Extractor extracts literal sequences from a compiled pattern's AST.
//
// It walks an *ast.AST and extracts:
//   - Prefix literals: literals that must appear at the start
//   - Suffix literals: literals that must appear at the end
//   - Inner literals: any literals that must appear somewhere
//
// These literals enable fast prefiltering before running the full regex
// VM: a prefilter is an accelerator, never a correctness dependency — a
// pattern the extractor can't usefully summarize simply yields an empty
// Seq, and callers fall back to running the VM directly.
//
// Example:
//
//	tree, _ := ast.Parse("(hello|world)", 0)
//	extractor := literal.New(literal.DefaultConfig())
//	prefixes := extractor.ExtractPrefixes(tree, tree.Root)
//	// prefixes = ["hello", "world"]
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes extracts prefix literals from the node at idx.
// Returns literals that must appear at the start of any match.
//
// Handles these ast.Kind values:
//   - Literal: single byte → returns it
//   - Concatenation: cross-product through the sequence of children
//   - Alternation: union of all branches (e.g., (foo|bar) → ["foo", "bar"])
//   - CharacterClass: expand small classes (e.g., [abc] → ["a", "b", "c"])
//   - Group/NamedGroup/NonCapturingGroup: ignore the wrapper, recurse inside
//   - Quantifier: repetition makes the prefix optional/variable → empty
//
// Examples:
//
//	"hello"         → ["hello"]
//	"(foo|bar)"     → ["foo", "bar"]
//	"[abc]test"     → ["atest", "btest", "ctest"]
//	"hello.*world"  → ["hello"]
//	".*foo"         → [] (no prefix requirement)
//
// Returns empty Seq if no prefix literals can be extracted.
func (e *Extractor) ExtractPrefixes(tree *ast.AST, idx int) *Seq {
	return e.extractPrefixes(tree, idx, 0)
}

func (e *Extractor) extractPrefixes(tree *ast.AST, idx, depth int) *Seq {
	if depth > 100 || idx < 0 {
		return NewSeq()
	}
	n := &tree.Nodes[idx]
	// Prefilter matching is case-sensitive byte comparison; a
	// case-insensitive node's literal bytes would miss the opposite-case
	// spelling, so it contributes nothing.
	if n.Flags.Has(common.CaseInsensitive) {
		return NewSeq()
	}

	switch n.Kind {
	case ast.Root:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractPrefixes(tree, n.Children[0], depth+1)

	case ast.Literal:
		b := []byte(n.Value)
		if len(b) > e.config.MaxLiteralLen {
			b = b[:e.config.MaxLiteralLen]
		}
		return NewSeq(NewLiteral(b, true))

	case ast.Concatenation:
		return e.extractPrefixesConcat(tree, n.Children, depth)

	case ast.Alternation:
		var allLits []Literal
		for _, c := range n.Children {
			seq := e.extractPrefixes(tree, c, depth+1)
			if seq.IsEmpty() {
				return NewSeq()
			}
			for i := 0; i < seq.Len(); i++ {
				allLits = append(allLits, seq.Get(i))
				if len(allLits) > e.config.MaxLiterals {
					// A partial set would hide the dropped branches'
					// matches from the prefilter, so give up instead.
					return NewSeq()
				}
			}
		}
		return NewSeq(allLits...)

	case ast.CharacterClass:
		return e.expandCharClass(n.Value)

	case ast.Group, ast.NamedGroup, ast.NonCapturingGroup:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractPrefixes(tree, n.Children[0], depth+1)

	case ast.Quantifier:
		// a*, a?, a+, a{m,n}: conservatively no reliable prefix, even when
		// Min >= 1, since the extractor only reports requirements that
		// hold for every match (and a{2,} still varies in total length).
		return NewSeq()

	default:
		// Anchor, Dot, Backreference, lookaround, BackrefReset, Comment,
		// Option: none contribute a required prefix.
		return NewSeq()
	}
}

// extractPrefixesConcat handles cross-product literal expansion across a
// Concatenation's children. For each child, the accumulated literal set is
// extended:
//   - Literal: append its byte to every accumulated (still-exact) literal
//   - CharacterClass (small): cross-product with the expanded class
//   - Alternation (all-literal): cross-product with the branch literals
//   - Group wrappers: unwrap and recurse
//   - anything else (Dot, Quantifier, anchors, ...): mark inexact and stop
//
// Example: ag[act]gtaaa
//
//	Step 0: acc = [""] (one empty complete literal)
//	Step 1: sub='a' → acc=["a"]; sub='g' → acc=["ag"]
//	Step 2: sub=[act] → acc = ["aga", "agc", "agt"]
//	Step 3: sub="gtaaa" → acc = ["agagtaaa", "agcgtaaa", "agtgtaaa"]
func (e *Extractor) extractPrefixesConcat(tree *ast.AST, children []int, depth int) *Seq {
	if len(children) == 0 {
		return NewSeq()
	}

	startIdx := 0
	for startIdx < len(children) && tree.Nodes[children[startIdx]].Kind == ast.Anchor {
		startIdx++
	}
	if startIdx >= len(children) {
		return NewSeq()
	}

	crossLimit := e.config.CrossProductLimit
	if crossLimit <= 0 {
		crossLimit = 250
	}

	acc := NewSeq(NewLiteral([]byte{}, true))
	for i := startIdx; i < len(children); i++ {
		if !e.hasAnyExact(acc) {
			break
		}

		contribution := e.concatSubContribution(tree, children[i], depth)
		if contribution == nil {
			e.markAllInexact(acc)
			break
		}

		acc.CrossForward(contribution)
		if acc.Len() > crossLimit || acc.Len() > e.config.MaxLiterals {
			acc = e.handleCrossProductOverflow(acc)
			break
		}
		e.enforceMaxLiteralLen(acc)
	}

	if acc.Len() == 1 && len(acc.Get(0).Bytes) == 0 {
		return NewSeq()
	}
	return acc
}

// concatSubContribution returns a Seq representing one Concatenation child's
// contribution to cross-product expansion, or nil if it is not expandable.
func (e *Extractor) concatSubContribution(tree *ast.AST, idx, depth int) *Seq {
	if depth > 100 {
		return nil
	}
	n := &tree.Nodes[idx]
	if n.Flags.Has(common.CaseInsensitive) {
		return nil
	}

	switch n.Kind {
	case ast.Literal:
		return NewSeq(NewLiteral([]byte(n.Value), true))

	case ast.CharacterClass:
		expanded := e.expandCharClass(n.Value)
		if expanded.IsEmpty() {
			return nil
		}
		return expanded

	case ast.Alternation:
		return e.expandAlternateContribution(tree, idx, depth)

	case ast.Group, ast.NamedGroup, ast.NonCapturingGroup:
		if len(n.Children) == 0 {
			return nil
		}
		return e.concatSubContribution(tree, n.Children[0], depth+1)

	case ast.Concatenation:
		// A group wrapping more than one atom (e.g. "(foo)") lowers to a
		// Group whose single child is itself a Concatenation of single-byte
		// Literal nodes; recurse through the same cross-product merge used
		// at the top level so it still contributes as one literal run.
		seq := e.extractPrefixesConcat(tree, n.Children, depth+1)
		if seq.IsEmpty() {
			return nil
		}
		return seq

	case ast.Quantifier:
		// Repetition contributes nothing, even with Min >= 1, matching
		// extractPrefixes' own Quantifier case.
		return nil

	default:
		return nil
	}
}

// expandAlternateContribution tries to expand an alternation inside a
// Concatenation into a set of literals for cross-product. Returns nil if any
// branch is not a simple literal/class that can be expanded.
func (e *Extractor) expandAlternateContribution(tree *ast.AST, idx, depth int) *Seq {
	n := &tree.Nodes[idx]
	var allLits []Literal
	for _, c := range n.Children {
		seq := e.extractPrefixes(tree, c, depth+1)
		if seq.IsEmpty() {
			return nil
		}
		for i := 0; i < seq.Len(); i++ {
			allLits = append(allLits, seq.Get(i))
			if len(allLits) > e.config.MaxLiterals {
				return nil
			}
		}
	}
	return NewSeq(allLits...)
}

func (e *Extractor) hasAnyExact(s *Seq) bool {
	for i := 0; i < s.Len(); i++ {
		if s.Get(i).Complete {
			return true
		}
	}
	return false
}

func (e *Extractor) markAllInexact(s *Seq) {
	for i := range s.literals {
		s.literals[i].Complete = false
	}
}

func (e *Extractor) enforceMaxLiteralLen(s *Seq) {
	for i := range s.literals {
		if len(s.literals[i].Bytes) > e.config.MaxLiteralLen {
			s.literals[i].Bytes = s.literals[i].Bytes[:e.config.MaxLiteralLen]
			s.literals[i].Complete = false
		}
	}
}

// handleCrossProductOverflow truncates every literal to 4 bytes (Teddy
// fingerprint size), deduplicates, and marks all as inexact. If more than
// MaxLiterals remain after that, it returns an empty Seq.
func (e *Extractor) handleCrossProductOverflow(s *Seq) *Seq {
	s.KeepFirstBytes(4)
	e.markAllInexact(s)
	s.Dedup()
	if s.Len() > e.config.MaxLiterals {
		return NewSeq()
	}
	return s
}

// ExtractSuffixes extracts suffix literals from the node at idx.
// Returns literals that must appear at the end of any match.
//
// Examples:
//
//	"world"         → ["world"]
//	"(foo|bar)"     → ["foo", "bar"]
//	"test[xyz]"     → ["testx", "testy", "testz"]
//	"hello.*world"  → ["world"]
//	"foo.*"         → [] (no suffix requirement)
func (e *Extractor) ExtractSuffixes(tree *ast.AST, idx int) *Seq {
	return e.extractSuffixes(tree, idx, 0)
}

func (e *Extractor) extractSuffixes(tree *ast.AST, idx, depth int) *Seq {
	if depth > 100 || idx < 0 {
		return NewSeq()
	}
	n := &tree.Nodes[idx]
	if n.Flags.Has(common.CaseInsensitive) {
		return NewSeq()
	}

	switch n.Kind {
	case ast.Root:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractSuffixes(tree, n.Children[0], depth+1)

	case ast.Literal:
		b := []byte(n.Value)
		if len(b) > e.config.MaxLiteralLen {
			b = b[len(b)-e.config.MaxLiteralLen:]
		}
		return NewSeq(NewLiteral(b, true))

	case ast.Concatenation:
		return e.extractSuffixesConcat(tree, n.Children, depth)

	case ast.Alternation:
		var allLits []Literal
		for _, c := range n.Children {
			seq := e.extractSuffixes(tree, c, depth+1)
			if seq.IsEmpty() {
				return NewSeq()
			}
			for i := 0; i < seq.Len(); i++ {
				allLits = append(allLits, seq.Get(i))
				if len(allLits) > e.config.MaxLiterals {
					return NewSeq()
				}
			}
		}
		return NewSeq(allLits...)

	case ast.CharacterClass:
		return e.expandCharClass(n.Value)

	case ast.Group, ast.NamedGroup, ast.NonCapturingGroup:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractSuffixes(tree, n.Children[0], depth+1)

	default:
		// Quantifier, Dot, anchors, lookaround, backreference: variable or
		// non-literal, no reliable suffix.
		return NewSeq()
	}
}

// extractSuffixesConcat implements the "cross_reverse" operation: extract
// from the last non-anchor child, then walk backward prepending preceding
// literal children.
func (e *Extractor) extractSuffixesConcat(tree *ast.AST, children []int, depth int) *Seq {
	if len(children) == 0 {
		return NewSeq()
	}

	lastIdx := len(children) - 1
	for lastIdx >= 0 && tree.Nodes[children[lastIdx]].Kind == ast.Anchor {
		lastIdx--
	}
	if lastIdx < 0 {
		return NewSeq()
	}

	suffixes := e.extractSuffixes(tree, children[lastIdx], depth+1)
	if suffixes.IsEmpty() {
		return NewSeq()
	}

	for i := lastIdx - 1; i >= 0; i-- {
		child := &tree.Nodes[children[i]]
		if child.Kind != ast.Literal {
			lits := make([]Literal, suffixes.Len())
			for j := 0; j < suffixes.Len(); j++ {
				lit := suffixes.Get(j)
				lits[j] = NewLiteral(lit.Bytes, false)
			}
			return NewSeq(lits...)
		}

		prefix := []byte(child.Value)
		lits := make([]Literal, suffixes.Len())
		for j := 0; j < suffixes.Len(); j++ {
			lit := suffixes.Get(j)
			newBytes := make([]byte, len(prefix)+len(lit.Bytes))
			copy(newBytes, prefix)
			copy(newBytes[len(prefix):], lit.Bytes)
			if len(newBytes) > e.config.MaxLiteralLen {
				newBytes = newBytes[len(newBytes)-e.config.MaxLiteralLen:]
			}
			lits[j] = NewLiteral(newBytes, lit.Complete)
		}
		suffixes = NewSeq(lits...)

		if suffixes.Len() > e.config.MaxLiterals {
			return suffixes
		}
	}

	return suffixes
}

// ExtractInner extracts inner literals (not necessarily prefix/suffix) from
// the node at idx. Useful for patterns like ".*foo.*" where foo must appear
// somewhere.
//
// Examples:
//
//	".*foo.*"           → ["foo"]
//	".*(hello|world).*" → ["hello", "world"]
//	"prefix.*middle.*suffix" → ["prefix"] (first found)
func (e *Extractor) ExtractInner(tree *ast.AST, idx int) *Seq {
	return e.extractInner(tree, idx, 0)
}

func (e *Extractor) extractInner(tree *ast.AST, idx, depth int) *Seq {
	if depth > 100 || idx < 0 {
		return NewSeq()
	}
	n := &tree.Nodes[idx]
	if n.Flags.Has(common.CaseInsensitive) {
		return NewSeq()
	}

	switch n.Kind {
	case ast.Root:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractInner(tree, n.Children[0], depth+1)

	case ast.Literal:
		b := []byte(n.Value)
		if len(b) > e.config.MaxLiteralLen {
			b = b[:e.config.MaxLiteralLen]
		}
		return NewSeq(NewLiteral(b, false))

	case ast.Concatenation:
		return e.extractInnerConcat(tree, n.Children, depth)

	case ast.Alternation:
		var allLits []Literal
		for _, c := range n.Children {
			seq := e.extractInner(tree, c, depth+1)
			if seq.IsEmpty() {
				return NewSeq()
			}
			for i := 0; i < seq.Len(); i++ {
				allLits = append(allLits, seq.Get(i))
				if len(allLits) > e.config.MaxLiterals {
					return NewSeq()
				}
			}
		}
		return NewSeq(allLits...)

	case ast.CharacterClass:
		return e.expandCharClass(n.Value)

	case ast.Group, ast.NamedGroup, ast.NonCapturingGroup:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.extractInner(tree, n.Children[0], depth+1)

	default:
		return NewSeq()
	}
}

// innerRun is one maximal contiguous run of Concatenation children that
// concatSubContribution can merge into a single cross-product literal
// sequence, together with the [start, end) bounds it occupies.
type innerRun struct {
	start, end int
	seq        *Seq
}

// innerRuns scans children for every maximal contiguous run of mergeable
// children (the same notion concatSubContribution/extractPrefixesConcat use
// for prefix cross-product), merging each run's bytes into one literal
// sequence. Runs are separated by children concatSubContribution can't
// expand (wildcards, repetitions, anchors, lookaround, backreferences).
func (e *Extractor) innerRuns(tree *ast.AST, children []int, depth int) []innerRun {
	var runs []innerRun
	i := 0
	for i < len(children) {
		contribution := e.concatSubContribution(tree, children[i], depth)
		if contribution == nil {
			i++
			continue
		}
		start := i
		acc := contribution
		i++
		for i < len(children) {
			next := e.concatSubContribution(tree, children[i], depth)
			if next == nil {
				break
			}
			prev := acc.Clone()
			acc.CrossForward(next)
			e.enforceMaxLiteralLen(acc)
			if acc.Len() > e.config.MaxLiterals {
				acc = prev
				break
			}
			i++
		}
		if !acc.IsEmpty() {
			runs = append(runs, innerRun{start: start, end: i, seq: acc})
		}
	}
	return runs
}

// extractInnerConcat merges the first run of contiguous literal-bearing
// children into one literal sequence, marked inexact: an inner literal is
// never by itself sufficient for a full match.
func (e *Extractor) extractInnerConcat(tree *ast.AST, children []int, depth int) *Seq {
	runs := e.innerRuns(tree, children, depth)
	if len(runs) == 0 {
		return NewSeq()
	}
	seq := runs[0].seq
	e.markAllInexact(seq)
	return seq
}

// expandCharClass expands a CharacterClass node's raw body into individual
// byte literals, provided the class is small enough (MaxClassSize) and
// contains no shorthand escapes (\d, \w, ...) or negation — those describe a
// set too broad (or, for negation, too indirect) to usefully prefilter.
//
// Examples:
//
//	"abc"  → ["a", "b", "c"]
//	"a-c"  → ["a", "b", "c"]
//	"a-z"  → [] (26 chars, over the default limit of 10)
func (e *Extractor) expandCharClass(body string) *Seq {
	bytes, ok := expandClassBody(body, e.config.MaxClassSize)
	if !ok {
		return NewSeq()
	}
	var lits []Literal
	for _, b := range bytes {
		lits = append(lits, NewLiteral([]byte{b}, true))
		if len(lits) >= e.config.MaxLiterals {
			break
		}
	}
	return NewSeq(lits...)
}

// InnerLiteralInfo describes an inner literal suitable for the ReverseInner
// search strategy, along with the Concatenation-child index ranges
// surrounding it: PrefixChildren covers the part of the pattern BEFORE the
// inner literal (for a reverse scan to find the match start), SuffixChildren
// covers the inner literal onward (for a forward scan to find the match
// end). Because the AST arena is shared and immutable after Validate, these
// are plain index slices into Tree rather than cloned subtrees.
type InnerLiteralInfo struct {
	Literals       *Seq
	InnerIdx       int
	Tree           *ast.AST
	PrefixChildren []int
	SuffixChildren []int
}

// ExtractInnerForReverseSearch extracts inner literals suitable for the
// ReverseInner strategy. Returns nil if no suitable inner literal is found
// (only prefix/suffix literals available, or the node isn't a
// Concatenation of at least three parts).
//
// "Inner" means: not at the very start, not at the very end, and has
// wildcards/repetitions both before and after it.
func (e *Extractor) ExtractInnerForReverseSearch(tree *ast.AST, idx int) *InnerLiteralInfo {
	n := &tree.Nodes[idx]
	if n.Kind == ast.Root {
		if len(n.Children) == 0 {
			return nil
		}
		return e.ExtractInnerForReverseSearch(tree, n.Children[0])
	}
	if n.Kind != ast.Concatenation || len(n.Children) < 3 {
		return nil
	}
	children := n.Children

	for _, run := range e.innerRuns(tree, children, 0) {
		if run.start == 0 || run.end == len(children) {
			continue
		}

		hasWildcardBefore := false
		for j := 0; j < run.start; j++ {
			if isWildcardOrRepetition(tree, children[j]) {
				hasWildcardBefore = true
				break
			}
		}
		if !hasWildcardBefore {
			continue
		}
		hasWildcardAfter := false
		for j := run.end; j < len(children); j++ {
			if isWildcardOrRepetition(tree, children[j]) {
				hasWildcardAfter = true
				break
			}
		}
		if !hasWildcardAfter {
			continue
		}

		e.markAllInexact(run.seq)
		return &InnerLiteralInfo{
			Literals:       run.seq,
			InnerIdx:       run.start,
			Tree:           tree,
			PrefixChildren: children[:run.start],
			SuffixChildren: children[run.start:],
		}
	}
	return nil
}

// isWildcardOrRepetition reports whether the node at idx is (or contains) a
// wildcard or repetition, indicating variable-length matching.
func isWildcardOrRepetition(tree *ast.AST, idx int) bool {
	n := &tree.Nodes[idx]
	switch n.Kind {
	case ast.Quantifier, ast.Dot:
		return true
	case ast.Concatenation, ast.Alternation:
		for _, c := range n.Children {
			if isWildcardOrRepetition(tree, c) {
				return true
			}
		}
		return false
	case ast.Group, ast.NamedGroup, ast.NonCapturingGroup:
		if len(n.Children) > 0 {
			return isWildcardOrRepetition(tree, n.Children[0])
		}
		return false
	default:
		return false
	}
}
