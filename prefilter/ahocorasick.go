package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/riftregex/literal"
)

// ahoCorasickPrefilter wraps an ahocorasick.Automaton as a Prefilter.
//
// This is selected for literal alternations too large for Teddy/FatTeddy
// (more than MaxFatTeddyPatterns literals): the automaton matches all
// patterns in a single O(n) pass over the haystack regardless of how many
// literals it holds, where Teddy's bucket-based SIMD search degrades as
// pattern count grows past what a nibble mask can distinguish.
//
// complete is true only when every literal handed to the builder was a
// complete match on its own (no further verification needed); it mirrors
// the same flag on memchrPrefilter/memmemPrefilter/Teddy.
type ahoCorasickPrefilter struct {
	automaton *ahocorasick.Automaton
	complete  bool
}

// newAhoCorasickPrefilter builds an Aho-Corasick automaton over seq's
// literals. Returns nil if the automaton cannot be built (e.g. seq is
// empty) so callers can fall back to no prefilter.
func newAhoCorasickPrefilter(seq *literal.Seq) Prefilter {
	builder := ahocorasick.NewBuilder()
	n := seq.Len()
	allComplete := n > 0
	for i := 0; i < n; i++ {
		lit := seq.Get(i)
		builder.AddPattern(lit.Bytes)
		allComplete = allComplete && lit.Complete
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{automaton: auto, complete: allComplete}
}

// Find implements Prefilter.Find.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// FindMatch implements MatchFinder.FindMatch, returning the exact matched
// span directly since pattern length varies across the alternation.
func (p *ahoCorasickPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	if start < 0 || start > len(haystack) {
		return -1, -1
	}
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1, -1
	}
	return m.Start, m.End
}

// IsComplete implements Prefilter.IsComplete.
func (p *ahoCorasickPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen. Aho-Corasick literals vary in
// length, so this always reports 0 (callers needing the exact span should
// use FindMatch via the MatchFinder interface instead).
func (p *ahoCorasickPrefilter) LiteralLen() int {
	return 0
}

// HeapBytes implements Prefilter.HeapBytes. The automaton's table size
// isn't exposed by the library, so this reports 0 rather than guessing.
func (p *ahoCorasickPrefilter) HeapBytes() int {
	return 0
}
