package ast

import (
	"hash"
	"hash/fnv"
)

// Fingerprint summarizes a validated AST's shape: complexity and
// structural counts for callers to inspect, plus a deterministic hash over
// the canonical tree (kind + value + ordered children) for cache keys.
type Fingerprint struct {
	Complexity        float64
	StateCount        int
	TransitionCount   int
	BranchingFactor   float64
	MaxNesting        int
	AlternationCount  int
	QuantifierCount   int
	CaptureGroupCount int
	Hash              uint64
}

// Fingerprint computes the Fingerprint bottom-up over the tree rooted at
// a.Root.
func (a *AST) Fingerprint() Fingerprint {
	fp := Fingerprint{CaptureGroupCount: a.GroupCount}
	h := fnv.New64a()
	var walk func(i, depth int) float64
	walk = func(i, depth int) float64 {
		n := &a.Nodes[i]
		if depth > fp.MaxNesting {
			fp.MaxNesting = depth
		}
		fp.StateCount++

		branching := len(n.Children)
		if branching > 1 {
			fp.TransitionCount += branching
		} else {
			fp.TransitionCount++
		}

		writeHashNode(h, n)

		var childComplexity float64
		for _, c := range n.Children {
			childComplexity += walk(c, depth+1)
		}

		local := float64(1+branching) * float64(depth+1)
		switch n.Kind {
		case Alternation:
			fp.AlternationCount++
			local *= 1.5
		case Quantifier:
			fp.QuantifierCount++
			if n.Max == -1 {
				local *= 2.0
			}
		}
		return local + childComplexity
	}
	fp.Complexity = walk(a.Root, 0)

	if fp.StateCount > 0 {
		fp.BranchingFactor = float64(fp.TransitionCount) / float64(fp.StateCount)
	}
	fp.Hash = h.Sum64()
	return fp
}

func writeHashNode(h hash.Hash64, n *Node) {
	h.Write([]byte{byte(n.Kind)})
	h.Write([]byte(n.Value))
	h.Write([]byte{0})
}
