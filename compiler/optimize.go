package compiler

// Optimize removes every Nop instruction and remaps all Jump/Split/
// lookaround targets through the resulting relocation table: a target
// that pointed at a deleted Nop walks forward to the next surviving
// instruction. Compile's emission never produces Nops itself, but
// Optimize stays a correct, idempotent pass over any program a caller
// hand-assembles with the Compiler API, so it also re-validates no-op
// before/after (validity is the caller's job via Validate, called
// separately after Optimize by Compile).
func (c *Compiler) Optimize() {
	n := len(c.prog.Instructions)
	if n == 0 {
		return
	}

	// relocate[i] = index the surviving instruction originally at i (or
	// the next surviving one, if i itself was a Nop) ends up at.
	relocate := make([]int, n+1)
	kept := make([]Instruction, 0, n)
	for i := 0; i < n; i++ {
		if c.prog.Instructions[i].Op == Nop {
			continue
		}
		relocate[i] = len(kept)
		kept = append(kept, c.prog.Instructions[i])
	}
	relocate[n] = len(kept) // one-past-the-end stays one-past-the-end

	// Any Nop's relocate entry must point to wherever a jump landing on
	// it should actually continue: the next surviving instruction.
	next := len(kept)
	for i := n - 1; i >= 0; i-- {
		if c.prog.Instructions[i].Op == Nop {
			relocate[i] = next
		} else {
			next = relocate[i]
		}
	}

	for i := range kept {
		switch kept[i].Op {
		case Jump:
			kept[i].Target = relocate[kept[i].Target]
		case Split:
			kept[i].Target = relocate[kept[i].Target]
			kept[i].Alt = relocate[kept[i].Alt]
		}
	}

	// A lookaround's nested region [i+1, i+1+NestedLen) shrinks by the
	// Nops removed inside it.
	for i := 0; i < n; i++ {
		ins := c.prog.Instructions[i]
		switch ins.Op {
		case Lookahead, NegLookahead, Lookbehind, NegLookbehind:
			if end := i + 1 + ins.NestedLen; ins.NestedLen >= 0 && end <= n {
				k := relocate[i]
				kept[k].NestedLen = relocate[end] - (k + 1)
			}
		}
	}

	c.prog.Instructions = kept
}
