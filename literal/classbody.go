package literal

// expandClassBody expands a CharacterClass node's raw body (the text between
// '[' and ']', as ast.Node.Value stores it) into its member bytes, provided
// the class is small enough and contains neither negation nor a shorthand
// escape (\d, \w, \s, ...): those describe sets too broad, or too indirect,
// to usefully narrow a prefilter. ok is false when the class isn't
// expandable, mirroring vm's own class-body grammar (vm/class.go) but
// restricted to the literal/range subset a prefilter can use.
func expandClassBody(body string, maxSize int) (out []byte, ok bool) {
	if len(body) == 0 {
		return nil, false
	}
	if body[0] == '^' {
		return nil, false // negation: prefilter would need the complement set
	}

	i := 0
	for i < len(body) {
		lo, shorthand, consumed := classBodyItem(body, i)
		if shorthand {
			return nil, false
		}
		i += consumed

		hi := lo
		if i+1 < len(body) && body[i] == '-' && body[i+1] != ']' {
			hiVal, hiShort, hiConsumed := classBodyItem(body, i+1)
			if hiShort || hiVal < lo {
				return nil, false
			}
			hi = hiVal
			i += 1 + hiConsumed
		}

		for b := int(lo); b <= int(hi); b++ {
			if len(out) >= maxSize {
				return nil, false
			}
			out = append(out, byte(b))
		}
	}
	return out, true
}

// classBodyItem reads one item (a literal byte, possibly escaped) starting
// at body[i]. shorthand is true if the item is a \d \D \w \W \s \S escape.
func classBodyItem(body string, i int) (b byte, shorthand bool, consumed int) {
	c := body[i]
	if c != '\\' {
		return c, false, 1
	}
	if i+1 >= len(body) {
		return 0, false, 1
	}
	e := body[i+1]
	switch e {
	case 'd', 'D', 'w', 'W', 's', 'S':
		return 0, true, 2
	case 'n':
		return '\n', false, 2
	case 't':
		return '\t', false, 2
	case 'r':
		return '\r', false, 2
	case 'f':
		return '\f', false, 2
	case 'v':
		return '\v', false, 2
	case 'x':
		if i+3 < len(body) && isHexDigit(body[i+2]) && isHexDigit(body[i+3]) {
			return hexByteValue(body[i+2], body[i+3]), false, 4
		}
		return 0, true, 2 // malformed \x escape: treat as unexpandable
	default:
		return e, false, 2
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexByteValue(hi, lo byte) byte {
	return hexNibbleValue(hi)<<4 | hexNibbleValue(lo)
}

func hexNibbleValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
