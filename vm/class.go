package vm

import (
	"sync"

	"github.com/coregx/riftregex/common"
)

// classSet is a parsed MATCH_CLASS body: a 256-entry membership bitmap
// (ASCII/byte-wise semantics, per spec.md's Non-goals — no Unicode
// property database) plus a negation flag. Parsing happens once per
// distinct class body string and is cached process-wide, per §9's "parse
// a class on first VM use and cache it" design note: caching by body
// text rather than by *compiler.Program lets identical classes compiled
// into different programs share one parse, and keeps compiler decoupled
// from vm.
type classSet struct {
	bitmap [256]bool
	negate bool
}

func (c *classSet) member(b byte) bool {
	m := c.bitmap[b]
	if c.negate {
		return !m
	}
	return m
}

// match reports whether b satisfies the class, honoring CaseInsensitive
// by also accepting b's opposite-case byte.
func (c *classSet) match(b byte, caseInsensitive bool) bool {
	if c.member(b) {
		return true
	}
	if caseInsensitive {
		return c.member(swapCase(b))
	}
	return false
}

func swapCase(b byte) byte {
	switch {
	case b >= 'a' && b <= 'z':
		return b - ('a' - 'A')
	case b >= 'A' && b <= 'Z':
		return b + ('a' - 'A')
	default:
		return b
	}
}

var classCache sync.Map // string -> *classSet

// lookupClass returns the parsed form of body, parsing and caching it on
// first use. Concurrent first uses may each parse and race to store;
// the results are equivalent, so no lock is needed around the parse
// itself (a teacher-idiom sync.Map, read-mostly, single conceptual
// writer per key).
func lookupClass(body string) (*classSet, error) {
	if v, ok := classCache.Load(body); ok {
		return v.(*classSet), nil
	}
	cs, err := parseClass(body)
	if err != nil {
		return nil, err
	}
	actual, _ := classCache.LoadOrStore(body, cs)
	return actual.(*classSet), nil
}

// parseClass interprets a MATCH_CLASS body: either a bare shorthand
// ("\d" "\D" "\w" "\W" "\s" "\S", as pushed by ast for a top-level escape
// class) or the verbatim content between '[' and ']' (optional leading
// '^' negation, then a run of literal/escaped bytes and a-b ranges).
func parseClass(body string) (*classSet, error) {
	cs := &classSet{}
	if len(body) == 2 && body[0] == '\\' {
		addShorthand(cs, body[1])
		return cs, nil
	}

	i := 0
	if i < len(body) && body[i] == '^' {
		cs.negate = true
		i++
	}
	for i < len(body) {
		lo, shorthand, consumed, err := classItem(body, i)
		if err != nil {
			return nil, err
		}
		i += consumed
		if shorthand != 0 {
			addShorthand(cs, shorthand)
			continue
		}
		if i+1 < len(body) && body[i] == '-' && body[i+1] != ']' {
			hi, hiShort, hiConsumed, err := classItem(body, i+1)
			if err != nil {
				return nil, err
			}
			if hiShort != 0 {
				return nil, common.NewError(common.Syntax, 0, "class shorthand cannot end a range")
			}
			if hi < lo {
				return nil, common.NewError(common.Syntax, 0, "class range out of order")
			}
			for b := int(lo); b <= int(hi); b++ {
				cs.bitmap[b] = true
			}
			i += 1 + hiConsumed
			continue
		}
		cs.bitmap[lo] = true
	}
	return cs, nil
}

// classItem reads one item (a literal byte, possibly escaped) starting
// at body[i]. If the item is a shorthand class escape, shorthand holds
// its letter and lo is meaningless.
func classItem(body string, i int) (lo byte, shorthand byte, consumed int, err error) {
	c := body[i]
	if c != '\\' {
		return c, 0, 1, nil
	}
	if i+1 >= len(body) {
		return 0, 0, 0, common.NewError(common.InvalidEscape, 0, "trailing backslash in class")
	}
	e := body[i+1]
	switch e {
	case 'd', 'D', 'w', 'W', 's', 'S':
		return 0, e, 2, nil
	case 'n':
		return '\n', 0, 2, nil
	case 't':
		return '\t', 0, 2, nil
	case 'r':
		return '\r', 0, 2, nil
	case 'f':
		return '\f', 0, 2, nil
	case 'v':
		return '\v', 0, 2, nil
	case '0':
		return 0, 0, 2, nil
	case 'x':
		if i+3 >= len(body) || !isHex(body[i+2]) || !isHex(body[i+3]) {
			return 0, 0, 0, common.NewError(common.InvalidEscape, 0, "invalid \\x escape in class")
		}
		return hexByte(body[i+2], body[i+3]), 0, 4, nil
	default:
		return e, 0, 2, nil
	}
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexByte(hi, lo byte) byte {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func addShorthand(cs *classSet, letter byte) {
	switch letter {
	case 'd':
		for b := '0'; b <= '9'; b++ {
			cs.bitmap[b] = true
		}
	case 'D':
		invertInto(cs, isDigit)
	case 'w':
		for b := 0; b < 256; b++ {
			if isWordByte(byte(b)) {
				cs.bitmap[b] = true
			}
		}
	case 'W':
		invertInto(cs, isWordByte)
	case 's':
		for _, b := range []byte{' ', '\t', '\n', '\r', '\f', '\v'} {
			cs.bitmap[b] = true
		}
	case 'S':
		invertInto(cs, isSpaceByte)
	}
}

// invertInto sets every bitmap slot for which pred is false, used to
// implement \D \W \S as the complement of \d \w \s over all 256 bytes.
func invertInto(cs *classSet, pred func(byte) bool) {
	for b := 0; b < 256; b++ {
		if !pred(byte(b)) {
			cs.bitmap[b] = true
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}
