package compiler

import (
	"encoding/binary"

	"github.com/coregx/riftregex/common"
	"github.com/coregx/riftregex/internal/conv"
)

// rbc1Magic identifies the bytecode wire format. Version 1 is the only
// version this package writes or reads; unrecognized versions are a
// Deserialize error so future format changes can't be silently
// misinterpreted.
var rbc1Magic = [4]byte{'R', 'B', 'C', '1'}

const rbc1Version = 1

// operand tag bytes: self-describing payload shape, independent of the
// opcode byte, so a reader can skip an instruction's payload without a
// full opcode table.
const (
	tagNone    = 0
	tagChar    = 1 // 1 byte char + 4 bytes flags
	tagClass   = 2 // 4 bytes flags (class bytes are in the trailing table)
	tagJump    = 3 // 4 bytes target
	tagSplit   = 4 // 4 bytes target + 4 bytes alt
	tagGroup   = 5 // 4 bytes group index + 4 bytes flags
	tagAnchor  = 6 // 1 byte anchor kind + 4 bytes flags
	tagNested  = 7 // 4 bytes nested len + 4 bytes flags
)

func operandTag(op Opcode) byte {
	switch op {
	case MatchChar:
		return tagChar
	case MatchClass:
		return tagClass
	case Jump:
		return tagJump
	case Split:
		return tagSplit
	case SaveStart, SaveEnd, Backref:
		return tagGroup
	case Boundary:
		return tagAnchor
	case Lookahead, NegLookahead, Lookbehind, NegLookbehind:
		return tagNested
	default:
		return tagNone
	}
}

// Serialize renders p in the RBC1 wire format: a fixed header, the
// instruction stream (opcode + operand tag + payload, per instruction),
// then a trailing table of MATCH_CLASS bodies in instruction order. All
// multi-byte integers are little-endian regardless of host endianness.
func Serialize(p *Program) []byte {
	var buf []byte
	buf = append(buf, rbc1Magic[:]...)
	buf = appendU32(buf, rbc1Version)
	buf = appendU32(buf, uint32(p.Flags))
	buf = appendU32(buf, conv.IntToUint32(p.GroupCount))
	buf = appendU32(buf, conv.IntToUint32(len(p.Instructions)))
	patternBytes := []byte(p.PatternSource)
	buf = appendU32(buf, conv.IntToUint32(len(patternBytes)))
	buf = append(buf, patternBytes...)

	var classBodies [][]byte
	for _, ins := range p.Instructions {
		buf = append(buf, byte(ins.Op), operandTag(ins.Op))
		switch ins.Op {
		case MatchChar:
			buf = append(buf, ins.Char)
			buf = appendU32(buf, uint32(ins.Flags))
		case MatchClass:
			buf = appendU32(buf, uint32(ins.Flags))
			classBodies = append(classBodies, []byte(ins.ClassBody))
		case Jump:
			buf = appendU32(buf, conv.IntToUint32(ins.Target))
		case Split:
			buf = appendU32(buf, conv.IntToUint32(ins.Target))
			buf = appendU32(buf, conv.IntToUint32(ins.Alt))
		case SaveStart, SaveEnd, Backref:
			buf = appendU32(buf, conv.IntToUint32(ins.GroupIndex))
			buf = appendU32(buf, uint32(ins.Flags))
		case Boundary:
			buf = append(buf, byte(ins.AnchorKind))
			buf = appendU32(buf, uint32(ins.Flags))
		case Lookahead, NegLookahead, Lookbehind, NegLookbehind:
			buf = appendU32(buf, conv.IntToUint32(ins.NestedLen))
			buf = appendU32(buf, uint32(ins.Flags))
		}
	}

	for _, body := range classBodies {
		buf = appendU32(buf, conv.IntToUint32(len(body)))
		buf = append(buf, body...)
	}
	return buf
}

// Deserialize parses the RBC1 wire format back into a Program. It is the
// inverse of Serialize: deserialize(serialize(p)) reproduces p field for
// field, for any p that rounds through Validate successfully.
func Deserialize(data []byte) (*Program, error) {
	r := &reader{buf: data}
	var magic [4]byte
	if !r.bytes(magic[:]) || magic != rbc1Magic {
		return nil, common.NewError(common.InvalidBytecode, 0, "bad magic")
	}
	version, ok := r.u32()
	if !ok || version != rbc1Version {
		return nil, common.NewError(common.InvalidBytecode, 0, "unsupported bytecode version")
	}
	flagsRaw, ok := r.u32()
	if !ok {
		return nil, common.NewError(common.InvalidBytecode, 0, "truncated header")
	}
	groupCount, ok := r.u32()
	if !ok {
		return nil, common.NewError(common.InvalidBytecode, 0, "truncated header")
	}
	instrCount, ok := r.u32()
	if !ok {
		return nil, common.NewError(common.InvalidBytecode, 0, "truncated header")
	}
	patLen, ok := r.u32()
	if !ok {
		return nil, common.NewError(common.InvalidBytecode, 0, "truncated header")
	}
	patBytes := make([]byte, patLen)
	if !r.bytes(patBytes) {
		return nil, common.NewError(common.InvalidBytecode, 0, "truncated pattern bytes")
	}

	p := &Program{
		GroupCount:    int(groupCount),
		Flags:         common.Flags(flagsRaw),
		PatternSource: string(patBytes),
		Instructions:  make([]Instruction, instrCount),
	}
	var classSlots []int // instruction index, in order, needing a class body
	for i := uint32(0); i < instrCount; i++ {
		opByte, tag, ok := r.opHeader()
		if !ok {
			return nil, common.NewError(common.InvalidBytecode, 0, "truncated instruction")
		}
		ins := Instruction{Op: Opcode(opByte)}
		switch tag {
		case tagNone:
		case tagChar:
			b, f, ok := r.charPayload()
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated char payload")
			}
			ins.Char = b
			ins.Flags = common.Flags(f)
		case tagClass:
			f, ok := r.u32()
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated class payload")
			}
			ins.Flags = common.Flags(f)
			classSlots = append(classSlots, int(i))
		case tagJump:
			t, ok := r.u32()
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated jump payload")
			}
			ins.Target = int(t)
		case tagSplit:
			t, ok1 := r.u32()
			alt, ok2 := r.u32()
			if !ok1 || !ok2 {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated split payload")
			}
			ins.Target, ins.Alt = int(t), int(alt)
		case tagGroup:
			g, f, ok := r.groupPayload()
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated group payload")
			}
			ins.GroupIndex = int(g)
			ins.Flags = common.Flags(f)
		case tagAnchor:
			k, f, ok := r.anchorPayload()
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated anchor payload")
			}
			ins.AnchorKind = AnchorKind(k)
			ins.Flags = common.Flags(f)
		case tagNested:
			nlen, f, ok := r.groupPayload() // same 4+4 shape
			if !ok {
				return nil, common.NewError(common.InvalidBytecode, 0, "truncated nested payload")
			}
			ins.NestedLen = int(nlen)
			ins.Flags = common.Flags(f)
		default:
			return nil, common.NewError(common.InvalidBytecode, 0, "unknown operand tag")
		}
		p.Instructions[i] = ins
	}

	for _, idx := range classSlots {
		blen, ok := r.u32()
		if !ok {
			return nil, common.NewError(common.InvalidBytecode, 0, "truncated class body length")
		}
		body := make([]byte, blen)
		if !r.bytes(body) {
			return nil, common.NewError(common.InvalidBytecode, 0, "truncated class body")
		}
		p.Instructions[idx].ClassBody = string(body)
	}
	return p, nil
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) bytes(dst []byte) bool {
	if r.pos+len(dst) > len(r.buf) {
		return false
	}
	copy(dst, r.buf[r.pos:])
	r.pos += len(dst)
	return true
}

func (r *reader) u32() (uint32, bool) {
	if r.pos+4 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, true
}

func (r *reader) opHeader() (op, tag byte, ok bool) {
	if r.pos+2 > len(r.buf) {
		return 0, 0, false
	}
	op, tag = r.buf[r.pos], r.buf[r.pos+1]
	r.pos += 2
	return op, tag, true
}

func (r *reader) charPayload() (byte, uint32, bool) {
	if r.pos+1 > len(r.buf) {
		return 0, 0, false
	}
	b := r.buf[r.pos]
	r.pos++
	f, ok := r.u32()
	return b, f, ok
}

func (r *reader) groupPayload() (uint32, uint32, bool) {
	a, ok1 := r.u32()
	b, ok2 := r.u32()
	return a, b, ok1 && ok2
}

func (r *reader) anchorPayload() (byte, uint32, bool) {
	if r.pos+1 > len(r.buf) {
		return 0, 0, false
	}
	k := r.buf[r.pos]
	r.pos++
	f, ok := r.u32()
	return k, f, ok
}
