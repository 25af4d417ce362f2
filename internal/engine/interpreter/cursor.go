package interpreter

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmforge/wasmforge/internal/leb128"
)

// byteCursor walks a function body or constant expression, decoding the
// LEB128 immediates instructions carry.
type byteCursor struct {
	b   []byte
	pos int
}

func (c *byteCursor) readByte() (byte, error) {
	if c.pos >= len(c.b) {
		return 0, fmt.Errorf("unexpected end of instruction stream")
	}
	b := c.b[c.pos]
	c.pos++
	return b, nil
}

func (c *byteCursor) readU32() (uint32, error) {
	v, n, err := leb128.DecodeUint32(c.b[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}

func (c *byteCursor) readI64() (int64, error) {
	v, n, err := leb128.DecodeInt64(c.b[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}

func (c *byteCursor) readU32LE() (uint32, error) {
	if c.pos+4 > len(c.b) {
		return 0, fmt.Errorf("unexpected end reading fixed-width immediate")
	}
	v := binary.LittleEndian.Uint32(c.b[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *byteCursor) readU64LE() (uint64, error) {
	if c.pos+8 > len(c.b) {
		return 0, fmt.Errorf("unexpected end reading fixed-width immediate")
	}
	v := binary.LittleEndian.Uint64(c.b[c.pos:])
	c.pos += 8
	return v, nil
}

// skipMemArg consumes a memory instruction's (align, offset) immediate
// pair, returning the offset (align is unused by this interpreter: it's
// a compiler hint, not a semantic constraint).
func (c *byteCursor) skipMemArg() (offset uint32, err error) {
	if _, err = c.readU32(); err != nil { // align
		return 0, err
	}
	return c.readU32()
}

// findMatchingEnd scans forward from just past a block/loop/if opcode's
// header (its block-type byte already consumed) to the offset of its
// matching END, accounting for nesting. If the construct is an `if` and
// an `else` appears at the same nesting depth, elsePos reports its
// offset (0 if none).
func findMatchingEnd(body []byte, from int) (end int, elsePos int, err error) {
	depth := 0
	i := from
	for i < len(body) {
		op := body[i]
		switch op {
		case opBlock, opLoop, opIf:
			depth++
			i += 2 // opcode + block-type byte
			continue
		case opElse:
			if depth == 0 {
				elsePos = i
			}
			i++
			continue
		case opEnd:
			if depth == 0 {
				return i, elsePos, nil
			}
			depth--
			i++
			continue
		}
		// Skip the instruction's immediates without executing it.
		n, skErr := immediateWidth(body, i)
		if skErr != nil {
			return 0, 0, skErr
		}
		i += n
	}
	return 0, 0, fmt.Errorf("unterminated structured control construct")
}

// immediateWidth returns how many bytes the instruction at body[i]
// occupies (opcode + immediates), for constructs findMatchingEnd must
// skip over without interpreting.
func immediateWidth(body []byte, i int) (int, error) {
	op := body[i]
	switch op {
	case opBr, opBrIf, opLocalGet, opLocalSet, opLocalTee,
		opGlobalGet, opGlobalSet, opCall, opMemorySize, opMemoryGrow:
		return 1 + lebLen(body[i+1:]), nil
	case opCallIndirect:
		c := &byteCursor{b: body[i+1:]}
		if _, err := c.readU32(); err != nil {
			return 0, err
		}
		if _, err := c.readU32(); err != nil {
			return 0, err
		}
		return 1 + c.pos, nil
	case opBrTable:
		c := &byteCursor{b: body[i+1:]}
		n, err := c.readU32()
		if err != nil {
			return 0, err
		}
		for j := uint32(0); j <= n; j++ {
			if _, err := c.readU32(); err != nil {
				return 0, err
			}
		}
		return 1 + c.pos, nil
	case opI32Const:
		return 1 + lebLen(body[i+1:]), nil
	case opI64Const:
		return 1 + lebLen(body[i+1:]), nil
	case opF32Const:
		return 5, nil
	case opF64Const:
		return 9, nil
	case opI32Load, opI64Load, opF32Load, opF64Load,
		opI32Load8S, opI32Load8U, opI32Load16S, opI32Load16U,
		opI64Load8S, opI64Load8U, opI64Load16S, opI64Load16U, opI64Load32S, opI64Load32U,
		opI32Store, opI64Store, opF32Store, opF64Store,
		opI32Store8, opI32Store16, opI64Store8, opI64Store16, opI64Store32:
		// Every load/store carries a (align, offset) LEB128 pair.
		c := &byteCursor{b: body[i+1:]}
		if _, err := c.readU32(); err != nil {
			return 0, err
		}
		if _, err := c.readU32(); err != nil {
			return 0, err
		}
		return 1 + c.pos, nil
	default:
		return 1, nil
	}
}

// lebLen reports how many bytes the LEB128 immediate at the front of b
// occupies; the continuation-bit scan is identical for every width, so
// decoding as u64 and keeping only the byte count is exact for the i32/
// i64 consts immediateWidth calls this for.
func lebLen(b []byte) int {
	_, n, err := leb128.DecodeUint64(b)
	if err != nil {
		return len(b)
	}
	return n
}
