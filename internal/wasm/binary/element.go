package binary

import (
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// elementFlag bits, per spec.md §4.1: bit 0 clear means an offset
// init-expr follows (an active segment, always targeting table 0); bit 2
// set means an element type byte precedes it, which is consumed and
// discarded.
const (
	elementFlagPassive      = 0x01
	elementFlagExplicitKind = 0x04
)

func decodeElementSection(r io.ByteReader) ([]wasm.ElementSegment, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.ElementSegment, count)
	for i := range out {
		seg, err := decodeElementSegment(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("element", i, err)
		}
		out[i] = seg
	}
	return out, nil
}

func decodeElementSegment(r io.ByteReader) (wasm.ElementSegment, error) {
	flags, _, err := readU32(r)
	if err != nil {
		return wasm.ElementSegment{}, err
	}

	seg := wasm.ElementSegment{Active: flags&elementFlagPassive == 0}

	if flags&elementFlagExplicitKind != 0 {
		if _, err := r.ReadByte(); err != nil {
			return wasm.ElementSegment{}, err
		}
	}

	if seg.Active {
		expr, err := readConstExpr(r)
		if err != nil {
			return wasm.ElementSegment{}, err
		}
		seg.OffsetExpr = expr
	}

	count, _, err := readU32(r)
	if err != nil {
		return wasm.ElementSegment{}, err
	}
	seg.FuncIdxs = make([]uint32, count)
	for i := range seg.FuncIdxs {
		seg.FuncIdxs[i], _, err = readU32(r)
		if err != nil {
			return wasm.ElementSegment{}, err
		}
	}
	return seg, nil
}
