package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

const dataFlagPassive = 0x01

func decodeDataSection(r io.ByteReader) ([]wasm.DataSegment, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.DataSegment, count)
	for i := range out {
		seg, err := decodeDataSegment(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("data", i, err)
		}
		out[i] = seg
	}
	return out, nil
}

func decodeDataSegment(r io.ByteReader) (wasm.DataSegment, error) {
	flags, _, err := readU32(r)
	if err != nil {
		return wasm.DataSegment{}, err
	}

	seg := wasm.DataSegment{Active: flags&dataFlagPassive == 0}
	if seg.Active {
		expr, err := readConstExpr(r)
		if err != nil {
			return wasm.DataSegment{}, err
		}
		seg.OffsetExpr = expr
	}

	n, _, err := readU32(r)
	if err != nil {
		return wasm.DataSegment{}, err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return wasm.DataSegment{}, fmt.Errorf("data payload truncated at byte %d of %d: %w", i, n, err)
		}
		buf[i] = b
	}
	seg.Bytes = buf
	return seg, nil
}
