package binary

import (
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

func decodeMemorySection(r io.ByteReader) ([]wasm.MemoryType, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.MemoryType, count)
	for i := range out {
		out[i], err = decodeMemoryType(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("memory", i, err)
		}
	}
	return out, nil
}

func decodeMemoryType(r io.ByteReader) (wasm.MemoryType, error) {
	min, max, hasMax, err := decodeLimits(r)
	if err != nil {
		return wasm.MemoryType{}, err
	}
	return wasm.MemoryType{Min: min, Max: max, HasMax: hasMax}, nil
}
