package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

const elemTypeFuncref = 0x70

func decodeTableSection(r io.ByteReader) ([]wasm.TableType, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.TableType, count)
	for i := range out {
		out[i], err = decodeTableType(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("table", i, err)
		}
	}
	return out, nil
}

func decodeTableType(r io.ByteReader) (wasm.TableType, error) {
	elemType, err := readByte(r)
	if err != nil {
		return wasm.TableType{}, err
	}
	if elemType != elemTypeFuncref {
		return wasm.TableType{}, fmt.Errorf("invalid table element type %#x", elemType)
	}
	min, max, hasMax, err := decodeLimits(r)
	if err != nil {
		return wasm.TableType{}, err
	}
	return wasm.TableType{ElemType: elemType, Min: min, Max: max, HasMax: hasMax}, nil
}

// decodeLimits reads the shared (min [, max]) limits encoding used by
// table and memory types: a flag byte (0 = min only, 1 = min and max),
// followed by the LEB128 bounds.
func decodeLimits(r io.ByteReader) (min, max uint32, hasMax bool, err error) {
	flag, err := readByte(r)
	if err != nil {
		return 0, 0, false, err
	}
	if flag != 0 && flag != 1 {
		return 0, 0, false, fmt.Errorf("invalid limits flag %#x", flag)
	}
	min, _, err = readU32(r)
	if err != nil {
		return 0, 0, false, err
	}
	if flag == 1 {
		max, _, err = readU32(r)
		if err != nil {
			return 0, 0, false, err
		}
		return min, max, true, nil
	}
	return min, 0, false, nil
}
