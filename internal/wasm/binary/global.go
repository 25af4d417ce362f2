package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

func decodeGlobalSection(r io.ByteReader) ([]wasm.Global, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.Global, count)
	for i := range out {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("global", i, err)
		}
		expr, err := readConstExpr(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("global", i, err)
		}
		out[i] = wasm.Global{Type: gt, InitExp: expr}
	}
	return out, nil
}

func decodeGlobalType(r io.ByteReader) (wasm.GlobalType, error) {
	vt, err := readValueType(r)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	mutFlag, err := readByte(r)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	if mutFlag != 0 && mutFlag != 1 {
		return wasm.GlobalType{}, fmt.Errorf("invalid mutability flag %#x", mutFlag)
	}
	return wasm.GlobalType{ValType: vt, Mutable: mutFlag == 1}, nil
}
