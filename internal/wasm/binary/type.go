package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

const functionTypeTag = 0x60

func decodeTypeSection(r io.ByteReader) ([]wasm.FunctionType, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.FunctionType, count)
	for i := range out {
		ft, err := decodeFunctionType(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("type", i, err)
		}
		out[i] = ft
	}
	return out, nil
}

func decodeFunctionType(r io.ByteReader) (wasm.FunctionType, error) {
	tag, err := readByte(r)
	if err != nil {
		return wasm.FunctionType{}, err
	}
	if tag != functionTypeTag {
		return wasm.FunctionType{}, fmt.Errorf("invalid function type tag %#x", tag)
	}
	params, err := readValueTypeVec(r)
	if err != nil {
		return wasm.FunctionType{}, fmt.Errorf("params: %w", err)
	}
	results, err := readValueTypeVec(r)
	if err != nil {
		return wasm.FunctionType{}, fmt.Errorf("results: %w", err)
	}
	return wasm.FunctionType{Params: params, Results: results}, nil
}

func readValueTypeVec(r io.ByteReader) ([]api.ValueType, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]api.ValueType, count)
	for i := range out {
		out[i], err = readValueType(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readValueType(r io.ByteReader) (api.ValueType, error) {
	b, err := readByte(r)
	if err != nil {
		return 0, err
	}
	switch b {
	case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64,
		api.ValueTypeV128, api.ValueTypeFuncRef, api.ValueTypeExternRef:
		return b, nil
	default:
		return 0, fmt.Errorf("invalid value type byte %#x", b)
	}
}
