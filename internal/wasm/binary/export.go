package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

func decodeExportSection(r io.ByteReader) ([]wasm.Export, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.Export, count)
	seen := make(map[string]bool, count)
	for i := range out {
		exp, err := decodeExport(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("export", i, err)
		}
		if seen[exp.Name] {
			return nil, wasmdebug.NewItemDecodeError("export", i, fmt.Errorf("duplicate export name %q", exp.Name))
		}
		seen[exp.Name] = true
		out[i] = exp
	}
	return out, nil
}

func decodeExport(r io.ByteReader) (wasm.Export, error) {
	name, err := readName(r)
	if err != nil {
		return wasm.Export{}, err
	}
	kindByte, err := readByte(r)
	if err != nil {
		return wasm.Export{}, err
	}
	var kind wasm.ExportKind
	switch kindByte {
	case importDescFunc:
		kind = wasm.ExportKindFunc
	case importDescTable:
		kind = wasm.ExportKindTable
	case importDescMemory:
		kind = wasm.ExportKindMemory
	case importDescGlobal:
		kind = wasm.ExportKindGlobal
	default:
		return wasm.Export{}, fmt.Errorf("invalid export desc kind %#x", kindByte)
	}
	idx, _, err := readU32(r)
	if err != nil {
		return wasm.Export{}, err
	}
	return wasm.Export{Name: name, Kind: kind, Index: idx}, nil
}
