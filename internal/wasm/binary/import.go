package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

const (
	importDescFunc   = 0x00
	importDescTable  = 0x01
	importDescMemory = 0x02
	importDescGlobal = 0x03
)

func decodeImportSection(r io.ByteReader) ([]wasm.Import, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]wasm.Import, count)
	for i := range out {
		imp, err := decodeImport(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("import", i, err)
		}
		out[i] = imp
	}
	return out, nil
}

func decodeImport(r io.ByteReader) (wasm.Import, error) {
	mod, err := readName(r)
	if err != nil {
		return wasm.Import{}, fmt.Errorf("module name: %w", err)
	}
	name, err := readName(r)
	if err != nil {
		return wasm.Import{}, fmt.Errorf("field name: %w", err)
	}
	desc, err := readByte(r)
	if err != nil {
		return wasm.Import{}, err
	}

	imp := wasm.Import{Module: mod, Name: name}
	switch desc {
	case importDescFunc:
		imp.Kind = wasm.ImportKindFunc
		idx, _, err := readU32(r)
		if err != nil {
			return wasm.Import{}, fmt.Errorf("func type index: %w", err)
		}
		imp.TypeIndex = idx
	case importDescTable:
		imp.Kind = wasm.ImportKindTable
		t, err := decodeTableType(r)
		if err != nil {
			return wasm.Import{}, err
		}
		imp.Table = t
	case importDescMemory:
		imp.Kind = wasm.ImportKindMemory
		m, err := decodeMemoryType(r)
		if err != nil {
			return wasm.Import{}, err
		}
		imp.Memory = m
	case importDescGlobal:
		imp.Kind = wasm.ImportKindGlobal
		g, err := decodeGlobalType(r)
		if err != nil {
			return wasm.Import{}, err
		}
		imp.Global = g
	default:
		return wasm.Import{}, fmt.Errorf("invalid import desc kind %#x", desc)
	}
	return imp, nil
}
