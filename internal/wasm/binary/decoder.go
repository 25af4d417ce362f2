// Package binary decodes the WASM binary container format (spec.md §4.1)
// into an internal/wasm.Module. Grounded structurally on
// internal/wasm/binary's _test.go fixtures (only tests shipped with this
// package in the retrieval pack) plus
// original_source/src/runtime/core/module.rs's section-loop shape.
package binary

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// Magic is the four leading bytes of every WASM binary module.
var Magic = []byte{0x00, 0x61, 0x73, 0x6d}

// Version is the only binary format version this decoder understands:
// a 4-byte little-endian 1, not a LEB128 value.
var Version = []byte{0x01, 0x00, 0x00, 0x00}

// Section ids, per spec.md §4.1.
const (
	SectionIDCustom = iota
	SectionIDType
	SectionIDImport
	SectionIDFunction
	SectionIDTable
	SectionIDMemory
	SectionIDGlobal
	SectionIDExport
	SectionIDStart
	SectionIDElement
	SectionIDCode
	SectionIDData
	SectionIDDataCount
)

// DecodeModule parses a complete binary module. It never panics on
// malformed input: every failure path returns a *wasmdebug.DecodeError
// naming the section (and item index, where applicable) where decoding
// stopped.
func DecodeModule(b []byte) (*wasm.Module, error) {
	r := bytes.NewReader(b)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil || !bytes.Equal(magic, Magic) {
		return nil, wasmdebug.NewDecodeError("magic", fmt.Errorf("not a wasm module"))
	}

	ver := make([]byte, 4)
	if _, err := io.ReadFull(r, ver); err != nil || !bytes.Equal(ver, Version) {
		return nil, wasmdebug.NewDecodeError("version", fmt.Errorf("unsupported binary version"))
	}

	m := &wasm.Module{StartFunc: -1, DataCount: -1}

	var funcTypeIdxs []uint32 // from the Function section, joined with Code below
	var codeBodies []rawCode

	prevID := -1
	for {
		id, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wasmdebug.NewDecodeError("section", err)
		}

		size, _, err := readU32(r)
		if err != nil {
			return nil, wasmdebug.NewDecodeError(sectionName(int(id)), err)
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, wasmdebug.NewDecodeError(sectionName(int(id)), fmt.Errorf("truncated section: %w", err))
		}
		sr := bytes.NewReader(payload)

		// Section ids besides Custom must appear in ascending order and at
		// most once; Custom may appear anywhere and repeatedly.
		if id != SectionIDCustom {
			if int(id) <= prevID {
				return nil, wasmdebug.NewDecodeError(sectionName(int(id)), fmt.Errorf("section out of order"))
			}
			prevID = int(id)
		}

		switch id {
		case SectionIDCustom:
			// Recognized but not retained: wasmforge doesn't surface custom
			// sections (name section, producers, etc.) to callers.
		case SectionIDType:
			m.Types, err = decodeTypeSection(sr)
		case SectionIDImport:
			m.Imports, err = decodeImportSection(sr)
		case SectionIDFunction:
			funcTypeIdxs, err = decodeFunctionSection(sr)
		case SectionIDTable:
			m.Tables, err = decodeTableSection(sr)
		case SectionIDMemory:
			m.Memories, err = decodeMemorySection(sr)
		case SectionIDGlobal:
			m.Globals, err = decodeGlobalSection(sr)
		case SectionIDExport:
			m.Exports, err = decodeExportSection(sr)
		case SectionIDStart:
			var start uint32
			start, _, err = readU32(sr)
			m.StartFunc = int64(start)
		case SectionIDElement:
			m.Elements, err = decodeElementSection(sr)
		case SectionIDCode:
			codeBodies, err = decodeCodeSection(sr)
		case SectionIDData:
			m.Data, err = decodeDataSection(sr)
		case SectionIDDataCount:
			var count uint32
			count, _, err = readU32(sr)
			m.DataCount = int64(count)
		default:
			// Unknown section id: spec.md §4.1 says skip it.
		}
		if err != nil {
			return nil, wasmdebug.NewDecodeError(sectionName(int(id)), err)
		}
	}

	if err := joinFunctionsAndCode(m, funcTypeIdxs, codeBodies); err != nil {
		return nil, err
	}

	return m, nil
}

// joinFunctionsAndCode merges the Function section's type indices with
// the Code section's bodies into Module.Funcs, failing if their counts
// disagree (spec.md §4.1's Function/Code section correspondence).
func joinFunctionsAndCode(m *wasm.Module, typeIdxs []uint32, bodies []rawCode) error {
	if len(typeIdxs) != len(bodies) {
		return wasmdebug.NewDecodeError("code", fmt.Errorf(
			"function and code section length mismatch: %d vs %d", len(typeIdxs), len(bodies)))
	}
	m.Funcs = make([]wasm.Function, len(typeIdxs))
	for i, ti := range typeIdxs {
		m.Funcs[i] = wasm.Function{
			TypeIndex: ti,
			Locals:    bodies[i].locals,
			Body:      bodies[i].body,
		}
	}
	return nil
}

func sectionName(id int) string {
	switch id {
	case SectionIDCustom:
		return "custom"
	case SectionIDType:
		return "type"
	case SectionIDImport:
		return "import"
	case SectionIDFunction:
		return "function"
	case SectionIDTable:
		return "table"
	case SectionIDMemory:
		return "memory"
	case SectionIDGlobal:
		return "global"
	case SectionIDExport:
		return "export"
	case SectionIDStart:
		return "start"
	case SectionIDElement:
		return "element"
	case SectionIDCode:
		return "code"
	case SectionIDData:
		return "data"
	case SectionIDDataCount:
		return "data count"
	default:
		return fmt.Sprintf("unknown(%d)", id)
	}
}
