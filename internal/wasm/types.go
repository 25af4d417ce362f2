// Package wasm holds the decoded module data model: function types,
// imports/exports, globals, segments, and the Module that ties them
// together. Grounded on the shape described by
// original_source/src/runtime/core/module.rs, since the retrieval pack
// carries only this package's _test.go files.
package wasm

import "github.com/wasmforge/wasmforge/api"

// FunctionType is a function signature: parameter and result value types.
type FunctionType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Function is a defined (non-imported) function: its signature index,
// declared locals, and raw, not-yet-executed instruction bytes.
type Function struct {
	TypeIndex uint32
	Locals    []api.ValueType
	Body      []byte
}

// MemoryType bounds a linear memory in pages (spec.md §4.2: 64KiB pages).
type MemoryType struct {
	Min uint32
	Max uint32
	// HasMax reports whether Max is a declared ceiling; false means
	// unbounded beyond the implementation's own memory limits.
	HasMax bool
}

// TableType bounds a table's element count, the same shape as MemoryType.
type TableType struct {
	ElemType api.ValueType
	Min      uint32
	Max      uint32
	HasMax   bool
}

// GlobalType describes a global's value type and mutability.
type GlobalType struct {
	ValType api.ValueType
	Mutable bool
}

// Global is a defined global: its type and constant-expression initial
// value, evaluated during instantiation (spec.md §4.3.2).
type Global struct {
	Type    GlobalType
	InitExp []byte
}

// ImportKind tags which index space an Import populates.
type ImportKind byte

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
)

// Import names a dependency the host must resolve before instantiation.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind
	// TypeIndex is meaningful for ImportKindFunc only.
	TypeIndex uint32
	Table     TableType
	Memory    MemoryType
	Global    GlobalType
}

// ExportKind tags which index space an Export refers into.
type ExportKind = ImportKind

const (
	ExportKindFunc   = ImportKindFunc
	ExportKindTable  = ImportKindTable
	ExportKindMemory = ImportKindMemory
	ExportKindGlobal = ImportKindGlobal
)

// Export makes a module-internal index visible under a public name.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// DataSegment initializes a byte range of linear memory at instantiation
// time (active) or on explicit request (passive; decoder accepts, engine
// doesn't implement memory.init).
type DataSegment struct {
	MemoryIndex uint32
	OffsetExpr  []byte
	Bytes       []byte
	Active      bool
}

// ElementSegment initializes a range of a table with function indices.
type ElementSegment struct {
	TableIndex uint32
	OffsetExpr []byte
	FuncIdxs   []uint32
	Active     bool
}

// Module is the fully decoded, not-yet-instantiated binary: every
// section's contents, indexed the way the binary format indexes them
// (imports first, then locally defined items, per spec.md §4.1).
type Module struct {
	Types   []FunctionType
	Imports []Import

	// Funcs holds only locally defined functions; imported functions are
	// resolved separately by the host during instantiation. Each
	// Function's TypeIndex gives its signature; the FuncTypeIndex method
	// looks one up across the combined (imports first) index space.
	Funcs []Function

	Tables  []TableType
	Memories []MemoryType
	Globals []Global

	Exports []Export

	// StartFunc is the index into the combined (import+local) function
	// space named by the Start section, or -1 if absent.
	StartFunc int64

	Elements []ElementSegment
	Data     []DataSegment

	// DataCount is the declared count from the optional DataCount section,
	// or -1 if absent. Present for forward-compat with bulk-memory
	// validation; wasmforge doesn't implement bulk-memory instructions.
	DataCount int64
}

// NumImportedFuncs counts Imports of kind Func, since the function index
// space places imported functions before local ones.
func (m *Module) NumImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportKindFunc {
			n++
		}
	}
	return n
}

// FuncTypeIndex returns the FunctionType index for the funcIdx'th entry
// in the combined import+local function index space.
func (m *Module) FuncTypeIndex(funcIdx uint32) (uint32, bool) {
	imported := uint32(0)
	for _, imp := range m.Imports {
		if imp.Kind != ImportKindFunc {
			continue
		}
		if imported == funcIdx {
			return imp.TypeIndex, true
		}
		imported++
	}
	localIdx := funcIdx - imported
	if int(localIdx) >= len(m.Funcs) {
		return 0, false
	}
	return m.Funcs[localIdx].TypeIndex, true
}

// IsImportedFunc reports whether funcIdx names an imported function
// (true) or a locally defined one (false), and the local index when
// false.
func (m *Module) IsImportedFunc(funcIdx uint32) (imported bool, localIdx uint32) {
	n := uint32(m.NumImportedFuncs())
	if funcIdx < n {
		return true, funcIdx
	}
	return false, funcIdx - n
}

// FindEntryPoint resolves which function to run absent an explicit
// caller-supplied name, in the order spec.md P6/S5 require: the Start
// section's function, else an export named "main", else one named
// "_start", else no entry point found.
//
// original_source/src/runtime/core/module.rs's own find_entry_point scans
// an unordered map and can return "_start" ahead of "main"; that ordering
// isn't followed here; native_executor.rs's inline resolution agrees
// with the ordering implemented below and with spec.md, so that's what's
// grounded.
func (m *Module) FindEntryPoint() (funcIdx uint32, name string, ok bool) {
	if m.StartFunc >= 0 {
		return uint32(m.StartFunc), "", true
	}
	if idx, ok := m.exportedFunc("main"); ok {
		return idx, "main", true
	}
	if idx, ok := m.exportedFunc("_start"); ok {
		return idx, "_start", true
	}
	return 0, "", false
}

// ExportedFunc looks up a function export by name (spec.md's
// explicit-entry-point-name case).
func (m *Module) ExportedFunc(name string) (uint32, bool) { return m.exportedFunc(name) }

func (m *Module) exportedFunc(name string) (uint32, bool) {
	for _, exp := range m.Exports {
		if exp.Kind == ExportKindFunc && exp.Name == name {
			return exp.Index, true
		}
	}
	return 0, false
}
