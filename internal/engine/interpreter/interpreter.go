// Package interpreter implements the stack-based execution engine of
// spec.md §4.3: a from-scratch interpreter over the raw instruction bytes
// produced by internal/wasm/binary, with no intermediate compiled form.
//
// Grounded on the shape of
// _examples/tetratelabs-wazero/internal/engine/interpreter/interpreter.go
// (callEngine's value stack and call-frame stack, callStackCeiling) and
// on original_source/src/runtime/core/native_executor.rs for
// instantiation order; wazero's own engine compiles to an intermediate
// IR (wazeroir) ahead of a second interpretation pass, which spec.md
// doesn't call for, so the single-switch-over-raw-bytecode design here
// departs from it deliberately (see DESIGN.md).
package interpreter

import (
	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// HostFunc is how an imported function is actually carried out; the host
// interface layer (internal/host) supplies these at Resolve time.
type HostFunc func(mem *wasm.LinearMemory, args []api.Value) ([]api.Value, error)

// Resolver binds (module, name) import pairs to host functionality
// during instantiation (spec.md §4.3.4).
type Resolver interface {
	ResolveFunc(module, name string) (HostFunc, bool)
}

type funcEntry struct {
	typ      wasm.FunctionType
	isHost   bool
	host     HostFunc
	locals   []api.ValueType
	body     []byte
}

// Instance is one instantiated module: its memory, globals, table, and
// resolved function index space, ready to Call into.
type Instance struct {
	module  *wasm.Module
	memory  *wasm.LinearMemory
	globals []api.Value
	// table holds function indices into funcs, per slot; -1 marks an
	// uninitialized element (spec.md's table trap case).
	table []int64
	funcs []funcEntry
	log   *zap.Logger
}

// Instantiate realizes a decoded Module into a runnable Instance,
// following spec.md §4.3.1's five steps in order.
func Instantiate(m *wasm.Module, resolver Resolver, log *zap.Logger) (*Instance, error) {
	if log == nil {
		log = zap.NewNop()
	}
	inst := &Instance{module: m, log: log}

	// Step 1: linear memory.
	if len(m.Memories) > 0 {
		mt := m.Memories[0]
		inst.memory = wasm.NewLinearMemory(mt.Min, mt.Max, mt.HasMax)
	}

	// Build the combined function index space: imports first, then
	// locally defined functions, matching the binary format's ordering.
	for _, imp := range m.Imports {
		if imp.Kind != wasm.ImportKindFunc {
			continue
		}
		if int(imp.TypeIndex) >= len(m.Types) {
			return nil, wasmdebug.NewInstantiationError("import references unknown type", nil)
		}
		fn, ok := resolver.ResolveFunc(imp.Module, imp.Name)
		if !ok {
			return nil, wasmdebug.NewInstantiationError(
				"unresolved import "+imp.Module+"."+imp.Name, nil)
		}
		inst.funcs = append(inst.funcs, funcEntry{
			typ: m.Types[imp.TypeIndex], isHost: true, host: fn,
		})
	}
	for _, f := range m.Funcs {
		if int(f.TypeIndex) >= len(m.Types) {
			return nil, wasmdebug.NewInstantiationError("function references unknown type", nil)
		}
		inst.funcs = append(inst.funcs, funcEntry{
			typ: m.Types[f.TypeIndex], locals: f.Locals, body: f.Body,
		})
	}

	// Step 2: globals. Imported globals aren't resolved here since
	// wasmforge's host surface exposes no host-global imports; only
	// locally defined globals are evaluated.
	inst.globals = make([]api.Value, len(m.Globals))
	for i, g := range m.Globals {
		v, err := evalConstExpr(g.InitExp, g.Type.ValType, inst.globals)
		if err != nil {
			return nil, wasmdebug.NewInstantiationError("global init expr", err)
		}
		inst.globals[i] = v
	}

	// Table: sized from the Table section if present, all slots start
	// uninitialized (-1).
	if len(m.Tables) > 0 {
		tt := m.Tables[0]
		inst.table = make([]int64, tt.Min)
		for i := range inst.table {
			inst.table[i] = -1
		}
	}

	// Step 4 runs before 3 in this implementation only in the sense that
	// both are independent; order here follows spec.md's listed order:
	// data before element.

	// Step 3: active data segments.
	for _, d := range m.Data {
		if !d.Active {
			continue
		}
		if inst.memory == nil {
			return nil, wasmdebug.NewInstantiationError("data segment but no memory", nil)
		}
		off, err := evalConstExpr(d.OffsetExpr, api.ValueTypeI32, inst.globals)
		if err != nil {
			return nil, wasmdebug.NewInstantiationError("data offset expr", err)
		}
		if err := inst.memory.WriteBytes(off.U32(), d.Bytes); err != nil {
			return nil, wasmdebug.NewInstantiationError("active data segment out of bounds", err)
		}
	}

	// Step 4: active element segments.
	for _, e := range m.Elements {
		if !e.Active {
			continue
		}
		if inst.table == nil {
			return nil, wasmdebug.NewInstantiationError("element segment but no table", nil)
		}
		off, err := evalConstExpr(e.OffsetExpr, api.ValueTypeI32, inst.globals)
		if err != nil {
			return nil, wasmdebug.NewInstantiationError("element offset expr", err)
		}
		base := off.U32()
		for i, fnIdx := range e.FuncIdxs {
			slot := int(base) + i
			if slot < 0 || slot >= len(inst.table) {
				return nil, wasmdebug.NewInstantiationError("active element segment out of bounds", nil)
			}
			inst.table[slot] = int64(fnIdx)
		}
	}

	// Step 5: start function.
	if m.StartFunc >= 0 {
		if _, err := inst.Call(uint32(m.StartFunc), nil); err != nil {
			return nil, wasmdebug.NewInstantiationError("start function trapped", err)
		}
	}

	return inst, nil
}

// Memory exposes the instance's linear memory (nil if the module
// declared none), e.g. for the native driver to marshal argv into.
func (i *Instance) Memory() *wasm.LinearMemory { return i.memory }

// Module exposes the decoded module, e.g. for entry-point lookup.
func (i *Instance) Module() *wasm.Module { return i.module }

// Call invokes funcIdx (in the combined import+local index space) with
// args, returning its declared results or the trap/host error that
// aborted it.
func (i *Instance) Call(funcIdx uint32, args []api.Value) ([]api.Value, error) {
	if int(funcIdx) >= len(i.funcs) {
		return nil, wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "call to invalid function index")
	}
	fn := i.funcs[funcIdx]
	if fn.isHost {
		return fn.host(i.memory, args)
	}

	locals := make([]api.Value, len(args)+len(fn.locals))
	copy(locals, args)
	for j, lt := range fn.locals {
		locals[len(args)+j] = api.ZeroValue(lt)
	}

	frame := &callFrame{funcIdx: funcIdx, locals: locals, body: fn.body, resultArity: len(fn.typ.Results)}
	stack := &valueStack{}
	frames := []*callFrame{frame}

	if err := i.run(stack, frames); err != nil {
		return nil, err
	}

	results := make([]api.Value, len(fn.typ.Results))
	for j := len(results) - 1; j >= 0; j-- {
		v, err := stack.pop()
		if err != nil {
			return nil, err
		}
		results[j] = v
	}
	return results, nil
}

// evalConstExpr evaluates the bounded constant-expression subset
// (i32/i64/f32/f64.const, global.get) that the decoder captured as raw
// bytes in a Global/Data/Element's offset expression.
func evalConstExpr(expr []byte, want api.ValueType, globals []api.Value) (api.Value, error) {
	r := &byteCursor{b: expr}
	op, err := r.readByte()
	if err != nil {
		return api.Value{}, err
	}
	var v api.Value
	switch op {
	case opI32Const:
		n, err := r.readI64()
		if err != nil {
			return api.Value{}, err
		}
		v = api.I32(int32(n))
	case opI64Const:
		n, err := r.readI64()
		if err != nil {
			return api.Value{}, err
		}
		v = api.I64(n)
	case opF32Const:
		bits, err := r.readU32LE()
		if err != nil {
			return api.Value{}, err
		}
		v = api.FromBits(api.ValueTypeF32, uint64(bits))
	case opF64Const:
		bits, err := r.readU64LE()
		if err != nil {
			return api.Value{}, err
		}
		v = api.FromBits(api.ValueTypeF64, bits)
	case opGlobalGet:
		idx, err := r.readI64()
		if err != nil {
			return api.Value{}, err
		}
		if int(idx) >= len(globals) {
			return api.Value{}, wasmdebug.NewInstantiationError("const expr references unknown global", nil)
		}
		v = globals[idx]
	default:
		return api.Value{}, wasmdebug.NewInstantiationError("unsupported const expr opcode", nil)
	}
	_ = want // the decoder already constrains which opcode can appear for a given declared type
	return v, nil
}
