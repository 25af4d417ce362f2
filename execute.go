package wasmforge

import (
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/engine/interpreter"
	"github.com/wasmforge/wasmforge/internal/host"
	"github.com/wasmforge/wasmforge/internal/hostio"
	"github.com/wasmforge/wasmforge/internal/wasm/binary"
)

// Execute runs one guest module to completion and returns its exit
// code, implementing spec.md §4.5's five steps. path names a file on
// the host filesystem holding the binary module; cfg may be nil to run
// with default (no mounts, inherited stdio, default entry-point
// resolution) settings.
func Execute(path string, cfg *Config) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return -1, errors.Wrap(ErrFileNotFound, err.Error())
	}
	return ExecuteBytes(b, cfg)
}

// ExecuteBytes is Execute for an already-loaded module buffer, e.g. one
// fetched over the network or embedded by a caller.
func ExecuteBytes(b []byte, cfg *Config) (int, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	m, err := binary.DecodeModule(b)
	if err != nil {
		return -1, errors.Wrap(ErrDecodeFailed, err.Error())
	}

	vfs := cfg.buildVFS()
	root := hostio.NewProcess("", vfs, cfg.Argv)
	procs := hostio.NewProcessTable(root)
	registry := host.NewRegistry(procs, cfg.Log)
	resolver := syscallResolver{bridge: host.NewBridge(registry, root.Pid)}

	inst, err := interpreter.Instantiate(m, resolver, cfg.Log)
	if err != nil {
		return -1, err
	}

	funcIdx, ok, err := resolveEntry(inst.Module(), cfg.FunctionName)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, ErrNoEntryPoint
	}

	args := marshalArgv(cfg.Argv, funcTypeOf(inst, funcIdx))

	exitCode, err := inst.Call(funcIdx, args)
	if err != nil {
		return -1, errors.Wrap(ErrTrapAtRuntime, err.Error())
	}
	return exitCodeOf(exitCode), nil
}

// exitCodeOf takes the entry point's first i32 result as the process
// exit code, following the common _start/main convention; an entry
// point with no results (or a non-i32 result) exits 0.
func exitCodeOf(results []api.Value) int {
	if len(results) == 0 || results[0].Type != api.ValueTypeI32 {
		return 0
	}
	return int(results[0].I32())
}

func funcTypeOf(inst *interpreter.Instance, funcIdx uint32) []api.ValueType {
	ti, ok := inst.Module().FuncTypeIndex(funcIdx)
	if !ok {
		return nil
	}
	return inst.Module().Types[ti].Params
}

func resolveEntry(m interface {
	FindEntryPoint() (uint32, string, bool)
	ExportedFunc(string) (uint32, bool)
}, name string) (uint32, bool, error) {
	if name != "" {
		idx, ok := m.ExportedFunc(name)
		if !ok {
			return 0, false, ErrFunctionNotFound
		}
		return idx, true, nil
	}
	idx, _, ok := m.FindEntryPoint()
	return idx, ok, nil
}

// marshalArgv implements spec.md §4.5 step 4: each argv string is
// parsed as i32 first, then i64, falling back to I32(0). This is
// explicitly documented as simplistic "exec" argument passing rather
// than full WASI argv threading (see DESIGN.md's Open Question note).
// params bounds how many values are actually produced, in case the
// entry point declares fewer parameters than len(argv); a nil params
// (entry type unknown) leaves the list unbounded.
func marshalArgv(argv []string, params []api.ValueType) []api.Value {
	out := make([]api.Value, 0, len(argv))
	for _, s := range argv {
		if n, err := strconv.ParseInt(s, 10, 32); err == nil {
			out = append(out, api.I32(int32(n)))
			continue
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			out = append(out, api.I64(n))
			continue
		}
		out = append(out, api.I32(0))
	}
	if params != nil && len(out) > len(params) {
		out = out[:len(params)]
	}
	return out
}
