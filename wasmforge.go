// Package wasmforge is the Native Driver of spec.md §4.5: given a WASM
// module and an optional entry point and argv, it decodes, instantiates,
// runs, and returns the process's exit code. Grounded on
// original_source/src/runtime/core/native_executor.rs's run_module
// (decode/instantiate/resolve-entry/marshal-argv/run order) and on
// cmd/wazero/wazero.go's doRun for the testable, stdio-parameterized
// entry-point idiom.
package wasmforge

import (
	"os"

	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge/internal/engine/interpreter"
	"github.com/wasmforge/wasmforge/internal/hostio"
)

// MountSpec is one guest_prefix -> host_root VFS binding (spec.md §4.4).
type MountSpec struct {
	GuestPrefix string
	HostRoot    string
}

// Config configures one Execute call: the VFS layout, the logger, and
// the entry point / argv override spec.md §4.5 describes. Execute does
// not read Stdout or Stderr: the guest's FDs 0/1/2 always use the host
// process's own standard streams.
type Config struct {
	Mounts []MountSpec

	// FunctionName, if non-empty, names the export to run instead of the
	// start>main>_start precedence order.
	FunctionName string
	Argv         []string

	Stdout *os.File
	Stderr *os.File

	Log *zap.Logger
}

// NewConfig returns a Config with no mounts and the process's own stdio.
func NewConfig() *Config {
	return &Config{Stdout: os.Stdout, Stderr: os.Stderr}
}

// WithMount registers a guest_prefix -> host_root VFS binding.
func (c *Config) WithMount(guestPrefix, hostRoot string) *Config {
	c.Mounts = append(c.Mounts, MountSpec{GuestPrefix: guestPrefix, HostRoot: hostRoot})
	return c
}

// WithEntryPoint overrides entry-point resolution to the named export,
// invoked with argv best-effort marshalled per spec.md §4.5 step 4.
func (c *Config) WithEntryPoint(name string, argv ...string) *Config {
	c.FunctionName = name
	c.Argv = argv
	return c
}

func (c *Config) buildVFS() *hostio.VFS {
	vfs := hostio.NewVFS()
	for _, m := range c.Mounts {
		vfs.Mount(m.GuestPrefix, m.HostRoot)
	}
	return vfs
}

// syscallResolver binds any import named "syscall" (regardless of
// module namespace a toolchain emits it under) to the numbered host
// interface bridge for one process.
type syscallResolver struct {
	bridge interpreter.HostFunc
}

func (r syscallResolver) ResolveFunc(module, name string) (interpreter.HostFunc, bool) {
	if name != "syscall" {
		return nil, false
	}
	return r.bridge, true
}
