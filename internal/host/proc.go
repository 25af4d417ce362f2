package host

import (
	"sync"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

func (g *Generic) fork(proc *hostio.Process, args []Arg) Result {
	child, err := g.procs.Fork(proc.Pid)
	if err != nil {
		return ErrorResult("%s", err)
	}
	return Success(String(child.Pid))
}

// exec checks for a path-string argument and returns the calling
// process's own pid. It does not load, decode or run the named module,
// and nothing else in the host or driver packages does so on its behalf.
func (g *Generic) exec(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("exec: expected a path string")
	}
	return Success(String(proc.Pid))
}

func (g *Generic) exit(proc *hostio.Process, args []Arg) Result {
	code := int64(0)
	if len(args) > 0 && args[0].Kind == ArgNumber {
		code = args[0].Num
	}
	if err := g.procs.Exit(proc.Pid, int(code)); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(code))
}

func (g *Generic) wait(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("wait: expected a child pid")
	}
	code, err := g.procs.Wait(args[0].Str)
	if err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(int64(code)))
}

func (g *Generic) kill(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("kill: expected a target pid")
	}
	if err := g.procs.Kill(args[0].Str); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) getpid(proc *hostio.Process, args []Arg) Result {
	return Success(String(proc.Pid))
}

// anonRegions backs mmap/munmap with simple bump-allocated, per-process
// byte slices. This is separate from the engine's own Linear Memory
// (spec.md §4.2): mmap here models a host-side anonymous scratch
// region a guest can request and release, not linear-memory growth,
// which is already covered by memory.grow.
type anonRegions struct {
	mu     sync.Mutex
	byPid  map[string]map[int64][]byte
	nextID int64
}

var regions = &anonRegions{byPid: make(map[string]map[int64][]byte), nextID: 1}

func (g *Generic) mmap(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgNumber || args[0].Num < 0 {
		return ErrorResult("mmap: expected a non-negative length")
	}
	regions.mu.Lock()
	defer regions.mu.Unlock()
	id := regions.nextID
	regions.nextID++
	m, ok := regions.byPid[proc.Pid]
	if !ok {
		m = make(map[int64][]byte)
		regions.byPid[proc.Pid] = m
	}
	m[id] = make([]byte, args[0].Num)
	return Success(Number(id))
}

func (g *Generic) munmap(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgNumber {
		return ErrorResult("munmap: expected a region id")
	}
	regions.mu.Lock()
	defer regions.mu.Unlock()
	m, ok := regions.byPid[proc.Pid]
	if !ok {
		return ErrorResult("munmap: no such region")
	}
	if _, ok := m[args[0].Num]; !ok {
		return ErrorResult("munmap: no such region")
	}
	delete(m, args[0].Num)
	return Success(Number(0))
}
