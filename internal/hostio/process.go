package hostio

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNoSuchProcess is returned when a pid doesn't name a live process.
var ErrNoSuchProcess = errors.New("no such process")

// Process is one guest-visible unit of execution: an FD table, a VFS
// view, and the bookkeeping fork/wait/kill need. Pid is a uuid rather
// than a small integer so pids never collide across concurrently
// running top-level invocations of the driver (SPEC_FULL.md §4.7).
type Process struct {
	Pid    string
	FDs    *FDTable
	VFS    *VFS
	Argv   []string
	Parent string

	mu       sync.Mutex
	exited   bool
	exitCode int
	waiters  []chan int
}

// NewProcess creates a process with a fresh FD table, inheriting vfs
// (the VFS is shared across the process tree; only the FD table and
// argv are private per process).
func NewProcess(parent string, vfs *VFS, argv []string) *Process {
	return &Process{
		Pid:    uuid.NewString(),
		FDs:    NewFDTable(),
		VFS:    vfs,
		Argv:   argv,
		Parent: parent,
	}
}

// ProcessTable tracks every live process spawned by one driver
// invocation, keyed by pid.
type ProcessTable struct {
	mu    sync.Mutex
	procs map[string]*Process
}

// NewProcessTable creates an empty table and registers root as its
// first entry.
func NewProcessTable(root *Process) *ProcessTable {
	t := &ProcessTable{procs: make(map[string]*Process)}
	t.procs[root.Pid] = root
	return t
}

// Fork creates a child of parent, copying its VFS reference and argv,
// and registers it in the table.
func (t *ProcessTable) Fork(parentPid string) (*Process, error) {
	t.mu.Lock()
	parent, ok := t.procs[parentPid]
	t.mu.Unlock()
	if !ok {
		return nil, ErrNoSuchProcess
	}

	child := NewProcess(parentPid, parent.VFS, append([]string(nil), parent.Argv...))
	t.mu.Lock()
	t.procs[child.Pid] = child
	t.mu.Unlock()
	return child, nil
}

// Get looks up a process by pid.
func (t *ProcessTable) Get(pid string) (*Process, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.procs[pid]
	if !ok {
		return nil, ErrNoSuchProcess
	}
	return p, nil
}

// Exit marks pid as exited with code, waking any waiters. Idempotent:
// a second Exit call for the same pid is a no-op, mirroring wait(2)
// semantics where a zombie's exit status is fixed at first exit.
func (t *ProcessTable) Exit(pid string, code int) error {
	p, err := t.Get(pid)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return nil
	}
	p.exited = true
	p.exitCode = code
	for _, w := range p.waiters {
		w <- code
		close(w)
	}
	p.waiters = nil
	return nil
}

// Wait blocks until pid exits, returning its exit code. If pid has
// already exited, it returns immediately.
func (t *ProcessTable) Wait(pid string) (int, error) {
	p, err := t.Get(pid)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	if p.exited {
		code := p.exitCode
		p.mu.Unlock()
		return code, nil
	}
	ch := make(chan int, 1)
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()
	return <-ch, nil
}

// Kill force-exits pid with a synthetic code, as if it had called
// exit(1) — the host-side analogue of delivering SIGKILL, since the
// interpreter has no signal mechanism to deliver to.
func (t *ProcessTable) Kill(pid string) error {
	return t.Exit(pid, 1)
}

// Remove drops pid's bookkeeping from the table once its parent has
// reaped it via Wait, closing any FDs it still held open.
func (t *ProcessTable) Remove(pid string) error {
	t.mu.Lock()
	p, ok := t.procs[pid]
	if ok {
		delete(t.procs, pid)
	}
	t.mu.Unlock()
	if !ok {
		return ErrNoSuchProcess
	}
	p.FDs.mu.Lock()
	fds := make([]int, 0, len(p.FDs.fds))
	for fd := range p.FDs.fds {
		fds = append(fds, fd)
	}
	p.FDs.mu.Unlock()
	for _, fd := range fds {
		_ = p.FDs.Close(fd)
	}
	return nil
}
