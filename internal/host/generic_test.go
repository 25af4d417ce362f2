package host

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

func newTestGeneric(t *testing.T) (*Generic, *hostio.Process) {
	t.Helper()
	vfs := hostio.NewVFS()
	vfs.Mount("/data", t.TempDir())
	root := hostio.NewProcess("", vfs, nil)
	procs := hostio.NewProcessTable(root)
	return NewGeneric(procs, nil), root
}

func TestGeneric_OpenWriteReadRoundTrip(t *testing.T) {
	g, proc := newTestGeneric(t)

	openRes := g.Handle(proc.Pid, SyscallOpen, []Arg{String("/data/hello.txt"), Number(OpenRead | OpenWrite | OpenCreate)})
	require.False(t, openRes.IsError())
	fd := openRes.Value.Num

	writeRes := g.Handle(proc.Pid, SyscallWrite, []Arg{Number(fd), Buffer([]byte("hi"))})
	require.False(t, writeRes.IsError())
	require.EqualValues(t, 2, writeRes.Value.Num)

	closeRes := g.Handle(proc.Pid, SyscallClose, []Arg{Number(fd)})
	require.False(t, closeRes.IsError())

	reopen := g.Handle(proc.Pid, SyscallOpen, []Arg{String("/data/hello.txt"), Number(OpenRead)})
	require.False(t, reopen.IsError())
	fd2 := reopen.Value.Num

	readRes := g.Handle(proc.Pid, SyscallRead, []Arg{Number(fd2), Number(16)})
	require.False(t, readRes.IsError())
	require.Equal(t, "hi", string(readRes.Value.Buf))
}

// TestGeneric_BadFDReturnsStructuredError exercises the contract that
// syscall errors never trap the guest: a bad FD comes back as a
// structured Result, not a Go error surfacing up the call stack.
func TestGeneric_BadFDReturnsStructuredError(t *testing.T) {
	g, proc := newTestGeneric(t)

	res := g.Handle(proc.Pid, SyscallRead, []Arg{Number(99), Number(4)})
	require.True(t, res.IsError())
	require.Equal(t, ReasonBadFD, res.Err)
}

// TestGeneric_PathEscapeReturnsStructuredError exercises P7 through the
// syscall surface: an escaping open path is a Result error, not a panic
// or Go error.
func TestGeneric_PathEscapeReturnsStructuredError(t *testing.T) {
	g, proc := newTestGeneric(t)

	res := g.Handle(proc.Pid, SyscallOpen, []Arg{String("/data/../../etc/passwd"), Number(OpenRead)})
	require.True(t, res.IsError())
	require.Equal(t, ReasonPathEscape, res.Err)
}

func TestGeneric_SocketNotConnectedIsStructuredError(t *testing.T) {
	g, proc := newTestGeneric(t)

	openRes := g.Handle(proc.Pid, SyscallSockOpen, []Arg{Number(0), Number(0)})
	require.False(t, openRes.IsError())
	fd := openRes.Value.Num

	res := g.Handle(proc.Pid, SyscallSockSend, []Arg{Number(fd), Buffer([]byte("x"))})
	require.True(t, res.IsError())
	require.Equal(t, ReasonNotConnected, res.Err)
}

func TestGeneric_UnknownSyscallIsStructuredError(t *testing.T) {
	g, proc := newTestGeneric(t)

	res := g.Handle(proc.Pid, 999, nil)
	require.True(t, res.IsError())
}

func TestGeneric_ExitAndWait(t *testing.T) {
	g, proc := newTestGeneric(t)

	child, err := g.procs.Fork(proc.Pid)
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() { done <- g.Handle(proc.Pid, SyscallWait, []Arg{String(child.Pid)}) }()

	exitRes := g.Handle(child.Pid, SyscallExit, []Arg{Number(7)})
	require.False(t, exitRes.IsError())

	waitRes := <-done
	require.False(t, waitRes.IsError())
	require.EqualValues(t, 7, waitRes.Value.Num)
}
