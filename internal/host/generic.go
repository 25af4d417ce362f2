package host

import (
	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

// Generic is the fallback handler every registry falls back to: the
// numbered syscall surface implemented directly against hostio's FD
// table, VFS, and process table.
type Generic struct {
	procs *hostio.ProcessTable
	log   *zap.Logger
}

// NewGeneric builds a Generic handler over procs, logging through log
// (nil is fine; calls are guarded).
func NewGeneric(procs *hostio.ProcessTable, log *zap.Logger) *Generic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generic{procs: procs, log: log}
}

// Handle dispatches syscall to the method implementing it. Unknown
// syscall numbers are a structured error, not a Go panic: the guest
// made a bad numbered call, which is exactly the class of failure
// spec.md §4.4 says must never trap.
func (g *Generic) Handle(pid string, syscall int, args []Arg) Result {
	proc, err := g.procs.Get(pid)
	if err != nil {
		return ErrorResult("%s", err)
	}

	switch syscall {
	case SyscallOpen:
		return g.open(proc, args)
	case SyscallRead:
		return g.read(proc, args)
	case SyscallWrite:
		return g.write(proc, args)
	case SyscallClose:
		return g.close(proc, args)
	case SyscallMkdir:
		return g.mkdir(proc, args)
	case SyscallRmdir:
		return g.rmdir(proc, args)
	case SyscallUnlink:
		return g.unlink(proc, args)
	case SyscallStat:
		return g.stat(proc, args)

	case SyscallFork:
		return g.fork(proc, args)
	case SyscallExec:
		return g.exec(proc, args)
	case SyscallExit:
		return g.exit(proc, args)
	case SyscallWait:
		return g.wait(proc, args)
	case SyscallKill:
		return g.kill(proc, args)
	case SyscallGetpid:
		return g.getpid(proc, args)
	case SyscallMmap:
		return g.mmap(proc, args)
	case SyscallMunmap:
		return g.munmap(proc, args)

	case SyscallPrint:
		return g.print(proc, args)
	case SyscallInput:
		return g.input(proc, args)

	case SyscallSockOpen:
		return g.sockOpen(proc, args)
	case SyscallSockBind:
		return g.sockBind(proc, args)
	case SyscallSockListen:
		return g.sockListen(proc, args)
	case SyscallSockAccept:
		return g.sockAccept(proc, args)
	case SyscallSockConnect:
		return g.sockConnect(proc, args)
	case SyscallSockRecv:
		return g.sockRecv(proc, args)
	case SyscallSockSend:
		return g.sockSend(proc, args)
	case SyscallSockShutdown:
		return g.sockShutdown(proc, args)
	case SyscallSockClose:
		return g.close(proc, args) // alias of close, per spec.md §4.4 #27

	case SyscallGetaddrinfo:
		return g.getaddrinfo(proc, args)

	default:
		return ErrorResult("unknown syscall %d", syscall)
	}
}
