// Package host implements the numbered syscall surface of spec.md §4.4:
// a stable integer per operation, a typed argument/result union, and
// dispatch that tries a process-specific handler before the generic
// table. Grounded on the teacher's experimental/sock and
// experimental/sysfs thin-wrapper packages, with FD/VFS/socket state
// supplied by internal/hostio.
package host

// Syscall numbers, stable per spec.md §4.4's table.
const (
	SyscallOpen   = 1
	SyscallRead   = 2
	SyscallWrite  = 3
	SyscallClose  = 4
	SyscallMkdir  = 5
	SyscallRmdir  = 6
	SyscallUnlink = 7
	SyscallStat   = 8

	SyscallFork   = 9
	SyscallExec   = 10
	SyscallExit   = 11
	SyscallWait   = 12
	SyscallKill   = 13
	SyscallGetpid = 14
	SyscallMmap   = 15
	SyscallMunmap = 16

	SyscallPrint = 17
	SyscallInput = 18

	SyscallSockOpen     = 19
	SyscallSockBind     = 20
	SyscallSockListen   = 21
	SyscallSockAccept   = 22
	SyscallSockConnect  = 23
	SyscallSockRecv     = 24
	SyscallSockSend     = 25
	SyscallSockShutdown = 26
	SyscallSockClose    = 27

	SyscallGetaddrinfo = 28
)

// names maps a syscall number to its table name, used only for log
// messages and error text.
var names = map[int]string{
	SyscallOpen: "open", SyscallRead: "read", SyscallWrite: "write", SyscallClose: "close",
	SyscallMkdir: "mkdir", SyscallRmdir: "rmdir", SyscallUnlink: "unlink", SyscallStat: "stat",
	SyscallFork: "fork", SyscallExec: "exec", SyscallExit: "exit", SyscallWait: "wait",
	SyscallKill: "kill", SyscallGetpid: "getpid", SyscallMmap: "mmap", SyscallMunmap: "munmap",
	SyscallPrint: "print", SyscallInput: "input",
	SyscallSockOpen: "sock_open", SyscallSockBind: "sock_bind", SyscallSockListen: "sock_listen",
	SyscallSockAccept: "sock_accept", SyscallSockConnect: "sock_connect", SyscallSockRecv: "sock_recv",
	SyscallSockSend: "sock_send", SyscallSockShutdown: "sock_shutdown", SyscallSockClose: "sock_close",
	SyscallGetaddrinfo: "getaddrinfo",
}

// Name returns the syscall table name for n, or "unknown" if n isn't
// one of the numbers above.
func Name(n int) string {
	if s, ok := names[n]; ok {
		return s
	}
	return "unknown"
}
