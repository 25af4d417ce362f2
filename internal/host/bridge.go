package host

import (
	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/engine/interpreter"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

// BridgeFuncType is the single import signature every numbered syscall
// is invoked through: (syscall_number, a0, a1, a2, a3, out_ptr,
// out_len) -> result. a0..a3 are per-syscall: either a plain integer or
// a (pointer, length) pair into Linear Memory for string/buffer
// arguments (spec.md §6: "pointer+length in Linear Memory for
// variable-width data; integer arguments... on the value stack").
// Bytes returned by the syscall (a stat listing, a recv'd buffer) are
// written starting at out_ptr, capped at out_len, and the result is the
// number of bytes written (the payload's full length when out_len is 0).
// A numeric result (an fd, a byte count) is returned as-is. On error
// nothing is written and the result is -1.
var BridgeFuncType = wasm.FunctionType{
	Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
	Results: []api.ValueType{api.ValueTypeI32},
}

// NewBridge builds the HostFunc every guest import of (module, "syscall")
// resolves to for pid: it decodes the generic (num, a0..a3) ABI into a
// host.Arg list, dispatches through reg, and encodes the Result back
// into the guest's out buffer.
func NewBridge(reg *Registry, pid string) interpreter.HostFunc {
	return func(mem *wasm.LinearMemory, args []api.Value) ([]api.Value, error) {
		num := int(args[0].I32())
		a := [4]int32{args[1].I32(), args[2].I32(), args[3].I32(), args[4].I32()}
		outPtr, outLen := args[5].U32(), args[6].U32()

		hostArgs, err := decodeArgs(mem, num, a)
		if err != nil {
			return []api.Value{api.I32(-1)}, nil
		}

		res := reg.Dispatch(pid, num, hostArgs)
		return []api.Value{api.I32(encodeResult(mem, res, outPtr, outLen))}, nil
	}
}

func readGuestString(mem *wasm.LinearMemory, ptr, length int32) (string, error) {
	b, err := mem.ReadBytes(uint32(ptr), uint32(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readGuestBuffer(mem *wasm.LinearMemory, ptr, length int32) ([]byte, error) {
	return mem.ReadBytes(uint32(ptr), uint32(length))
}

// decodeArgs maps the generic (a0..a3) slots onto the Arg shape each
// syscall's Generic.<name> method expects, matching the argument order
// fs.go/proc.go/sock.go already assume.
func decodeArgs(mem *wasm.LinearMemory, num int, a [4]int32) ([]Arg, error) {
	switch num {
	case SyscallOpen:
		path, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(path), Number(int64(a[2]))}, nil
	case SyscallRead:
		return []Arg{Number(int64(a[0])), Number(int64(a[1]))}, nil
	case SyscallWrite:
		buf, err := readGuestBuffer(mem, a[1], a[2])
		if err != nil {
			return nil, err
		}
		return []Arg{Number(int64(a[0])), Buffer(buf)}, nil
	case SyscallClose, SyscallGetpid:
		return []Arg{Number(int64(a[0]))}, nil
	case SyscallMkdir, SyscallRmdir, SyscallUnlink, SyscallStat:
		path, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(path)}, nil
	case SyscallExec:
		path, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(path)}, nil
	case SyscallFork:
		return nil, nil
	case SyscallExit, SyscallMmap, SyscallMunmap:
		return []Arg{Number(int64(a[0]))}, nil
	case SyscallWait, SyscallKill:
		pid, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(pid)}, nil
	case SyscallPrint:
		msg, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(msg)}, nil
	case SyscallInput:
		return nil, nil
	case SyscallSockOpen:
		return []Arg{Number(int64(a[0])), Number(int64(a[1]))}, nil
	case SyscallSockBind, SyscallSockConnect:
		ip, err := readGuestString(mem, a[1], a[2])
		if err != nil {
			return nil, err
		}
		return []Arg{Number(int64(a[0])), String(ip), Number(int64(a[3]))}, nil
	case SyscallSockListen:
		return []Arg{Number(int64(a[0])), Number(int64(a[1]))}, nil
	case SyscallSockAccept:
		return []Arg{Number(int64(a[0]))}, nil
	case SyscallSockRecv:
		return []Arg{Number(int64(a[0])), Number(int64(a[1]))}, nil
	case SyscallSockSend:
		buf, err := readGuestBuffer(mem, a[1], a[2])
		if err != nil {
			return nil, err
		}
		return []Arg{Number(int64(a[0])), Buffer(buf)}, nil
	case SyscallSockShutdown:
		return []Arg{Number(int64(a[0])), Number(int64(a[1]))}, nil
	case SyscallSockClose:
		return []Arg{Number(int64(a[0]))}, nil
	case SyscallGetaddrinfo:
		host, err := readGuestString(mem, a[0], a[1])
		if err != nil {
			return nil, err
		}
		return []Arg{String(host)}, nil
	default:
		return nil, nil
	}
}

// encodeResult writes res's payload (if any) into mem at outPtr, capped
// at outLen, and returns the guest-visible i32: the byte/value count on
// success, -1 on a structured error. The error message itself isn't
// copied back, since spec.md's syscall ABI doesn't reserve a second out
// buffer for it, and it is not logged either.
func encodeResult(mem *wasm.LinearMemory, res Result, outPtr, outLen uint32) int32 {
	if res.IsError() {
		return -1
	}
	switch res.Value.Kind {
	case ArgNumber:
		return int32(res.Value.Num)
	case ArgString:
		return writeOut(mem, []byte(res.Value.Str), outPtr, outLen)
	case ArgBuffer:
		return writeOut(mem, res.Value.Buf, outPtr, outLen)
	default:
		return 0
	}
}

func writeOut(mem *wasm.LinearMemory, b []byte, outPtr, outLen uint32) int32 {
	if mem == nil || outLen == 0 {
		return int32(len(b))
	}
	n := uint32(len(b))
	if n > outLen {
		n = outLen
	}
	if err := mem.WriteBytes(outPtr, b[:n]); err != nil {
		return -1
	}
	return int32(n)
}
