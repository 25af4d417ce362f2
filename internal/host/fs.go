package host

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

// Open flag bits for the open syscall's second argument, mirroring the
// POSIX flags a guest libc would otherwise synthesize.
const (
	OpenRead   = 1 << 0
	OpenWrite  = 1 << 1
	OpenCreate = 1 << 2
	OpenTrunc  = 1 << 3
	OpenAppend = 1 << 4
)

func osFlags(bits int64) int {
	var f int
	switch {
	case bits&OpenWrite != 0 && bits&OpenRead != 0:
		f = os.O_RDWR
	case bits&OpenWrite != 0:
		f = os.O_WRONLY
	default:
		f = os.O_RDONLY
	}
	if bits&OpenCreate != 0 {
		f |= os.O_CREATE
	}
	if bits&OpenTrunc != 0 {
		f |= os.O_TRUNC
	}
	if bits&OpenAppend != 0 {
		f |= os.O_APPEND
	}
	return f
}

func (g *Generic) open(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("open: expected a path string")
	}
	flags := int64(OpenRead)
	if len(args) > 1 && args[1].Kind == ArgNumber {
		flags = args[1].Num
	}

	fs, rel, err := proc.VFS.Resolve(args[0].Str)
	if err != nil {
		if err == hostio.ErrPathEscape {
			return ErrorResult(ReasonPathEscape)
		}
		return ErrorResult("%s", err)
	}

	f, err := fs.OpenFile(rel, osFlags(flags), 0o644)
	if err != nil {
		return ErrorResult("%s", err)
	}
	fd := proc.FDs.Insert(&hostio.Descriptor{Kind: hostio.DescriptorFile, File: f})
	return Success(Number(int64(fd)))
}

func (g *Generic) read(proc *hostio.Process, args []Arg) Result {
	if len(args) < 2 || args[0].Kind != ArgNumber || args[1].Kind != ArgNumber {
		return ErrorResult("read: expected (fd, n)")
	}
	f, err := proc.FDs.File(int(args[0].Num))
	if err != nil {
		return ErrorResult("%s", mapFDErr(err))
	}
	buf := make([]byte, args[1].Num)
	n, err := f.Read(buf)
	if n == 0 && err == io.EOF {
		return Success(Buffer(nil))
	}
	if err != nil && err != io.EOF {
		return ErrorResult("%s", err)
	}
	return Success(Buffer(buf[:n]))
}

func (g *Generic) write(proc *hostio.Process, args []Arg) Result {
	if len(args) < 2 || args[0].Kind != ArgNumber || args[1].Kind != ArgBuffer {
		return ErrorResult("write: expected (fd, buffer)")
	}
	f, err := proc.FDs.File(int(args[0].Num))
	if err != nil {
		return ErrorResult("%s", mapFDErr(err))
	}
	n, err := f.Write(args[1].Buf)
	if err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(int64(n)))
}

func (g *Generic) close(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgNumber {
		return ErrorResult("close: expected an fd")
	}
	if err := proc.FDs.Close(int(args[0].Num)); err != nil {
		return ErrorResult("%s", mapFDErr(err))
	}
	return Success(Number(0))
}

func (g *Generic) mkdir(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("mkdir: expected a path string")
	}
	fs, rel, err := proc.VFS.Resolve(args[0].Str)
	if err != nil {
		return ErrorResult("%s", err)
	}
	if err := fs.MkdirAll(rel, 0o755); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) rmdir(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("rmdir: expected a path string")
	}
	fs, rel, err := proc.VFS.Resolve(args[0].Str)
	if err != nil {
		return ErrorResult("%s", err)
	}
	if err := fs.Remove(rel); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) unlink(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("unlink: expected a path string")
	}
	fs, rel, err := proc.VFS.Resolve(args[0].Str)
	if err != nil {
		return ErrorResult("%s", err)
	}
	if err := fs.Remove(rel); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) stat(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("stat: expected a path string")
	}
	fs, rel, err := proc.VFS.Resolve(args[0].Str)
	if err != nil {
		return ErrorResult("%s", err)
	}
	entries, err := afero.ReadDir(fs, rel)
	if err != nil {
		return ErrorResult("%s", err)
	}
	names := make([]byte, 0, 64)
	for _, e := range entries {
		names = append(names, []byte(e.Name()+"\n")...)
	}
	return Success(Buffer(names))
}

func mapFDErr(err error) string {
	if err == hostio.ErrBadFD {
		return ReasonBadFD
	}
	if err == hostio.ErrNotAFile {
		return "not a file"
	}
	return err.Error()
}
