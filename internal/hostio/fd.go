// Package hostio implements the process-facing resources behind the
// host interface of spec.md §4.4: a per-process FD table, a VFS backed
// by afero, and socket handles with their own state machine. Grounded
// structurally on original_source/src/runtime/wasi_fs.rs's MountInfo/
// FileStats shapes and on the teacher's thin-wrapper-over-implementation
// idiom (experimental/sysfs.Adapt, experimental/sock.Config).
package hostio

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// DescriptorKind tags which variant an FD slot holds.
type DescriptorKind int

const (
	DescriptorFile DescriptorKind = iota
	DescriptorSocket
)

// Descriptor is one entry of a process's FD table.
type Descriptor struct {
	Kind   DescriptorKind
	File   io.ReadWriteCloser
	Socket *SocketHandle
}

// ErrBadFD is returned for any operation on an FD the table doesn't
// recognize (closed, never opened, or out of range).
var ErrBadFD = errors.New("bad file descriptor")

// ErrNotASocket / ErrNotAFile report an FD/kind mismatch.
var (
	ErrNotASocket = errors.New("descriptor is not a socket")
	ErrNotAFile   = errors.New("descriptor is not a file")
)

// FDTable is one process's file-descriptor space. FDs 0/1/2 are never
// stored in the table: File resolves them to the host process's standard
// streams before any lookup, and Insert hands out FDs from 3 up, so they
// are not re-assignable (spec.md §6).
type FDTable struct {
	mu   sync.Mutex
	next int
	fds  map[int]*Descriptor
}

// NewFDTable allocates an FD table with user descriptors starting at 3,
// reserving 0/1/2 for stdio.
func NewFDTable() *FDTable {
	return &FDTable{next: 3, fds: make(map[int]*Descriptor)}
}

// Insert adds d under a freshly allocated FD, serialized per spec.md §5
// ("all mutation is serialized per-process").
func (t *FDTable) Insert(d *Descriptor) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	fd := t.next
	t.next++
	t.fds[fd] = d
	return fd
}

// Get looks up fd, returning ErrBadFD if it's unknown.
func (t *FDTable) Get(fd int) (*Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.fds[fd]
	if !ok {
		return nil, ErrBadFD
	}
	return d, nil
}

// Close removes fd from the table, closing its underlying resource.
func (t *FDTable) Close(fd int) error {
	t.mu.Lock()
	d, ok := t.fds[fd]
	if ok {
		delete(t.fds, fd)
	}
	t.mu.Unlock()
	if !ok {
		return ErrBadFD
	}
	switch d.Kind {
	case DescriptorFile:
		return d.File.Close()
	case DescriptorSocket:
		return d.Socket.Close()
	}
	return nil
}

// File looks up fd and asserts it's a file descriptor. FDs 0, 1 and 2
// map to the host's stdin, stdout and stderr.
func (t *FDTable) File(fd int) (io.ReadWriteCloser, error) {
	switch fd {
	case 0:
		return os.Stdin, nil
	case 1:
		return os.Stdout, nil
	case 2:
		return os.Stderr, nil
	}
	d, err := t.Get(fd)
	if err != nil {
		return nil, err
	}
	if d.Kind != DescriptorFile {
		return nil, ErrNotAFile
	}
	return d.File, nil
}

// SocketOf looks up fd and asserts it's a socket descriptor.
func (t *FDTable) SocketOf(fd int) (*SocketHandle, error) {
	d, err := t.Get(fd)
	if err != nil {
		return nil, err
	}
	if d.Kind != DescriptorSocket {
		return nil, ErrNotASocket
	}
	return d.Socket, nil
}
