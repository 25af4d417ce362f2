package hostio

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrPathEscape is returned when a path's canonicalization would land
// outside its mount's host root (spec.md I5/P7).
var ErrPathEscape = errors.New("path escapes its mount root")

// Mount binds a guest-visible prefix to a host filesystem root, mirroring
// original_source/src/runtime/wasi_fs.rs's MountInfo.
type Mount struct {
	GuestPrefix string
	HostRoot    string
	FS          afero.Fs
}

// Stats mirrors original_source's WasiFilesystemStats: a coarse summary
// of VFS usage, supplemental to spec.md's core VFS operations (see
// SPEC_FULL.md §4.8).
type Stats struct {
	MountCount int
	TotalFiles int
	TotalBytes int64
}

// VFS resolves guest paths against a read-mostly table of mounts
// (spec.md §5: "writers take a writer lock briefly for mount/unmount").
type VFS struct {
	mu     sync.RWMutex
	mounts []Mount
}

// NewVFS builds an empty VFS; call Mount to register guest_prefix →
// host_root bindings before serving any path.
func NewVFS() *VFS {
	return &VFS{}
}

// Mount registers a guest_prefix → host_root binding backed by an afero
// filesystem rooted at hostRoot (afero.NewBasePathFs), so every
// operation below the mount is confined lexically to hostRoot. hostRoot
// is used as given; it is not made absolute or resolved through symlinks.
func (v *VFS) Mount(guestPrefix, hostRoot string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	base := afero.NewOsFs()
	v.mounts = append(v.mounts, Mount{
		GuestPrefix: guestPrefix,
		HostRoot:    hostRoot,
		FS:          afero.NewBasePathFs(base, hostRoot),
	})
}

// Unmount removes every mount registered under guestPrefix.
func (v *VFS) Unmount(guestPrefix string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.mounts[:0]
	for _, m := range v.mounts {
		if m.GuestPrefix != guestPrefix {
			out = append(out, m)
		}
	}
	v.mounts = out
}

// Resolve implements spec.md §4.4's VFS path resolution: find the
// longest matching mount prefix, reject a relative tail that climbs
// above the mount root once lexically cleaned, and join the tail onto
// the mount's afero filesystem. The check is lexical only: symlinks are
// not resolved, so a link below a mount that points outside it is
// followed by the host filesystem.
//
// original_source/src/runtime/wasi_fs.rs's own resolve_path takes the
// first mount whose prefix matches in iteration order; spec.md is
// explicit that the LONGEST prefix wins, which is what's implemented
// here.
func (v *VFS) Resolve(path string) (afero.Fs, string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var best *Mount
	for idx := range v.mounts {
		m := &v.mounts[idx]
		if !strings.HasPrefix(path, m.GuestPrefix) {
			continue
		}
		if best == nil || len(m.GuestPrefix) > len(best.GuestPrefix) {
			best = m
		}
	}
	if best == nil {
		return nil, "", errors.Errorf("no mount covers path %q", path)
	}

	relative := strings.TrimPrefix(path, best.GuestPrefix)
	relative = strings.TrimPrefix(relative, "/")
	// Check the tail before anchoring it at "/": filepath.Clean would
	// otherwise collapse a leading ".." against the root and hide the
	// escape.
	if tail := filepath.Clean(relative); tail == ".." || strings.HasPrefix(tail, ".."+string(filepath.Separator)) {
		return nil, "", ErrPathEscape
	}
	clean := filepath.Clean("/" + relative)
	return best.FS, clean, nil
}

// Stat summarizes VFS usage across all mounts (SPEC_FULL.md §4.8).
func (v *VFS) Stat() (Stats, error) {
	v.mu.RLock()
	mounts := append([]Mount(nil), v.mounts...)
	v.mu.RUnlock()

	var s Stats
	s.MountCount = len(mounts)
	for _, m := range mounts {
		count, size, err := walkCount(m.FS)
		if err != nil {
			return Stats{}, err
		}
		s.TotalFiles += count
		s.TotalBytes += size
	}
	return s, nil
}

func walkCount(fs afero.Fs) (count int, size int64, err error) {
	err = afero.Walk(fs, "/", func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			count++
			size += info.Size()
		}
		return nil
	})
	return
}
