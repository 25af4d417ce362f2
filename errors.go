package wasmforge

import "github.com/pkg/errors"

// Driver-level error classes, per spec.md §6's "Driver entry surface":
// file-not-found, decode-failed, no-entry-point, function-not-found,
// trap-at-runtime (with carry-over of the trap kind, exposed by
// wasmdebug.AsTrap on the wrapped cause).
var (
	ErrFileNotFound   = errors.New("module file not found")
	ErrDecodeFailed   = errors.New("module decode failed")
	ErrNoEntryPoint   = errors.New("no entry point: no start section, main, or _start export")
	ErrFunctionNotFound = errors.New("named entry-point function not found")
	ErrTrapAtRuntime  = errors.New("trap during execution")
)
