package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

// Handler answers one process's syscalls. A language-specific handler
// (SPEC_FULL.md's "pluggable syscall handlers per process language")
// implements this to intercept calls before they reach the generic
// table; returning an Error result lets dispatch fall through rather
// than terminating the call (spec.md §4.4: "if that returns an Error,
// dispatch falls through to the generic handler").
type Handler interface {
	Handle(pid string, syscall int, args []Arg) Result
}

// Registry holds the generic handler plus any process-specific handlers
// registered by pid, per spec.md §9's "registry keyed by process
// identity returning a capability-set... owned by the host manager, not
// by the engine."
type Registry struct {
	mu       sync.RWMutex
	generic  *Generic
	handlers map[string]Handler
}

// NewRegistry creates a registry backed by procs/log for the generic
// handler, with no process-specific handlers registered.
func NewRegistry(procs *hostio.ProcessTable, log *zap.Logger) *Registry {
	return &Registry{
		generic:  NewGeneric(procs, log),
		handlers: make(map[string]Handler),
	}
}

// Register installs a language-specific handler for pid.
func (r *Registry) Register(pid string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[pid] = h
}

// Unregister removes pid's language-specific handler, if any.
func (r *Registry) Unregister(pid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, pid)
}

// Dispatch routes one syscall for pid, trying the process-specific
// handler first and falling back to the generic table.
func (r *Registry) Dispatch(pid string, syscall int, args []Arg) Result {
	r.mu.RLock()
	h, ok := r.handlers[pid]
	r.mu.RUnlock()

	if ok {
		res := h.Handle(pid, syscall, args)
		if !res.IsError() {
			return res
		}
	}
	return r.generic.Handle(pid, syscall, args)
}
