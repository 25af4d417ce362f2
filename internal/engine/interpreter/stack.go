package interpreter

import (
	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// callStackCeiling bounds recursion depth; exceeding it traps with
// TrapCodeStackOverflow rather than exhausting the Go stack (spec.md
// §4.3.3's frame-depth limit).
const callStackCeiling = 2048

// label is one entry of a frame's structured-control stack (spec.md
// §4.3.2). For a loop, continuation is the body's start (branching
// re-enters); for block/if, it's the position just past the matching END
// (branching exits).
type label struct {
	arity         int
	continuation  int
	isLoop        bool
	stackBaseSize int // value-stack height when the label was pushed
}

// callFrame is one active function invocation: its locals and a cursor
// into its instruction stream, plus its own label stack.
type callFrame struct {
	funcIdx    uint32
	locals     []api.Value
	body       []byte
	pc         int
	resultArity int
	labels     []label
}

// valueStack is the shared operand stack (spec.md §4.3.2): an ordered
// sequence of Value, popped/pushed by nearly every instruction.
type valueStack struct {
	values []api.Value
}

func (s *valueStack) push(v api.Value) { s.values = append(s.values, v) }

// pop removes and returns the top value, trapping with
// TrapCodeStackUnderflow instead of panicking if the stack is empty: the
// decoder performs no bytecode validation, so a malformed or adversarial
// function body (e.g. a bare drop on an empty stack) must be rejected
// safely rather than crash the host process.
func (s *valueStack) pop() (api.Value, error) {
	top := len(s.values) - 1
	if top < 0 {
		return api.Value{}, wasmdebug.NewTrap(wasmdebug.TrapCodeStackUnderflow, "operand stack underflow")
	}
	v := s.values[top]
	s.values = s.values[:top]
	return v, nil
}

// popType pops a value and traps if its tag doesn't match want; the
// decoder doesn't validate types ahead of time, so the interpreter
// enforces typed-pop itself.
func (s *valueStack) popType(want api.ValueType) (api.Value, error) {
	v, err := s.pop()
	if err != nil {
		return api.Value{}, err
	}
	if v.Type != want {
		return api.Value{}, wasmdebug.NewTrap(wasmdebug.TrapCodeUnsupportedValueType, "operand type mismatch")
	}
	return v, nil
}

func (s *valueStack) size() int { return len(s.values) }

// truncate drops the stack back to height n, used when a branch or block
// exit needs to discard any values left above the label's base.
func (s *valueStack) truncate(n int) { s.values = s.values[:n] }
