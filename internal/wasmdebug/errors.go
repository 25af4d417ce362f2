// Package wasmdebug defines the error kinds described in spec.md §7:
// decode errors, instantiation errors, and traps. Host errors are not
// here — per spec.md §4.4/§7 those never become Go errors inside the
// engine, they're returned to the guest as a conventional host.Result.
package wasmdebug

import "github.com/pkg/errors"

// DecodeError is returned by the decoder (internal/wasm/binary) for any
// malformed input. It names the section and item index where decoding
// failed, per spec.md §4.1's failure model.
type DecodeError struct {
	Section string
	Index   int
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return errors.Wrapf(e.Cause, "decode %s section, item %d", e.Section, e.Index).Error()
	}
	return errors.Wrapf(e.Cause, "decode %s section", e.Section).Error()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// NewDecodeError builds a DecodeError for a section-level failure (no
// specific item, e.g. a bad magic number).
func NewDecodeError(section string, cause error) error {
	return &DecodeError{Section: section, Index: -1, Cause: cause}
}

// NewItemDecodeError builds a DecodeError for a single item within a
// section (e.g. the third import, the first data segment).
func NewItemDecodeError(section string, index int, cause error) error {
	return &DecodeError{Section: section, Index: index, Cause: cause}
}

// InstantiationError is returned by interpreter.Instantiate: an out-of-bounds
// active segment, an unresolved import, or a start function that trapped.
type InstantiationError struct {
	Reason string
	Cause  error
}

func (e *InstantiationError) Error() string {
	if e.Cause != nil {
		return errors.Wrap(e.Cause, e.Reason).Error()
	}
	return e.Reason
}

func (e *InstantiationError) Unwrap() error { return e.Cause }

func NewInstantiationError(reason string, cause error) error {
	return &InstantiationError{Reason: reason, Cause: cause}
}

// TrapCode enumerates the abrupt-termination causes of spec.md §4.3.3.
type TrapCode uint8

const (
	TrapCodeUnreachable TrapCode = iota
	TrapCodeIntegerDivideByZero
	TrapCodeIntegerOverflow
	TrapCodeInvalidConversionToInteger
	TrapCodeIndirectCallTypeMismatch
	TrapCodeMemoryOutOfBounds
	TrapCodeTableOutOfBounds
	TrapCodeUninitializedTableElement
	TrapCodeStackOverflow
	TrapCodeUnsupportedValueType
	TrapCodeStackUnderflow
)

func (c TrapCode) String() string {
	switch c {
	case TrapCodeUnreachable:
		return "unreachable"
	case TrapCodeIntegerDivideByZero:
		return "integer divide by zero"
	case TrapCodeIntegerOverflow:
		return "integer overflow"
	case TrapCodeInvalidConversionToInteger:
		return "invalid conversion to integer"
	case TrapCodeIndirectCallTypeMismatch:
		return "indirect call type mismatch"
	case TrapCodeMemoryOutOfBounds:
		return "out of bounds memory access"
	case TrapCodeTableOutOfBounds:
		return "out of bounds table access"
	case TrapCodeUninitializedTableElement:
		return "uninitialized element"
	case TrapCodeStackOverflow:
		return "stack overflow"
	case TrapCodeUnsupportedValueType:
		return "unsupported value type"
	case TrapCodeStackUnderflow:
		return "operand stack underflow"
	default:
		return "unknown trap"
	}
}

// Trap is how the interpreter unwinds to the driver boundary on an
// abrupt termination (spec.md §4.3.3, §7).
type Trap struct {
	Code    TrapCode
	Message string
}

func (t *Trap) Error() string {
	if t.Message != "" {
		return "wasm error: " + t.Code.String() + ": " + t.Message
	}
	return "wasm error: " + t.Code.String()
}

// NewTrap builds a Trap with an optional detail message.
func NewTrap(code TrapCode, msg string) error {
	return &Trap{Code: code, Message: msg}
}

// AsTrap reports whether err is (or wraps) a *Trap, returning it if so.
func AsTrap(err error) (*Trap, bool) {
	var t *Trap
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// ResourceError covers §7's resource-exhaustion kind: memory grow
// refused, frame-depth cap reached. Frame-depth is surfaced as a Trap
// (TrapCodeStackOverflow) since it aborts the guest call, and
// LinearMemory.Grow reports a refused grow as a -1 result rather than an
// error, so no code path in wasmforge constructs a ResourceError.
type ResourceError struct {
	Reason string
}

func (e *ResourceError) Error() string { return e.Reason }

func NewResourceError(reason string) error { return &ResourceError{Reason: reason} }
