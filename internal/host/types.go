package host

import "fmt"

// ArgKind tags one variant of the Arg union (spec.md §4.4: "a typed list
// {String | Number(i64) | Buffer(bytes) | Pointer(usize)}").
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBuffer
	ArgPointer
)

// Arg is one element of a syscall's argument list.
type Arg struct {
	Kind    ArgKind
	Str     string
	Num     int64
	Buf     []byte
	Pointer uint32
}

func String(s string) Arg        { return Arg{Kind: ArgString, Str: s} }
func Number(n int64) Arg         { return Arg{Kind: ArgNumber, Num: n} }
func Buffer(b []byte) Arg        { return Arg{Kind: ArgBuffer, Buf: b} }
func Pointer(p uint32) Arg       { return Arg{Kind: ArgPointer, Pointer: p} }

// ResultKind tags one variant of the Result union.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultError
)

// Result is a syscall's outcome: either a success payload (itself a
// variant of the Arg shapes) or a structured error message. Per
// spec.md §4.4, a syscall error is never a Go error that propagates as
// an engine trap — it's data the guest receives back.
type Result struct {
	Kind  ResultKind
	Value Arg
	Err   string
}

func Success(v Arg) Result        { return Result{Kind: ResultSuccess, Value: v} }
func ErrorResult(format string, a ...interface{}) Result {
	return Result{Kind: ResultError, Err: fmt.Sprintf(format, a...)}
}

// IsError reports whether r represents a failed syscall.
func (r Result) IsError() bool { return r.Kind == ResultError }

// Common structured error reasons (spec.md §4.4: "bad FD, not-a-socket,
// not-connected, path-escape, EOF").
const (
	ReasonBadFD        = "bad file descriptor"
	ReasonNotASocket   = "not a socket"
	ReasonNotConnected = "not connected"
	ReasonPathEscape   = "path escapes mount root"
	ReasonEOF          = "eof"
)
