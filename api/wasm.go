// Package api includes the value and type model shared by the decoder,
// the execution engine, and the host interface.
package api

import "fmt"

// ValueType is a single-byte tag for one of the value types recognized by
// the binary format.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#binary-valtype
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7F
	ValueTypeI64 ValueType = 0x7E
	ValueTypeF32 ValueType = 0x7D
	ValueTypeF64 ValueType = 0x7C

	// ValueTypeV128 is recognized by the decoder but the engine traps on
	// first use; see DESIGN.md's Open Question decision.
	ValueTypeV128 ValueType = 0x7B
	// ValueTypeFuncRef indexes into a Table's function slots.
	ValueTypeFuncRef ValueType = 0x70
	// ValueTypeExternRef is recognized but not executable; see DESIGN.md.
	ValueTypeExternRef ValueType = 0x6F
)

// ValueTypeName returns the short name the text format uses for t, or a
// hex literal for anything unrecognized.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncRef:
		return "funcref"
	case ValueTypeExternRef:
		return "externref"
	default:
		return fmt.Sprintf("%#x", t)
	}
}

// ExternType classifies an import or export.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#external-types%E2%91%A0
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

// Value is a tagged union over the four numeric value types. Unlike
// wazero's internal stack representation (a raw uint64 typed by context),
// wasmforge carries the tag on the value itself: spec.md's data model
// calls for an explicit tagged union, and the value stack needs the tag
// at pop time to validate typed-pop invariants (see spec.md I4).
type Value struct {
	Type ValueType
	// bits holds the value's bit pattern: i32 occupies the low 32 bits
	// with the upper 32 zero, i64 fills all 64, f32/f64 are their IEEE-754 bit
	// patterns via math.Float32bits/Float64bits. Keeping one field (rather
	// than a field per type) keeps Value small and trivially copyable.
	bits uint64
}

func I32(v int32) Value { return Value{Type: ValueTypeI32, bits: uint64(uint32(v))} }
func I64(v int64) Value { return Value{Type: ValueTypeI64, bits: uint64(v)} }

func (v Value) I32() int32 { return int32(uint32(v.bits)) }
func (v Value) U32() uint32 { return uint32(v.bits) }
func (v Value) I64() int64 { return int64(v.bits) }
func (v Value) U64() uint64 { return v.bits }

// Bits exposes the raw 64-bit pattern, e.g. for table/global storage that
// doesn't care about the numeric interpretation.
func (v Value) Bits() uint64 { return v.bits }

// FromBits constructs a Value of the given type from a raw bit pattern,
// e.g. when a float's bits must round-trip exactly (NaN payload
// preservation, spec.md §3).
func FromBits(t ValueType, bits uint64) Value { return Value{Type: t, bits: bits} }

// Equal compares two values bit-exactly, per spec.md §3 ("Equality is
// bit-exact").
func (v Value) Equal(o Value) bool { return v.Type == o.Type && v.bits == o.bits }

func (v Value) String() string {
	switch v.Type {
	case ValueTypeI32:
		return fmt.Sprintf("i32:%d", v.I32())
	case ValueTypeI64:
		return fmt.Sprintf("i64:%d", v.I64())
	case ValueTypeF32:
		return fmt.Sprintf("f32:%v", v.F32())
	case ValueTypeF64:
		return fmt.Sprintf("f64:%v", v.F64())
	default:
		return fmt.Sprintf("%s:%#x", ValueTypeName(v.Type), v.bits)
	}
}

// ZeroValue returns the zero value for t, used to initialize declared
// locals (spec.md §4.3.2).
func ZeroValue(t ValueType) Value {
	switch t {
	case ValueTypeI32:
		return I32(0)
	case ValueTypeI64:
		return I64(0)
	case ValueTypeF32:
		return F32(0)
	case ValueTypeF64:
		return F64(0)
	default:
		return Value{Type: t}
	}
}
