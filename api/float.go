package api

import "math"

// F32 constructs an f32 Value, preserving the exact IEEE-754 bit pattern
// (including NaN payloads) rather than normalizing through a float64 hop.
func F32(v float32) Value {
	return Value{Type: ValueTypeF32, bits: uint64(math.Float32bits(v))}
}

// F64 constructs an f64 Value.
func F64(v float64) Value {
	return Value{Type: ValueTypeF64, bits: math.Float64bits(v)}
}

// F32 decodes the value's bits as an IEEE-754 float32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }

// F64 decodes the value's bits as an IEEE-754 float64.
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }
