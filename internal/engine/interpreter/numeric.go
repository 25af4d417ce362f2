package interpreter

import (
	"math"
	"math/bits"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

func i32BinOp(s *valueStack, f func(a, b int32) (int32, error)) error {
	b, err := s.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	r, err := f(a.I32(), b.I32())
	if err != nil {
		return err
	}
	s.push(api.I32(r))
	return nil
}

func i32CmpOp(s *valueStack, f func(a, b int32) bool) error {
	b, err := s.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	if f(a.I32(), b.I32()) {
		s.push(api.I32(1))
	} else {
		s.push(api.I32(0))
	}
	return nil
}

func i64BinOp(s *valueStack, f func(a, b int64) (int64, error)) error {
	b, err := s.popType(api.ValueTypeI64)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeI64)
	if err != nil {
		return err
	}
	r, err := f(a.I64(), b.I64())
	if err != nil {
		return err
	}
	s.push(api.I64(r))
	return nil
}

func i64CmpOp(s *valueStack, f func(a, b int64) bool) error {
	b, err := s.popType(api.ValueTypeI64)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeI64)
	if err != nil {
		return err
	}
	if f(a.I64(), b.I64()) {
		s.push(api.I32(1))
	} else {
		s.push(api.I32(0))
	}
	return nil
}

func f32BinOp(s *valueStack, f func(a, b float32) float32) error {
	b, err := s.popType(api.ValueTypeF32)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeF32)
	if err != nil {
		return err
	}
	s.push(api.F32(f(a.F32(), b.F32())))
	return nil
}

func f32CmpOp(s *valueStack, f func(a, b float32) bool) error {
	b, err := s.popType(api.ValueTypeF32)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeF32)
	if err != nil {
		return err
	}
	if f(a.F32(), b.F32()) {
		s.push(api.I32(1))
	} else {
		s.push(api.I32(0))
	}
	return nil
}

func f64BinOp(s *valueStack, f func(a, b float64) float64) error {
	b, err := s.popType(api.ValueTypeF64)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeF64)
	if err != nil {
		return err
	}
	s.push(api.F64(f(a.F64(), b.F64())))
	return nil
}

func f64CmpOp(s *valueStack, f func(a, b float64) bool) error {
	b, err := s.popType(api.ValueTypeF64)
	if err != nil {
		return err
	}
	a, err := s.popType(api.ValueTypeF64)
	if err != nil {
		return err
	}
	if f(a.F64(), b.F64()) {
		s.push(api.I32(1))
	} else {
		s.push(api.I32(0))
	}
	return nil
}

// divS/remS/divU/remU implement the signed/unsigned integer division
// trap rules of spec.md §4.3.3: divide-by-zero always traps; signed
// division additionally traps on MIN/-1 overflow.

func i32DivS(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	if a == math.MinInt32 && b == -1 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerOverflow, "")
	}
	return a / b, nil
}

func i32RemS(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	if a == math.MinInt32 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func i32DivU(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	return int32(uint32(a) / uint32(b)), nil
}

func i32RemU(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	return int32(uint32(a) % uint32(b)), nil
}

func i64DivS(a, b int64) (int64, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerOverflow, "")
	}
	return a / b, nil
}

func i64RemS(a, b int64) (int64, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func i64DivU(a, b int64) (int64, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	return int64(uint64(a) / uint64(b)), nil
}

func i64RemU(a, b int64) (int64, error) {
	if b == 0 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeIntegerDivideByZero, "")
	}
	return int64(uint64(a) % uint64(b)), nil
}

func i32Rotl(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), int(b))) }
func i32Rotr(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), -int(b))) }
func i64Rotl(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), int(b))) }
func i64Rotr(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), -int(b))) }

// fMin/fMax follow the WASM rule that NaN is contagious and -0 < +0.
func f32Min(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return float32(math.NaN())
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func f32Max(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return float32(math.NaN())
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) {
			return b
		}
		return a
	}
	if a > b {
		return a
	}
	return b
}

func f64Min(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == 0 && b == 0 {
		if math.Signbit(a) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func f64Max(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == 0 && b == 0 {
		if math.Signbit(a) {
			return b
		}
		return a
	}
	if a > b {
		return a
	}
	return b
}

// truncToI32S/etc. implement the non-saturating trunc family: out of
// range (including NaN/Inf) traps (spec.md's "invalid float-to-int
// conversion").

func truncF32ToI32S(v float32) (int32, error) {
	if math.IsNaN(float64(v)) || v < -2147483648 || v >= 2147483648 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return int32(v), nil
}

func truncF32ToI32U(v float32) (uint32, error) {
	if math.IsNaN(float64(v)) || v <= -1 || v >= 4294967296 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return uint32(v), nil
}

func truncF64ToI32S(v float64) (int32, error) {
	if math.IsNaN(v) || v < -2147483648 || v >= 2147483648 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return int32(v), nil
}

func truncF64ToI32U(v float64) (uint32, error) {
	if math.IsNaN(v) || v <= -1 || v >= 4294967296 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return uint32(v), nil
}

func truncF32ToI64S(v float32) (int64, error) {
	if math.IsNaN(float64(v)) || v < -9223372036854775808 || v >= 9223372036854775808 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return int64(v), nil
}

func truncF32ToI64U(v float32) (uint64, error) {
	if math.IsNaN(float64(v)) || v <= -1 || v >= 18446744073709551616 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return uint64(v), nil
}

func truncF64ToI64S(v float64) (int64, error) {
	if math.IsNaN(v) || v < -9223372036854775808 || v >= 9223372036854775808 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return int64(v), nil
}

func truncF64ToI64U(v float64) (uint64, error) {
	if math.IsNaN(v) || v <= -1 || v >= 18446744073709551616 {
		return 0, wasmdebug.NewTrap(wasmdebug.TrapCodeInvalidConversionToInteger, "")
	}
	return uint64(v), nil
}

// truncSatF32ToI32S etc. implement the saturating trunc_sat family
// (opMiscPrefix 0x00-0x07): out-of-range clamps instead of trapping.

func truncSatF32ToI32S(v float32) int32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v < -2147483648 {
		return math.MinInt32
	}
	if v >= 2147483648 {
		return math.MaxInt32
	}
	return int32(v)
}

func truncSatF32ToI32U(v float32) uint32 {
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	if v >= 4294967296 {
		return math.MaxUint32
	}
	return uint32(v)
}

func truncSatF64ToI32S(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -2147483648 {
		return math.MinInt32
	}
	if v >= 2147483648 {
		return math.MaxInt32
	}
	return int32(v)
}

func truncSatF64ToI32U(v float64) uint32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 4294967296 {
		return math.MaxUint32
	}
	return uint32(v)
}

func truncSatF32ToI64S(v float32) int64 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v < -9223372036854775808 {
		return math.MinInt64
	}
	if v >= 9223372036854775808 {
		return math.MaxInt64
	}
	return int64(v)
}

func truncSatF32ToI64U(v float32) uint64 {
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	if v >= 18446744073709551616 {
		return math.MaxUint64
	}
	return uint64(v)
}

func truncSatF64ToI64S(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -9223372036854775808 {
		return math.MinInt64
	}
	if v >= 9223372036854775808 {
		return math.MaxInt64
	}
	return int64(v)
}

func truncSatF64ToI64U(v float64) uint64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 18446744073709551616 {
		return math.MaxUint64
	}
	return uint64(v)
}
