package interpreter

import (
	"math"
	"math/bits"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// run drives frames until the initial (bottom) frame returns, mutating
// stack and frames in place. No Go-level recursion backs WASM calls:
// opCall/opCallIndirect push onto frames and the same loop continues, so
// callStackCeiling bounds guest recursion rather than the Go stack.
func (i *Instance) run(stack *valueStack, frames []*callFrame) error {
	for len(frames) > 0 {
		if len(frames) > callStackCeiling {
			return wasmdebug.NewTrap(wasmdebug.TrapCodeStackOverflow, "")
		}
		frame := frames[len(frames)-1]

		if frame.pc >= len(frame.body) {
			frames = frames[:len(frames)-1]
			continue
		}

		cur := &byteCursor{b: frame.body, pos: frame.pc}
		op, err := cur.readByte()
		if err != nil {
			return err
		}

		switch op {
		case opUnreachable:
			return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "")
		case opNop:
			frame.pc = cur.pos

		case opBlock, opLoop, opIf:
			arity, err := readBlockArity(cur)
			if err != nil {
				return err
			}
			headerEnd := cur.pos
			end, elsePos, err := findMatchingEnd(frame.body, headerEnd)
			if err != nil {
				return err
			}
			lbl := label{arity: arity, stackBaseSize: stack.size(), continuation: end + 1}
			if op == opLoop {
				lbl.isLoop = true
				lbl.continuation = headerEnd
			}
			if op == opIf {
				cond, err := stack.popType(api.ValueTypeI32)
				if err != nil {
					return err
				}
				lbl.stackBaseSize = stack.size()
				frame.labels = append(frame.labels, lbl)
				if cond.I32() != 0 {
					frame.pc = headerEnd
				} else if elsePos != 0 {
					frame.pc = elsePos + 1
				} else {
					frame.pc = end + 1
					frame.labels = frame.labels[:len(frame.labels)-1]
				}
			} else {
				frame.labels = append(frame.labels, lbl)
				frame.pc = headerEnd
			}

		case opElse:
			// Reached only by falling through a taken `if` branch; behaves
			// like branching to the enclosing label's exit.
			frame.pc = cur.pos
			if err := i.doBranch(stack, &frames, 0); err != nil {
				return err
			}

		case opEnd:
			frame.pc = cur.pos
			if len(frame.labels) == 0 {
				frames = frames[:len(frames)-1]
			} else {
				frame.labels = frame.labels[:len(frame.labels)-1]
			}

		case opBr:
			l, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if err := i.doBranch(stack, &frames, l); err != nil {
				return err
			}

		case opBrIf:
			l, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			cond, err := stack.popType(api.ValueTypeI32)
			if err != nil {
				return err
			}
			if cond.I32() != 0 {
				if err := i.doBranch(stack, &frames, l); err != nil {
					return err
				}
			}

		case opBrTable:
			n, err := cur.readU32()
			if err != nil {
				return err
			}
			targets := make([]uint32, n)
			for k := range targets {
				if targets[k], err = cur.readU32(); err != nil {
					return err
				}
			}
			def, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			idxVal, err := stack.popType(api.ValueTypeI32)
			if err != nil {
				return err
			}
			idx := idxVal.U32()
			target := def
			if idx < uint32(len(targets)) {
				target = targets[idx]
			}
			if err := i.doBranch(stack, &frames, target); err != nil {
				return err
			}

		case opReturn:
			frame.pc = cur.pos
			frames = frames[:len(frames)-1]

		case opCall:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if frames, err = i.call(stack, frames, idx); err != nil {
				return err
			}

		case opCallIndirect:
			typeIdx, err := cur.readU32()
			if err != nil {
				return err
			}
			if _, err = cur.readU32(); err != nil { // reserved table index
				return err
			}
			frame.pc = cur.pos
			elemVal, err := stack.popType(api.ValueTypeI32)
			if err != nil {
				return err
			}
			elem := int(elemVal.U32())
			if elem < 0 || elem >= len(i.table) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeTableOutOfBounds, "")
			}
			slot := i.table[elem]
			if slot < 0 {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUninitializedTableElement, "")
			}
			if int(typeIdx) >= len(i.module.Types) || !equalFuncType(i.funcs[slot].typ, i.module.Types[typeIdx]) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeIndirectCallTypeMismatch, "")
			}
			if frames, err = i.call(stack, frames, uint32(slot)); err != nil {
				return err
			}

		case opDrop:
			if _, err := stack.pop(); err != nil {
				return err
			}
			frame.pc = cur.pos

		case opSelect:
			frame.pc = cur.pos
			cond, err := stack.popType(api.ValueTypeI32)
			if err != nil {
				return err
			}
			b, err := stack.pop()
			if err != nil {
				return err
			}
			a, err := stack.pop()
			if err != nil {
				return err
			}
			if cond.I32() != 0 {
				stack.push(a)
			} else {
				stack.push(b)
			}

		case opLocalGet:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if int(idx) >= len(frame.locals) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "invalid local index")
			}
			stack.push(frame.locals[idx])

		case opLocalSet:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if int(idx) >= len(frame.locals) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "invalid local index")
			}
			v, err := stack.pop()
			if err != nil {
				return err
			}
			frame.locals[idx] = v

		case opLocalTee:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if int(idx) >= len(frame.locals) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "invalid local index")
			}
			v, err := stack.pop()
			if err != nil {
				return err
			}
			frame.locals[idx] = v
			stack.push(v)

		case opGlobalGet:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if int(idx) >= len(i.globals) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "invalid global index")
			}
			stack.push(i.globals[idx])

		case opGlobalSet:
			idx, err := cur.readU32()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if int(idx) >= len(i.globals) {
				return wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "invalid global index")
			}
			v, err := stack.pop()
			if err != nil {
				return err
			}
			i.globals[idx] = v

		case opMemorySize:
			if _, err := cur.readByte(); err != nil { // reserved
				return err
			}
			frame.pc = cur.pos
			stack.push(api.I32(int32(i.memory.Size())))

		case opMemoryGrow:
			if _, err := cur.readByte(); err != nil { // reserved
				return err
			}
			frame.pc = cur.pos
			n, err := stack.popType(api.ValueTypeI32)
			if err != nil {
				return err
			}
			stack.push(api.I32(i.memory.Grow(n.U32())))

		case opI32Const:
			v, err := cur.readI64()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			stack.push(api.I32(int32(v)))

		case opI64Const:
			v, err := cur.readI64()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			stack.push(api.I64(v))

		case opF32Const:
			v, err := cur.readU32LE()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			stack.push(api.FromBits(api.ValueTypeF32, uint64(v)))

		case opF64Const:
			v, err := cur.readU64LE()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			stack.push(api.FromBits(api.ValueTypeF64, v))

		case opMiscPrefix:
			sub, err := cur.readByte()
			if err != nil {
				return err
			}
			frame.pc = cur.pos
			if err := runMiscOp(stack, sub); err != nil {
				return err
			}

		default:
			frame.pc = cur.pos
			if err := i.runMemOrNumericOp(stack, op, cur); err != nil {
				return err
			}
			frame.pc = cur.pos
		}
	}
	return nil
}

// call invokes funcIdx, either dispatching straight to a host binding or
// pushing a new call frame for a locally defined function; returns the
// (possibly grown) frames slice.
func (i *Instance) call(stack *valueStack, frames []*callFrame, funcIdx uint32) ([]*callFrame, error) {
	if int(funcIdx) >= len(i.funcs) {
		return frames, wasmdebug.NewTrap(wasmdebug.TrapCodeUnreachable, "call to invalid function index")
	}
	entry := i.funcs[funcIdx]
	args := make([]api.Value, len(entry.typ.Params))
	for k := len(args) - 1; k >= 0; k-- {
		v, err := stack.pop()
		if err != nil {
			return frames, err
		}
		args[k] = v
	}
	if entry.isHost {
		results, err := entry.host(i.memory, args)
		if err != nil {
			return frames, err
		}
		for _, v := range results {
			stack.push(v)
		}
		return frames, nil
	}

	locals := make([]api.Value, len(args)+len(entry.locals))
	copy(locals, args)
	for j, lt := range entry.locals {
		locals[len(args)+j] = api.ZeroValue(lt)
	}
	return append(frames, &callFrame{
		funcIdx: funcIdx, locals: locals, body: entry.body, resultArity: len(entry.typ.Results),
	}), nil
}

func (i *Instance) doBranch(stack *valueStack, framesPtr *[]*callFrame, l uint32) error {
	frames := *framesPtr
	frame := frames[len(frames)-1]
	idx := len(frame.labels) - 1 - int(l)
	if idx < 0 {
		*framesPtr = frames[:len(frames)-1]
		return nil
	}
	lbl := frame.labels[idx]
	vals := make([]api.Value, lbl.arity)
	for k := lbl.arity - 1; k >= 0; k-- {
		v, err := stack.pop()
		if err != nil {
			return err
		}
		vals[k] = v
	}
	stack.truncate(lbl.stackBaseSize)
	for _, v := range vals {
		stack.push(v)
	}
	if lbl.isLoop {
		frame.labels = frame.labels[:idx+1]
	} else {
		frame.labels = frame.labels[:idx]
	}
	frame.pc = lbl.continuation
	return nil
}

// readBlockArity consumes a block/loop/if's block-type byte. wasmforge
// doesn't support the multi-value proposal's type-index block types
// (non-MVP): only the empty form and a single result value type.
func readBlockArity(cur *byteCursor) (int, error) {
	b, err := cur.readByte()
	if err != nil {
		return 0, err
	}
	if b == blockTypeEmpty {
		return 0, nil
	}
	return 1, nil
}

func equalFuncType(a, b wasm.FunctionType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}

// runMemOrNumericOp handles every opcode not already special-cased in
// run's switch: loads/stores, comparisons, arithmetic, and conversions.
func (i *Instance) runMemOrNumericOp(stack *valueStack, op byte, cur *byteCursor) error {
	switch op {
	case opI32Load:
		return i.load32(stack, cur, func(v uint32) api.Value { return api.I32(int32(v)) })
	case opI64Load:
		return i.load64(stack, cur, func(v uint64) api.Value { return api.I64(int64(v)) })
	case opF32Load:
		return i.load32(stack, cur, func(v uint32) api.Value { return api.FromBits(api.ValueTypeF32, uint64(v)) })
	case opF64Load:
		return i.load64(stack, cur, func(v uint64) api.Value { return api.FromBits(api.ValueTypeF64, v) })
	case opI32Load8S:
		return i.load8(stack, cur, func(v uint8) api.Value { return api.I32(int32(int8(v))) })
	case opI32Load8U:
		return i.load8(stack, cur, func(v uint8) api.Value { return api.I32(int32(v)) })
	case opI32Load16S:
		return i.load16(stack, cur, func(v uint16) api.Value { return api.I32(int32(int16(v))) })
	case opI32Load16U:
		return i.load16(stack, cur, func(v uint16) api.Value { return api.I32(int32(v)) })
	case opI64Load8S:
		return i.load8(stack, cur, func(v uint8) api.Value { return api.I64(int64(int8(v))) })
	case opI64Load8U:
		return i.load8(stack, cur, func(v uint8) api.Value { return api.I64(int64(v)) })
	case opI64Load16S:
		return i.load16(stack, cur, func(v uint16) api.Value { return api.I64(int64(int16(v))) })
	case opI64Load16U:
		return i.load16(stack, cur, func(v uint16) api.Value { return api.I64(int64(v)) })
	case opI64Load32S:
		return i.load32(stack, cur, func(v uint32) api.Value { return api.I64(int64(int32(v))) })
	case opI64Load32U:
		return i.load32(stack, cur, func(v uint32) api.Value { return api.I64(int64(v)) })

	case opI32Store:
		return i.store32(stack, cur, api.ValueTypeI32, func(v api.Value) uint32 { return v.U32() })
	case opI64Store:
		return i.store64(stack, cur, api.ValueTypeI64, func(v api.Value) uint64 { return v.U64() })
	case opF32Store:
		return i.store32(stack, cur, api.ValueTypeF32, func(v api.Value) uint32 { return uint32(v.Bits()) })
	case opF64Store:
		return i.store64(stack, cur, api.ValueTypeF64, func(v api.Value) uint64 { return v.Bits() })
	case opI32Store8:
		return i.store8(stack, cur, api.ValueTypeI32, func(v api.Value) uint8 { return uint8(v.U32()) })
	case opI32Store16:
		return i.store16(stack, cur, api.ValueTypeI32, func(v api.Value) uint16 { return uint16(v.U32()) })
	case opI64Store8:
		return i.store8(stack, cur, api.ValueTypeI64, func(v api.Value) uint8 { return uint8(v.U64()) })
	case opI64Store16:
		return i.store16(stack, cur, api.ValueTypeI64, func(v api.Value) uint16 { return uint16(v.U64()) })
	case opI64Store32:
		return i.store32(stack, cur, api.ValueTypeI64, func(v api.Value) uint32 { return uint32(v.U64()) })

	case opI32Eqz:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		if v.I32() == 0 {
			stack.push(api.I32(1))
		} else {
			stack.push(api.I32(0))
		}
	case opI64Eqz:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		if v.I64() == 0 {
			stack.push(api.I32(1))
		} else {
			stack.push(api.I32(0))
		}

	case opI32Eq:
		return i32CmpOp(stack, func(a, b int32) bool { return a == b })
	case opI32Ne:
		return i32CmpOp(stack, func(a, b int32) bool { return a != b })
	case opI32LtS:
		return i32CmpOp(stack, func(a, b int32) bool { return a < b })
	case opI32LtU:
		return i32CmpOp(stack, func(a, b int32) bool { return uint32(a) < uint32(b) })
	case opI32GtS:
		return i32CmpOp(stack, func(a, b int32) bool { return a > b })
	case opI32GtU:
		return i32CmpOp(stack, func(a, b int32) bool { return uint32(a) > uint32(b) })
	case opI32LeS:
		return i32CmpOp(stack, func(a, b int32) bool { return a <= b })
	case opI32LeU:
		return i32CmpOp(stack, func(a, b int32) bool { return uint32(a) <= uint32(b) })
	case opI32GeS:
		return i32CmpOp(stack, func(a, b int32) bool { return a >= b })
	case opI32GeU:
		return i32CmpOp(stack, func(a, b int32) bool { return uint32(a) >= uint32(b) })

	case opI64Eq:
		return i64CmpOp(stack, func(a, b int64) bool { return a == b })
	case opI64Ne:
		return i64CmpOp(stack, func(a, b int64) bool { return a != b })
	case opI64LtS:
		return i64CmpOp(stack, func(a, b int64) bool { return a < b })
	case opI64LtU:
		return i64CmpOp(stack, func(a, b int64) bool { return uint64(a) < uint64(b) })
	case opI64GtS:
		return i64CmpOp(stack, func(a, b int64) bool { return a > b })
	case opI64GtU:
		return i64CmpOp(stack, func(a, b int64) bool { return uint64(a) > uint64(b) })
	case opI64LeS:
		return i64CmpOp(stack, func(a, b int64) bool { return a <= b })
	case opI64LeU:
		return i64CmpOp(stack, func(a, b int64) bool { return uint64(a) <= uint64(b) })
	case opI64GeS:
		return i64CmpOp(stack, func(a, b int64) bool { return a >= b })
	case opI64GeU:
		return i64CmpOp(stack, func(a, b int64) bool { return uint64(a) >= uint64(b) })

	case opF32Eq:
		return f32CmpOp(stack, func(a, b float32) bool { return a == b })
	case opF32Ne:
		return f32CmpOp(stack, func(a, b float32) bool { return a != b })
	case opF32Lt:
		return f32CmpOp(stack, func(a, b float32) bool { return a < b })
	case opF32Gt:
		return f32CmpOp(stack, func(a, b float32) bool { return a > b })
	case opF32Le:
		return f32CmpOp(stack, func(a, b float32) bool { return a <= b })
	case opF32Ge:
		return f32CmpOp(stack, func(a, b float32) bool { return a >= b })

	case opF64Eq:
		return f64CmpOp(stack, func(a, b float64) bool { return a == b })
	case opF64Ne:
		return f64CmpOp(stack, func(a, b float64) bool { return a != b })
	case opF64Lt:
		return f64CmpOp(stack, func(a, b float64) bool { return a < b })
	case opF64Gt:
		return f64CmpOp(stack, func(a, b float64) bool { return a > b })
	case opF64Le:
		return f64CmpOp(stack, func(a, b float64) bool { return a <= b })
	case opF64Ge:
		return f64CmpOp(stack, func(a, b float64) bool { return a >= b })

	case opI32Clz:
		return i32UnOp(stack, func(a int32) int32 { return int32(bits.LeadingZeros32(uint32(a))) })
	case opI32Ctz:
		return i32UnOp(stack, func(a int32) int32 { return int32(bits.TrailingZeros32(uint32(a))) })
	case opI32Popcnt:
		return i32UnOp(stack, func(a int32) int32 { return int32(bits.OnesCount32(uint32(a))) })
	case opI32Add:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a + b, nil })
	case opI32Sub:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a - b, nil })
	case opI32Mul:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a * b, nil })
	case opI32DivS:
		return i32BinOp(stack, i32DivS)
	case opI32DivU:
		return i32BinOp(stack, i32DivU)
	case opI32RemS:
		return i32BinOp(stack, i32RemS)
	case opI32RemU:
		return i32BinOp(stack, i32RemU)
	case opI32And:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a & b, nil })
	case opI32Or:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a | b, nil })
	case opI32Xor:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a ^ b, nil })
	case opI32Shl:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a << (uint32(b) % 32), nil })
	case opI32ShrS:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return a >> (uint32(b) % 32), nil })
	case opI32ShrU:
		return i32BinOp(stack, func(a, b int32) (int32, error) {
			return int32(uint32(a) >> (uint32(b) % 32)), nil
		})
	case opI32Rotl:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return i32Rotl(a, b), nil })
	case opI32Rotr:
		return i32BinOp(stack, func(a, b int32) (int32, error) { return i32Rotr(a, b), nil })

	case opI64Clz:
		return i64UnOp(stack, func(a int64) int64 { return int64(bits.LeadingZeros64(uint64(a))) })
	case opI64Ctz:
		return i64UnOp(stack, func(a int64) int64 { return int64(bits.TrailingZeros64(uint64(a))) })
	case opI64Popcnt:
		return i64UnOp(stack, func(a int64) int64 { return int64(bits.OnesCount64(uint64(a))) })
	case opI64Add:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a + b, nil })
	case opI64Sub:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a - b, nil })
	case opI64Mul:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a * b, nil })
	case opI64DivS:
		return i64BinOp(stack, i64DivS)
	case opI64DivU:
		return i64BinOp(stack, i64DivU)
	case opI64RemS:
		return i64BinOp(stack, i64RemS)
	case opI64RemU:
		return i64BinOp(stack, i64RemU)
	case opI64And:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a & b, nil })
	case opI64Or:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a | b, nil })
	case opI64Xor:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a ^ b, nil })
	case opI64Shl:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a << (uint64(b) % 64), nil })
	case opI64ShrS:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return a >> (uint64(b) % 64), nil })
	case opI64ShrU:
		return i64BinOp(stack, func(a, b int64) (int64, error) {
			return int64(uint64(a) >> (uint64(b) % 64)), nil
		})
	case opI64Rotl:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return i64Rotl(a, b), nil })
	case opI64Rotr:
		return i64BinOp(stack, func(a, b int64) (int64, error) { return i64Rotr(a, b), nil })

	case opF32Abs:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.Abs(float64(a))) })
	case opF32Neg:
		return f32UnOp(stack, func(a float32) float32 { return -a })
	case opF32Ceil:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.Ceil(float64(a))) })
	case opF32Floor:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.Floor(float64(a))) })
	case opF32Trunc:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.Trunc(float64(a))) })
	case opF32Nearest:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.RoundToEven(float64(a))) })
	case opF32Sqrt:
		return f32UnOp(stack, func(a float32) float32 { return float32(math.Sqrt(float64(a))) })
	case opF32Add:
		return f32BinOp(stack, func(a, b float32) float32 { return a + b })
	case opF32Sub:
		return f32BinOp(stack, func(a, b float32) float32 { return a - b })
	case opF32Mul:
		return f32BinOp(stack, func(a, b float32) float32 { return a * b })
	case opF32Div:
		return f32BinOp(stack, func(a, b float32) float32 { return a / b })
	case opF32Min:
		return f32BinOp(stack, f32Min)
	case opF32Max:
		return f32BinOp(stack, f32Max)
	case opF32Copysign:
		return f32BinOp(stack, func(a, b float32) float32 { return float32(math.Copysign(float64(a), float64(b))) })

	case opF64Abs:
		return f64UnOp(stack, math.Abs)
	case opF64Neg:
		return f64UnOp(stack, func(a float64) float64 { return -a })
	case opF64Ceil:
		return f64UnOp(stack, math.Ceil)
	case opF64Floor:
		return f64UnOp(stack, math.Floor)
	case opF64Trunc:
		return f64UnOp(stack, math.Trunc)
	case opF64Nearest:
		return f64UnOp(stack, math.RoundToEven)
	case opF64Sqrt:
		return f64UnOp(stack, math.Sqrt)
	case opF64Add:
		return f64BinOp(stack, func(a, b float64) float64 { return a + b })
	case opF64Sub:
		return f64BinOp(stack, func(a, b float64) float64 { return a - b })
	case opF64Mul:
		return f64BinOp(stack, func(a, b float64) float64 { return a * b })
	case opF64Div:
		return f64BinOp(stack, func(a, b float64) float64 { return a / b })
	case opF64Min:
		return f64BinOp(stack, f64Min)
	case opF64Max:
		return f64BinOp(stack, f64Max)
	case opF64Copysign:
		return f64BinOp(stack, math.Copysign)

	case opI32WrapI64:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(v.I64())))
	case opI64ExtendI32S:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(v.I32())))
	case opI64ExtendI32U:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(v.U32())))

	case opI32TruncF32S:
		return truncOp(stack, api.ValueTypeF32, func(v api.Value) (api.Value, error) {
			r, err := truncF32ToI32S(v.F32())
			return api.I32(r), err
		})
	case opI32TruncF32U:
		return truncOp(stack, api.ValueTypeF32, func(v api.Value) (api.Value, error) {
			r, err := truncF32ToI32U(v.F32())
			return api.I32(int32(r)), err
		})
	case opI32TruncF64S:
		return truncOp(stack, api.ValueTypeF64, func(v api.Value) (api.Value, error) {
			r, err := truncF64ToI32S(v.F64())
			return api.I32(r), err
		})
	case opI32TruncF64U:
		return truncOp(stack, api.ValueTypeF64, func(v api.Value) (api.Value, error) {
			r, err := truncF64ToI32U(v.F64())
			return api.I32(int32(r)), err
		})
	case opI64TruncF32S:
		return truncOp(stack, api.ValueTypeF32, func(v api.Value) (api.Value, error) {
			r, err := truncF32ToI64S(v.F32())
			return api.I64(r), err
		})
	case opI64TruncF32U:
		return truncOp(stack, api.ValueTypeF32, func(v api.Value) (api.Value, error) {
			r, err := truncF32ToI64U(v.F32())
			return api.I64(int64(r)), err
		})
	case opI64TruncF64S:
		return truncOp(stack, api.ValueTypeF64, func(v api.Value) (api.Value, error) {
			r, err := truncF64ToI64S(v.F64())
			return api.I64(r), err
		})
	case opI64TruncF64U:
		return truncOp(stack, api.ValueTypeF64, func(v api.Value) (api.Value, error) {
			r, err := truncF64ToI64U(v.F64())
			return api.I64(int64(r)), err
		})

	case opF32ConvertI32S:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.F32(float32(v.I32())))
	case opF32ConvertI32U:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.F32(float32(v.U32())))
	case opF32ConvertI64S:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.F32(float32(v.I64())))
	case opF32ConvertI64U:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.F32(float32(v.U64())))
	case opF32DemoteF64:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.F32(float32(v.F64())))

	case opF64ConvertI32S:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.F64(float64(v.I32())))
	case opF64ConvertI32U:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.F64(float64(v.U32())))
	case opF64ConvertI64S:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.F64(float64(v.I64())))
	case opF64ConvertI64U:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.F64(float64(v.U64())))
	case opF64PromoteF32:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.F64(float64(v.F32())))

	case opI32ReinterpretF32:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(uint32(v.Bits()))))
	case opI64ReinterpretF64:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(v.Bits())))
	case opF32ReinterpretI32:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.FromBits(api.ValueTypeF32, uint64(v.U32())))
	case opF64ReinterpretI64:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.FromBits(api.ValueTypeF64, v.U64()))

	case opI32Extend8S:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(int8(v.I32()))))
	case opI32Extend16S:
		v, err := stack.popType(api.ValueTypeI32)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(int16(v.I32()))))
	case opI64Extend8S:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(int8(v.I64()))))
	case opI64Extend16S:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(int16(v.I64()))))
	case opI64Extend32S:
		v, err := stack.popType(api.ValueTypeI64)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(int32(v.I64()))))

	default:
		return wasmdebug.NewTrap(wasmdebug.TrapCodeUnsupportedValueType, "unimplemented opcode")
	}
	return nil
}

func i32UnOp(s *valueStack, f func(a int32) int32) error {
	v, err := s.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	s.push(api.I32(f(v.I32())))
	return nil
}

func i64UnOp(s *valueStack, f func(a int64) int64) error {
	v, err := s.popType(api.ValueTypeI64)
	if err != nil {
		return err
	}
	s.push(api.I64(f(v.I64())))
	return nil
}

func f32UnOp(s *valueStack, f func(a float32) float32) error {
	v, err := s.popType(api.ValueTypeF32)
	if err != nil {
		return err
	}
	s.push(api.F32(f(v.F32())))
	return nil
}

func f64UnOp(s *valueStack, f func(a float64) float64) error {
	v, err := s.popType(api.ValueTypeF64)
	if err != nil {
		return err
	}
	s.push(api.F64(f(v.F64())))
	return nil
}

func truncOp(s *valueStack, want api.ValueType, f func(api.Value) (api.Value, error)) error {
	v, err := s.popType(want)
	if err != nil {
		return err
	}
	r, err := f(v)
	if err != nil {
		return err
	}
	s.push(r)
	return nil
}

// runMiscOp handles the 0xFC-prefixed trunc_sat family (opMiscPrefix
// 0x00-0x07); wasmforge doesn't implement the rest of the bulk-memory
// proposal also namespaced under 0xFC (memory.copy/fill, table.*).
func runMiscOp(stack *valueStack, sub byte) error {
	switch sub {
	case 0x00:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.I32(truncSatF32ToI32S(v.F32())))
	case 0x01:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(truncSatF32ToI32U(v.F32()))))
	case 0x02:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.I32(truncSatF64ToI32S(v.F64())))
	case 0x03:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.I32(int32(truncSatF64ToI32U(v.F64()))))
	case 0x04:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.I64(truncSatF32ToI64S(v.F32())))
	case 0x05:
		v, err := stack.popType(api.ValueTypeF32)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(truncSatF32ToI64U(v.F32()))))
	case 0x06:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.I64(truncSatF64ToI64S(v.F64())))
	case 0x07:
		v, err := stack.popType(api.ValueTypeF64)
		if err != nil {
			return err
		}
		stack.push(api.I64(int64(truncSatF64ToI64U(v.F64()))))
	default:
		return wasmdebug.NewTrap(wasmdebug.TrapCodeUnsupportedValueType, "unimplemented 0xFC opcode")
	}
	return nil
}
