package interpreter

import "github.com/wasmforge/wasmforge/api"

// effectiveAddr reads a load/store's (align, offset) memarg and adds the
// offset immediate to the dynamic base address popped from the stack.
func (i *Instance) effectiveAddr(stack *valueStack, cur *byteCursor) (uint32, error) {
	offsetImm, err := cur.skipMemArg()
	if err != nil {
		return 0, err
	}
	base, err := stack.popType(api.ValueTypeI32)
	if err != nil {
		return 0, err
	}
	return base.U32() + offsetImm, nil
}

func (i *Instance) load8(stack *valueStack, cur *byteCursor, wrap func(uint8) api.Value) error {
	addr, err := i.effectiveAddr(stack, cur)
	if err != nil {
		return err
	}
	v, err := i.memory.ReadUint8(addr)
	if err != nil {
		return err
	}
	stack.push(wrap(v))
	return nil
}

func (i *Instance) load16(stack *valueStack, cur *byteCursor, wrap func(uint16) api.Value) error {
	addr, err := i.effectiveAddr(stack, cur)
	if err != nil {
		return err
	}
	v, err := i.memory.ReadUint16(addr)
	if err != nil {
		return err
	}
	stack.push(wrap(v))
	return nil
}

func (i *Instance) load32(stack *valueStack, cur *byteCursor, wrap func(uint32) api.Value) error {
	addr, err := i.effectiveAddr(stack, cur)
	if err != nil {
		return err
	}
	v, err := i.memory.ReadUint32(addr)
	if err != nil {
		return err
	}
	stack.push(wrap(v))
	return nil
}

func (i *Instance) load64(stack *valueStack, cur *byteCursor, wrap func(uint64) api.Value) error {
	addr, err := i.effectiveAddr(stack, cur)
	if err != nil {
		return err
	}
	v, err := i.memory.ReadUint64(addr)
	if err != nil {
		return err
	}
	stack.push(wrap(v))
	return nil
}

func (i *Instance) store8(stack *valueStack, cur *byteCursor, want api.ValueType, narrow func(api.Value) uint8) error {
	offsetImm, err := cur.skipMemArg()
	if err != nil {
		return err
	}
	v, err := stack.popType(want)
	if err != nil {
		return err
	}
	base, err := stack.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	return i.memory.WriteUint8(base.U32()+offsetImm, narrow(v))
}

func (i *Instance) store16(stack *valueStack, cur *byteCursor, want api.ValueType, narrow func(api.Value) uint16) error {
	offsetImm, err := cur.skipMemArg()
	if err != nil {
		return err
	}
	v, err := stack.popType(want)
	if err != nil {
		return err
	}
	base, err := stack.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	return i.memory.WriteUint16(base.U32()+offsetImm, narrow(v))
}

func (i *Instance) store32(stack *valueStack, cur *byteCursor, want api.ValueType, narrow func(api.Value) uint32) error {
	offsetImm, err := cur.skipMemArg()
	if err != nil {
		return err
	}
	v, err := stack.popType(want)
	if err != nil {
		return err
	}
	base, err := stack.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	return i.memory.WriteUint32(base.U32()+offsetImm, narrow(v))
}

func (i *Instance) store64(stack *valueStack, cur *byteCursor, want api.ValueType, narrow func(api.Value) uint64) error {
	offsetImm, err := cur.skipMemArg()
	if err != nil {
		return err
	}
	v, err := stack.popType(want)
	if err != nil {
		return err
	}
	base, err := stack.popType(api.ValueTypeI32)
	if err != nil {
		return err
	}
	return i.memory.WriteUint64(base.U32()+offsetImm, narrow(v))
}
