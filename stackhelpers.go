// stackhelpers.go - the Pop/Push/TrapReturn primitive vocabulary every
// Toolbox trap implementation is built from.
//
// Grounded on emu/trap/stack_helpers.h.

package main

// StackInt is implemented by the integer widths the 68000 stack stores
// directly (bool is handled specially by callers, per the original:
// stored in a byte but word-aligned on the stack).
type StackInt interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32
}

func sizeOfStackInt[T StackInt]() uint32 {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	default:
		return 4
	}
}

// popStackInt pops a value of type T off the user stack.
func popStackInt[T StackInt](d *TrapDispatcher) (T, error) {
	sp := d.host.SP()
	size := sizeOfStackInt[T]()
	var out T
	switch size {
	case 1:
		v, err := d.mm.ReadUint8(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	case 2:
		v, err := d.mm.ReadUint16(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	default:
		v, err := d.mm.ReadUint32(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	}
	d.host.SetSP(sp + size)
	return out, nil
}

// peekStackInt peeks a value of type T at the given byte offset from SP
// without moving the stack pointer.
func peekStackInt[T StackInt](d *TrapDispatcher, offset uint32) (T, error) {
	sp := d.host.SP() + offset
	var out T
	size := sizeOfStackInt[T]()
	switch size {
	case 1:
		v, err := d.mm.ReadUint8(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	case 2:
		v, err := d.mm.ReadUint16(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	default:
		v, err := d.mm.ReadUint32(int(sp))
		if err != nil {
			return out, err
		}
		out = T(v)
	}
	return out, nil
}

// pushStackInt pushes a value of type T onto the user stack.
func pushStackInt[T StackInt](d *TrapDispatcher, v T) error {
	size := sizeOfStackInt[T]()
	sp := d.host.SP() - size
	var err error
	switch size {
	case 1:
		err = d.mm.WriteUint8(int(sp), uint8(v))
	case 2:
		err = d.mm.WriteUint16(int(sp), uint16(v))
	default:
		err = d.mm.WriteUint32(int(sp), uint32(v))
	}
	if err != nil {
		return err
	}
	d.host.SetSP(sp)
	return nil
}

// popBool pops a boolean: stored in a byte but word-aligned on the
// stack, per stack_helpers.h's special case.
func popBool(d *TrapDispatcher) (bool, error) {
	v, err := popStackInt[uint16](d)
	return v != 0, err
}

// popPtr pops a 32-bit pointer/handle value off the stack.
func popPtr(d *TrapDispatcher) (int, error) {
	v, err := popStackInt[uint32](d)
	return int(v), err
}

// popRecord pops a pointer off the stack and dereferences it as a
// fixed-layout record (PopRef<T>). Used for VAR parameters.
func popRecord[T Record](d *TrapDispatcher) (T, error) {
	var zero T
	ptr, err := popPtr(d)
	if err != nil {
		return zero, err
	}
	if err := zero.ReadFrom(d.mm.root, ptr); err != nil {
		return zero, err
	}
	return zero, nil
}

// popValueRecord pops a fixed-layout record pushed directly by value
// (Pascal's convention for non-VAR record parameters like Rect/Point:
// the bytes themselves are copied onto the stack, not a pointer to
// them), reading it straight off SP and advancing SP by its size.
func popValueRecord[T Record](d *TrapDispatcher) (T, error) {
	var zero T
	sp := d.host.SP()
	if err := zero.ReadFrom(d.mm.root, int(sp)); err != nil {
		return zero, err
	}
	d.host.SetSP(sp + uint32(zero.FixedSize()))
	return zero, nil
}

// trapReturn writes a Toolbox function's result into the
// caller-reserved slot at the top of the stack: Toolbox traps leave
// room beneath their arguments for the return value.
func trapReturn[T StackInt](d *TrapDispatcher, v T) error {
	sp := d.host.SP()
	size := sizeOfStackInt[T]()
	switch size {
	case 1:
		return d.mm.WriteUint8(int(sp), uint8(v))
	case 2:
		return d.mm.WriteUint16(int(sp), uint16(v))
	default:
		return d.mm.WriteUint32(int(sp), uint32(v))
	}
}

// trapReturnBool writes a boolean Toolbox result, word-aligned.
func trapReturnBool(d *TrapDispatcher, v bool) error {
	word := uint16(0x0000)
	if v {
		word = 0x0100
	}
	return d.mm.WriteUint16(int(d.host.SP()), word)
}
