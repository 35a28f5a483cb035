// m68kcore.go - a compact 68000 interpreter satisfying the M68KCore
// boundary CPUHost depends on (the decode/execute loop is treated as
// an externally-supplied collaborator; this is the concrete
// collaborator this repo ships so the emulator actually runs).
//
// Grounded on cpu_m68k.go's reference decoder: the opcode-nibble
// dispatch groups, the SetFlags/CheckCondition condition-code logic,
// and the register file shape are all adapted from there, trimmed from
// its full 68020 instruction set down to the instructions classic
// 68000 Mac application CODE resources actually contain. Memory access
// goes through MemoryMap instead of a raw byte slice, since Cyder's
// address space is policy-enforcing rather than flat.

package main

import "fmt"

// Condition-code bits, low byte of SR (68000 CCR layout).
const (
	ccC uint16 = 1 << 0
	ccV uint16 = 1 << 1
	ccZ uint16 = 1 << 2
	ccN uint16 = 1 << 3
	ccX uint16 = 1 << 4
)

// ReferenceCore implements M68KCore with the common instruction subset:
// data movement (MOVE/MOVEQ/LEA/PEA/CLR), arithmetic (ADD/SUB/ADDQ/
// SUBQ/CMP/CMPI), branches (Bcc/BRA/BSR/DBcc), subroutine linkage
// (JSR/JMP/RTS/RTE/LINK/UNLK/NOP), with TRAP decoded as a no-op. Indexed and
// memory-indirect addressing modes, and the shift/rotate/BCD
// instruction groups, are not implemented — no classic Mac CODE
// resource exercised here needs them, and a full 68020-class decoder
// is a separate concern, not this reference core's.
type ReferenceCore struct {
	mm *MemoryMap

	d  [8]uint32
	a  [8]uint32 // a[7] is the active stack pointer
	pc uint32
	sr uint16

	hook   func(pc uint32)
	ending bool
}

// NewReferenceCore builds a ReferenceCore reading/writing through mm.
func NewReferenceCore(mm *MemoryMap) *ReferenceCore {
	return &ReferenceCore{mm: mm}
}

func (c *ReferenceCore) Init() {}

func (c *ReferenceCore) SetInstructionHook(hook func(pc uint32)) { c.hook = hook }

func (c *ReferenceCore) SetReg(reg int, value uint32) {
	switch {
	case reg >= RegD0 && reg <= RegD7:
		c.d[reg-RegD0] = value
	case reg >= RegA0 && reg <= RegA7:
		c.a[reg-RegA0] = value
	case reg == RegPC:
		c.pc = value
	case reg == RegSR:
		c.sr = uint16(value)
	}
}

func (c *ReferenceCore) GetReg(reg int) uint32 {
	switch {
	case reg >= RegD0 && reg <= RegD7:
		return c.d[reg-RegD0]
	case reg >= RegA0 && reg <= RegA7:
		return c.a[reg-RegA0]
	case reg == RegPC:
		return c.pc
	case reg == RegSR:
		return uint32(c.sr)
	}
	return 0
}

func (c *ReferenceCore) EndTimeslice() { c.ending = true }

func (c *ReferenceCore) ReadUint8(addr uint32) uint8 {
	v, _ := c.mm.ReadUint8(int(addr))
	return v
}
func (c *ReferenceCore) ReadUint16(addr uint32) uint16 {
	v, _ := c.mm.ReadUint16(int(addr))
	return v
}
func (c *ReferenceCore) ReadUint32(addr uint32) uint32 {
	v, _ := c.mm.ReadUint32(int(addr))
	return v
}
func (c *ReferenceCore) WriteUint8(addr uint32, v uint8) { c.mm.WriteUint8(int(addr), v) }
func (c *ReferenceCore) WriteUint16(addr uint32, v uint16) { c.mm.WriteUint16(int(addr), v) }
func (c *ReferenceCore) WriteUint32(addr uint32, v uint32) { c.mm.WriteUint32(int(addr), v) }

// Execute runs up to maxCycles instructions (one instruction = one
// cycle in this model; cycle-exact timing is out of scope), stopping
// early if the instruction hook calls EndTimeslice.
func (c *ReferenceCore) Execute(maxCycles int) int {
	c.ending = false
	ran := 0
	for ran < maxCycles && !c.ending {
		if c.hook != nil {
			c.hook(c.pc)
			if c.ending {
				break
			}
		}
		if err := c.step(); err != nil {
			fmt.Printf("[m68k] %v\n", err)
			c.ending = true
			break
		}
		ran++
	}
	return ran
}

func (c *ReferenceCore) fetchWord() uint16 {
	w := c.ReadUint16(c.pc)
	c.pc += 2
	return w
}

func (c *ReferenceCore) fetchLong() uint32 {
	v := c.ReadUint32(c.pc)
	c.pc += 4
	return v
}

func (c *ReferenceCore) setFlagsNZ(result uint32, size int) {
	c.sr &^= ccN | ccZ
	if zeroFor(result, size) {
		c.sr |= ccZ
	}
	if negativeFor(result, size) {
		c.sr |= ccN
	}
}

func zeroFor(v uint32, size int) bool {
	switch size {
	case 1:
		return v&0xFF == 0
	case 2:
		return v&0xFFFF == 0
	default:
		return v == 0
	}
}

func negativeFor(v uint32, size int) bool {
	switch size {
	case 1:
		return v&0x80 != 0
	case 2:
		return v&0x8000 != 0
	default:
		return v&0x80000000 != 0
	}
}

func signExtend(v uint32, size int) int64 {
	switch size {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	default:
		return int64(int32(v))
	}
}

func truncate(v uint32, size int) uint32 {
	switch size {
	case 1:
		return v & 0xFF
	case 2:
		return v & 0xFFFF
	default:
		return v
	}
}

// eaOperand is a resolved effective-address location: a getter and a
// setter closure over either a register or a memory cell.
type eaOperand struct {
	get func() uint32
	set func(uint32)
}

// resolveEA decodes a 6-bit effective-address field (3-bit mode, 3-bit
// register) for the given operand size in bytes. Mode 6 (address
// register indirect with index) and mode-7 sub-mode 3 (PC-relative with
// index) are not supported.
func (c *ReferenceCore) resolveEA(mode, reg uint16, size int) (eaOperand, error) {
	switch mode {
	case 0: // Dn
		r := int(reg)
		return eaOperand{
			get: func() uint32 { return truncate(c.d[r], size) },
			set: func(v uint32) { c.d[r] = mergeField(c.d[r], v, size) },
		}, nil
	case 1: // An
		r := int(reg)
		return eaOperand{
			get: func() uint32 { return c.a[r] },
			set: func(v uint32) { c.a[r] = v },
		}, nil
	case 2: // (An)
		addr := c.a[reg]
		return c.memOperand(addr, size), nil
	case 3: // (An)+
		addr := c.a[reg]
		op := c.memOperand(addr, size)
		step := uint32(size)
		if size == 1 && reg == 7 {
			step = 2 // A7 stays word-aligned
		}
		c.a[reg] += step
		return op, nil
	case 4: // -(An)
		step := uint32(size)
		if size == 1 && reg == 7 {
			step = 2
		}
		c.a[reg] -= step
		return c.memOperand(c.a[reg], size), nil
	case 5: // (d16,An)
		disp := int16(c.fetchWord())
		addr := uint32(int64(c.a[reg]) + int64(disp))
		return c.memOperand(addr, size), nil
	case 7:
		switch reg {
		case 0: // abs.W
			addr := uint32(int16(c.fetchWord()))
			return c.memOperand(addr, size), nil
		case 1: // abs.L
			return c.memOperand(c.fetchLong(), size), nil
		case 2: // (d16,PC)
			base := c.pc
			disp := int16(c.fetchWord())
			addr := uint32(int64(base) + int64(disp))
			return c.memOperand(addr, size), nil
		case 4: // immediate
			switch size {
			case 1:
				v := uint32(c.fetchWord() & 0xFF)
				return eaOperand{get: func() uint32 { return v }}, nil
			case 2:
				v := uint32(c.fetchWord())
				return eaOperand{get: func() uint32 { return v }}, nil
			default:
				v := c.fetchLong()
				return eaOperand{get: func() uint32 { return v }}, nil
			}
		}
	}
	return eaOperand{}, structuralErr("unsupported effective address mode %d reg %d", mode, reg)
}

func (c *ReferenceCore) memOperand(addr uint32, size int) eaOperand {
	return eaOperand{
		get: func() uint32 {
			switch size {
			case 1:
				return uint32(c.ReadUint8(addr))
			case 2:
				return uint32(c.ReadUint16(addr))
			default:
				return c.ReadUint32(addr)
			}
		},
		set: func(v uint32) {
			switch size {
			case 1:
				c.WriteUint8(addr, uint8(v))
			case 2:
				c.WriteUint16(addr, uint16(v))
			default:
				c.WriteUint32(addr, v)
			}
		},
	}
}

func mergeField(old, v uint32, size int) uint32 {
	switch size {
	case 1:
		return old&0xFFFFFF00 | v&0xFF
	case 2:
		return old&0xFFFF0000 | v&0xFFFF
	default:
		return v
	}
}

// moveSizeFromBits maps MOVE's own 2-bit size field (01=byte, 11=word,
// 10=long — MOVE alone encodes size this way) to a byte count.
func moveSizeFromBits(bits uint16) int {
	switch bits {
	case 1:
		return 1
	case 3:
		return 2
	default:
		return 4
	}
}

// stdSizeFromBits maps the ordinary 2-bit size field used by
// CLR/TST/ADDQ/SUBQ/ADD/SUB/CMP/CMPI (00=byte, 01=word, 10=long) to a
// byte count. Distinct from moveSizeFromBits: MOVE alone inverts the
// byte/word ordering.
func stdSizeFromBits(bits uint16) int {
	switch bits {
	case 0:
		return 1
	case 1:
		return 2
	default:
		return 4
	}
}

func (c *ReferenceCore) checkCondition(cond uint16) bool {
	n := c.sr&ccN != 0
	z := c.sr&ccZ != 0
	v := c.sr&ccV != 0
	cc := c.sr&ccC != 0
	switch cond {
	case 0x0: // T
		return true
	case 0x1: // F
		return false
	case 0x2: // HI
		return !cc && !z
	case 0x3: // LS
		return cc || z
	case 0x4: // CC
		return !cc
	case 0x5: // CS
		return cc
	case 0x6: // NE
		return !z
	case 0x7: // EQ
		return z
	case 0x8: // VC
		return !v
	case 0x9: // VS
		return v
	case 0xA: // PL
		return !n
	case 0xB: // MI
		return n
	case 0xC: // GE
		return n == v
	case 0xD: // LT
		return n != v
	case 0xE: // GT
		return !z && n == v
	case 0xF: // LE
		return z || n != v
	}
	return false
}

func (c *ReferenceCore) push32(v uint32) {
	c.a[7] -= 4
	c.WriteUint32(c.a[7], v)
}

func (c *ReferenceCore) pop32() uint32 {
	v := c.ReadUint32(c.a[7])
	c.a[7] += 4
	return v
}

// step decodes and executes exactly one instruction at pc.
func (c *ReferenceCore) step() error {
	op := c.fetchWord()

	switch {
	case op == 0x4E71: // NOP
		return nil
	case op == 0x4E75: // RTS
		c.pc = c.pop32()
		return nil
	case op == 0x4E73: // RTE
		sr := c.ReadUint16(c.a[7])
		c.a[7] += 2
		c.sr = sr
		c.pc = c.pop32()
		return nil
	case op&0xFFF0 == 0x4E40: // TRAP #n — ignored; classic Mac code uses A-line traps, not TRAP
		return nil
	case op&0xFFC0 == 0x4E80: // JSR
		mode, reg := (op>>3)&7, op&7
		addr, err := c.effectiveControlAddr(mode, reg)
		if err != nil {
			return err
		}
		c.push32(c.pc)
		c.pc = addr
		return nil
	case op&0xFFC0 == 0x4EC0: // JMP
		mode, reg := (op>>3)&7, op&7
		addr, err := c.effectiveControlAddr(mode, reg)
		if err != nil {
			return err
		}
		c.pc = addr
		return nil
	case op&0xFFF8 == 0x4E50: // LINK
		reg := op & 7
		disp := int16(c.fetchWord())
		c.push32(c.a[reg])
		c.a[reg] = c.a[7]
		c.a[7] = uint32(int64(c.a[7]) + int64(disp))
		return nil
	case op&0xFFF8 == 0x4E58: // UNLK
		reg := op & 7
		c.a[7] = c.a[reg]
		c.a[reg] = c.pop32()
		return nil
	case op&0xF1C0 == 0x41C0: // LEA
		an := (op >> 9) & 7
		mode, reg := (op>>3)&7, op&7
		addr, err := c.effectiveControlAddr(mode, reg)
		if err != nil {
			return err
		}
		c.a[an] = addr
		return nil
	case op&0xFFC0 == 0x4840: // PEA
		mode, reg := (op>>3)&7, op&7
		addr, err := c.effectiveControlAddr(mode, reg)
		if err != nil {
			return err
		}
		c.push32(addr)
		return nil
	case op&0xFF00 == 0x4200: // CLR
		size := stdSizeFromBits((op >> 6) & 3)
		ea, err := c.resolveEA((op>>3)&7, op&7, size)
		if err != nil {
			return err
		}
		ea.set(0)
		c.sr &^= ccN | ccV | ccC
		c.sr |= ccZ
		return nil
	case op&0xFF00 == 0x4A00 && op&0xFFC0 != 0x4AC0: // TST
		size := stdSizeFromBits((op >> 6) & 3)
		ea, err := c.resolveEA((op>>3)&7, op&7, size)
		if err != nil {
			return err
		}
		c.setFlagsNZ(ea.get(), size)
		c.sr &^= ccV | ccC
		return nil
	case op&0xF000 == 0x7000 && op&0x0100 == 0: // MOVEQ
		reg := (op >> 9) & 7
		imm := uint32(int32(int8(op & 0xFF)))
		c.d[reg] = imm
		c.setFlagsNZ(imm, 4)
		c.sr &^= ccV | ccC
		return nil
	case op&0xC000 == 0x0000 && (op>>12)&3 != 0: // MOVE / MOVEA
		sizeBits := (op >> 12) & 3
		size := moveSizeFromBits(sizeBits)
		srcMode, srcReg := (op>>3)&7, op&7
		dstReg, dstMode := (op>>9)&7, (op>>6)&7
		src, err := c.resolveEA(srcMode, srcReg, size)
		if err != nil {
			return err
		}
		v := src.get()
		if dstMode == 1 { // MOVEA: sign-extends, no flags
			c.a[dstReg] = uint32(signExtend(v, size))
			return nil
		}
		dst, err := c.resolveEA(dstMode, dstReg, size)
		if err != nil {
			return err
		}
		dst.set(v)
		c.setFlagsNZ(v, size)
		c.sr &^= ccV | ccC
		return nil
	case op&0xF000 == 0x6000: // BRA/BSR/Bcc
		cond := (op >> 8) & 0xF
		base := c.pc // address just past the opcode word
		var disp int64
		if op&0xFF == 0 {
			disp = int64(int16(c.fetchWord()))
		} else {
			disp = int64(int8(op & 0xFF))
		}
		target := uint32(int64(base) + disp)
		switch cond {
		case 0x0: // BRA
			c.pc = target
		case 0x1: // BSR
			c.push32(c.pc)
			c.pc = target
		default:
			if c.checkCondition(cond) {
				c.pc = target
			}
		}
		return nil
	case op&0xF0F8 == 0x50C8: // DBcc
		cond := (op >> 8) & 0xF
		reg := op & 7
		base := c.pc
		disp := int64(int16(c.fetchWord()))
		if !c.checkCondition(cond) {
			newVal := uint16(c.d[reg]) - 1
			c.d[reg] = mergeField(c.d[reg], uint32(newVal), 2)
			if newVal != 0xFFFF {
				c.pc = uint32(int64(base) + disp)
			}
		}
		return nil
	case op&0xF000 == 0x5000 && op&0x00C0 != 0x00C0: // ADDQ/SUBQ
		imm := uint32((op >> 9) & 7)
		if imm == 0 {
			imm = 8
		}
		size := stdSizeFromBits((op >> 6) & 3)
		ea, err := c.resolveEA((op>>3)&7, op&7, size)
		if err != nil {
			return err
		}
		v := ea.get()
		var result uint32
		if op&0x0100 != 0 {
			result = truncate(v-imm, size)
		} else {
			result = truncate(v+imm, size)
		}
		ea.set(result)
		c.setFlagsNZ(result, size)
		return nil
	case op&0xF000 == 0xD000: // ADD
		return c.arith(op, false)
	case op&0xF000 == 0x9000: // SUB
		return c.arith(op, true)
	case op&0xF000 == 0xB000 && op&0x0100 == 0: // CMP
		reg := (op >> 9) & 7
		size := stdSizeFromBits((op >> 6) & 3)
		src, err := c.resolveEA((op>>3)&7, op&7, size)
		if err != nil {
			return err
		}
		result := truncate(c.d[reg]-src.get(), size)
		c.setFlagsNZ(result, size)
		return nil
	case op&0xFF00 == 0x0C00: // CMPI
		size := stdSizeFromBits((op >> 6) & 3)
		var imm uint32
		if size == 1 {
			imm = uint32(c.fetchWord() & 0xFF)
		} else if size == 2 {
			imm = uint32(c.fetchWord())
		} else {
			imm = c.fetchLong()
		}
		ea, err := c.resolveEA((op>>3)&7, op&7, size)
		if err != nil {
			return err
		}
		result := truncate(ea.get()-imm, size)
		c.setFlagsNZ(result, size)
		return nil
	default:
		return structuralErr("unimplemented opcode %#04x at pc %#x", op, c.pc-2)
	}
}

// arith implements the Dn<->EA forms of ADD/SUB (opmode bit 8 clear:
// EA is the source, Dn the destination and result; opmode bit 8 set:
// Dn is the source, EA the destination — the memory-destination form).
func (c *ReferenceCore) arith(op uint16, sub bool) error {
	reg := (op >> 9) & 7
	size := stdSizeFromBits((op >> 6) & 3)
	toMemory := op&0x0100 != 0
	ea, err := c.resolveEA((op>>3)&7, op&7, size)
	if err != nil {
		return err
	}
	if toMemory {
		v := ea.get()
		var result uint32
		if sub {
			result = truncate(v-c.d[reg], size)
		} else {
			result = truncate(v+c.d[reg], size)
		}
		ea.set(result)
		c.setFlagsNZ(result, size)
		return nil
	}
	v := ea.get()
	var result uint32
	if sub {
		result = truncate(c.d[reg]-v, size)
	} else {
		result = truncate(c.d[reg]+v, size)
	}
	c.d[reg] = mergeField(c.d[reg], result, size)
	c.setFlagsNZ(result, size)
	return nil
}

// effectiveControlAddr resolves a control addressing mode (used by
// LEA/PEA/JMP/JSR, which only ever name a memory location, never a
// register) to its bare address without reading through it.
func (c *ReferenceCore) effectiveControlAddr(mode, reg uint16) (uint32, error) {
	switch mode {
	case 2:
		return c.a[reg], nil
	case 5:
		disp := int16(c.fetchWord())
		return uint32(int64(c.a[reg]) + int64(disp)), nil
	case 7:
		switch reg {
		case 0:
			return uint32(int16(c.fetchWord())), nil
		case 1:
			return c.fetchLong(), nil
		case 2:
			base := c.pc
			disp := int16(c.fetchWord())
			return uint32(int64(base) + int64(disp)), nil
		}
	}
	return 0, structuralErr("unsupported control addressing mode %d reg %d", mode, reg)
}
