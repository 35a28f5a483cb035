// cpuhost.go - thin shell around the externalized m68k interpreter.
//
// The interpreter itself (decode/execute loop) is a separate
// collaborator; only the boundary interface it must expose lives here.
// Grounded on the reference's cpu_m68k_runner.go for the cooperative
// execution-wrapper shape (mutex + queued-function handoff), adapted
// to a single-pending-native-function model rather than the
// reference's free-running goroutine.

package main

import "fmt"

// Register names for the subset of the 68000 register file the core
// touches directly (PC/SP/A5/SR plus the general D/A registers used by
// OS-convention traps).
const (
	RegD0 = iota
	RegD1
	RegD2
	RegD3
	RegD4
	RegD5
	RegD6
	RegD7
	RegA0
	RegA1
	RegA2
	RegA3
	RegA4
	RegA5
	RegA6
	RegA7 // stack pointer
	RegPC
	RegSR
)

const opcodeNOP = 0x4E71

// M68KCore is the externally-supplied 68000 instruction decoder/
// executor boundary: init, register access, timeslice execution, and
// byte/word/long memory accessors. ReferenceCore in m68kcore.go is the
// implementation this repository boots with.
type M68KCore interface {
	Init()
	SetReg(reg int, value uint32)
	GetReg(reg int) uint32
	Execute(maxCycles int) (cyclesRun int)
	EndTimeslice()
	SetInstructionHook(hook func(pc uint32))
	ReadUint8(addr uint32) uint8
	ReadUint16(addr uint32) uint16
	ReadUint32(addr uint32) uint32
	WriteUint8(addr uint32, v uint8)
	WriteUint16(addr uint32, v uint16)
	WriteUint32(addr uint32, v uint32)
}

// NativeFunc is a host-side callback invoked between timeslices when
// the instruction stream reaches a registered native address.
type NativeFunc func()

// CPUHost wraps an M68KCore, fanning its memory hooks through the
// policy-enforcing MemoryMap and implementing the two primitives
// exposed to the rest of the core: register_native_at and
// register_a_trap_handler.
type CPUHost struct {
	core M68KCore
	mm   *MemoryMap

	natives map[uint32]NativeFunc
	pending NativeFunc

	aTrapHandler func(opcode uint16)
}

// aLineOpcodeMask/aLineOpcodeTag recognize the A-line (Toolbox/OS trap)
// opcode space: every word with its top nibble set to 0xA. Classic
// 68000 hardware takes an unimplemented-instruction
// exception through vector 10 when it fetches one of these; CPUHost
// short-circuits that indirection and calls the handler directly.
const (
	aLineOpcodeMask = 0xF000
	aLineOpcodeTag  = 0xA000
)

func isALineOpcode(op uint16) bool { return op&aLineOpcodeMask == aLineOpcodeTag }

// NewCPUHost builds a CPUHost driving core over mm's address space.
func NewCPUHost(core M68KCore, mm *MemoryMap) *CPUHost {
	h := &CPUHost{core: core, mm: mm, natives: map[uint32]NativeFunc{}}
	core.Init()
	core.SetInstructionHook(h.onInstruction)
	return h
}

// Boot initializes PC/SP/A5/SR for a fresh application launch.
func (h *CPUHost) Boot(initialPC uint32) {
	h.core.SetReg(RegPC, initialPC)
	h.core.SetReg(RegA7, uint32(h.mm.StackStart()))
	h.core.SetReg(RegA5, uint32(h.mm.A5World()))
	h.core.SetReg(RegSR, 0x2700) // supervisor mode, interrupts masked
}

// RegisterNativeAt plants a NOP at address so the instruction hook can
// recognize it and queue fn to run on the host thread once the
// timeslice ends. At most one native function may be pending at any
// time.
func (h *CPUHost) RegisterNativeAt(address uint32, fn NativeFunc) {
	h.core.WriteUint32(address, 0) // placeholder, overwritten below
	h.core.WriteUint16(address, opcodeNOP)
	h.natives[address] = fn
}

// RegisterATrapHandler installs the callback CPUHost invokes whenever
// the instruction stream reaches an A-line opcode. handler runs with
// PC already advanced past the trap word, so the dispatcher's own
// argument popping lines up with the real stack pointer.
func (h *CPUHost) RegisterATrapHandler(handler func(opcode uint16)) {
	h.aTrapHandler = handler
}

func (h *CPUHost) onInstruction(pc uint32) {
	if fn, ok := h.natives[pc]; ok {
		h.pending = fn
		h.core.EndTimeslice()
		return
	}
	if h.aTrapHandler == nil {
		return
	}
	opcode := h.core.ReadUint16(pc)
	if !isALineOpcode(opcode) {
		return
	}
	handler := h.aTrapHandler
	h.core.SetReg(RegPC, pc+2)
	h.pending = func() { handler(opcode) }
	h.core.EndTimeslice()
}

// RunTimeslice executes up to maxCycles instructions, then invokes at
// most one pending native function on the host thread.
func (h *CPUHost) RunTimeslice(maxCycles int) error {
	h.core.Execute(maxCycles)
	if h.pending != nil {
		fn := h.pending
		h.pending = nil
		fn()
	}
	return nil
}

// Reg reads a register by name (for trap implementations).
func (h *CPUHost) Reg(reg int) uint32 { return h.core.GetReg(reg) }

// SetReg writes a register by name (for trap implementations).
func (h *CPUHost) SetReg(reg int, v uint32) { h.core.SetReg(reg, v) }

// SP returns the current stack pointer.
func (h *CPUHost) SP() uint32 { return h.core.GetReg(RegA7) }

// SetSP sets the stack pointer.
func (h *CPUHost) SetSP(v uint32) { h.core.SetReg(RegA7, v) }

// PC returns the current program counter.
func (h *CPUHost) PC() uint32 { return h.core.GetReg(RegPC) }

// SetPC sets the program counter.
func (h *CPUHost) SetPC(v uint32) { h.core.SetReg(RegPC, v) }

func (h *CPUHost) String() string {
	return fmt.Sprintf("CPUHost{pc=%#x sp=%#x a5=%#x}", h.PC(), h.SP(), h.Reg(RegA5))
}
