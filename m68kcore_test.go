// m68kcore_test.go - ReferenceCore decode/execute coverage and the
// A-Trap round-trip property.

package main

import "testing"

func newTestCore() (*MemoryMap, *ReferenceCore) {
	mm := NewMemoryMap(0, 0)
	core := NewReferenceCore(mm)
	return mm, core
}

// TestReferenceCoreMOVEQAddBraJsrRts runs a small program exercising
// MOVEQ, ADD (Dn<-EA), BRA, JSR/RTS and checks the final register
// state.
func TestReferenceCoreMOVEQAddBraJsrRts(t *testing.T) {
	mm, core := newTestCore()
	host := NewCPUHost(core, mm)

	prog := addrApplHeapStart
	sub := prog + 0x100
	landing := prog + 0x200

	// MOVEQ #5,D0
	mm.WriteUint16(prog, 0x7005)
	// JSR sub
	mm.WriteUint16(prog+2, 0x4EB9)
	mm.WriteUint32(prog+4, uint32(sub))
	// BRA landing (16-bit displacement form, skips the fake MOVEQ below)
	mm.WriteUint16(prog+8, 0x6000)
	mm.WriteUint16(prog+10, uint16(int16(landing-(prog+10))))
	// (skipped) MOVEQ #99,D0 - must not execute
	mm.WriteUint16(prog+12, 0x7063)

	// sub: MOVEQ #2,D1; ADD D1,D0; RTS
	mm.WriteUint16(sub, 0x7202)
	mm.WriteUint16(sub+2, 0xD041) // ADD.W D1,D0
	mm.WriteUint16(sub+4, 0x4E75)

	stopped := false
	host.RegisterNativeAt(uint32(landing), func() { stopped = true })

	host.Boot(uint32(prog))
	if err := host.RunTimeslice(20); err != nil {
		t.Fatalf("RunTimeslice: %v", err)
	}

	if !stopped {
		t.Fatal("program did not reach the landing native stub")
	}
	if got := host.Reg(RegD0); got != 7 {
		t.Fatalf("D0 = %d, want 7 (5+2)", got)
	}
	if got := host.PC(); got != uint32(landing) {
		t.Fatalf("PC = %#x, want %#x", got, landing)
	}
}

// TestATrapRoundTrip covers the A-Trap round-trip property: executing
// "A000; next-instruction" with a handler that
// sets D0=7 leaves PC at next-instruction and D0=7 once the timeslice
// ends.
func TestATrapRoundTrip(t *testing.T) {
	mm, core := newTestCore()
	host := NewCPUHost(core, mm)

	prog := addrApplHeapStart
	mm.WriteUint16(prog, 0xA000)
	mm.WriteUint16(prog+2, 0x4E71) // NOP, the "next instruction"

	host.Boot(uint32(prog))
	host.RegisterATrapHandler(func(opcode uint16) {
		if opcode != 0xA000 {
			t.Fatalf("handler saw opcode %#04x, want 0xA000", opcode)
		}
		host.SetReg(RegD0, 7)
	})

	if err := host.RunTimeslice(10); err != nil {
		t.Fatalf("RunTimeslice: %v", err)
	}

	if got := host.PC(); got != uint32(prog+2) {
		t.Fatalf("PC = %#x, want %#x", got, prog+2)
	}
	if got := host.Reg(RegD0); got != 7 {
		t.Fatalf("D0 = %d, want 7", got)
	}
}

// TestRegisterNativeAt verifies the native-function planting path
// CPUHost also drives through the same instruction hook.
func TestRegisterNativeAt(t *testing.T) {
	mm, core := newTestCore()
	host := NewCPUHost(core, mm)

	prog := addrApplHeapStart
	native := prog + 0x40
	called := false
	host.RegisterNativeAt(uint32(native), func() { called = true })

	mm.WriteUint16(prog, 0x6000) // BRA native (16-bit displacement form)
	mm.WriteUint16(prog+2, uint16(int16(native-(prog+2))))

	host.Boot(uint32(prog))
	if err := host.RunTimeslice(10); err != nil {
		t.Fatalf("RunTimeslice: %v", err)
	}
	if !called {
		t.Fatal("native function was not invoked")
	}
	if got := host.PC(); got != uint32(native) {
		t.Fatalf("PC = %#x, want %#x", got, native)
	}
}
