// blockmove_test.go - BlockMove ($A02E) copies Count bytes from A0 to
// A1 through the full trap-dispatch/exit-routine round trip.

package main

import "testing"

// TestBlockMoveRoundTrip builds a tiny program directly in the
// application heap: MOVEA.L #P,A0; MOVEA.L #(P+32),A1; MOVEQ #16,D0;
// _BlockMove ($A02E). Running it moves 16 bytes and returns to the
// instruction following the trap.
func TestBlockMoveRoundTrip(t *testing.T) {
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)
	resources := NewResourceManager(mem, nil, nil)
	segments := NewSegmentLoader(mm, mem, resources)

	core := NewReferenceCore(mm)
	host := NewCPUHost(core, mm)

	events := NewEventQueue()
	screen := NewBitmapImage(32, 32)
	port := NewPortManager(screen)
	windows := NewWindowManager(port, screen, events)
	menus := NewMenuManager(screen, events)
	dialogs := NewDialogManager(windows, events, screen)
	dispatcher := NewTrapDispatcher(host, mm, mem, resources, segments, events, windows, menus, dialogs, port, screen)
	host.RegisterATrapHandler(dispatcher.HandleATrap)
	dispatcher.InstallExitRoutine(uint32(mm.ApplHeapEnd() - 8))

	prog, err := mem.Allocate(16)
	if err != nil {
		t.Fatalf("Allocate(prog): %v", err)
	}
	p, err := mem.Allocate(48)
	if err != nil {
		t.Fatalf("Allocate(P): %v", err)
	}

	for i := 0; i < 16; i++ {
		if err := mm.WriteUint8(p+i, byte(i)); err != nil {
			t.Fatalf("seed byte %d: %v", i, err)
		}
	}

	writeU16 := func(addr int, v uint16) {
		if err := mm.WriteUint16(addr, v); err != nil {
			t.Fatalf("WriteUint16(%#x): %v", addr, err)
		}
	}
	writeU32 := func(addr int, v uint32) {
		if err := mm.WriteUint32(addr, v); err != nil {
			t.Fatalf("WriteUint32(%#x): %v", addr, err)
		}
	}

	writeU16(prog+0, 0x207C)     // MOVEA.L #P,A0
	writeU32(prog+2, uint32(p))
	writeU16(prog+6, 0x227C)     // MOVEA.L #(P+32),A1
	writeU32(prog+8, uint32(p+32))
	writeU16(prog+12, 0x7010)   // MOVEQ #16,D0
	writeU16(prog+14, 0xA02E)   // _BlockMove

	host.Boot(uint32(prog))

	if err := host.RunTimeslice(20); err != nil {
		t.Fatalf("RunTimeslice (to trap): %v", err)
	}
	if err := host.RunTimeslice(20); err != nil {
		t.Fatalf("RunTimeslice (exit routine): %v", err)
	}

	for i := 0; i < 16; i++ {
		got, err := mm.ReadUint8(p + 32 + i)
		if err != nil {
			t.Fatalf("ReadUint8(dest+%d): %v", i, err)
		}
		if got != byte(i) {
			t.Fatalf("dest byte %d = %d, want %d", i, got, i)
		}
	}
	if d0 := host.Reg(RegD0); d0 != 0 {
		t.Fatalf("D0 = %#x, want 0 (noErr)", d0)
	}
	if pc := host.PC(); pc != uint32(prog+16) {
		t.Fatalf("PC = %#x, want %#x (instruction after the trap)", pc, prog+16)
	}
}
