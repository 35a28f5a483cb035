// segmentloader_test.go - the segment-load jump-table property and a
// load-and-run-trivial round trip.

package main

import "encoding/binary"

// buildTestResourceFork assembles a minimal raw (unwrapped) resource
// fork containing only CODE resources with sequential ids starting at
// 0, matching the on-disk layout resourcefile.go parses: a 16-byte
// header, a data block of [size,bytes] records, and a map block with a
// single type-list entry and one reference entry per resource.
func buildTestResourceFork(codeResources [][]byte) []byte {
	var data []byte
	relOffsets := make([]int, len(codeResources))
	for i, d := range codeResources {
		relOffsets[i] = len(data)
		sizeBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(sizeBuf, uint32(len(d)))
		data = append(data, sizeBuf...)
		data = append(data, d...)
	}

	const mapPreambleSize = 16 + 4 + 2 + 2 // 24
	const typeListOffset = mapPreambleSize + 6 // 30: past offset/nameOffset/count fields
	const refListOffset = 10 // typeListStart+2(count)+8(one type entry) == typeListStart+10

	var m []byte
	putU16 := func(v uint16) {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, v)
		m = append(m, b...)
	}
	putU32 := func(v uint32) {
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, v)
		m = append(m, b...)
	}

	m = append(m, make([]byte, 16)...) // header copy
	m = append(m, make([]byte, 4)...)  // reserved handle
	m = append(m, make([]byte, 2)...)  // reserved refnum
	m = append(m, make([]byte, 2)...)  // file attrs
	putU16(typeListOffset)
	putU16(0) // nameListOffset, unused (no named resources)
	putU16(0) // typeCountMinusOne: one type ("CODE")

	putU16(0) // type list's own count-1 field
	m = append(m, []byte("CODE")...)
	putU16(uint16(len(codeResources) - 1))
	putU16(refListOffset)

	for i, off := range relOffsets {
		putU16(uint16(i))  // id
		putU16(0xFFFF)     // nameOffset: none
		putU32(uint32(off)) // attrAndOffset: attrs=0, data-relative offset
		putU32(0)            // reserved handle
	}

	header := make([]byte, 16)
	binary.BigEndian.PutUint32(header[0:], 16)
	binary.BigEndian.PutUint32(header[4:], uint32(16+len(data)))
	binary.BigEndian.PutUint32(header[8:], uint32(len(data)))
	binary.BigEndian.PutUint32(header[12:], uint32(len(m)))

	out := append([]byte{}, header...)
	out = append(out, data...)
	out = append(out, m...)
	return out
}

// buildSegment0 constructs a CODE 0 resource declaring the given
// above/below-A5 sizes and a single jump-table entry (routine offset 0,
// belonging to whichever segment Load() first patches).
func buildSegment0(aboveA5, belowA5, tableSize uint32) []byte {
	buf := make([]byte, 32+tableSize)
	binary.BigEndian.PutUint32(buf[0:], aboveA5)
	binary.BigEndian.PutUint32(buf[4:], belowA5)
	binary.BigEndian.PutUint32(buf[8:], tableSize)
	binary.BigEndian.PutUint32(buf[12:], 32) // TableOffset, near-model
	return buf
}

func wireBoot(t interface{ Fatalf(string, ...any) }, raw []byte) (*CPUHost, *TrapDispatcher) {
	appFile, err := ParseResourceFile(raw)
	if err != nil {
		t.Fatalf("ParseResourceFile: %v", err)
	}

	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)
	resources := NewResourceManager(mem, appFile, nil)
	segments := NewSegmentLoader(mm, mem, resources)

	initialPC, err := segments.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}

	core := NewReferenceCore(mm)
	host := NewCPUHost(core, mm)
	host.Boot(uint32(initialPC))

	events := NewEventQueue()
	screen := NewBitmapImage(32, 32)
	port := NewPortManager(screen)
	windows := NewWindowManager(port, screen, events)
	menus := NewMenuManager(screen, events)
	dialogs := NewDialogManager(windows, events, screen)
	dispatcher := NewTrapDispatcher(host, mm, mem, resources, segments, events, windows, menus, dialogs, port, screen)
	host.RegisterATrapHandler(dispatcher.HandleATrap)
	dispatcher.InstallExitRoutine(uint32(mm.AboveA5End()))

	return host, dispatcher
}

// TestLoadAndRunTrivial: a resource file with CODE 0 declaring
// above_a5/below_a5=0x100, table_size=8, one jump-table entry pointing
// to CODE 1 offset 0, CODE 1 containing A9F4 (_ExitToShell). Booting
// and running one timeslice requests exit.
func TestLoadAndRunTrivial(t *testing.T) {
	code0 := buildSegment0(0x100, 0x100, 8)
	code1 := []byte{0x00, 0x00, 0x00, 0x01, 0xA9, 0xF4}
	raw := buildTestResourceFork([][]byte{code0, code1})

	host, dispatcher := wireBoot(t, raw)

	if err := host.RunTimeslice(20); err != nil {
		t.Fatalf("RunTimeslice: %v", err)
	}
	if !dispatcher.QuitRequested() {
		t.Fatal("ExitToShell ran but QuitRequested() is false")
	}
}

// TestSegmentLoadJumpTableEntries: after load(1), every jump-table
// entry for segment 1 reads (id, 0x4EF9, some-address-in-heap)
// big-endian.
func TestSegmentLoadJumpTableEntries(t *testing.T) {
	code0 := buildSegment0(0x100, 0x100, 8)
	code1 := []byte{0x00, 0x00, 0x00, 0x01, 0xA9, 0xF4}
	raw := buildTestResourceFork([][]byte{code0, code1})

	appFile, err := ParseResourceFile(raw)
	if err != nil {
		t.Fatalf("ParseResourceFile: %v", err)
	}
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)
	resources := NewResourceManager(mem, appFile, nil)
	segments := NewSegmentLoader(mm, mem, resources)

	if _, err := segments.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	var entry SegmentTableEntry
	if err := entry.ReadFrom(segments.jumpTableRegion, 0); err != nil {
		t.Fatalf("ReadFrom jump table entry 0: %v", err)
	}
	if entry.SegmentID != 1 {
		t.Fatalf("SegmentID = %d, want 1", entry.SegmentID)
	}
	if entry.JMPOpcode != jmpAbsoluteOpcode {
		t.Fatalf("JMPOpcode = %#04x, want %#04x", entry.JMPOpcode, jmpAbsoluteOpcode)
	}
	heapStart := uint32(addrApplHeapStart)
	heapEnd := uint32(mm.ApplHeapEnd())
	if entry.Address < heapStart || entry.Address >= heapEnd {
		t.Fatalf("Address %#x is not within the heap [%#x,%#x)", entry.Address, heapStart, heapEnd)
	}
}
