// segmentloader.go - CODE 0 parse, A5-world setup, jump-table patching.
//
// Grounded on emu/segment_loader.{h,cc}.

package main

import "fmt"

const (
	farModelSentinel  = 0xFFFF
	nearModelHeaderSize = 4
	farModelHeaderSize  = 0x28

	// segmentTableOffset is always 32 for a near-model application
	// per emu/segment_loader.cc.
	segmentTableOffset = 32
)

// SegmentLoader parses CODE resources and installs absolute jump
// entries into the above-A5 jump table.
type SegmentLoader struct {
	mm  *MemoryMap
	mem *MemoryManager
	rm  *ResourceManager

	jumpTableRegion MemoryRegion
	jumpTableBase   int // absolute address of the jump table (above A5)
	entrySize       int
}

// NewSegmentLoader constructs a SegmentLoader over the given managers.
func NewSegmentLoader(mm *MemoryMap, mem *MemoryManager, rm *ResourceManager) *SegmentLoader {
	return &SegmentLoader{mm: mm, mem: mem, rm: rm}
}

// Boot parses CODE 0, configures the A5-world bounds, copies the
// jump-table bytes into the above-A5 region, and writes the
// app-parameters structure below A5. Returns the initial PC (the
// absolute address that segment 1's first jump-table entry now jumps
// to, as returned by Load(1)).
func (s *SegmentLoader) Boot() (initialPC int, err error) {
	code0 := s.rm.GetResource("CODE", 0)
	if code0 == 0 {
		return 0, structuralErr("CODE 0 resource not found")
	}
	region, err := s.mem.RegionFor(code0)
	if err != nil {
		return 0, err
	}

	var header SegmentTableHeader
	if err := header.ReadFrom(region, 0); err != nil {
		return 0, err
	}
	if header.TableOffset != segmentTableOffset {
		fmt.Printf("[segloader] warning: CODE 0 table_offset %#x differs from expected %#x\n", header.TableOffset, segmentTableOffset)
	}

	applHeapEnd := s.mm.ApplHeapEnd()
	a5World := applHeapEnd - int(header.BelowA5)
	aboveA5End := a5World + int(header.AboveA5)
	s.mm.SetA5World(a5World, aboveA5End)

	s.jumpTableBase = a5World + int(header.TableOffset)
	s.entrySize = 8
	jumpTableRegion, err := s.mm.root.NewSubRegion("jump-table", s.jumpTableBase, int(header.TableSize))
	if err != nil {
		return 0, err
	}
	s.jumpTableRegion = jumpTableRegion

	tableBytes, err := region.ReadBytes(int(header.TableOffset), int(header.TableSize))
	if err != nil {
		return 0, err
	}
	if err := jumpTableRegion.WriteBytes(0, tableBytes); err != nil {
		return 0, err
	}

	params := AppParameters{StdInRefNum: 0, StdOutRefNum: 0, FinderInfo: 0}
	paramsAddr := a5World - params.FixedSize()
	if err := params.WriteTo(s.mm.root, paramsAddr); err != nil {
		return 0, err
	}

	return s.Load(1)
}

// Load fetches CODE segmentID, determines its header size (near-model
// only; far-model is detected and rejected), and patches every
// jump-table entry belonging to this segment to JMP directly into the
// heap-resident copy of the segment. Iterates the entries in reverse,
// per emu/segment_loader.cc, returning the address resolved for the
// first (index 0) entry.
func (s *SegmentLoader) Load(segmentID uint16) (int, error) {
	handle := s.rm.GetResource("CODE", int16(segmentID))
	if handle == 0 {
		return 0, structuralErr("CODE %d resource not found", segmentID)
	}
	region, err := s.mem.RegionFor(handle)
	if err != nil {
		return 0, err
	}
	baseAddr, err := s.mem.GetPtrForHandle(handle)
	if err != nil {
		return 0, err
	}

	firstWord, err := region.ReadUint16(0)
	if err != nil {
		return 0, err
	}

	headerSize := nearModelHeaderSize
	var tableEntryOffset, entryCount int
	if firstWord == farModelSentinel {
		return 0, structuralErr("far-model CODE segments are unsupported")
	}
	tableEntryOffset = int(firstWord)
	secondWord, err := region.ReadUint16(2)
	if err != nil {
		return 0, err
	}
	entryCount = int(secondWord)
	headerSize = nearModelHeaderSize
	_ = farModelHeaderSize

	var lastAddr int
	for i := entryCount - 1; i >= 0; i-- {
		entryAddr := s.jumpTableBase + tableEntryOffset + i*s.entrySize
		var oldEntry SegmentTableEntry
		if err := oldEntry.ReadFrom(s.jumpTableRegion, tableEntryOffset+i*s.entrySize); err != nil {
			return 0, err
		}
		routineOffset := int(oldEntry.Address)
		absoluteAddr := baseAddr + headerSize + routineOffset

		newEntry := SegmentTableEntry{
			SegmentID: segmentID,
			JMPOpcode: jmpAbsoluteOpcode,
			Address:   uint32(absoluteAddr),
		}
		if err := newEntry.WriteTo(s.jumpTableRegion, tableEntryOffset+i*s.entrySize); err != nil {
			return 0, err
		}
		_ = entryAddr
		lastAddr = absoluteAddr
	}
	return lastAddr, nil
}

// HandleLoadSegTrap loads the segment and reports that the CPU's PC
// must be rewound by 6 bytes so the freshly patched jump-table entry (a
// 6-byte JMP) is re-executed instead of falling through past it. No
// _LoadSeg trap handler is registered, so nothing calls it.
func (s *SegmentLoader) HandleLoadSegTrap(segmentID uint16) (pcRewind int, err error) {
	if _, err := s.Load(segmentID); err != nil {
		return 0, err
	}
	return 6, nil
}
