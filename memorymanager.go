// memorymanager.go - bump allocator + handle table over the application heap.
//
// Grounded on emu/memory/memory_manager.{h,cc}.

package main

import "fmt"

// handleMeta is the side-map entry recording a handle's block extent
// and tag. The word stored at the handle address itself always equals
// Start; this struct tracks the rest.
type handleMeta struct {
	start, end int
	size       int
	tag        string
	freed      bool
}

// MemoryManager is a non-moving bump allocator inside the application
// heap, plus the handle table built on top of it.
type MemoryManager struct {
	mm *MemoryMap

	heapHandleOffset int // start of the handle-pointer-table region
	handleTableEnd   int // handle cursor upper bound
	handleCursor     int // next free handle slot, absolute address
	blockCursor      int // next free block byte, absolute address
	heapEnd          int

	handles map[int]*handleMeta
	order   []int // insertion order, for GetHandleThatContains's linear scan
}

// defaultHandleTableBytes mirrors the original's kHeapHandleOffset: the
// first 4096 bytes of the application heap are reserved for the handle
// pointer table.
const defaultHandleTableBytes = 4096

// NewMemoryManager creates a MemoryManager operating on mm's application
// heap region [addrApplHeapStart, mm.ApplHeapEnd()).
func NewMemoryManager(mm *MemoryMap) *MemoryManager {
	return &MemoryManager{
		mm:               mm,
		heapHandleOffset: addrApplHeapStart,
		handleTableEnd:   addrApplHeapStart + defaultHandleTableBytes,
		handleCursor:     addrApplHeapStart,
		blockCursor:      addrApplHeapStart + defaultHandleTableBytes,
		heapEnd:          mm.ApplHeapEnd(),
		handles:          map[int]*handleMeta{},
	}
}

// Allocate bumps the block cursor and returns a raw pointer to size
// fresh bytes, with no handle wrapper.
func (m *MemoryManager) Allocate(size int) (int, error) {
	if m.blockCursor+size > m.heapEnd {
		return 0, &CyderError{Kind: ErrOSReportable, Msg: "application heap exhausted"}
	}
	ptr := m.blockCursor
	m.blockCursor += size
	return ptr, nil
}

// AllocateHandle bumps both cursors: a handle slot in the handle table
// and a block in the block region, then writes the handle word so it
// equals the block's start.
func (m *MemoryManager) AllocateHandle(size int, tag string) (int, error) {
	if m.handleCursor+4 > m.handleTableEnd {
		return 0, &CyderError{Kind: ErrOSReportable, Msg: "handle table exhausted"}
	}
	block, err := m.Allocate(size)
	if err != nil {
		return 0, err
	}
	handle := m.handleCursor
	m.handleCursor += 4
	if err := m.mm.WriteUint32(handle, uint32(block)); err != nil {
		return 0, err
	}
	m.handles[handle] = &handleMeta{start: block, end: block + size, size: size, tag: tag}
	m.order = append(m.order, handle)
	return handle, nil
}

// AllocateHandleFor allocates a handle sized to len(data) and copies
// data into the backing block.
func (m *MemoryManager) AllocateHandleFor(data []byte, tag string) (int, error) {
	h, err := m.AllocateHandle(len(data), tag)
	if err != nil {
		return 0, err
	}
	region, err := m.RegionFor(h)
	if err != nil {
		return 0, err
	}
	if err := region.WriteBytes(0, data); err != nil {
		return 0, err
	}
	return h, nil
}

// GetPtrForHandle re-reads the handle word and verifies it still
// equals the recorded block start.
func (m *MemoryManager) GetPtrForHandle(handle int) (int, error) {
	meta, ok := m.handles[handle]
	if !ok || meta.freed {
		return 0, structuralErr("handle %#x is not live", handle)
	}
	word, err := m.mm.ReadUint32(handle)
	if err != nil {
		return 0, err
	}
	if int(word) != meta.start {
		return 0, structuralErr("handle %#x word %#x does not match recorded start %#x", handle, word, meta.start)
	}
	return meta.start, nil
}

// RegionFor returns a MemoryRegion view over the handle's backing block.
func (m *MemoryManager) RegionFor(handle int) (MemoryRegion, error) {
	meta, ok := m.handles[handle]
	if !ok || meta.freed {
		return MemoryRegion{}, structuralErr("handle %#x is not live", handle)
	}
	return m.mm.root.NewSubRegion(fmt.Sprintf("handle-%#x", handle), meta.start, meta.size)
}

// GetSize returns the size in bytes of the handle's backing block.
func (m *MemoryManager) GetSize(handle int) (int, error) {
	meta, ok := m.handles[handle]
	if !ok || meta.freed {
		return 0, structuralErr("handle %#x is not live", handle)
	}
	return meta.size, nil
}

// Tag returns the allocation tag a handle was created with.
func (m *MemoryManager) Tag(handle int) (string, error) {
	meta, ok := m.handles[handle]
	if !ok || meta.freed {
		return "", structuralErr("handle %#x is not live", handle)
	}
	return meta.tag, nil
}

// Contains returns the handle whose block contains address, or 0 if
// none does. A linear scan over the handle table, matching
// GetHandleThatContains in emu/memory/memory_manager.cc (see DESIGN.md).
func (m *MemoryManager) Contains(address int) int {
	for _, h := range m.order {
		meta := m.handles[h]
		if meta.freed {
			continue
		}
		if address >= meta.start && address < meta.end {
			return h
		}
	}
	return 0
}

// Deallocate marks a handle's metadata absent. The original never
// compacts or frees the underlying bytes; this just marks the side-map
// entry freed so Contains/GetSize/GetPtrForHandle stop resolving it.
func (m *MemoryManager) Deallocate(handle int) error {
	meta, ok := m.handles[handle]
	if !ok {
		return structuralErr("handle %#x is not live", handle)
	}
	meta.freed = true
	return nil
}

// SetApplLimit lowers the allocator's heap end to lastAddr, failing if
// lastAddr is beyond the current heap end. No ApplLimit low-memory
// global is written.
func (m *MemoryManager) SetApplLimit(lastAddr int) error {
	if lastAddr > m.heapEnd {
		return structuralErr("ApplLimit %#x is beyond heap end %#x", lastAddr, m.heapEnd)
	}
	m.heapEnd = lastAddr
	return nil
}

// FreeMemorySize returns the number of bytes remaining for block
// allocation before the heap is exhausted.
func (m *MemoryManager) FreeMemorySize() int {
	if m.blockCursor >= m.heapEnd {
		return 0
	}
	return m.heapEnd - m.blockCursor
}

// ReadRecord reads a Record-shaped value out of a handle's backing block.
func ReadRecord[T Record](m *MemoryManager, handle int) (T, error) {
	var v T
	region, err := m.RegionFor(handle)
	if err != nil {
		return v, err
	}
	if err := v.ReadFrom(region, 0); err != nil {
		return v, err
	}
	return v, nil
}

// WriteRecord writes a Record-shaped value into a handle's backing block.
func WriteRecord(m *MemoryManager, handle int, v Record) error {
	region, err := m.RegionFor(handle)
	if err != nil {
		return err
	}
	return v.WriteTo(region, 0)
}

// NewHandleFor allocates a handle sized to v's fixed size and writes v
// into it.
func NewHandleFor(m *MemoryManager, v Record, tag string) (int, error) {
	h, err := m.AllocateHandle(v.FixedSize(), tag)
	if err != nil {
		return 0, err
	}
	if err := WriteRecord(m, h, v); err != nil {
		return 0, err
	}
	return h, nil
}
