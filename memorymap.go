// memorymap.go - the fixed 512 KiB address space layout and access policy.
//
// Grounded on emu/memory/memory_map.{h,cc} (the canonical, policy-
// enforcing implementation — the parallel core/ and legacy top-level
// memory_map files are superseded by it).

package main

import "fmt"

// Fixed region boundaries, low to high.
const (
	addrIVTStart            = 0x0000
	addrIVTEnd              = 0x0100
	addrLowGlobalsStart     = 0x0100
	addrLowGlobalsEnd       = 0x0400
	addrSystemTrapTableStart = 0x0400
	addrSystemTrapTableEnd   = 0x0800
	addrHighGlobalsStart    = 0x0800
	addrHighGlobalsEnd      = 0x0C00
	addrToolboxTrapTableStart = 0x0C00
	addrToolboxTrapTableEnd   = 0x1C00
	addrSystemHeapStart     = 0x1C00
	addrSystemHeapEnd       = 0x2C00
	addrApplHeapStart       = 0x2C00

	defaultStackSize = 4 * 1024
	reservedTailSize = 32 * 1024

	systemTrapTableSlots  = 256
	toolboxTrapTableSlots = 1024

	opcodeRTS = 0x4E75
)

// MemoryMap owns the single 512 KiB address space and classifies every
// access against the fixed layout above.
type MemoryMap struct {
	root MemoryRegion
	size int

	stackEnd   int // end of application heap / start of stack
	stackStart int // end of stack / start of below-A5 globals
	a5World    int
	aboveA5End int

	restricted []restrictedRange
	uninitWarned map[int]bool
}

type restrictedRange struct {
	start, end int
	fields     []fieldRange
	unprotected bool
}

type fieldRange struct {
	offset, size int
	name         string
}

// lowMemoryGlobalWhitelist is the set of named low-memory globals that
// may be read/written directly; anything else in the globals ranges is
// fatal.
var lowMemoryGlobalWhitelist = map[int]string{
	0x0124: "CurrentA5",
	0x0910: "CurApName",
	0x016A: "Ticks",
	0x026A: "MinusOne",
	0x0A5A: "ResLoad",
	0x0910 + 32: "AppParmHandle",
}

// NewMemoryMap builds the address space with the given total size
// (default 512 KiB) and stack size (default 4 KiB).
func NewMemoryMap(size, stackSize int) *MemoryMap {
	if size <= 0 {
		size = 512 * 1024
	}
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	root := NewRootRegion("system-memory", size)
	m := &MemoryMap{
		root:         root,
		size:         size,
		stackStart:   size - reservedTailSize,
		uninitWarned: map[int]bool{},
	}
	m.stackEnd = m.stackStart - stackSize
	return m
}

// Root returns the root region backing the whole address space.
func (m *MemoryMap) Root() MemoryRegion { return m.root }

// ApplHeapEnd returns the address just past the application heap.
func (m *MemoryMap) ApplHeapEnd() int { return m.stackEnd }

// StackStart returns the initial stack pointer value (top of stack,
// growing down).
func (m *MemoryMap) StackStart() int { return m.stackStart }

// SetA5World records the resolved A5-world layout once the Segment
// Loader computes it at boot.
func (m *MemoryMap) SetA5World(a5World, aboveA5End int) {
	m.a5World = a5World
	m.aboveA5End = aboveA5End
}

// A5World returns the configured A5-world base address.
func (m *MemoryMap) A5World() int { return m.a5World }

// AboveA5End returns the address just past the above-A5 jump table,
// where the trap manager's stub code (trap stubs / exit routine /
// entry word) is planted once boot resolves the A5-world layout.
func (m *MemoryMap) AboveA5End() int { return m.aboveA5End }

// classify returns nil if access is allowed, an error if it must fail,
// and logs a warning itself for allow-with-warning cases.
func (m *MemoryMap) classify(addr, size int, write bool) error {
	if addr < 0 || addr+size > m.size {
		return structuralErr("address %#x (+%d) is outside the %#x byte address space", addr, size, m.size)
	}

	if rng, field, ok := m.restrictedMatch(addr, size); ok {
		if field == nil && !rng.unprotected {
			return policyErr("access to restricted range [%#x,%#x) outside named fields", rng.start, rng.end)
		}
		if field == nil && rng.unprotected {
			fmt.Printf("[memmap] warning: unprotected access in restricted range [%#x,%#x) at %#x\n", rng.start, rng.end, addr)
		}
		return nil
	}

	switch {
	case addr < addrIVTEnd:
		if write {
			return policyErr("write to read-only IVT at %#x", addr)
		}
		return nil

	case addr < addrLowGlobalsEnd, addr >= addrHighGlobalsStart && addr < addrHighGlobalsEnd:
		if _, ok := lowMemoryGlobalWhitelist[addr]; ok {
			return nil
		}
		return policyErr("access to non-whitelisted global at %#x", addr)

	case addr < addrSystemTrapTableEnd, addr >= addrToolboxTrapTableStart && addr < addrToolboxTrapTableEnd:
		return policyErr("direct access to trap table at %#x (must go through trap table API)", addr)

	case addr < addrSystemHeapEnd:
		return nil // system heap: allowed

	case addr < m.stackEnd:
		// application heap
		if !write && !m.initialized(addr, size) {
			m.warnUninitOnce(addr, "application heap")
		}
		return nil

	case addr < m.stackStart:
		return nil // stack

	case m.a5World != 0 && addr < m.a5World:
		return nil // below-A5 application globals

	case m.a5World != 0 && addr < m.a5World+32:
		fmt.Printf("[memmap] warning: access to application parameters at %#x\n", addr)
		return nil

	case m.a5World != 0 && addr < m.aboveA5End:
		return nil // above-A5 (jump table, etc.)

	default:
		return nil
	}
}

func (m *MemoryMap) initialized(addr, size int) bool {
	// Tracking is best-effort: a per-page "has been written" watcher
	// would be a straightforward extension; for now every application
	// heap read is checked against the same warned-once cache so a
	// long-running program doesn't flood the log.
	return m.uninitWarned[addr]
}

func (m *MemoryMap) warnUninitOnce(addr int, label string) {
	if m.uninitWarned[addr] {
		return
	}
	m.uninitWarned[addr] = true
	fmt.Printf("[memmap] warning: read of possibly-uninitialized %s byte at %#x\n", label, addr)
}

func (m *MemoryMap) restrictedMatch(addr, size int) (restrictedRange, *fieldRange, bool) {
	for _, rng := range m.restricted {
		if addr >= rng.start && addr+size <= rng.end {
			for i := range rng.fields {
				f := rng.fields[i]
				if addr >= rng.start+f.offset && addr+size <= rng.start+f.offset+f.size {
					return rng, &rng.fields[i], true
				}
			}
			return rng, nil, true
		}
	}
	return restrictedRange{}, nil, false
}

// InstallRestrictedFields marks [start,end) so that only the named
// fields may be touched; any other access in the range is fatal unless
// unprotected is true, in which case it is logged instead. Used by
// InitGraf for QDGlobals.
func (m *MemoryMap) InstallRestrictedFields(start, end int, unprotected bool, fields map[string][2]int) {
	rng := restrictedRange{start: start, end: end, unprotected: unprotected}
	for name, off := range fields {
		rng.fields = append(rng.fields, fieldRange{offset: off[0], size: off[1], name: name})
	}
	m.restricted = append(m.restricted, rng)
}

// ReadUint8 reads a byte through the access policy.
func (m *MemoryMap) ReadUint8(addr int) (uint8, error) {
	if err := m.classify(addr, 1, false); err != nil {
		return 0, err
	}
	return m.root.ReadUint8(addr)
}

// ReadUint16 reads a word through the access policy.
func (m *MemoryMap) ReadUint16(addr int) (uint16, error) {
	if err := m.classify(addr, 2, false); err != nil {
		return 0, err
	}
	return m.root.ReadUint16(addr)
}

// ReadUint32 reads a longword through the access policy.
func (m *MemoryMap) ReadUint32(addr int) (uint32, error) {
	if err := m.classify(addr, 4, false); err != nil {
		return 0, err
	}
	return m.root.ReadUint32(addr)
}

// WriteUint8 writes a byte through the access policy.
func (m *MemoryMap) WriteUint8(addr int, v uint8) error {
	if err := m.classify(addr, 1, true); err != nil {
		return err
	}
	return m.root.WriteUint8(addr, v)
}

// WriteUint16 writes a word through the access policy.
func (m *MemoryMap) WriteUint16(addr int, v uint16) error {
	if err := m.classify(addr, 2, true); err != nil {
		return err
	}
	return m.root.WriteUint16(addr, v)
}

// WriteUint32 writes a longword through the access policy.
func (m *MemoryMap) WriteUint32(addr int, v uint32) error {
	if err := m.classify(addr, 4, true); err != nil {
		return err
	}
	return m.root.WriteUint32(addr, v)
}

// trapTableSlotAddr returns the address of the stub word for the given
// trap index in the given table.
func (m *MemoryMap) trapTableSlotAddr(toolbox bool, index int) int {
	if toolbox {
		return addrToolboxTrapTableStart + index*2
	}
	return addrSystemTrapTableStart + index*2
}

// InitTrapTables fills both trap tables with RTS stubs.
func (m *MemoryMap) InitTrapTables() error {
	for i := 0; i < systemTrapTableSlots; i++ {
		if err := m.root.WriteUint16(m.trapTableSlotAddr(false, i), opcodeRTS); err != nil {
			return err
		}
	}
	for i := 0; i < toolboxTrapTableSlots; i++ {
		if err := m.root.WriteUint16(m.trapTableSlotAddr(true, i), opcodeRTS); err != nil {
			return err
		}
	}
	return nil
}
