// trapdispatcher.go - A-line opcode classify / entry / exit / patch table.
//
// Grounded on emu/trap/trap_manager.{h,cc}, emu/trap/trap_dispatcher.h,
// emu/trap/stack_helpers.h.
//
// Implementation note: the trap calling convention describes "push the
// return address to the stack" for both the direct-to-native-handler
// path and the patched-trap path uniformly. Only the
// patched path ever has that word consumed by real 68k execution (a
// patch routine's own RTS); the direct-native path is resolved by the
// dispatcher setting PC itself. So only the patched path performs a
// real stack push of the return address here — the direct path tracks
// it in a local and restores PC from that value, which keeps every
// trap handler's argument popping aligned with the real stack pointer
// instead of needing callers to skip a buried return-address word.
package main

import "fmt"

type trapHandlerFunc func(d *TrapDispatcher) error

// TrapDispatcher owns the classify/entry/exit state machine and the
// per-subsystem handler tables, plus the patch table user code (or a
// System file, see PatchTrapsFromSystemFile) can install over any trap.
type TrapDispatcher struct {
	host      *CPUHost
	mm        *MemoryMap
	mem       *MemoryManager
	resources *ResourceManager
	segments  *SegmentLoader
	events    *EventQueue
	windows   *WindowManager
	menus     *MenuManager
	dialogs   *DialogManager
	port      *PortManager
	screen    *BitmapImage

	// previousClipRegion mirrors emu/trap/trap_dispatcher.h's
	// previous_clip_region_; no trap implementation here reads or
	// writes it.
	previousClipRegion int

	exitRoutineAddr uint32
	pendingReturn   uint32
	patchTable      map[uint16]uint32

	// regions is the NewRgn/DisposeRgn side table: Region values have no
	// fixed wire layout of their own, so a RgnHandle is a
	// plain Memory Manager handle whose block is just the handle-table
	// slot identity — the Region value itself lives here, keyed by that
	// handle.
	regions    map[int]*Region
	nextRgnTag int

	lastButtonState bool
	lastMouseLoc    Point

	dialogIndex map[int]*DialogRecord
	paramText   [4]string

	scratchBuf *scratchFile

	toolboxHandlers map[int]trapHandlerFunc
	systemHandlers  map[int]trapHandlerFunc
	toolboxNames    map[int]string
	systemNames     map[int]string

	quitRequested bool
}

// NewTrapDispatcher wires a TrapDispatcher over the given managers.
func NewTrapDispatcher(host *CPUHost, mm *MemoryMap, mem *MemoryManager, resources *ResourceManager, segments *SegmentLoader, events *EventQueue, windows *WindowManager, menus *MenuManager, dialogs *DialogManager, port *PortManager, screen *BitmapImage) *TrapDispatcher {
	d := &TrapDispatcher{
		host: host, mm: mm, mem: mem, resources: resources, segments: segments,
		events: events, windows: windows, menus: menus, dialogs: dialogs,
		port: port, screen: screen,
		patchTable:      map[uint16]uint32{},
		regions:         map[int]*Region{},
		toolboxHandlers: map[int]trapHandlerFunc{},
		systemHandlers:  map[int]trapHandlerFunc{},
		toolboxNames:    map[int]string{},
		systemNames:     map[int]string{},
	}
	registerMemoryTraps(d)
	registerResourceTraps(d)
	registerQuickDrawTraps(d)
	registerEventTraps(d)
	registerWindowTraps(d)
	registerMenuTraps(d)
	registerDialogTraps(d)
	registerTextTraps(d)
	registerSystemTraps(d)
	registerFileTraps(d)
	return d
}

// RegisterToolbox installs the native handler for a Toolbox trap index.
func (d *TrapDispatcher) RegisterToolbox(index int, name string, fn trapHandlerFunc) {
	d.toolboxHandlers[index] = fn
	d.toolboxNames[index] = name
}

// RegisterSystem installs the native handler for an OS trap index.
func (d *TrapDispatcher) RegisterSystem(index int, name string, fn trapHandlerFunc) {
	d.systemHandlers[index] = fn
	d.systemNames[index] = name
}

// SetTrapAddress patches the stub word in the trap table for the given
// full opcode and additionally records the target in the patch table,
// so dispatch routes through it (emu/trap_manager.cc's SetTrapAddress).
func (d *TrapDispatcher) SetTrapAddress(trap uint16, address uint32) {
	d.patchTable[trap] = address
	slot := d.mm.trapTableSlotAddr(isToolbox(trap), extractIndex(trap))
	d.mm.root.WriteUint16(slot, jmpAbsoluteOpcode&0xFFFF) // jump-style stub; address itself is tracked out-of-band
	_ = address
}

// GetTrapAddress returns the address SetTrapAddress recorded for trap;
// a trap that was never patched reports (0, false).
func (d *TrapDispatcher) GetTrapAddress(trap uint16) (uint32, bool) {
	addr, ok := d.patchTable[trap]
	return addr, ok
}

// InstallExitRoutine plants the trap-manager exit routine (TST.W D0;
// <native trampoline>; RTS) at addr, and wires the CPU Host's
// native-function hook at the trampoline word.
func (d *TrapDispatcher) InstallExitRoutine(addr uint32) {
	d.exitRoutineAddr = addr
	d.mm.root.WriteUint16(int(addr), 0x4A40) // TST.W D0
	d.host.RegisterNativeAt(addr+2, func() {
		if err := d.performTrapExit(); err != nil {
			fmt.Printf("[trap] exit error: %v\n", err)
		}
	})
	d.mm.root.WriteUint16(int(addr+4), 0x4E75) // RTS, not normally reached
}

// HandleATrap is invoked by the CPU Host's A-line exception hook with
// the faulting opcode. It performs the full entry -> dispatch -> exit
// sequence.
func (d *TrapDispatcher) HandleATrap(opcode uint16) {
	if err := d.dispatch(opcode); err != nil {
		fmt.Printf("[trap] %#04x: %v\n", opcode, err)
	}
}

func (d *TrapDispatcher) dispatch(opcode uint16) error {
	toolbox := isToolbox(opcode)
	index := extractIndex(opcode)

	returnAddr := d.host.PC()
	if isAutoPopSet(opcode) {
		popped, err := popPtr(d)
		if err != nil {
			return err
		}
		returnAddr = uint32(popped)
	}

	if isSystemTrap(opcode) {
		if shouldSaveA0(opcode) {
			if err := pushStackInt(d, d.host.Reg(RegA0)); err != nil {
				return err
			}
		}
		if err := pushStackInt(d, d.host.Reg(RegA1)); err != nil {
			return err
		}
		if err := pushStackInt(d, d.host.Reg(RegD1)); err != nil {
			return err
		}
		if err := pushStackInt(d, d.host.Reg(RegD2)); err != nil {
			return err
		}
		d.host.SetReg(RegD1, uint32(opcode))
	}

	if patchAddr, ok := d.patchTable[opcode]; ok {
		// Chaining into emulated/patched code: a real return address
		// must be on the stack for the patch's own RTS to find.
		if isSystemTrap(opcode) {
			if err := pushStackInt(d, d.exitRoutineAddr); err != nil {
				return err
			}
		} else {
			if err := pushStackInt(d, returnAddr); err != nil {
				return err
			}
		}
		d.host.SetPC(patchAddr)
		return nil
	}

	handler, name := d.lookupHandler(toolbox, index)
	if handler == nil {
		return trapSurfaceErr(name)
	}
	if err := handler(d); err != nil {
		return err
	}

	if toolbox {
		d.host.SetPC(returnAddr)
	} else {
		d.host.SetPC(d.exitRoutineAddr)
		d.pendingReturn = returnAddr
	}
	return nil
}

func (d *TrapDispatcher) lookupHandler(toolbox bool, index int) (trapHandlerFunc, string) {
	if toolbox {
		if h, ok := d.toolboxHandlers[index]; ok {
			return h, d.toolboxNames[index]
		}
		return nil, fmt.Sprintf("Toolbox[%d]", index)
	}
	if h, ok := d.systemHandlers[index]; ok {
		return h, d.systemNames[index]
	}
	return nil, fmt.Sprintf("OS[%d]", index)
}

// performTrapExit runs inside the exit routine (after TST.W D0): pops
// D2, D1, A1, optionally A0 (by inspecting the opcode bits stashed in
// D1 at entry), then resumes at the return address recorded by dispatch.
func (d *TrapDispatcher) performTrapExit() error {
	opcode := uint16(d.host.Reg(RegD1))

	d2, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	d.host.SetReg(RegD2, d2)

	d1, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	d.host.SetReg(RegD1, d1)

	a1, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	d.host.SetReg(RegA1, a1)

	if shouldSaveA0(opcode) {
		a0, err := popStackInt[uint32](d)
		if err != nil {
			return err
		}
		d.host.SetReg(RegA0, a0)
	}

	d.host.SetPC(d.pendingReturn)
	return nil
}

// PatchTrapsFromSystemFile patches PACK traps sourced from a Mac OS
// "System" resource file into the trap table (emu/trap/trap_manager.h's
// PatchTrapsFromSystemFile).
func (d *TrapDispatcher) PatchTrapsFromSystemFile(system *ResourceFile) {
	for _, res := range system.GroupByType("PACK") {
		trap := uint16(0xA800 | (res.ID & 0x00FF))
		handle, err := d.mem.AllocateHandleFor(res.Data, "PACK")
		if err != nil {
			fmt.Printf("[trap] failed to patch PACK %d: %v\n", res.ID, err)
			continue
		}
		addr, err := d.mem.GetPtrForHandle(handle)
		if err != nil {
			continue
		}
		d.SetTrapAddress(trap, uint32(addr))
	}
}

// RequestQuit marks the dispatcher's quit flag; ExitToShell sets this
// instead of calling os.Exit directly so the host frame loop can wind
// down cooperatively.
func (d *TrapDispatcher) RequestQuit() { d.quitRequested = true }

// QuitRequested reports whether ExitToShell has been invoked.
func (d *TrapDispatcher) QuitRequested() bool { return d.quitRequested }
