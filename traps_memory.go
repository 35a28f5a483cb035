// traps_memory.go - Memory Manager Toolbox/OS traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's memory-trap cluster and
// emu/memory/memory_manager.{h,cc}.

package main

// registerMemoryTraps installs the Memory Manager trap cluster:
// BlockMove, NewPtr/NewHandle family, handle-state queries the
// non-moving manager answers trivially, and ApplLimit/FreeMem
// accounting.
func registerMemoryTraps(d *TrapDispatcher) {
	d.RegisterSystem(0x2E, "BlockMove", trapBlockMove) // $A02E
	d.RegisterSystem(0x1E, "NewPtr", trapNewPtr)
	d.RegisterSystem(0x1F, "NewHandle", trapNewHandle)
	d.RegisterSystem(0x25, "GetHandleSize", trapGetHandleSize)
	d.RegisterSystem(0x29, "HLock", trapHLock)
	d.RegisterSystem(0x2A, "HUnlock", trapHUnlock)
	d.RegisterSystem(0x31, "HPurge", trapHPurge)
	d.RegisterSystem(0x32, "HNoPurge", trapHNoPurge)
	d.RegisterSystem(0x33, "SetApplLimit", trapSetApplLimit)
	d.RegisterSystem(0x41, "FreeMem", trapFreeMem)
}

// trapBlockMove copies Count bytes from SourcePtr to DestPtr, both
// register arguments per the OS-trap convention (A0=source, A1=dest,
// D0=count), going straight through the policy-enforcing MemoryMap so
// a restricted-range violation surfaces the same way a hand-written
// access would.
func trapBlockMove(d *TrapDispatcher) error {
	src := d.host.Reg(RegA0)
	dst := d.host.Reg(RegA1)
	count := d.host.Reg(RegD0)
	buf := make([]byte, count)
	for i := uint32(0); i < count; i++ {
		b, err := d.mm.ReadUint8(int(src + i))
		if err != nil {
			return err
		}
		buf[i] = b
	}
	for i, b := range buf {
		if err := d.mm.WriteUint8(int(dst)+i, b); err != nil {
			return err
		}
	}
	d.host.SetReg(RegD0, 0) // noErr
	return nil
}

// trapNewPtr pops a size and returns a raw, unhandled block (OS trap:
// size in D0, result pointer in A0).
func trapNewPtr(d *TrapDispatcher) error {
	size := d.host.Reg(RegD0)
	ptr, err := d.mem.Allocate(int(size))
	if err != nil {
		d.host.SetReg(RegA0, 0)
		d.host.SetReg(RegD0, uint32(int16(-108))) // memFullErr
		return nil
	}
	d.host.SetReg(RegA0, uint32(ptr))
	d.host.SetReg(RegD0, 0)
	return nil
}

// trapNewHandle pops a size (D0) and returns a handle (A0).
func trapNewHandle(d *TrapDispatcher) error {
	size := d.host.Reg(RegD0)
	h, err := d.mem.AllocateHandle(int(size), "NewHandle")
	if err != nil {
		d.host.SetReg(RegA0, 0)
		d.host.SetReg(RegD0, uint32(int16(-108)))
		return nil
	}
	d.host.SetReg(RegA0, uint32(h))
	d.host.SetReg(RegD0, 0)
	return nil
}

// trapGetHandleSize takes a handle in A0 and returns its size in D0.
func trapGetHandleSize(d *TrapDispatcher) error {
	h := int(d.host.Reg(RegA0))
	size, err := d.mem.GetSize(h)
	if err != nil {
		d.host.SetReg(RegD0, uint32(int16(-109))) // nilHandleErr
		return nil
	}
	d.host.SetReg(RegD0, uint32(size))
	return nil
}

// trapHLock/trapHUnlock/trapHPurge/trapHNoPurge are no-ops over the
// non-moving manager: a handle's word never changes once allocated,
// so locking has nothing to pin and purge state has nothing to evict.
// They still validate the handle is live, matching the real trap's
// nilHandleErr behavior.
func trapHLock(d *TrapDispatcher) error   { return checkLiveHandle(d) }
func trapHUnlock(d *TrapDispatcher) error { return checkLiveHandle(d) }
func trapHPurge(d *TrapDispatcher) error  { return checkLiveHandle(d) }
func trapHNoPurge(d *TrapDispatcher) error { return checkLiveHandle(d) }

func checkLiveHandle(d *TrapDispatcher) error {
	h := int(d.host.Reg(RegA0))
	if _, err := d.mem.GetPtrForHandle(h); err != nil {
		d.host.SetReg(RegD0, uint32(int16(-109)))
		return nil
	}
	d.host.SetReg(RegD0, 0)
	return nil
}

// trapSetApplLimit takes a new heap-end pointer in A0.
func trapSetApplLimit(d *TrapDispatcher) error {
	if err := d.mem.SetApplLimit(int(d.host.Reg(RegA0))); err != nil {
		d.host.SetReg(RegD0, uint32(int16(-108)))
		return nil
	}
	d.host.SetReg(RegD0, 0)
	return nil
}

// trapFreeMem returns the number of free bytes in D0.
func trapFreeMem(d *TrapDispatcher) error {
	d.host.SetReg(RegD0, uint32(d.mem.FreeMemorySize()))
	return nil
}
