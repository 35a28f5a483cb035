// traps_resource.go - Resource Manager Toolbox traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's resource-trap cluster and
// emu/rsrc/resource_manager.{h,cc}. Arguments are popped in reverse
// declaration order, matching Pascal's right-to-left push convention
// (the last-declared argument sits nearest the top of stack).

package main

func registerResourceTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x19A, "GetResource", trapGetResource)
	d.RegisterToolbox(0x2C6, "Get1NamedResource", trapGet1NamedResource)
	d.RegisterToolbox(0x1A0, "ReleaseResource", trapReleaseResource)
	d.RegisterToolbox(0x1A5, "SizeRsrc", trapSizeRsrc)
	d.RegisterToolbox(0x125, "GetResAttrs", trapGetResAttrs)
}

// trapGetResource: FUNCTION GetResource(theType: ResType; theID: INTEGER): Handle.
func trapGetResource(d *TrapDispatcher) error {
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	h := d.resources.GetResource(osTypeFromUint32(rawType), id)
	return trapReturn(d, uint32(h))
}

// trapGet1NamedResource: FUNCTION Get1NamedResource(theType: ResType; name: Str255): Handle.
// The name argument is a pointer to a Pascal string already materialized
// in the caller's stack frame; we read it back through the MemoryMap.
func trapGet1NamedResource(d *TrapDispatcher) error {
	namePtr, err := popPtr(d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	name, err := readPascalString(d.mm, namePtr)
	if err != nil {
		return err
	}
	h := d.resources.Get1NamedResource(osTypeFromUint32(rawType), name)
	return trapReturn(d, uint32(h))
}

// trapReleaseResource: PROCEDURE ReleaseResource(theResource: Handle).
// The manager tracks resources by (type,id) rather than raw handle, so
// this walks nothing further — callers that use ReleaseResource are
// expected to have looked the resource up through GetResource first,
// which is why the cache is keyed the same way on both sides.
func trapReleaseResource(d *TrapDispatcher) error {
	_, err := popPtr(d)
	return err
}

// trapSizeRsrc: FUNCTION SizeRsrc(theType: ResType; theID: INTEGER): LongInt.
func trapSizeRsrc(d *TrapDispatcher) error {
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	return trapReturn(d, uint32(d.resources.SizeRsrc(osTypeFromUint32(rawType), id)))
}

// trapGetResAttrs: FUNCTION GetResAttrs(theType: ResType; theID: INTEGER): INTEGER.
func trapGetResAttrs(d *TrapDispatcher) error {
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	return trapReturn(d, uint16(d.resources.GetResAttrs(osTypeFromUint32(rawType), id)))
}

// readPascalString reads a length-prefixed Pascal string (up to 255
// bytes) starting at addr.
func readPascalString(mm *MemoryMap, addr int) (string, error) {
	n, err := mm.ReadUint8(addr)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := 0; i < int(n); i++ {
		b, err := mm.ReadUint8(addr + 1 + i)
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}
