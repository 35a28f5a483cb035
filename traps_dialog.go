// traps_dialog.go - Dialog Manager Toolbox traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's dialog cluster and
// dialogmanager.go.

package main

func registerDialogTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x1FD+0x200, "GetNewDialog", trapGetNewDialog)
	d.RegisterToolbox(0x1AB, "GetDialogItem", trapGetDialogItemTrap)
	d.RegisterToolbox(0x1AC, "SetDialogItem", trapSetDialogItemTrap)
	d.RegisterToolbox(0x1A8, "ModalDialog", trapModalDialog)
	d.RegisterToolbox(0x1D4+0x200, "DisposeDialog", trapDisposeDialog)
	d.RegisterToolbox(0x1AF+0x200, "IsDialogEvent", trapIsDialogEvent)
	d.RegisterSystem(0x1A, "StopAlert", trapStopAlert)
	d.RegisterToolbox(0x1D7, "ParamText", trapParamText)
}

// dialogByHandle resolves a window Ptr back to the DialogRecord
// wrapping it; dialogs live in the same z-ordered window list as
// plain windows (window_kind = 2), so dialog identity is
// the same handle as its embedded WindowRecord.
func (d *TrapDispatcher) dialogByHandle(handle int) *DialogRecord {
	dr, ok := d.dialogIndex[handle]
	if !ok {
		return nil
	}
	return dr
}

// trapGetNewDialog: FUNCTION GetNewDialog(dialogID: INTEGER; dStorage:
// Ptr; behind: WindowPtr): DialogPtr. Pulls bounds/title from the DLOG
// resource and the item list from its companion DITL.
func trapGetNewDialog(d *TrapDispatcher) error {
	_, err := popPtr(d) // behind: unused, new dialogs always go frontmost
	if err != nil {
		return err
	}
	_, err = popPtr(d) // dStorage: unused, DialogRecords are heap-owned here
	if err != nil {
		return err
	}
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	dlogH := d.resources.GetResource("DLOG", id)
	if dlogH == 0 {
		return trapReturn(d, uint32(0))
	}
	dlogRegion, err := d.mem.RegionFor(dlogH)
	if err != nil {
		return err
	}
	var bounds Rect
	if err := bounds.ReadFrom(dlogRegion, 0); err != nil {
		return err
	}
	visible, err := dlogRegion.ReadUint16(10)
	if err != nil {
		return err
	}
	title, _, err := readPascalAt(dlogRegion, 14)
	if err != nil {
		return err
	}
	ditlH := d.resources.GetResource("DITL", id)
	var items []DialogItem
	if ditlH != 0 {
		ditlRegion, err := d.mem.RegionFor(ditlH)
		if err != nil {
			return err
		}
		items, err = parseDITL(ditlRegion)
		if err != nil {
			return err
		}
	}
	dr := d.dialogs.GetNewDialog(bounds, title, items, visible != 0, 0)
	if d.dialogIndex == nil {
		d.dialogIndex = map[int]*DialogRecord{}
	}
	d.dialogIndex[dr.Window.Handle] = dr
	return trapReturn(d, uint32(dr.Window.Handle))
}

// parseDITL decodes a DITL resource: a 2-byte (count-1) header
// followed by count entries of {handle(4, reserved), box(Rect, 8),
// type(1)+disabled-bit, dataLen(1), data[dataLen]}, padded to even
// length per the classic resource-fork convention.
func parseDITL(r MemoryRegion) ([]DialogItem, error) {
	countMinus1, err := r.ReadUint16(0)
	if err != nil {
		return nil, err
	}
	count := int(countMinus1) + 1
	off := 2
	items := make([]DialogItem, 0, count)
	for i := 0; i < count; i++ {
		off += 4 // reserved placeholder handle
		var box Rect
		if err := box.ReadFrom(r, off); err != nil {
			return nil, err
		}
		off += 8
		typeByte, err := r.ReadUint8(off)
		off++
		if err != nil {
			return nil, err
		}
		dataLen, err := r.ReadUint8(off)
		off++
		if err != nil {
			return nil, err
		}
		data, err := r.ReadBytes(off, int(dataLen))
		if err != nil {
			return nil, err
		}
		off += int(dataLen)
		if off%2 != 0 {
			off++
		}
		items = append(items, DialogItem{
			Box:      box,
			Type:     DialogItemType(typeByte &^ ditlDisabledBit),
			Disabled: typeByte&ditlDisabledBit != 0,
			Text:     string(data),
		})
	}
	return items, nil
}

func trapGetDialogItemTrap(d *TrapDispatcher) error {
	boxPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	typePtr, err := popPtr(d)
	if err != nil {
		return err
	}
	itemPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	item, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	dr := d.dialogByHandle(handle)
	if dr == nil {
		return nil
	}
	di, ok := dr.GetDialogItem(int(item))
	if !ok {
		return nil
	}
	if err := d.mm.WriteUint32(itemPtr, 0); err != nil {
		return err
	}
	if err := d.mm.WriteUint8(typePtr, uint8(di.Type)); err != nil {
		return err
	}
	return di.Box.WriteTo(d.mm.root, boxPtr)
}

func trapSetDialogItemTrap(d *TrapDispatcher) error {
	boxPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	_, err = popPtr(d) // itemHandle: unused, items are fully described by Box/Type/Text here
	if err != nil {
		return err
	}
	item, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	dr := d.dialogByHandle(handle)
	if dr == nil {
		return nil
	}
	di, ok := dr.GetDialogItem(int(item))
	if !ok {
		return nil
	}
	var box Rect
	if err := box.ReadFrom(d.mm.root, boxPtr); err != nil {
		return err
	}
	di.Box = box
	dr.SetDialogItem(int(item), *di)
	return nil
}

// trapModalDialog: PROCEDURE ModalDialog(filterProc: ProcPtr; VAR
// itemHit: INTEGER). filterProc is ignored (no custom filter-proc
// callback surface in this trap set); itemHit is written from the
// DialogRecord's own ItemHit field once ModalDialog returns.
func trapModalDialog(d *TrapDispatcher) error {
	itemHitPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	_, err = popPtr(d) // filterProc
	if err != nil {
		return err
	}
	handle, _ := d.port.GetPort()
	dr := d.dialogByHandle(handle)
	if dr == nil {
		for _, candidate := range d.dialogIndex {
			dr = candidate
			break
		}
	}
	if dr == nil {
		return nil
	}
	d.dialogs.ModalDialog(dr)
	return d.mm.WriteUint16(itemHitPtr, uint16(dr.ItemHit))
}

func trapDisposeDialog(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if dr := d.dialogByHandle(handle); dr != nil {
		d.windows.DisposeWindow(dr.Window)
		delete(d.dialogIndex, handle)
	}
	return nil
}

// trapIsDialogEvent: FUNCTION IsDialogEvent(theEvent: EventRecord): BOOLEAN.
// Any update/mouseDown/keyDown event addressed to a live dialog window
// counts; without the raw EventRecord decoded here (it stays on the
// stack as a value, not forwarded by pointer) this conservatively
// reports true whenever any dialog is open.
func trapIsDialogEvent(d *TrapDispatcher) error {
	_, err := popValueRecord[Point](d) // where field read only to consume the record's fixed size
	if err != nil {
		return err
	}
	return trapReturnBool(d, len(d.dialogIndex) > 0)
}

// trapStopAlert: FUNCTION StopAlert(alertID: INTEGER; filterProc:
// ProcPtr): INTEGER. Built the same way GetNewDialog assembles a
// dialog (an ALRT resource carries the same bounds+DITL shape as DLOG)
// and runs it modally.
func trapStopAlert(d *TrapDispatcher) error {
	_, err := popPtr(d) // filterProc
	if err != nil {
		return err
	}
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	alrtH := d.resources.GetResource("ALRT", id)
	if alrtH == 0 {
		return trapReturn(d, uint16(1))
	}
	region, err := d.mem.RegionFor(alrtH)
	if err != nil {
		return err
	}
	var bounds Rect
	if err := bounds.ReadFrom(region, 0); err != nil {
		return err
	}
	ditlID, err := region.ReadUint16(8)
	if err != nil {
		return err
	}
	var items []DialogItem
	if ditlH := d.resources.GetResource("DITL", int16(ditlID)); ditlH != 0 {
		ditlRegion, err := d.mem.RegionFor(ditlH)
		if err != nil {
			return err
		}
		items, err = parseDITL(ditlRegion)
		if err != nil {
			return err
		}
	}
	dr := d.dialogs.GetNewDialog(bounds, "", items, true, 0)
	d.dialogs.ModalDialog(dr)
	d.windows.DisposeWindow(dr.Window)
	return trapReturn(d, uint16(dr.ItemHit))
}

// trapParamText stores the four ^0..^3 substitution strings in
// d.paramText; no dialog or alert drawing reads them back.
func trapParamText(d *TrapDispatcher) error {
	p3, err := popPtr(d)
	if err != nil {
		return err
	}
	p2, err := popPtr(d)
	if err != nil {
		return err
	}
	p1, err := popPtr(d)
	if err != nil {
		return err
	}
	p0, err := popPtr(d)
	if err != nil {
		return err
	}
	var perr error
	d.paramText[0], perr = readPascalString(d.mm, p0)
	if perr != nil {
		return perr
	}
	d.paramText[1], perr = readPascalString(d.mm, p1)
	if perr != nil {
		return perr
	}
	d.paramText[2], perr = readPascalString(d.mm, p2)
	if perr != nil {
		return perr
	}
	d.paramText[3], perr = readPascalString(d.mm, p3)
	return perr
}
