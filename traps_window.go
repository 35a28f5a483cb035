// traps_window.go - Window Manager Toolbox traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's window cluster and
// windowmanager.go.

package main

func registerWindowTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x1A7, "GetNewWindow", trapGetNewWindow)
	d.RegisterToolbox(0x1A1, "NewWindow", trapNewWindow)
	d.RegisterToolbox(0x1D4, "DisposeWindow", trapDisposeWindow)
	d.RegisterToolbox(0x1D1, "ShowWindow", trapShowWindow)
	d.RegisterToolbox(0x1D8, "HideWindow", trapHideWindow)
	d.RegisterToolbox(0x0FE, "SelectWindow", trapSelectWindow)
	d.RegisterToolbox(0x0FD, "DragWindow", trapDragWindow)
	d.RegisterToolbox(0x1A2, "MoveWindow", trapMoveWindow)
	d.RegisterToolbox(0x1A3, "SetWTitle", trapSetWTitle)
	d.RegisterToolbox(0x1D3, "FrontWindow", trapFrontWindow)
	d.RegisterToolbox(0x1D0, "FindWindow", trapFindWindow)
	d.RegisterToolbox(0x0FF, "BeginUpdate", trapBeginUpdate)
	d.RegisterToolbox(0x100, "EndUpdate", trapEndUpdate)
	d.RegisterToolbox(0x1A6, "InvalRect", trapInvalRectWin)
	d.RegisterToolbox(0x1A9, "ValidRect", trapValidRectWin)
	d.RegisterToolbox(0x1AE, "GetWRefCon", trapGetWRefCon)
	d.RegisterToolbox(0x1AF, "SetWRefCon", trapSetWRefCon)
}

// lookupWindow maps the opaque window Ptr handed to application code
// (the WindowRecord's own identity) back to its Go struct by scanning
// the Window Manager's window list, so the traps can cross the
// stack/register boundary.
func (d *TrapDispatcher) lookupWindow(handle int) *WindowRecord {
	for _, w := range d.windows.Windows() {
		if w.Handle == handle {
			return w
		}
	}
	return nil
}

// trapGetNewWindow: FUNCTION GetNewWindow(windowID: INTEGER; wStorage:
// Ptr; behind: WindowPtr): WindowPtr. Pulls bounds/title/variation/
// visibility out of the WIND resource.
func trapGetNewWindow(d *TrapDispatcher) error {
	_, err := popPtr(d) // behind: unused, new windows always go frontmost
	if err != nil {
		return err
	}
	_, err = popPtr(d) // wStorage: unused, WindowRecords are heap-owned here
	if err != nil {
		return err
	}
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h := d.resources.GetResource("WIND", id)
	if h == 0 {
		return trapReturn(d, uint32(0))
	}
	region, err := d.mem.RegionFor(h)
	if err != nil {
		return err
	}
	var bounds Rect
	if err := bounds.ReadFrom(region, 0); err != nil {
		return err
	}
	variation, err := region.ReadUint16(8)
	if err != nil {
		return err
	}
	visible, err := region.ReadUint16(10)
	if err != nil {
		return err
	}
	title, err := readPascalRegionString(region, 14)
	if err != nil {
		return err
	}
	w := d.windows.NewWindow(bounds, title, WindowVariation(variation), visible != 0, 0)
	return trapReturn(d, uint32(w.Handle))
}

// trapNewWindow: FUNCTION NewWindow(wStorage: Ptr; boundsRect: Rect;
// title: Str255; visible: BOOLEAN; procID: INTEGER; behind: WindowPtr;
// goAwayFlag: BOOLEAN; refCon: LongInt): WindowPtr.
func trapNewWindow(d *TrapDispatcher) error {
	refCon, err := popStackInt[int32](d)
	if err != nil {
		return err
	}
	goAway, err := popBool(d)
	if err != nil {
		return err
	}
	_, err = popPtr(d) // behind: unused, see trapGetNewWindow
	if err != nil {
		return err
	}
	procID, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	visible, err := popBool(d)
	if err != nil {
		return err
	}
	titlePtr, err := popPtr(d)
	if err != nil {
		return err
	}
	bounds, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	_, err = popPtr(d) // wStorage: unused
	if err != nil {
		return err
	}
	title, err := readPascalString(d.mm, titlePtr)
	if err != nil {
		return err
	}
	w := d.windows.NewWindow(bounds, title, WindowVariation(procID), visible, refCon)
	w.GoAway = goAway
	return trapReturn(d, uint32(w.Handle))
}

func trapDisposeWindow(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		d.windows.DisposeWindow(w)
	}
	return nil
}

func trapShowWindow(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.Visible = true
		d.windows.InvalRect(w, w.Port.PortRect)
	}
	return nil
}

func trapHideWindow(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.Visible = false
	}
	return nil
}

func trapSelectWindow(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		d.windows.SelectWindow(w)
	}
	return nil
}

// trapDragWindow: PROCEDURE DragWindow(theWindow: WindowPtr;
// startPt: Point; boundsRect: Rect). No interactive tracking loop runs;
// the drag delta is the last mouse location seen by the event traps
// (lastMouseLoc) minus startPt.
func trapDragWindow(d *TrapDispatcher) error {
	_, err := popValueRecord[Rect](d) // boundsRect: unused, no off-screen clamp modeled
	if err != nil {
		return err
	}
	startPt, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	w := d.lookupWindow(handle)
	if w == nil {
		return nil
	}
	d.windows.SelectWindow(w)
	dh := d.lastMouseLoc.H - startPt.H
	dv := d.lastMouseLoc.V - startPt.V
	d.windows.DragWindow(w, dh, dv)
	return nil
}

func trapMoveWindow(d *TrapDispatcher) error {
	_, err := popBool(d) // front: unused, MoveWindow never changes z-order here
	if err != nil {
		return err
	}
	v, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		d.windows.MoveWindow(w, v, h)
	}
	return nil
}

func trapSetWTitle(d *TrapDispatcher) error {
	titlePtr, err := popPtr(d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	title, err := readPascalString(d.mm, titlePtr)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.Title = title
	}
	return nil
}

func trapFrontWindow(d *TrapDispatcher) error {
	w := d.windows.FrontWindow()
	if w == nil {
		return trapReturn(d, uint32(0))
	}
	return trapReturn(d, uint32(w.Handle))
}

// trapFindWindow: FUNCTION FindWindow(thePoint: Point; VAR
// whichWindow: WindowPtr): INTEGER.
func trapFindWindow(d *TrapDispatcher) error {
	whichPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	pt, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	res, w := d.windows.FindWindow(pt, menuBarHeight)
	handle := 0
	if w != nil {
		handle = w.Handle
	}
	if err := d.mm.WriteUint32(whichPtr, uint32(handle)); err != nil {
		return err
	}
	return trapReturn(d, uint16(res))
}

func trapBeginUpdate(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.BeginUpdate()
	}
	return nil
}

func trapEndUpdate(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.EndUpdate()
	}
	return nil
}

func trapInvalRectWin(d *TrapDispatcher) error {
	r, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(currentWindowHandle(d)); w != nil {
		d.windows.InvalRect(w, r)
	}
	return nil
}

func trapValidRectWin(d *TrapDispatcher) error {
	r, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(currentWindowHandle(d)); w != nil {
		w.ValidRect(r)
	}
	return nil
}

// currentWindowHandle resolves InvalRect/ValidRect's implicit "current
// GrafPort" target: the real calls operate on thePort, not an explicit
// window argument.
func currentWindowHandle(d *TrapDispatcher) int {
	h, _ := d.port.GetPort()
	return h
}

func trapGetWRefCon(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	w := d.lookupWindow(handle)
	if w == nil {
		return trapReturn(d, uint32(0))
	}
	return trapReturn(d, uint32(w.RefCon))
}

func trapSetWRefCon(d *TrapDispatcher) error {
	refCon, err := popStackInt[int32](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	if w := d.lookupWindow(handle); w != nil {
		w.RefCon = refCon
	}
	return nil
}

// readPascalRegionString reads a Pascal string out of a MemoryRegion
// rather than a raw MemoryMap address (WIND resource parsing works
// against the resource's own handle region).
func readPascalRegionString(r MemoryRegion, offset int) (string, error) {
	n, err := r.ReadUint8(offset)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := 0; i < int(n); i++ {
		b, err := r.ReadUint8(offset + 1 + i)
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}
