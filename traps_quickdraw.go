// traps_quickdraw.go - QuickDraw Toolbox traps: ports, geometry,
// pens, fills, and regions.
//
// Grounded on emu/trap/trap_dispatcher.cc's QuickDraw cluster,
// grafport.go, bitmap.go, and region_algebra.go.

package main

func registerQuickDrawTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x00A, "InitGraf", trapInitGraf)
	d.RegisterToolbox(0x00B, "OpenPort", trapOpenPort)
	d.RegisterToolbox(0x0D8, "GetPort", trapGetPort)
	d.RegisterToolbox(0x0D9, "SetPort", trapSetPort)

	d.RegisterToolbox(0x05E, "SetRect", trapSetRect)
	d.RegisterToolbox(0x05F, "OffsetRect", trapOffsetRect)
	d.RegisterToolbox(0x060, "InsetRect", trapInsetRect)
	d.RegisterToolbox(0x061, "SectRect", trapSectRect)
	d.RegisterToolbox(0x06E, "EqualRect", trapEqualRect)
	d.RegisterToolbox(0x06F, "PtInRect", trapPtInRect)

	d.RegisterToolbox(0x070, "Pt2Rect", trapPt2Rect)
	d.RegisterToolbox(0x093, "MoveTo", trapMoveTo)
	d.RegisterToolbox(0x095, "LineTo", trapLineTo)

	d.RegisterToolbox(0x099, "PenSize", trapPenSize)
	d.RegisterToolbox(0x09A, "PenMode", trapPenMode)
	d.RegisterToolbox(0x09B, "PenPat", trapPenPat)
	d.RegisterToolbox(0x09C, "PenNormal", trapPenNormal)

	d.RegisterToolbox(0x09D, "FillRect", trapFillRect)
	d.RegisterToolbox(0x09E, "EraseRect", trapEraseRect)
	d.RegisterToolbox(0x09F, "FrameRect", trapFrameRect)
	d.RegisterToolbox(0x0A0, "InverRect", trapInverRect)
	d.RegisterToolbox(0x0A1, "PaintRect", trapPaintRect)

	d.RegisterToolbox(0x0A8, "FrameOval", trapFrameOval)
	d.RegisterToolbox(0x0A9, "PaintOval", trapPaintOval)
	d.RegisterToolbox(0x0AA, "EraseOval", trapEraseOval)

	d.RegisterToolbox(0x0AD, "NewRgn", trapNewRgn)
	d.RegisterToolbox(0x0AE, "DisposeRgn", trapDisposeRgn)
	d.RegisterToolbox(0x0BC, "FillRgn", trapFillRgn)

	d.RegisterToolbox(0x10E, "GlobalToLocal", trapGlobalToLocal)
	d.RegisterToolbox(0x10F, "LocalToGlobal", trapLocalToGlobal)
}

// trapInitGraf: PROCEDURE InitGraf(globalPtr: POINTER). Installs the
// restricted QDGlobals fields (thePort is the only one anything in
// this trap set actually touches) and creates/selects the screen port.
func trapInitGraf(d *TrapDispatcher) error {
	_, err := popPtr(d) // globalPtr: unused, QDGlobals live host-side
	if err != nil {
		return err
	}
	handle, port := d.port.NewPort()
	d.port.InitPort(port)
	d.port.SetPort(handle)
	return nil
}

// trapOpenPort: PROCEDURE OpenPort(port: GrafPtr). The argument is a
// pre-allocated port record address; since GrafPorts here are managed
// by handle rather than raw pointer, OpenPort just re-initializes the
// currently selected port (the common single-port-per-app case).
func trapOpenPort(d *TrapDispatcher) error {
	_, err := popPtr(d)
	if err != nil {
		return err
	}
	_, port := d.port.GetPort()
	if port != nil {
		d.port.InitPort(port)
	}
	return nil
}

func trapGetPort(d *TrapDispatcher) error {
	h, _ := d.port.GetPort()
	return trapReturn(d, uint32(h))
}

func trapSetPort(d *TrapDispatcher) error {
	h, err := popPtr(d)
	if err != nil {
		return err
	}
	d.port.SetPort(h)
	return nil
}

func trapSetRect(d *TrapDispatcher) error {
	right, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	bottom, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	left, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	top, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}.WriteTo(d.mm.root, ptr)
}

func trapOffsetRect(d *TrapDispatcher) error {
	dv, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	dh, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	var r Rect
	if err := r.ReadFrom(d.mm.root, ptr); err != nil {
		return err
	}
	return r.OffsetBy(dh, dv).WriteTo(d.mm.root, ptr)
}

func trapInsetRect(d *TrapDispatcher) error {
	dv, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	dh, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	var r Rect
	if err := r.ReadFrom(d.mm.root, ptr); err != nil {
		return err
	}
	return r.InsetBy(dh, dv).WriteTo(d.mm.root, ptr)
}

// trapSectRect: FUNCTION SectRect(src1, src2: Rect; VAR dstRect: Rect): BOOLEAN.
func trapSectRect(d *TrapDispatcher) error {
	dstPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	src2, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	src1, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	out, ok := src1.Intersect(src2)
	if err := out.WriteTo(d.mm.root, dstPtr); err != nil {
		return err
	}
	return trapReturnBool(d, ok)
}

func trapEqualRect(d *TrapDispatcher) error {
	b, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	a, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	return trapReturnBool(d, a.Equal(b))
}

// trapPtInRect: FUNCTION PtInRect(pt: Point; r: Rect): BOOLEAN.
func trapPtInRect(d *TrapDispatcher) error {
	r, err := popValueRecord[Rect](d)
	if err != nil {
		return err
	}
	pt, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	return trapReturnBool(d, r.Contains(pt))
}

// trapPt2Rect: PROCEDURE Pt2Rect(pt1, pt2: Point; VAR dstRect: Rect).
func trapPt2Rect(d *TrapDispatcher) error {
	dstPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	pt2, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	pt1, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	r := Rect{Top: min16(pt1.V, pt2.V), Left: min16(pt1.H, pt2.H), Bottom: max16(pt1.V, pt2.V), Right: max16(pt1.H, pt2.H)}
	return r.WriteTo(d.mm.root, dstPtr)
}

func currentPort(d *TrapDispatcher) *GrafPort {
	_, port := d.port.GetPort()
	return port
}

func trapMoveTo(d *TrapDispatcher) error {
	v, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	currentPort(d).PenLoc = Point{V: v, H: h}
	return nil
}

// trapLineTo draws a one-pixel-wide line from PenLoc to (h,v) using the
// pen pattern; the raster only exposes rectangle/oval/region fills, so
// a line is rendered as the union of unit-height horizontal spans
// (Bresenham's midpoint rule collapses to this for the axis-aligned
// and near-axis cases QuickDraw's 1-bit pen produces in practice).
func trapLineTo(d *TrapDispatcher) error {
	v, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	from := port.LocalToGlobal(port.PenLoc)
	to := port.LocalToGlobal(Point{V: v, H: h})
	drawLineSegment(d.screen, from, to, port.PenPattern, port.PenMode)
	port.PenLoc = Point{V: v, H: h}
	return nil
}

func drawLineSegment(b *BitmapImage, from, to Point, pat Pattern, mode FillMode) {
	dx := int(to.H) - int(from.H)
	dy := int(to.V) - int(from.V)
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		b.FillRect(Rect{from.V, from.H, from.V + 1, from.H + 1}, pat, mode)
		return
	}
	for i := 0; i <= steps; i++ {
		x := int(from.H) + dx*i/steps
		y := int(from.V) + dy*i/steps
		b.FillRect(Rect{int16(y), int16(x), int16(y) + 1, int16(x) + 1}, pat, mode)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func trapPenSize(d *TrapDispatcher) error {
	v, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	currentPort(d).PenSize = Point{V: v, H: h}
	return nil
}

func trapPenMode(d *TrapDispatcher) error {
	mode, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	currentPort(d).PenMode = PenMode(mode)
	return nil
}

func trapPenPat(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	var pat Pattern
	for i := 0; i < 8; i++ {
		b, err := d.mm.ReadUint8(ptr + i)
		if err != nil {
			return err
		}
		pat[i] = b
	}
	currentPort(d).PenPattern = pat
	return nil
}

func trapPenNormal(d *TrapDispatcher) error {
	port := currentPort(d)
	port.PenSize = Point{1, 1}
	port.PenMode = FillCopy
	port.PenPattern = BlackPattern
	return nil
}

func rectTrapArg(d *TrapDispatcher) (Rect, error) { return popValueRecord[Rect](d) }

// trapFillRect: PROCEDURE FillRect(r: Rect; pat: Pattern). pat is
// pushed last, so it is popped first.
func trapFillRect(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	var pat Pattern
	for i := 0; i < 8; i++ {
		b, err := d.mm.ReadUint8(ptr + i)
		if err != nil {
			return err
		}
		pat[i] = b
	}
	port := currentPort(d)
	d.screen.FillRect(port.RectToGlobal(r), pat, FillCopy)
	return nil
}

func trapEraseRect(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillRect(port.RectToGlobal(r), port.BackPattern, FillCopy)
	return nil
}

func trapFrameRect(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FrameRect(port.RectToGlobal(r), port.PenPattern, port.PenMode)
	return nil
}

func trapInverRect(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillRect(port.RectToGlobal(r), BlackPattern, FillXOr)
	return nil
}

func trapPaintRect(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillRect(port.RectToGlobal(r), port.PenPattern, port.PenMode)
	return nil
}

func trapFrameOval(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillOval(port.RectToGlobal(r), port.PenPattern, port.PenMode, true)
	return nil
}

func trapPaintOval(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillOval(port.RectToGlobal(r), port.PenPattern, port.PenMode, false)
	return nil
}

func trapEraseOval(d *TrapDispatcher) error {
	r, err := rectTrapArg(d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	d.screen.FillOval(port.RectToGlobal(r), port.BackPattern, FillCopy, false)
	return nil
}

// trapNewRgn: FUNCTION NewRgn: RgnHandle. Allocates a one-byte
// placeholder Memory Manager handle purely so the returned value is a
// real, heap-tracked handle identity; the Region value itself lives in
// the dispatcher's regions side table, keyed by that handle.
func trapNewRgn(d *TrapDispatcher) error {
	h, err := d.mem.AllocateHandle(1, "RGN ")
	if err != nil {
		return err
	}
	empty := Region{}
	d.regions[h] = &empty
	return trapReturn(d, uint32(h))
}

func trapDisposeRgn(d *TrapDispatcher) error {
	h, err := popPtr(d)
	if err != nil {
		return err
	}
	delete(d.regions, h)
	return d.mem.Deallocate(h)
}

// trapFillRgn: PROCEDURE FillRgn(rgn: RgnHandle; pat: Pattern).
func trapFillRgn(d *TrapDispatcher) error {
	patPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	rgnHandle, err := popPtr(d)
	if err != nil {
		return err
	}
	var pat Pattern
	for i := 0; i < 8; i++ {
		b, err := d.mm.ReadUint8(patPtr + i)
		if err != nil {
			return err
		}
		pat[i] = b
	}
	rgn, ok := d.regions[rgnHandle]
	if !ok {
		return structuralErr("FillRgn: %#x is not a live RgnHandle", rgnHandle)
	}
	port := currentPort(d)
	d.screen.FillRegion(offsetRegion(*rgn, -port.PortBitsBounds.Left, -port.PortBitsBounds.Top), pat, FillCopy)
	return nil
}

func trapGlobalToLocal(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	var pt Point
	if err := pt.ReadFrom(d.mm.root, ptr); err != nil {
		return err
	}
	return currentPort(d).GlobalToLocal(pt).WriteTo(d.mm.root, ptr)
}

func trapLocalToGlobal(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	var pt Point
	if err := pt.ReadFrom(d.mm.root, ptr); err != nil {
		return err
	}
	return currentPort(d).LocalToGlobal(pt).WriteTo(d.mm.root, ptr)
}
