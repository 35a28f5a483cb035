// grafport.go - GrafPort state and the "current port" global.
//
// Grounded on emu/graphics/graf_port.{h,cc} plus
// emu/trap/trap_dispatcher.cc's InitGraf/OpenPort handling.

package main

// PenMode selects how pen strokes combine with the raster, mirroring
// FillMode's Copy/XOr/NotXOr vocabulary.
type PenMode = FillMode

// GrafPort is QuickDraw's per-drawable rendering state.
type GrafPort struct {
	PortBitsBounds Rect // bitmap descriptor bounds; encodes local->global translation
	PortRect       Rect
	VisRgn         Region
	ClipRgn        Region
	PenLoc         Point
	PenSize        Point
	PenMode        PenMode
	PenPattern     Pattern
	FillPattern    Pattern
	BackPattern    Pattern
	TextFont       int16
	TextSize       int16
	TextFace       uint8

	Bitmap *BitmapImage
}

// PortManager tracks the single current GrafPort ("thePort", kept in
// its current field; the value is not written to [A5] in emulated
// memory) plus every allocated port, keyed by an opaque handle address
// used as its Ptr identity.
type PortManager struct {
	ports      map[int]*GrafPort
	nextHandle int
	current    int
	screenBits *BitmapImage
}

// NewPortManager constructs a PortManager whose screen port maps to
// screenBits.
func NewPortManager(screenBits *BitmapImage) *PortManager {
	return &PortManager{ports: map[int]*GrafPort{}, nextHandle: 0x10000, screenBits: screenBits}
}

// NewPort allocates a fresh GrafPort and returns its Ptr identity.
func (pm *PortManager) NewPort() (int, *GrafPort) {
	h := pm.nextHandle
	pm.nextHandle += 4
	port := &GrafPort{}
	pm.ports[h] = port
	return h, port
}

// InitPort sets a newly-created port's defaults: black/white patterns,
// patCopy mode, port bits = screen bits, port rect = port bits'
// bounds, max-size clip, visible region = port rect.
func (pm *PortManager) InitPort(port *GrafPort) {
	port.Bitmap = pm.screenBits
	port.PortBitsBounds = Rect{0, 0, int16(pm.screenBits.Height), int16(pm.screenBits.Width)}
	port.PortRect = port.PortBitsBounds
	port.PenPattern = BlackPattern
	port.FillPattern = BlackPattern
	port.BackPattern = WhitePattern
	port.PenMode = FillCopy
	port.PenSize = Point{1, 1}
	port.ClipRgn = NewRectRegion(Rect{-32768, -32768, 32767, 32767})
	port.VisRgn = NewRectRegion(port.PortRect)
}

// GetPort returns the current port's handle and pointer.
func (pm *PortManager) GetPort() (int, *GrafPort) { return pm.current, pm.ports[pm.current] }

// SetPort makes handle the current port.
func (pm *PortManager) SetPort(handle int) { pm.current = handle }

// Port looks up a port by handle.
func (pm *PortManager) Port(handle int) *GrafPort { return pm.ports[handle] }

// LocalToGlobal translates a point from the current port's local
// coordinate system to the screen's global coordinates.
func (port *GrafPort) LocalToGlobal(pt Point) Point {
	return Point{pt.V - port.PortBitsBounds.Top, pt.H - port.PortBitsBounds.Left}
}

// GlobalToLocal translates a point from global screen coordinates into
// the current port's local coordinate system.
func (port *GrafPort) GlobalToLocal(pt Point) Point {
	return Point{pt.V + port.PortBitsBounds.Top, pt.H + port.PortBitsBounds.Left}
}

// RectToGlobal translates a rectangle from local to global coordinates.
func (port *GrafPort) RectToGlobal(r Rect) Rect {
	dv := -port.PortBitsBounds.Top
	dh := -port.PortBitsBounds.Left
	return r.OffsetBy(dh, dv)
}

// EffectiveClip intersects the port's clip region and visible region,
// translated to global (raster) coordinates.
func (port *GrafPort) EffectiveClip() Region {
	dv := -port.PortBitsBounds.Top
	dh := -port.PortBitsBounds.Left
	return IntersectRegion(offsetRegion(port.ClipRgn, dh, dv), offsetRegion(port.VisRgn, dh, dv))
}

func offsetRegion(r Region, dh, dv int16) Region {
	out := Region{Bounds: r.Bounds.OffsetBy(dh, dv)}
	for _, row := range r.Rows {
		xs := make([]int16, len(row.Xs))
		for i, x := range row.Xs {
			xs[i] = x + dh
		}
		out.Rows = append(out.Rows, Scanline{Y: row.Y + dv, Xs: xs})
	}
	return out
}
