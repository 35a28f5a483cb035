// windowmanager.go - z-ordered window list and painter's-algorithm updates.
//
// Grounded on emu/window_manager.{h,cc}, including its back-to-front
// update-event ordering.

package main

// WindowVariation encodes the window-definition selector that decides
// title-bar presence and frame style.
type WindowVariation int

const (
	VarDocument WindowVariation = iota
	VarPlain
	VarAlt
	VarNoGrow
	VarMovable
	VarZoom
	VarDialog
)

// hasTitleBar reports whether this variation draws a title bar:
// document/no-grow/movable/zoom have titles; plain/alt/dialog do not.
func (v WindowVariation) hasTitleBar() bool {
	switch v {
	case VarDocument, VarNoGrow, VarMovable, VarZoom:
		return true
	default:
		return false
	}
}

const (
	titleBarHeight = 20
	windowKindUser   = 0
	windowKindDialog = 2
)

// WindowRecord embeds a GrafPort and adds the window-manager-specific
// fields.
type WindowRecord struct {
	Handle int // this window's Ptr identity
	Port   *GrafPort
	Kind   int
	Variation WindowVariation

	Visible bool
	Hilited bool
	GoAway  bool

	RefCon int32
	Title  string

	ContentRgn   Region
	StructureRgn Region
	UpdateRgn    Region
}

// WindowManager owns the front-to-back ordered window list and the
// desktop pattern beneath it all.
type WindowManager struct {
	ports   *PortManager
	screen  *BitmapImage
	events  *EventQueue
	windows []*WindowRecord // index 0 = frontmost
	nextID  int
}

// NewWindowManager constructs a WindowManager drawing onto screen and
// posting activate/update events to events.
func NewWindowManager(ports *PortManager, screen *BitmapImage, events *EventQueue) *WindowManager {
	return &WindowManager{ports: ports, screen: screen, events: events, nextID: 0x20000}
}

// NewWindow allocates a WindowRecord, initializes its GrafPort, inserts
// it at the front of the list, and queues an activate(ON) event plus
// an update event for it.
func (wm *WindowManager) NewWindow(bounds Rect, title string, variation WindowVariation, visible bool, refCon int32) *WindowRecord {
	portHandle, port := wm.ports.NewPort()
	wm.ports.InitPort(port)
	port.PortBitsBounds = Rect{0, 0, int16(wm.screen.Height), int16(wm.screen.Width)}
	port.PortRect = bounds
	port.VisRgn = NewRectRegion(bounds)

	w := &WindowRecord{
		Handle: portHandle, Port: port, Kind: windowKindUser, Variation: variation,
		Visible: visible, Title: title, RefCon: refCon,
	}
	w.recomputeRegions()

	wm.windows = append([]*WindowRecord{w}, wm.windows...)
	wm.events.Post(EventRecord{What: EvtActivate, Message: uint32(w.Handle) | 1})
	wm.postUpdate(w)
	return w
}

func (w *WindowRecord) structureBounds() Rect {
	r := w.Port.PortRect
	if w.Variation.hasTitleBar() {
		r.Top -= titleBarHeight
	}
	return r
}

func (w *WindowRecord) recomputeRegions() {
	w.ContentRgn = NewRectRegion(w.Port.PortRect)
	w.StructureRgn = NewRectRegion(w.structureBounds())
}

func (wm *WindowManager) postUpdate(w *WindowRecord) {
	w.UpdateRgn = UnionRegion(w.UpdateRgn, w.ContentRgn)
	wm.events.Post(EventRecord{What: EvtUpdate, Message: uint32(w.Handle)})
}

// Windows returns the current front-to-back window list (index 0 is
// frontmost). Callers must not mutate the returned slice.
func (wm *WindowManager) Windows() []*WindowRecord { return wm.windows }

// FrontWindow returns the frontmost window, or nil if none exist.
func (wm *WindowManager) FrontWindow() *WindowRecord {
	if len(wm.windows) == 0 {
		return nil
	}
	return wm.windows[0]
}

func (wm *WindowManager) indexOf(w *WindowRecord) int {
	for i, x := range wm.windows {
		if x == w {
			return i
		}
	}
	return -1
}

// SelectWindow brings w to the front: if already
// hilited, no-op; else clear every other hilited flag, set w.hilited,
// move w to the front, queue an activate(ON) event, then queue update
// events for every window back-to-front (painter's algorithm).
func (wm *WindowManager) SelectWindow(w *WindowRecord) {
	if w.Hilited {
		return
	}
	for _, x := range wm.windows {
		x.Hilited = false
	}
	w.Hilited = true

	idx := wm.indexOf(w)
	if idx > 0 {
		wm.windows = append(wm.windows[:idx], wm.windows[idx+1:]...)
		wm.windows = append([]*WindowRecord{w}, wm.windows...)
	}
	wm.events.Post(EventRecord{What: EvtActivate, Message: uint32(w.Handle) | 1})

	for i := len(wm.windows) - 1; i >= 0; i-- {
		wm.postUpdate(wm.windows[i])
	}
}

// DisposeWindow repaints the desktop pattern over the union of the
// window's structure region and removes it from the list, then
// re-invalidates the rest back-to-front.
func (wm *WindowManager) DisposeWindow(w *WindowRecord) {
	wm.screen.FillRegion(w.StructureRgn, GreyPattern, FillCopy)
	idx := wm.indexOf(w)
	if idx < 0 {
		return
	}
	wm.windows = append(wm.windows[:idx], wm.windows[idx+1:]...)
	for i := len(wm.windows) - 1; i >= 0; i-- {
		wm.postUpdate(wm.windows[i])
	}
}

// MoveWindow fills the window's structure region with the desktop
// pattern, offsets the port bits' bounds by the inverse of the new
// global origin, then recomputes content/structure regions.
func (wm *WindowManager) MoveWindow(w *WindowRecord, newGlobalTop, newGlobalLeft int16) {
	wm.screen.FillRegion(w.StructureRgn, GreyPattern, FillCopy)
	dv := w.Port.PortRect.Top - newGlobalTop
	dh := w.Port.PortRect.Left - newGlobalLeft
	w.Port.PortRect = w.Port.PortRect.OffsetBy(-dh, -dv)
	w.Port.PortBitsBounds = w.Port.PortBitsBounds.OffsetBy(-dh, -dv)
	w.recomputeRegions()
}

// DragWindow moves w by (dh, dv) through MoveWindow; the caller
// supplies the delta.
func (wm *WindowManager) DragWindow(w *WindowRecord, dh, dv int16) {
	wm.MoveWindow(w, w.Port.PortRect.Top+dv, w.Port.PortRect.Left+dh)
}

// FindWindowResult classifies a point per FindWindow's result codes.
type FindWindowResult int

const (
	FindInDesk FindWindowResult = iota
	FindInMenuBar
	FindInDrag
	FindInContent
)

// FindWindow walks the front-to-back list classifying pt.
func (wm *WindowManager) FindWindow(pt Point, menuBarHeight int16) (FindWindowResult, *WindowRecord) {
	if pt.V < menuBarHeight {
		return FindInMenuBar, nil
	}
	for _, w := range wm.windows {
		if !w.Visible {
			continue
		}
		if w.StructureRgn.ContainsPoint(pt) {
			if w.ContentRgn.ContainsPoint(pt) {
				return FindInContent, w
			}
			return FindInDrag, w
		}
	}
	return FindInDesk, nil
}

// BeginUpdate clips drawing to the window's pending update region and
// returns it so callers can intersect further; EndUpdate clears it.
func (w *WindowRecord) BeginUpdate() Region {
	return IntersectRegion(w.UpdateRgn, w.ContentRgn)
}

// EndUpdate clears the window's pending update region.
func (w *WindowRecord) EndUpdate() { w.UpdateRgn = Region{} }

// InvalRect marks r (in local coordinates) as needing an update and
// queues an update event if one isn't already pending.
func (wm *WindowManager) InvalRect(w *WindowRecord, r Rect) {
	wasEmpty := w.UpdateRgn.IsEmpty()
	w.UpdateRgn = UnionRegion(w.UpdateRgn, NewRectRegion(r))
	if wasEmpty {
		wm.events.Post(EventRecord{What: EvtUpdate, Message: uint32(w.Handle)})
	}
}

// ValidRect removes r (in local coordinates) from the window's pending
// update region.
func (w *WindowRecord) ValidRect(r Rect) {
	w.UpdateRgn = DifferenceRegion(w.UpdateRgn, NewRectRegion(r))
}
