// dialogmanager.go - DITL item iteration and the ModalDialog loop.
//
// Grounded on emu/dialog_manager.{h,cc}.

package main

// DialogItemType enumerates the DITL type byte; the high bit of the
// stored byte marks the item disabled.
type DialogItemType uint8

const (
	DItemUserItem DialogItemType = 0
	DItemButton   DialogItemType = 4
	DItemCheckBox DialogItemType = 5
	DItemRadio    DialogItemType = 6
	DItemControl  DialogItemType = 7
	DItemStaticText DialogItemType = 8
	DItemEditText DialogItemType = 16
	DItemIcon     DialogItemType = 32
	DItemPicture  DialogItemType = 64
)

const ditlDisabledBit = 0x80

// DialogItem is one DITL entry: its box (global coordinates once
// resolved against the dialog window), type, disabled flag, and a
// type-dependent tail (Pascal string text, or a resource id for
// icon/picture items).
type DialogItem struct {
	Box      Rect
	Type     DialogItemType
	Disabled bool
	Text     string
	ResID    int16
}

// DialogRecord wraps a WindowRecord (window_kind = 2) plus its item
// list.
type DialogRecord struct {
	Window *WindowRecord
	Items  []DialogItem
	ItemHit int // 1-based index written by ModalDialog
}

// DialogManager builds and tracks DialogRecords.
type DialogManager struct {
	windows *WindowManager
	events  *EventQueue
	screen  *BitmapImage
}

// NewDialogManager constructs a DialogManager.
func NewDialogManager(windows *WindowManager, events *EventQueue, screen *BitmapImage) *DialogManager {
	return &DialogManager{windows: windows, events: events, screen: screen}
}

// GetNewDialog builds a DialogRecord from a DLOG-shaped bounds/title
// and a pre-parsed DITL item list (the resource parse itself lives in
// the trap implementation, which owns the ResourceManager lookup;
// this just assembles the manager-side structures).
func (dm *DialogManager) GetNewDialog(bounds Rect, title string, items []DialogItem, visible bool, refCon int32) *DialogRecord {
	w := dm.windows.NewWindow(bounds, title, VarDialog, visible, refCon)
	w.Kind = windowKindDialog
	return &DialogRecord{Window: w, Items: items}
}

// GetDialogItem returns the item at the given 1-based index.
func (d *DialogRecord) GetDialogItem(index int) (*DialogItem, bool) {
	if index < 1 || index > len(d.Items) {
		return nil, false
	}
	return &d.Items[index-1], true
}

// SetDialogItem overwrites the item at the given 1-based index.
func (d *DialogRecord) SetDialogItem(index int, item DialogItem) {
	if index < 1 || index > len(d.Items) {
		return
	}
	d.Items[index-1] = item
}

// drawItem renders one DITL item into the dialog's content, honoring
// its type-dependent drawing path.
func (dm *DialogManager) drawItem(d *DialogRecord, item DialogItem) {
	box := d.Window.Port.RectToGlobal(item.Box)
	switch item.Type &^ DialogItemType(ditlDisabledBit) {
	case DItemButton:
		dm.screen.FrameRect(box, BlackPattern, FillCopy)
	case DItemCheckBox, DItemRadio:
		dm.screen.FrameRect(box, BlackPattern, FillCopy)
	case DItemStaticText, DItemEditText:
		// text rendering itself is handled by the text trap cluster;
		// the dialog manager only needs to know the item occupies box.
	case DItemIcon, DItemPicture:
		dm.screen.FrameRect(box, GreyPattern, FillCopy)
	}
}

// redrawUpdate services a pending update event for the dialog: redraws
// every item inside it.
func (dm *DialogManager) redrawUpdate(d *DialogRecord) {
	d.Window.BeginUpdate()
	for _, item := range d.Items {
		dm.drawItem(d, item)
	}
	d.Window.EndUpdate()
}

// ModalDialog runs two nested loops: first a
// drain loop servicing update events until none remain, then a
// mouse-down loop hit-testing enabled button/control items against
// their global boxes, writing the matched 1-based index into ItemHit.
func (dm *DialogManager) ModalDialog(d *DialogRecord) {
	for {
		evt, ok := dm.events.GetNextEvent(EvtUpdate.Mask())
		if !ok {
			break
		}
		if evt.Message == uint32(d.Window.Handle) {
			dm.redrawUpdate(d)
		}
	}

	for {
		evt, ok := dm.events.WaitNextEvent(EvtMouseDown.Mask(), 60)
		if !ok {
			continue
		}
		for i, item := range d.Items {
			t := item.Type &^ DialogItemType(ditlDisabledBit)
			if item.Disabled || (t != DItemButton && t != DItemControl) {
				continue
			}
			box := d.Window.Port.RectToGlobal(item.Box)
			if box.Contains(evt.Where) {
				d.ItemHit = i + 1
				return
			}
		}
	}
}
