// menumanager.go - menu bar strip and tracked pop-up menus.
//
// Grounded on emu/menu_manager.{h,cc}.

package main

import "strings"

const (
	menuBarHeight   = titleBarHeight
	menuTitlePad    = 14
	menuItemHeight  = 16
	menuPopupWidth  = 120
)

// MenuItem is one row of a menu: its text, optional command-key
// shortcut letter, and enabled state.
type MenuItem struct {
	Text     string
	CmdKey   byte
	Enabled  bool
}

// Menu is one entry in the menu bar: its id, title, and ordered items.
// A title beginning with "-" renders as a grey divider rather than a
// selectable row.
type Menu struct {
	ID    int16
	Title string
	Items []MenuItem

	titleX, titleW int16 // computed by DrawMenuBar
}

// MenuManager owns the ordered menu list and the currently tracked
// pop-up, if any.
type MenuManager struct {
	screen *BitmapImage
	events *EventQueue
	menus  []*Menu
}

// NewMenuManager constructs a MenuManager drawing onto screen.
func NewMenuManager(screen *BitmapImage, events *EventQueue) *MenuManager {
	return &MenuManager{screen: screen, events: events}
}

// InsertMenu appends m to the menu bar.
func (mm *MenuManager) InsertMenu(m *Menu) { mm.menus = append(mm.menus, m) }

// MenuByID finds a menu by its resource id.
func (mm *MenuManager) MenuByID(id int16) *Menu {
	for _, m := range mm.menus {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// DrawMenuBar paints the fixed-height bar across the top of the screen
// and records each menu's title slot at padded offsets, leaving the
// leading slot for the apple menu. Title text and the apple icon are
// not drawn.
func (mm *MenuManager) DrawMenuBar() {
	bar := Rect{0, 0, menuBarHeight, int16(mm.screen.Width)}
	mm.screen.FillRect(bar, WhitePattern, FillCopy)
	mm.screen.FillRect(Rect{menuBarHeight - 1, 0, menuBarHeight, int16(mm.screen.Width)}, BlackPattern, FillCopy)

	x := int16(menuTitlePad) // reserve the leading slot for the apple-menu icon
	for _, m := range mm.menus {
		w := int16(len(m.Title)*6 + menuTitlePad)
		m.titleX, m.titleW = x, w
		x += w
	}
}

// hitTestBar returns the menu whose title slot contains pt.H, or nil.
func (mm *MenuManager) hitTestBar(pt Point) *Menu {
	if pt.V < 0 || pt.V >= menuBarHeight {
		return nil
	}
	for _, m := range mm.menus {
		if pt.H >= m.titleX && pt.H < m.titleX+m.titleW {
			return m
		}
	}
	return nil
}

// MenuPopUp is an RAII-equivalent scope guard: while
// open it inverts the bar slot, saves the bits under the pop-up rect,
// and draws the filled frame and divider rows (item text is not
// drawn); Close restores the saved bits.
type MenuPopUp struct {
	mm       *MenuManager
	menu     *Menu
	rect     Rect
	saved    *BitmapImage
	hovered  int // 1-based hovered item index, 0 = none
}

// OpenMenuPopUp inverts menu's bar slot, saves the screen bits under
// the popup rect into an off-screen bitmap, and draws the popup's white
// fill, frame and grey divider rows; item text is not drawn.
func (mm *MenuManager) OpenMenuPopUp(menu *Menu) *MenuPopUp {
	mm.screen.FillRect(Rect{0, menu.titleX, menuBarHeight, menu.titleX + menu.titleW}, BlackPattern, FillXOr)

	rect := Rect{menuBarHeight, menu.titleX, menuBarHeight + int16(len(menu.Items))*menuItemHeight, menu.titleX + menuPopupWidth}
	saved := NewBitmapImage(rect.Width(), rect.Height())
	CopyBits(mm.screen, rect, saved, Rect{0, 0, rect.Bottom - rect.Top, rect.Right - rect.Left}, FillCopy)

	p := &MenuPopUp{mm: mm, menu: menu, rect: rect, saved: saved}
	mm.screen.FillRect(rect, WhitePattern, FillCopy)
	mm.screen.FrameRect(rect, BlackPattern, FillCopy)
	for i, item := range menu.Items {
		rowTop := rect.Top + int16(i)*menuItemHeight
		if strings.HasPrefix(item.Text, "-") {
			mm.screen.FillRect(Rect{rowTop + menuItemHeight/2, rect.Left + 2, rowTop + menuItemHeight/2 + 1, rect.Right - 2}, GreyPattern, FillCopy)
		}
	}
	return p
}

// GetHoveredMenuItem inverts the row under pt (un-inverting the
// previous row first) and returns its 1-based index, or 0 if pt lies
// outside every row or the row is disabled.
func (p *MenuPopUp) GetHoveredMenuItem(pt Point) int {
	row := -1
	if pt.V >= p.rect.Top && pt.V < p.rect.Bottom && pt.H >= p.rect.Left && pt.H < p.rect.Right {
		row = int((pt.V - p.rect.Top) / menuItemHeight)
	}
	next := 0
	if row >= 0 && row < len(p.menu.Items) {
		item := p.menu.Items[row]
		if item.Enabled && !strings.HasPrefix(item.Text, "-") {
			next = row + 1
		}
	}
	if next == p.hovered {
		return next
	}
	if p.hovered != 0 {
		p.invertRow(p.hovered)
	}
	if next != 0 {
		p.invertRow(next)
	}
	p.hovered = next
	return next
}

func (p *MenuPopUp) invertRow(index int) {
	rowTop := p.rect.Top + int16(index-1)*menuItemHeight
	p.mm.screen.FillRect(Rect{rowTop, p.rect.Left + 1, rowTop + menuItemHeight, p.rect.Right - 1}, BlackPattern, FillXOr)
}

// Close restores the saved bits under the pop-up and un-inverts the
// menu's bar slot.
func (p *MenuPopUp) Close() {
	CopyBits(p.saved, Rect{0, 0, p.rect.Bottom - p.rect.Top, p.rect.Right - p.rect.Left}, p.mm.screen, p.rect, FillCopy)
	p.mm.screen.FillRect(Rect{0, p.menu.titleX, menuBarHeight, p.menu.titleX + p.menu.titleW}, BlackPattern, FillXOr)
}

// MenuSelect runs a nested event pump with mouse-move enabled: on each
// move it hit-tests the bar, tearing down/rebuilding the pop-up when
// the hovered menu changes, and on mouse-up returns
// (menu_id<<16)|item_index, or 0 for none.
func (mm *MenuManager) MenuSelect(start Point) int32 {
	guard := mm.events.EnableMouseMove()
	defer guard.Close()

	var popup *MenuPopUp
	var currentMenu *Menu
	result := int32(0)

	for {
		evt, ok := mm.events.WaitNextEvent(EvtMouseMove.Mask()|EvtMouseUp.Mask(), 60)
		if !ok {
			break
		}
		if evt.What == EvtMouseUp {
			if popup != nil && popup.hovered != 0 {
				result = int32(currentMenu.ID)<<16 | int32(popup.hovered)
			}
			break
		}

		if evt.Where.V < menuBarHeight {
			hit := mm.hitTestBar(evt.Where)
			if hit != currentMenu {
				if popup != nil {
					popup.Close()
					popup = nil
				}
				currentMenu = hit
				if hit != nil {
					popup = mm.OpenMenuPopUp(hit)
				}
			}
		}
		if popup != nil {
			popup.GetHoveredMenuItem(evt.Where)
		}
	}

	if popup != nil {
		popup.Close()
	}
	return result
}
