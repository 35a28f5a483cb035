// traps_menu.go - Menu Manager Toolbox traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's menu cluster and
// menumanager.go.

package main

func registerMenuTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x1FD, "GetRMenu", trapGetRMenu)
	d.RegisterToolbox(0x1FB, "InsertMenu", trapInsertMenu)
	d.RegisterToolbox(0x1FE, "DrawMenuBar", trapDrawMenuBar)
	d.RegisterToolbox(0x1FC, "MenuSelect", trapMenuSelect)
	d.RegisterToolbox(0x1F6, "CountMItems", trapCountMItems)
	d.RegisterToolbox(0x1F8, "GetItem", trapGetMenuItemText)
	d.RegisterToolbox(0x1F3, "HiliteMenu", trapHiliteMenu)
	d.RegisterToolbox(0x1F1, "EnableItem", trapEnableItem)
	d.RegisterToolbox(0x1F2, "DisableItem", trapDisableItem)
	d.RegisterToolbox(0x1FA, "CheckItem", trapCheckItem)
}

// trapGetRMenu: FUNCTION GetRMenu(menuID: INTEGER): MenuHandle. Parses
// a MENU resource's item list into a Menu and registers it, returning
// the resource handle itself as the MenuHandle identity (the Menu
// Manager here keys menus by resource id, not by a separate handle
// table, since nothing in this trap set ever relocates a menu).
func trapGetRMenu(d *TrapDispatcher) error {
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	h := d.resources.GetResource("MENU", id)
	if h == 0 {
		return trapReturn(d, uint32(0))
	}
	region, err := d.mem.RegionFor(h)
	if err != nil {
		return err
	}
	menu, err := parseMenuResource(region, id)
	if err != nil {
		return err
	}
	d.menus.InsertMenu(menu)
	return trapReturn(d, uint32(h))
}

// parseMenuResource decodes the classic MENU resource: a fixed 14-byte
// preamble (menuID, width/height placeholders, defProc handle,
// enableFlags) followed by the menu title and then a run of item
// records (a Pascal-string text followed by icon, key, mark and style
// bytes) terminated by a zero-length title.
func parseMenuResource(r MemoryRegion, id int16) (*Menu, error) {
	menu := &Menu{ID: id}
	off := 14
	title, n, err := readPascalAt(r, off)
	if err != nil {
		return nil, err
	}
	menu.Title = title
	off += n

	for {
		text, n, err := readPascalAt(r, off)
		if err != nil {
			return nil, err
		}
		off += n
		if text == "" {
			break
		}
		off += 4 // icon, key, mark, style bytes
		menu.Items = append(menu.Items, MenuItem{Text: text, Enabled: true})
	}
	return menu, nil
}

func readPascalAt(r MemoryRegion, offset int) (string, int, error) {
	n, err := r.ReadUint8(offset)
	if err != nil {
		return "", 0, err
	}
	buf := make([]byte, n)
	for i := 0; i < int(n); i++ {
		b, err := r.ReadUint8(offset + 1 + i)
		if err != nil {
			return "", 0, err
		}
		buf[i] = b
	}
	return string(buf), int(n) + 1, nil
}

// trapInsertMenu: PROCEDURE InsertMenu(theMenu: MenuHandle; beforeID: INTEGER).
// Menus parsed via GetRMenu are already inserted; this only covers the
// case of a caller re-inserting a previously removed menu by id.
func trapInsertMenu(d *TrapDispatcher) error {
	_, err := popStackInt[int16](d) // beforeID: unused, menus append in GetRMenu call order
	if err != nil {
		return err
	}
	_, err = popPtr(d) // theMenu: unused, no distinct MenuHandle identity to re-resolve
	return err
}

func trapDrawMenuBar(d *TrapDispatcher) error {
	d.menus.DrawMenuBar()
	return nil
}

// trapMenuSelect: FUNCTION MenuSelect(startPt: Point): LongInt.
func trapMenuSelect(d *TrapDispatcher) error {
	pt, err := popValueRecord[Point](d)
	if err != nil {
		return err
	}
	return trapReturn(d, uint32(d.menus.MenuSelect(pt)))
}

func trapCountMItems(d *TrapDispatcher) error {
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	m := d.menuByHandle(handle)
	if m == nil {
		return trapReturn(d, uint16(0))
	}
	return trapReturn(d, uint16(len(m.Items)))
}

// menuByHandle resolves the resource-handle identity GetRMenu returned
// back to its parsed Menu.
func (d *TrapDispatcher) menuByHandle(handle int) *Menu {
	region, err := d.mem.RegionFor(handle)
	if err != nil {
		return nil
	}
	id, err := region.ReadUint16(0)
	if err != nil {
		return nil
	}
	return d.menus.MenuByID(int16(id))
}

// trapGetMenuItemText: PROCEDURE GetItem(theMenu: MenuHandle; item:
// INTEGER; VAR itemString: Str255).
func trapGetMenuItemText(d *TrapDispatcher) error {
	strPtr, err := popPtr(d)
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
	m := d.menuByHandle(handle)
	text := ""
	if m != nil && int(item) >= 1 && int(item) <= len(m.Items) {
		text = m.Items[item-1].Text
	}
	return writePascalString(d.mm, strPtr, text)
}

func writePascalString(mm *MemoryMap, ptr int, s string) error {
	if len(s) > 255 {
		s = s[:255]
	}
	if err := mm.WriteUint8(ptr, uint8(len(s))); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		if err := mm.WriteUint8(ptr+1+i, s[i]); err != nil {
			return err
		}
	}
	return nil
}

// trapHiliteMenu: PROCEDURE HiliteMenu(menuID: INTEGER). The menu bar
// strip has no persistent hilite state of its own beyond the tracking
// MenuSelect already performs; HiliteMenu(0) (un-hilite everything) is
// the only call application event loops actually make after handling a
// MenuSelect result, so that is all this implements.
func trapHiliteMenu(d *TrapDispatcher) error {
	id, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	if id == 0 {
		d.menus.DrawMenuBar()
	}
	return nil
}

func trapEnableItem(d *TrapDispatcher) error { return setItemEnabled(d, true) }
func trapDisableItem(d *TrapDispatcher) error { return setItemEnabled(d, false) }

func setItemEnabled(d *TrapDispatcher, enabled bool) error {
	item, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	handle, err := popPtr(d)
	if err != nil {
		return err
	}
	m := d.menuByHandle(handle)
	if m == nil {
		return nil
	}
	if item == 0 {
		for i := range m.Items {
			m.Items[i].Enabled = enabled
		}
		return nil
	}
	if int(item) >= 1 && int(item) <= len(m.Items) {
		m.Items[item-1].Enabled = enabled
	}
	return nil
}

// trapCheckItem: PROCEDURE CheckItem(theMenu: MenuHandle; item:
// INTEGER; checked: BOOLEAN). The mark is recorded as a leading "✓ "
// prefix on the item's Text; no separate mark glyph slot exists in
// MenuItem.
func trapCheckItem(d *TrapDispatcher) error {
	checked, err := popBool(d)
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
	m := d.menuByHandle(handle)
	if m == nil || int(item) < 1 || int(item) > len(m.Items) {
		return nil
	}
	const mark = "✓ "
	text := m.Items[item-1].Text
	hasMark := len(text) >= len(mark) && text[:len(mark)] == mark
	switch {
	case checked && !hasMark:
		m.Items[item-1].Text = mark + text
	case !checked && hasMark:
		m.Items[item-1].Text = text[len(mark):]
	}
	return nil
}
