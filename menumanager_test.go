// menumanager_test.go - MenuSelect tracks a two-item menu from the
// title down into its second item and returns
// (menu_id<<16)|item_index on mouse-up.

package main

import "testing"

func TestMenuSelectTracksToSecondItem(t *testing.T) {
	events := NewEventQueue()
	screen := NewBitmapImage(256, 64)
	mm := NewMenuManager(screen, events)

	menu := &Menu{
		ID:    1,
		Title: "File",
		Items: []MenuItem{
			{Text: "New", Enabled: true},
			{Text: "Quit", Enabled: true},
		},
	}
	mm.InsertMenu(menu)
	mm.DrawMenuBar()

	// mouseMove events are only queued while an enabler is held.
	guard := events.EnableMouseMove()
	defer guard.Close()

	titleMid := Point{V: 5, H: menu.titleX + menu.titleW/2}
	events.Post(EventRecord{What: EvtMouseMove, Where: titleMid})

	secondItemY := menuBarHeight + int16(1)*menuItemHeight + menuItemHeight/2
	secondItemPt := Point{V: secondItemY, H: menu.titleX + 10}
	events.Post(EventRecord{What: EvtMouseMove, Where: secondItemPt})

	events.Post(EventRecord{What: EvtMouseUp, Where: secondItemPt})

	got := mm.MenuSelect(titleMid)
	want := int32(menu.ID)<<16 | 2
	if got != want {
		t.Fatalf("MenuSelect = %#x, want %#x", got, want)
	}
}

func TestMenuSelectReturnsZeroWithNoHover(t *testing.T) {
	events := NewEventQueue()
	screen := NewBitmapImage(256, 64)
	mm := NewMenuManager(screen, events)

	menu := &Menu{ID: 2, Title: "Edit", Items: []MenuItem{{Text: "Cut", Enabled: true}}}
	mm.InsertMenu(menu)
	mm.DrawMenuBar()

	outside := Point{V: 5, H: menu.titleX + menu.titleW + 50}
	events.Post(EventRecord{What: EvtMouseUp, Where: outside})

	if got := mm.MenuSelect(outside); got != 0 {
		t.Fatalf("MenuSelect = %#x, want 0", got)
	}
}
