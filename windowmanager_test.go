// windowmanager_test.go - SelectWindow moves a background window to
// the front and repaints back-to-front.

package main

import "testing"

func TestSelectWindowPainterOrder(t *testing.T) {
	events := NewEventQueue()
	screen := NewBitmapImage(256, 192)
	ports := NewPortManager(screen)
	wm := NewWindowManager(ports, screen, events)

	w1 := wm.NewWindow(Rect{Top: 30, Left: 10, Bottom: 100, Right: 110}, "W1", VarDocument, true, 0)
	w2 := wm.NewWindow(Rect{Top: 40, Left: 20, Bottom: 110, Right: 120}, "W2", VarDocument, true, 0)
	w3 := wm.NewWindow(Rect{Top: 50, Left: 30, Bottom: 120, Right: 130}, "W3", VarDocument, true, 0)

	for {
		if _, ok := events.GetNextEvent(everyEventMask); !ok {
			break
		}
	}

	wm.SelectWindow(w2)

	gotOrder := wm.Windows()
	wantOrder := []*WindowRecord{w2, w3, w1}
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("Windows() has %d entries, want %d", len(gotOrder), len(wantOrder))
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("Windows()[%d] = %s, want %s", i, gotOrder[i].Title, wantOrder[i].Title)
		}
	}

	evt, ok := events.GetNextEvent(everyEventMask)
	if !ok || evt.What != EvtActivate || evt.Message != uint32(w2.Handle)|1 {
		t.Fatalf("first event = %+v, ok=%v, want activate(w2)", evt, ok)
	}

	wantUpdateOrder := []*WindowRecord{w1, w3, w2}
	for _, w := range wantUpdateOrder {
		evt, ok := events.GetNextEvent(everyEventMask)
		if !ok || evt.What != EvtUpdate || evt.Message != uint32(w.Handle) {
			t.Fatalf("update event = %+v, ok=%v, want update(%s)", evt, ok, w.Title)
		}
	}

	if _, ok := events.GetNextEvent(everyEventMask); ok {
		t.Fatal("expected exactly one activate + 3 update events from SelectWindow")
	}
}

func TestSelectWindowAlreadyFrontIsNoop(t *testing.T) {
	events := NewEventQueue()
	screen := NewBitmapImage(256, 192)
	ports := NewPortManager(screen)
	wm := NewWindowManager(ports, screen, events)

	w1 := wm.NewWindow(Rect{Top: 30, Left: 10, Bottom: 100, Right: 110}, "W1", VarDocument, true, 0)
	wm.SelectWindow(w1)

	for {
		if _, ok := events.GetNextEvent(everyEventMask); !ok {
			break
		}
	}

	wm.SelectWindow(w1)
	if _, ok := events.GetNextEvent(everyEventMask); ok {
		t.Fatal("SelectWindow on an already-hilited front window should post nothing")
	}
}
