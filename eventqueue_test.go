// eventqueue_test.go - event priority and masking properties.

package main

import "testing"

const everyEventMask = uint32(0xFFFFFFFF) &^ mouseMoveMaskBit

// TestEventPriorityOrder covers the event priority property: with
// activate+mouseDown+update all queued, consecutive
// GetNextEvent(mask=all) calls return them in (activate, mouseDown,
// update) order.
func TestEventPriorityOrder(t *testing.T) {
	q := NewEventQueue()
	q.Post(EventRecord{What: EvtUpdate})
	q.Post(EventRecord{What: EvtMouseDown})
	q.Post(EventRecord{What: EvtActivate})

	wantOrder := []EventType{EvtActivate, EvtMouseDown, EvtUpdate}
	for _, want := range wantOrder {
		evt, ok := q.GetNextEvent(everyEventMask)
		if !ok {
			t.Fatalf("GetNextEvent: expected %v, queue empty", want)
		}
		if evt.What != want {
			t.Fatalf("GetNextEvent = %v, want %v", evt.What, want)
		}
	}
	if _, ok := q.GetNextEvent(everyEventMask); ok {
		t.Fatal("queue should be drained")
	}
}

// TestEventMaskingPreservesOtherEvents covers the masking property:
// selecting only mouse-down events does not consume key
// events queued before them.
func TestEventMaskingPreservesOtherEvents(t *testing.T) {
	q := NewEventQueue()
	q.Post(EventRecord{What: EvtKeyDown, Message: 'x'})
	q.Post(EventRecord{What: EvtMouseDown})

	evt, ok := q.GetNextEvent(EvtMouseDown.Mask())
	if !ok || evt.What != EvtMouseDown {
		t.Fatalf("GetNextEvent(mouseDown mask) = %v, %v, want EvtMouseDown, true", evt.What, ok)
	}

	evt, ok = q.GetNextEvent(EvtKeyDown.Mask())
	if !ok || evt.What != EvtKeyDown || evt.Message != 'x' {
		t.Fatalf("key event was consumed or lost: %+v, ok=%v", evt, ok)
	}
}

func TestWaitNextEventReturnsQueuedImmediately(t *testing.T) {
	q := NewEventQueue()
	q.Post(EventRecord{What: EvtActivate})

	evt, ok := q.WaitNextEvent(everyEventMask, 60)
	if !ok || evt.What != EvtActivate {
		t.Fatalf("WaitNextEvent = %v, %v, want EvtActivate, true", evt.What, ok)
	}
}

func TestMouseMoveDroppedWithoutEnabler(t *testing.T) {
	q := NewEventQueue()
	q.Post(EventRecord{What: EvtMouseMove})
	if _, ok := q.GetNextEvent(EvtMouseMove.Mask()); ok {
		t.Fatal("mouseMove event delivered without an active MouseMoveEnabler")
	}
}

func TestMouseMoveDeliveredWithEnabler(t *testing.T) {
	q := NewEventQueue()
	guard := q.EnableMouseMove()
	defer guard.Close()

	q.Post(EventRecord{What: EvtMouseMove})
	evt, ok := q.GetNextEvent(EvtMouseMove.Mask())
	if !ok || evt.What != EvtMouseMove {
		t.Fatalf("GetNextEvent(mouseMove mask) = %v, %v, want EvtMouseMove, true", evt.What, ok)
	}
}
