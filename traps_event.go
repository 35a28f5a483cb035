// traps_event.go - Event Manager Toolbox traps.
//
// Grounded on emu/trap/trap_dispatcher.cc's event cluster and
// eventqueue.go.

package main

func registerEventTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x001, "Button", trapButton)
	d.RegisterToolbox(0x002, "StillDown", trapStillDown)
	d.RegisterToolbox(0x003, "GetMouse", trapGetMouse)
	d.RegisterToolbox(0x05C, "TickCount", trapTickCount)
	d.RegisterToolbox(0x154, "WaitNextEvent", trapWaitNextEvent)
	d.RegisterToolbox(0x169, "GetNextEvent", trapGetNextEvent)
	d.RegisterToolbox(0x16A, "EventAvail", trapEventAvail)
	d.RegisterToolbox(0x02F, "PostEvent", trapPostEvent)
	d.RegisterToolbox(0x165, "SystemTask", trapSystemTask)
	d.RegisterToolbox(0x02C, "FlushEvents", trapFlushEvents)
}

// mouseDown reports whether the mouse button is currently down,
// derived from the most recent mouseDown/mouseUp event peeked off the
// input lane: there's no dedicated "current button state" primitive,
// so Button/StillDown reconstruct it the same way the real Event
// Manager does, from the low-level input state the host feeds in.
func (d *TrapDispatcher) mouseDown() bool {
	evt, ok := d.events.GetNextEvent(EvtMouseDown.Mask() | EvtMouseUp.Mask())
	if !ok {
		return d.lastButtonState
	}
	d.events.Post(evt) // not consumed by Button/StillDown; put it back
	d.lastButtonState = evt.What == EvtMouseDown
	return d.lastButtonState
}

func trapButton(d *TrapDispatcher) error {
	return trapReturnBool(d, d.mouseDown())
}

func trapStillDown(d *TrapDispatcher) error {
	return trapReturnBool(d, d.mouseDown())
}

// trapGetMouse: PROCEDURE GetMouse(VAR mouseLoc: Point). Returns the
// most recent known pointer location in the current port's local
// coordinates.
func trapGetMouse(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	local := currentPort(d).GlobalToLocal(d.lastMouseLoc)
	return local.WriteTo(d.mm.root, ptr)
}

func trapTickCount(d *TrapDispatcher) error {
	return trapReturn(d, d.events.Ticks())
}

// trapWaitNextEvent: FUNCTION WaitNextEvent(eventMask: INTEGER;
// VAR theEvent: EventRecord; sleep: LongInt; mouseRgn: RgnHandle): BOOLEAN.
func trapWaitNextEvent(d *TrapDispatcher) error {
	_, err := popPtr(d) // mouseRgn: unused, no cursor-region tracking
	if err != nil {
		return err
	}
	sleep, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	evtPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	mask, err := popStackInt[uint16](d)
	if err != nil {
		return err
	}
	evt, ok := d.events.WaitNextEvent(uint32(mask), sleep)
	if ok {
		d.rememberEvent(evt)
	}
	if err := writeEventRecord(d.mm, evtPtr, evt); err != nil {
		return err
	}
	return trapReturnBool(d, ok)
}

// trapGetNextEvent: FUNCTION GetNextEvent(eventMask: INTEGER; VAR
// theEvent: EventRecord): BOOLEAN.
func trapGetNextEvent(d *TrapDispatcher) error {
	evtPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	mask, err := popStackInt[uint16](d)
	if err != nil {
		return err
	}
	evt, ok := d.events.GetNextEvent(uint32(mask))
	if ok {
		d.rememberEvent(evt)
	}
	if err := writeEventRecord(d.mm, evtPtr, evt); err != nil {
		return err
	}
	return trapReturnBool(d, ok)
}

// trapEventAvail peeks without consuming, matching GetNextEvent's
// family of semantics.
func trapEventAvail(d *TrapDispatcher) error {
	evtPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	mask, err := popStackInt[uint16](d)
	if err != nil {
		return err
	}
	evt, ok := d.events.GetNextEvent(uint32(mask))
	if ok {
		d.events.Post(evt)
		d.rememberEvent(evt)
	}
	if err := writeEventRecord(d.mm, evtPtr, evt); err != nil {
		return err
	}
	return trapReturnBool(d, ok)
}

func (d *TrapDispatcher) rememberEvent(evt EventRecord) {
	if evt.What == EvtMouseMove || evt.What == EvtMouseDown || evt.What == EvtMouseUp {
		d.lastMouseLoc = evt.Where
	}
}

// trapPostEvent: FUNCTION PostEvent(eventNum: INTEGER; eventMsg:
// LongInt): OSErr.
func trapPostEvent(d *TrapDispatcher) error {
	msg, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	what, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	d.events.Post(EventRecord{What: EventType(what), Message: msg, Where: d.lastMouseLoc})
	return trapReturn(d, uint16(0))
}

// trapSystemTask is the cooperative-yield point an event loop calls
// every iteration; nothing here needs doing since there is no
// separate desk-accessory scheduler, but the trap must still exist so
// DA-era applications that call it keep running.
func trapSystemTask(d *TrapDispatcher) error { return nil }

func trapFlushEvents(d *TrapDispatcher) error {
	_, err := popStackInt[uint16](d) // stopMask: unused, single mask suffices
	if err != nil {
		return err
	}
	mask, err := popStackInt[uint16](d)
	if err != nil {
		return err
	}
	d.events.FlushEvents(uint32(mask))
	return nil
}

// writeEventRecord encodes an EventRecord into the classic Mac wire
// layout: what(word), message(long), when(long), where(point),
// modifiers(word).
func writeEventRecord(mm *MemoryMap, ptr int, evt EventRecord) error {
	if err := mm.WriteUint16(ptr, uint16(evt.What)); err != nil {
		return err
	}
	if err := mm.WriteUint32(ptr+2, evt.Message); err != nil {
		return err
	}
	if err := mm.WriteUint32(ptr+6, evt.When); err != nil {
		return err
	}
	if err := mm.WriteUint16(ptr+10, uint16(evt.Where.V)); err != nil {
		return err
	}
	if err := mm.WriteUint16(ptr+12, uint16(evt.Where.H)); err != nil {
		return err
	}
	return mm.WriteUint16(ptr+14, evt.Modifiers)
}
