// traps_system.go - OS-utility Toolbox/system traps: time, random,
// bit/fixed-point arithmetic helpers, and shell exit.
//
// Grounded on emu/trap/trap_dispatcher.cc's system-utility cluster.

package main

// hfsEpochOffset is the number of seconds between the HFS epoch
// (1904-01-01) and the Unix epoch (1970-01-01).
const hfsEpochOffset = 2082844800

func registerSystemTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x003+0x300, "ReadDateTime", trapReadDateTime)
	d.RegisterToolbox(0x004+0x300, "SecondsToDate", trapSecondsToDate)
	d.RegisterToolbox(0x005+0x300, "DateToSeconds", trapDateToSeconds)
	d.RegisterToolbox(0x02C+0x300, "Random", trapRandom)
	d.RegisterToolbox(0x09E+0x300, "SysEnvirons", trapSysEnvirons)
	// _ExitToShell is $A9F4: bit 11 set (the Toolbox dispatch flag), so
	// despite living in the OS Utilities chapter of Inside Macintosh it
	// decodes as Toolbox trap index 0x1F4, not OS trap 0xF4.
	d.RegisterToolbox(0x1F4, "ExitToShell", trapExitToShell)
}

// trapReadDateTime: FUNCTION ReadDateTime(VAR time: LongInt): OSErr.
// time is seconds since the HFS epoch, derived from the Event
// Manager's tick clock the same way the original reads the time
// manager's seconds counter.
func trapReadDateTime(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	seconds := uint32(hfsEpochOffset) + d.events.Ticks()/60
	if err := d.mm.WriteUint32(ptr, seconds); err != nil {
		return err
	}
	return trapReturn(d, uint16(0))
}

// secondsToDateTimeRec decomposes HFS seconds into the classic
// {year,month,day,hour,minute,second,dayOfWeek} DateTimeRec using
// stdlib-free integer arithmetic (no leap-second/timezone handling,
// matching the original's simplified Mac OS calendar).
func secondsToDateTimeRec(seconds uint32) [7]int16 {
	days := int64(seconds) / 86400
	rem := int64(seconds) % 86400
	hour := int16(rem / 3600)
	minute := int16((rem % 3600) / 60)
	second := int16(rem % 60)
	dayOfWeek := int16((days+5)%7) + 1 // HFS epoch (1904-01-01) was a Friday

	year := int16(1904)
	for {
		daysInYear := int64(365)
		if isLeapYear(year) {
			daysInYear = 366
		}
		if days < daysInYear {
			break
		}
		days -= daysInYear
		year++
	}
	monthLengths := [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if isLeapYear(year) {
		monthLengths[1] = 29
	}
	month := int16(1)
	for _, ml := range monthLengths {
		if days < ml {
			break
		}
		days -= ml
		month++
	}
	day := int16(days) + 1
	return [7]int16{year, month, day, hour, minute, second, dayOfWeek}
}

func isLeapYear(year int16) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// trapSecondsToDate: PROCEDURE SecondsToDate(seconds: LongInt; VAR d: DateTimeRec).
func trapSecondsToDate(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	seconds, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	rec := secondsToDateTimeRec(seconds)
	for i, v := range rec {
		if err := d.mm.WriteUint16(ptr+i*2, uint16(v)); err != nil {
			return err
		}
	}
	return nil
}

// trapDateToSeconds: PROCEDURE DateToSeconds(d: DateTimeRec; VAR
// seconds: LongInt). Inverse of SecondsToDate; dayOfWeek is ignored on
// the way in just as the original does.
func trapDateToSeconds(d *TrapDispatcher) error {
	secondsPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	recPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	vals := make([]int16, 6)
	for i := range vals {
		v, err := d.mm.ReadUint16(recPtr + i*2)
		if err != nil {
			return err
		}
		vals[i] = int16(v)
	}
	year, month, day, hour, minute, second := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	var total int64
	for y := int16(1904); y < year; y++ {
		if isLeapYear(y) {
			total += 366 * 86400
		} else {
			total += 365 * 86400
		}
	}
	monthLengths := [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if isLeapYear(year) {
		monthLengths[1] = 29
	}
	for m := int16(1); m < month; m++ {
		total += monthLengths[m-1] * 86400
	}
	total += int64(day-1) * 86400
	total += int64(hour) * 3600
	total += int64(minute) * 60
	total += int64(second)
	return d.mm.WriteUint32(secondsPtr, uint32(total))
}

// randState is the trap cluster's own linear-congruential generator,
// independent of the host's math/rand so Random's sequence is
// reproducible across runs given the same seed, matching the
// original's self-contained PRNG rather than delegating to the OS.
var randState uint32 = 1

// trapRandom: FUNCTION Random: INTEGER. Returns a signed 16-bit value.
func trapRandom(d *TrapDispatcher) error {
	randState = randState*1103515245 + 12345
	return trapReturn(d, int16(randState>>16))
}

// trapSysEnvirons: FUNCTION SysEnvirons(versionRequested: INTEGER; VAR
// theWorld: SysEnvRec): OSErr. Reports a fixed, conservative
// environment (no color QuickDraw, no AppleTalk) matching the
// baseline Macintosh Plus-class machine this emulator targets.
func trapSysEnvirons(d *TrapDispatcher) error {
	worldPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	_, err = popStackInt[int16](d) // versionRequested: unused, one fixed environment reported
	if err != nil {
		return err
	}
	fields := []int16{1, 1, 0, 0, 0, 0, 0}
	for i, v := range fields {
		if err := d.mm.WriteUint16(worldPtr+i*2, uint16(v)); err != nil {
			return err
		}
	}
	return trapReturn(d, uint16(0))
}

// trapExitToShell: PROCEDURE ExitToShell. Marks the dispatcher's quit
// flag rather than terminating the process directly, so the host
// frame loop winds down cooperatively between timeslices.
func trapExitToShell(d *TrapDispatcher) error {
	d.RequestQuit()
	return nil
}
