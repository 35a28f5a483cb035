// traps_file.go - File Manager trap stubs.
//
// Grounded on emu/trap/trap_dispatcher.cc's file cluster, reduced to
// no real HFS volume: a single in-memory scratch file stands in for
// an application's own temp-file usage.

package main

func registerFileTraps(d *TrapDispatcher) {
	d.RegisterSystem(0xA0, "Open", trapFileOpen)
	d.RegisterSystem(0xA2, "Read", trapFileRead)
	d.RegisterSystem(0xA3, "Write", trapFileWrite)
	d.RegisterSystem(0xA1, "Close", trapFileClose)
	d.RegisterSystem(0xA4, "GetEOF", trapFileGetEOF)
	d.RegisterSystem(0xA5, "SetEOF", trapFileSetEOF)
}

// scratchFile is the single in-memory buffer every File Manager trap
// in this cluster reads/writes, standing in for the one scratch file
// an emulated application typically opens for its own state (no
// multi-volume HFS is modeled).
type scratchFile struct {
	data []byte
	pos  int
}

func (d *TrapDispatcher) scratch() *scratchFile {
	if d.scratchBuf == nil {
		d.scratchBuf = &scratchFile{}
	}
	return d.scratchBuf
}

// trapFileOpen: FUNCTION Open(paramBlock: ParamBlockRec): OSErr.
// paramBlock's only field this cluster consults is ioRefNum
// (unused here, since there is exactly one scratch file); Open simply
// resets it.
func trapFileOpen(d *TrapDispatcher) error {
	pb := d.host.Reg(RegA0)
	_ = pb
	d.scratch().pos = 0
	d.host.SetReg(RegD0, 0)
	return nil
}

// trapFileRead: reads ioReqCount bytes (D0) from the scratch file into
// the buffer at ioBuffer (A0), returning the actual count read in D0.
func trapFileRead(d *TrapDispatcher) error {
	buf := d.host.Reg(RegA0)
	want := int(d.host.Reg(RegD0))
	sf := d.scratch()
	n := want
	if sf.pos+n > len(sf.data) {
		n = len(sf.data) - sf.pos
	}
	if n < 0 {
		n = 0
	}
	for i := 0; i < n; i++ {
		if err := d.mm.WriteUint8(int(buf)+i, sf.data[sf.pos+i]); err != nil {
			return err
		}
	}
	sf.pos += n
	d.host.SetReg(RegD0, uint32(n))
	return nil
}

// trapFileWrite: writes ioReqCount bytes (D0) from ioBuffer (A0) into
// the scratch file at the current position, growing it as needed.
func trapFileWrite(d *TrapDispatcher) error {
	buf := d.host.Reg(RegA0)
	count := int(d.host.Reg(RegD0))
	sf := d.scratch()
	for i := 0; i < count; i++ {
		b, err := d.mm.ReadUint8(int(buf) + i)
		if err != nil {
			return err
		}
		if sf.pos+i < len(sf.data) {
			sf.data[sf.pos+i] = b
		} else {
			sf.data = append(sf.data, b)
		}
	}
	sf.pos += count
	d.host.SetReg(RegD0, uint32(count))
	return nil
}

func trapFileClose(d *TrapDispatcher) error {
	d.host.SetReg(RegD0, 0)
	return nil
}

func trapFileGetEOF(d *TrapDispatcher) error {
	d.host.SetReg(RegD0, uint32(len(d.scratch().data)))
	return nil
}

func trapFileSetEOF(d *TrapDispatcher) error {
	newLen := int(d.host.Reg(RegD0))
	sf := d.scratch()
	switch {
	case newLen <= len(sf.data):
		sf.data = sf.data[:newLen]
	default:
		sf.data = append(sf.data, make([]byte, newLen-len(sf.data))...)
	}
	d.host.SetReg(RegD0, 0)
	return nil
}
