// schema.go - common fixed-layout wire records shared across components.

package main

// Point is the classic Mac {v, h} point record: 2 big-endian 16-bit
// fields, vertical before horizontal.
type Point struct {
	V, H int16
}

// FixedSize returns the wire size of a Point (4 bytes).
func (Point) FixedSize() int { return 4 }

// ReadFrom decodes a Point from region at offset.
func (p *Point) ReadFrom(r MemoryRegion, offset int) error {
	v, err := r.ReadUint16(offset)
	if err != nil {
		return err
	}
	h, err := r.ReadUint16(offset + 2)
	if err != nil {
		return err
	}
	p.V, p.H = int16(v), int16(h)
	return nil
}

// WriteTo encodes a Point into region at offset.
func (p Point) WriteTo(r MemoryRegion, offset int) error {
	if err := r.WriteUint16(offset, uint16(p.V)); err != nil {
		return err
	}
	return r.WriteUint16(offset+2, uint16(p.H))
}

// Rect is the classic Mac {top, left, bottom, right} rectangle record.
type Rect struct {
	Top, Left, Bottom, Right int16
}

// FixedSize returns the wire size of a Rect (8 bytes).
func (Rect) FixedSize() int { return 8 }

// ReadFrom decodes a Rect from region at offset.
func (rc *Rect) ReadFrom(r MemoryRegion, offset int) error {
	vals := make([]int16, 4)
	for i := range vals {
		v, err := r.ReadUint16(offset + i*2)
		if err != nil {
			return err
		}
		vals[i] = int16(v)
	}
	rc.Top, rc.Left, rc.Bottom, rc.Right = vals[0], vals[1], vals[2], vals[3]
	return nil
}

// WriteTo encodes a Rect into region at offset.
func (rc Rect) WriteTo(r MemoryRegion, offset int) error {
	vals := [4]int16{rc.Top, rc.Left, rc.Bottom, rc.Right}
	for i, v := range vals {
		if err := r.WriteUint16(offset+i*2, uint16(v)); err != nil {
			return err
		}
	}
	return nil
}

// Width returns the rectangle's width.
func (rc Rect) Width() int { return int(rc.Right - rc.Left) }

// Height returns the rectangle's height.
func (rc Rect) Height() int { return int(rc.Bottom - rc.Top) }

// IsEmpty reports whether the rectangle encloses no area.
func (rc Rect) IsEmpty() bool { return rc.Right <= rc.Left || rc.Bottom <= rc.Top }

// OffsetBy returns rc shifted by (dh, dv).
func (rc Rect) OffsetBy(dh, dv int16) Rect {
	return Rect{rc.Top + dv, rc.Left + dh, rc.Bottom + dv, rc.Right + dh}
}

// InsetBy returns rc shrunk (or grown, for negative values) by dh/dv on
// each side.
func (rc Rect) InsetBy(dh, dv int16) Rect {
	return Rect{rc.Top + dv, rc.Left + dh, rc.Bottom - dv, rc.Right - dh}
}

// Intersect returns the intersection of rc and other, and whether it is
// non-empty.
func (rc Rect) Intersect(other Rect) (Rect, bool) {
	out := Rect{
		Top:    max16(rc.Top, other.Top),
		Left:   max16(rc.Left, other.Left),
		Bottom: min16(rc.Bottom, other.Bottom),
		Right:  min16(rc.Right, other.Right),
	}
	return out, !out.IsEmpty()
}

// Equal reports whether rc and other describe the same rectangle.
func (rc Rect) Equal(other Rect) bool { return rc == other }

// Contains reports whether pt lies within rc (top/left inclusive,
// bottom/right exclusive, per QuickDraw's PtInRect convention).
func (rc Rect) Contains(pt Point) bool {
	return pt.H >= rc.Left && pt.H < rc.Right && pt.V >= rc.Top && pt.V < rc.Bottom
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

// SegmentTableHeader is CODE 0's 16-byte header preceding the jump table:
// above/below-A5 world sizes, the jump table's own size, and its offset
// within CODE 0 (always 32 for a near-model application per
// emu/segment_loader.cc).
type SegmentTableHeader struct {
	AboveA5   uint32
	BelowA5   uint32
	TableSize uint32
	TableOffset uint32
}

// FixedSize returns the wire size of a SegmentTableHeader (16 bytes).
func (SegmentTableHeader) FixedSize() int { return 16 }

// ReadFrom decodes a SegmentTableHeader from region at offset.
func (h *SegmentTableHeader) ReadFrom(r MemoryRegion, offset int) error {
	var err error
	if h.AboveA5, err = r.ReadUint32(offset); err != nil {
		return err
	}
	if h.BelowA5, err = r.ReadUint32(offset + 4); err != nil {
		return err
	}
	if h.TableSize, err = r.ReadUint32(offset + 8); err != nil {
		return err
	}
	if h.TableOffset, err = r.ReadUint32(offset + 12); err != nil {
		return err
	}
	return nil
}

// WriteTo encodes a SegmentTableHeader into region at offset.
func (h SegmentTableHeader) WriteTo(r MemoryRegion, offset int) error {
	if err := r.WriteUint32(offset, h.AboveA5); err != nil {
		return err
	}
	if err := r.WriteUint32(offset+4, h.BelowA5); err != nil {
		return err
	}
	if err := r.WriteUint32(offset+8, h.TableSize); err != nil {
		return err
	}
	return r.WriteUint32(offset+12, h.TableOffset)
}

// SegmentTableEntry is one 8-byte jump-table slot: a segment id, the
// JMP opcode patched in on first load (0x4EF9), and the absolute
// address jumped to.
type SegmentTableEntry struct {
	SegmentID uint16
	JMPOpcode uint16
	Address   uint32
}

// FixedSize returns the wire size of a SegmentTableEntry (8 bytes).
func (SegmentTableEntry) FixedSize() int { return 8 }

// ReadFrom decodes a SegmentTableEntry from region at offset.
func (e *SegmentTableEntry) ReadFrom(r MemoryRegion, offset int) error {
	var err error
	if e.SegmentID, err = r.ReadUint16(offset); err != nil {
		return err
	}
	if e.JMPOpcode, err = r.ReadUint16(offset + 2); err != nil {
		return err
	}
	if e.Address, err = r.ReadUint32(offset + 4); err != nil {
		return err
	}
	return nil
}

// WriteTo encodes a SegmentTableEntry into region at offset.
func (e SegmentTableEntry) WriteTo(r MemoryRegion, offset int) error {
	if err := r.WriteUint16(offset, e.SegmentID); err != nil {
		return err
	}
	if err := r.WriteUint16(offset+2, e.JMPOpcode); err != nil {
		return err
	}
	return r.WriteUint32(offset+4, e.Address)
}

const jmpAbsoluteOpcode = 0x4EF9

// AppParameters is the two stdio reference numbers and FinderInfo
// handle the Segment Loader writes below A5 at boot
// (emu/segment_loader.cc's WriteAppParams).
type AppParameters struct {
	StdInRefNum  uint16
	StdOutRefNum uint16
	FinderInfo   uint32
}

// FixedSize returns the wire size of an AppParameters record (8 bytes).
func (AppParameters) FixedSize() int { return 8 }

// ReadFrom decodes an AppParameters record from region at offset.
func (a *AppParameters) ReadFrom(r MemoryRegion, offset int) error {
	var err error
	if a.StdInRefNum, err = r.ReadUint16(offset); err != nil {
		return err
	}
	if a.StdOutRefNum, err = r.ReadUint16(offset + 2); err != nil {
		return err
	}
	if a.FinderInfo, err = r.ReadUint32(offset + 4); err != nil {
		return err
	}
	return nil
}

// WriteTo encodes an AppParameters record into region at offset.
func (a AppParameters) WriteTo(r MemoryRegion, offset int) error {
	if err := r.WriteUint16(offset, a.StdInRefNum); err != nil {
		return err
	}
	if err := r.WriteUint16(offset+2, a.StdOutRefNum); err != nil {
		return err
	}
	return r.WriteUint32(offset+4, a.FinderInfo)
}
