// reader.go - sequential typed cursor over a MemoryRegion.

package main

import "fmt"

// Record is implemented by generated-style struct codecs: a fixed-size
// wire record that knows how to read/write itself relative to an offset
// within a MemoryRegion. Hand-written here in place of the typegen
// code-generator the original project used.
type Record interface {
	FixedSize() int
	ReadFrom(r MemoryRegion, offset int) error
	WriteTo(r MemoryRegion, offset int) error
}

// StructuredReader is a sequential cursor over a MemoryRegion tracking an
// offset, mirroring core::MemoryReader.
type StructuredReader struct {
	region MemoryRegion
	offset int
}

// NewStructuredReader creates a cursor starting at offset within region.
func NewStructuredReader(region MemoryRegion, offset int) *StructuredReader {
	return &StructuredReader{region: region, offset: offset}
}

// Offset returns the current read position.
func (s *StructuredReader) Offset() int { return s.offset }

// HasNext reports whether there is still memory left to read.
func (s *StructuredReader) HasNext() bool {
	return s.offset < s.region.Size()
}

// NextUint8 reads the next byte and advances the cursor.
func (s *StructuredReader) NextUint8() (uint8, error) {
	v, err := s.region.ReadUint8(s.offset)
	if err != nil {
		return 0, err
	}
	s.offset++
	return v, nil
}

// NextUint16 reads the next big-endian word and advances the cursor.
func (s *StructuredReader) NextUint16() (uint16, error) {
	v, err := s.region.ReadUint16(s.offset)
	if err != nil {
		return 0, err
	}
	s.offset += 2
	return v, nil
}

// NextUint32 reads the next big-endian longword and advances the cursor.
func (s *StructuredReader) NextUint32() (uint32, error) {
	v, err := s.region.ReadUint32(s.offset)
	if err != nil {
		return 0, err
	}
	s.offset += 4
	return v, nil
}

// PeekUint8 reads the next byte without advancing the cursor.
func (s *StructuredReader) PeekUint8() (uint8, error) {
	return s.region.ReadUint8(s.offset)
}

// PeekUint16 reads the next word without advancing the cursor.
func (s *StructuredReader) PeekUint16() (uint16, error) {
	return s.region.ReadUint16(s.offset)
}

// NextRecord reads a fixed-size record at the cursor and advances past it.
func (s *StructuredReader) NextRecord(rec Record) error {
	if err := rec.ReadFrom(s.region, s.offset); err != nil {
		return err
	}
	s.offset += rec.FixedSize()
	return nil
}

// NextPascalString reads a 1-byte length prefix followed by that many
// characters. If fixedSize is non-zero, the string's stored length must
// be less than fixedSize and the cursor always advances by fixedSize
// regardless of the string's actual length (the remaining bytes are
// padding).
func (s *StructuredReader) NextPascalString(fixedSize int) (string, error) {
	length, err := s.region.ReadUint8(s.offset)
	if err != nil {
		return "", err
	}
	data, err := s.region.ReadBytes(s.offset+1, int(length))
	if err != nil {
		return "", err
	}
	if fixedSize > 0 {
		if int(length) >= fixedSize {
			return "", fmt.Errorf("pascal string length %d exceeds fixed size %d", length, fixedSize)
		}
		s.offset += fixedSize
	} else {
		s.offset += 1 + int(length)
	}
	return string(data), nil
}

// NextSubRegion carves a new region of the given length starting at the
// cursor and advances past it.
func (s *StructuredReader) NextSubRegion(name string, length int) (MemoryRegion, error) {
	sub, err := s.region.NewSubRegion(name, s.offset, length)
	if err != nil {
		return MemoryRegion{}, err
	}
	s.offset += length
	return sub, nil
}

// OffsetTo moves the cursor to an absolute offset.
func (s *StructuredReader) OffsetTo(newOffset int) { s.offset = newOffset }

// SkipNext moves the cursor forward by n bytes.
func (s *StructuredReader) SkipNext(n int) { s.offset += n }

// AlignTo moves the cursor to the start of the "next block" using the
// original project's formula: (offset/block + 1) * block rather than
// the more obvious round-up-to-multiple ((offset+block-1)/block)*block,
// which means an offset that already sits exactly on a block boundary
// is still advanced a full block. Ported literally, not "fixed".
func (s *StructuredReader) AlignTo(block int) {
	if block <= 0 {
		return
	}
	s.offset = (s.offset/block + 1) * block
}
