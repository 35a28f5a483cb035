// region.go - bounds-checked big-endian views over the emulated address space.

package main

import (
	"encoding/binary"
	"fmt"
)

// MemoryRegion is a named, bounds-tracked view over a contiguous slice of
// the emulated 512 KiB address space. The root region owns the backing
// bytes; every other region is a non-owning view with an offset relative
// to the root and a declared size that may be smaller than what the root
// actually has behind it.
type MemoryRegion struct {
	name   string
	root   *rootStore
	base   int // absolute offset into root.bytes
	size   int // declared size of this view
	watch  func(offset, n int)
}

// rootStore is the single authoritative byte array shared by every
// MemoryRegion carved from it.
type rootStore struct {
	bytes []byte
}

// NewRootRegion allocates the backing store for the whole address space.
func NewRootRegion(name string, size int) MemoryRegion {
	return MemoryRegion{
		name: name,
		root: &rootStore{bytes: make([]byte, size)},
		base: 0,
		size: size,
	}
}

// Name returns this region's label, used in error messages.
func (r MemoryRegion) Name() string { return r.name }

// Size returns this region's declared size.
func (r MemoryRegion) Size() int { return r.size }

// Base returns this region's absolute offset into the root store.
func (r MemoryRegion) Base() int { return r.base }

// NewSubRegion carves a view starting at offset (relative to r) with the
// given length. If the sub-region would exceed r's declared size but not
// the root's actual backing size, it is created anyway with a warning;
// exceeding the root is a hard error.
func (r MemoryRegion) NewSubRegion(name string, offset, length int) (MemoryRegion, error) {
	absBase := r.base + offset
	if absBase < 0 || absBase+length > len(r.root.bytes) {
		return MemoryRegion{}, fmt.Errorf("%s: sub-region %q [%#x,%#x) exceeds root size %#x",
			r.name, name, absBase, absBase+length, len(r.root.bytes))
	}
	if offset+length > r.size {
		fmt.Printf("[region] warning: sub-region %q [%#x,%#x) exceeds parent %q declared size %#x\n",
			name, offset, offset+length, r.name, r.size)
	}
	return MemoryRegion{name: name, root: r.root, base: absBase, size: length}, nil
}

// SetWatcher installs a callback invoked on every write within this
// region; no component in this repository installs one.
func (r *MemoryRegion) SetWatcher(fn func(offset, n int)) {
	r.watch = fn
}

func (r MemoryRegion) checkBounds(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > r.size {
		return fmt.Errorf("%s: out-of-range access at offset %#x length %d (region size %#x)",
			r.name, offset, n, r.size)
	}
	if r.base+offset+n > len(r.root.bytes) {
		return fmt.Errorf("%s: out-of-range access at offset %#x length %d exceeds root", r.name, offset, n)
	}
	return nil
}

// ReadUint8 reads a single byte at offset.
func (r MemoryRegion) ReadUint8(offset int) (uint8, error) {
	if err := r.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return r.root.bytes[r.base+offset], nil
}

// ReadUint16 reads a big-endian 16-bit integer at offset.
func (r MemoryRegion) ReadUint16(offset int) (uint16, error) {
	if err := r.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.root.bytes[r.base+offset:]), nil
}

// ReadUint32 reads a big-endian 32-bit integer at offset.
func (r MemoryRegion) ReadUint32(offset int) (uint32, error) {
	if err := r.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.root.bytes[r.base+offset:]), nil
}

// WriteUint8 writes a single byte at offset.
func (r MemoryRegion) WriteUint8(offset int, v uint8) error {
	if err := r.checkBounds(offset, 1); err != nil {
		return err
	}
	r.root.bytes[r.base+offset] = v
	if r.watch != nil {
		r.watch(offset, 1)
	}
	return nil
}

// WriteUint16 writes a big-endian 16-bit integer at offset.
func (r MemoryRegion) WriteUint16(offset int, v uint16) error {
	if err := r.checkBounds(offset, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(r.root.bytes[r.base+offset:], v)
	if r.watch != nil {
		r.watch(offset, 2)
	}
	return nil
}

// WriteUint32 writes a big-endian 32-bit integer at offset.
func (r MemoryRegion) WriteUint32(offset int, v uint32) error {
	if err := r.checkBounds(offset, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(r.root.bytes[r.base+offset:], v)
	if r.watch != nil {
		r.watch(offset, 4)
	}
	return nil
}

// ReadBytes returns a copy of n bytes starting at offset.
func (r MemoryRegion) ReadBytes(offset, n int) ([]byte, error) {
	if err := r.checkBounds(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.root.bytes[r.base+offset:r.base+offset+n])
	return out, nil
}

// WriteBytes copies data into the region starting at offset.
func (r MemoryRegion) WriteBytes(offset int, data []byte) error {
	if err := r.checkBounds(offset, len(data)); err != nil {
		return err
	}
	copy(r.root.bytes[r.base+offset:], data)
	if r.watch != nil {
		r.watch(offset, len(data))
	}
	return nil
}

// Copy copies n bytes from src (at srcOffset) to this region (at
// dstOffset), both within the same root store, raw byte-for-byte (no
// endian conversion). Nothing in this repository calls it; BlockMove
// copies byte by byte through the MemoryMap.
func (r MemoryRegion) Copy(dstOffset int, src MemoryRegion, srcOffset, n int) error {
	data, err := src.ReadBytes(srcOffset, n)
	if err != nil {
		return err
	}
	return r.WriteBytes(dstOffset, data)
}
