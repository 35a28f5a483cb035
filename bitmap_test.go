// bitmap_test.go - FillRect/clip and XOr involution properties.

package main

import "testing"

// TestFillRectRespectsClip: a 32x32 bitmap clipped to (4,4,12,12);
// FillRect((0,0,16,16)) must only set bits inside the clip
// intersection.
func TestFillRectRespectsClip(t *testing.T) {
	b := NewBitmapImage(32, 32)
	b.Clip = NewRectRegion(Rect{Top: 4, Left: 4, Bottom: 12, Right: 12})

	b.FillRect(Rect{Top: 0, Left: 0, Bottom: 16, Right: 16}, BlackPattern, FillCopy)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			inside := y >= 4 && y < 12 && x >= 4 && x < 12
			got := b.getBit(x, y)
			want := 0
			if inside {
				want = 1
			}
			if got != want {
				t.Fatalf("bit(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

// TestXOrInvolution: applying the same XOr fill twice restores the
// bitmap exactly.
func TestXOrInvolution(t *testing.T) {
	b := NewBitmapImage(16, 16)
	b.FillRect(Rect{Top: 0, Left: 0, Bottom: 16, Right: 16}, GreyPattern, FillCopy)

	before := make([]byte, len(b.Bits))
	copy(before, b.Bits)

	r := Rect{Top: 2, Left: 2, Bottom: 10, Right: 10}
	b.FillRect(r, BlackPattern, FillXOr)
	b.FillRect(r, BlackPattern, FillXOr)

	for i := range before {
		if b.Bits[i] != before[i] {
			t.Fatalf("byte %d = %#02x after double XOr, want %#02x (unchanged)", i, b.Bits[i], before[i])
		}
	}
}

// TestFillRectNegativeLeftDoesNotPanic covers a window dragged partway
// off the left edge of the screen, where the fill rect's Left (and
// hence the pattern-alignment offset) goes negative.
func TestFillRectNegativeLeftDoesNotPanic(t *testing.T) {
	b := NewBitmapImage(16, 16)
	b.FillRect(Rect{Top: 0, Left: -5, Bottom: 8, Right: 8}, GreyPattern, FillCopy)

	want := byte(GreyPattern[0])
	for x := 0; x < 8; x++ {
		bit := int((want >> (7 - uint(x%8))) & 1)
		if got := b.getBit(x, 0); got != bit {
			t.Fatalf("bit(%d,0) = %d, want %d", x, got, bit)
		}
	}
}

func TestFillRectCopyOutsideClipUnchanged(t *testing.T) {
	b := NewBitmapImage(8, 8)
	b.Clip = NewRectRegion(Rect{Top: 0, Left: 0, Bottom: 4, Right: 8})

	b.FillRect(Rect{Top: 0, Left: 0, Bottom: 8, Right: 8}, BlackPattern, FillCopy)

	for y := 4; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := b.getBit(x, y); got != 0 {
				t.Fatalf("bit(%d,%d) = %d, want 0 (outside clip, untouched)", x, y, got)
			}
		}
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if got := b.getBit(x, y); got != 1 {
				t.Fatalf("bit(%d,%d) = %d, want 1 (inside clip)", x, y, got)
			}
		}
	}
}
