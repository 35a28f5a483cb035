// region_algebra_test.go - region laws and a rectangle round-trip
// scenario.

package main

import "testing"

func sameRegionRows(a, b Region) bool {
	if len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if a.Rows[i].Y != b.Rows[i].Y || !sameInts(a.Rows[i].Xs, b.Rows[i].Xs) {
			return false
		}
	}
	return true
}

func TestRegionRoundTripUnion(t *testing.T) {
	r1 := NewRectRegion(Rect{Top: 1, Left: 1, Bottom: 6, Right: 11})
	r2 := NewRectRegion(Rect{Top: 6, Left: 3, Bottom: 16, Right: 7})

	got := UnionRegion(r1, r2)
	want := Region{
		Rows: []Scanline{
			{Y: 1, Xs: []int16{1, 11}},
			{Y: 6, Xs: []int16{3, 7}},
			{Y: 16, Xs: nil},
		},
	}
	if !sameRegionRows(got, want) {
		t.Fatalf("union rows = %+v, want %+v", got.Rows, want.Rows)
	}
}

func TestRegionLawUnionWithEmpty(t *testing.T) {
	r := NewRectRegion(Rect{Top: 0, Left: 0, Bottom: 10, Right: 10})
	got := UnionRegion(r, Region{})
	if !sameRegionRows(got, r) {
		t.Fatalf("union(r, empty) = %+v, want %+v", got.Rows, r.Rows)
	}
}

func TestRegionLawIntersectSelf(t *testing.T) {
	r := NewRectRegion(Rect{Top: 2, Left: 2, Bottom: 9, Right: 9})
	got := IntersectRegion(r, r)
	if !sameRegionRows(got, r) {
		t.Fatalf("intersect(r,r) = %+v, want %+v", got.Rows, r.Rows)
	}
}

func TestRegionLawDifferenceSelfIsEmpty(t *testing.T) {
	r := NewRectRegion(Rect{Top: 2, Left: 2, Bottom: 9, Right: 9})
	got := DifferenceRegion(r, r)
	if !got.IsEmpty() {
		t.Fatalf("difference(r,r) = %+v, want empty", got.Rows)
	}
}

func TestRegionLawUnionCommutes(t *testing.T) {
	a := NewRectRegion(Rect{Top: 1, Left: 1, Bottom: 6, Right: 11})
	b := NewRectRegion(Rect{Top: 6, Left: 3, Bottom: 16, Right: 7})
	if !sameRegionRows(UnionRegion(a, b), UnionRegion(b, a)) {
		t.Fatal("union(a,b) != union(b,a)")
	}
}

// TestRegionLawDifferenceUnionIntersect checks difference(a,b) and
// intersect(a,b) partition a: union(difference(a,b), intersect(a,b)) == a.
func TestRegionLawDifferenceUnionIntersect(t *testing.T) {
	a := NewRectRegion(Rect{Top: 0, Left: 0, Bottom: 10, Right: 10})
	b := NewRectRegion(Rect{Top: 5, Left: 5, Bottom: 15, Right: 15})

	diff := DifferenceRegion(a, b)
	inter := IntersectRegion(a, b)
	recombined := UnionRegion(diff, inter)

	if !sameRegionRows(recombined, a) {
		t.Fatalf("difference(a,b) ∪ intersect(a,b) = %+v, want a = %+v", recombined.Rows, a.Rows)
	}
}

func TestRegionContainsPoint(t *testing.T) {
	r := NewRectRegion(Rect{Top: 4, Left: 4, Bottom: 12, Right: 12})
	if !r.ContainsPoint(Point{V: 4, H: 4}) {
		t.Fatal("ContainsPoint(4,4) = false, want true (top-left is inclusive)")
	}
	if r.ContainsPoint(Point{V: 12, H: 4}) {
		t.Fatal("ContainsPoint(12,4) = true, want false (bottom is exclusive)")
	}
	if r.ContainsPoint(Point{V: 4, H: 12}) {
		t.Fatal("ContainsPoint(4,12) = true, want false (right is exclusive)")
	}
}
