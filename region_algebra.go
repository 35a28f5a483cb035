// region_algebra.go - scanline-encoded region algebra (union/intersect/difference).
//
// Grounded on emu/graphics/region.{h,cc}.

package main

import "sort"

// Scanline is one (y, x-pairs) row of a Region: an even-length,
// ascending list of x boundaries describing half-open [x0,x1) ∪
// [x2,x3) ∪ ... intervals active from this row until the next one.
type Scanline struct {
	Y  int16
	Xs []int16
}

// Region is a scanline-encoded point set with a cached bounding
// rectangle.
type Region struct {
	Bounds Rect
	Rows   []Scanline // ordered by Y; the last row has no x-pairs and marks where the region ends
}

// NewRectRegion builds a single-rectangle region: a top scanline with
// one x-pair and a closing bottom scanline with none.
func NewRectRegion(r Rect) Region {
	if r.IsEmpty() {
		return Region{}
	}
	return Region{
		Bounds: r,
		Rows: []Scanline{
			{Y: r.Top, Xs: []int16{r.Left, r.Right}},
			{Y: r.Bottom, Xs: nil},
		},
	}
}

// IsEmpty reports whether the region encloses no area.
func (r Region) IsEmpty() bool { return len(r.Rows) == 0 }

// rowIntervals returns the x-pairs in effect at y: those of the last
// row in rows whose Y is <= y.
func rowIntervals(rows []Scanline, y int16) []int16 {
	// Find the last row with Y <= y.
	var active []int16
	for _, row := range rows {
		if row.Y > y {
			break
		}
		active = row.Xs
	}
	return active
}

// allBoundaryYs returns the sorted, deduped union of every Y value
// present across both row lists, used to drive both cursors in lockstep.
func allBoundaryYs(a, b []Scanline) []int16 {
	seen := map[int16]bool{}
	var ys []int16
	for _, row := range a {
		if !seen[row.Y] {
			seen[row.Y] = true
			ys = append(ys, row.Y)
		}
	}
	for _, row := range b {
		if !seen[row.Y] {
			seen[row.Y] = true
			ys = append(ys, row.Y)
		}
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] < ys[j] })
	return ys
}

// unionRow merges two sorted x-pair lists, coalescing overlapping or
// touching intervals.
func unionRow(a, b []int16) []int16 {
	type interval struct{ lo, hi int16 }
	var all []interval
	for i := 0; i+1 < len(a); i += 2 {
		all = append(all, interval{a[i], a[i+1]})
	}
	for i := 0; i+1 < len(b); i += 2 {
		all = append(all, interval{b[i], b[i+1]})
	}
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lo < all[j].lo })
	merged := []interval{all[0]}
	for _, iv := range all[1:] {
		last := &merged[len(merged)-1]
		if iv.lo <= last.hi {
			if iv.hi > last.hi {
				last.hi = iv.hi
			}
		} else {
			merged = append(merged, iv)
		}
	}
	var out []int16
	for _, iv := range merged {
		out = append(out, iv.lo, iv.hi)
	}
	return out
}

// intersectRow walks two sorted x-pair lists emitting [max(lo),min(hi))
// for every overlapping pair.
func intersectRow(a, b []int16) []int16 {
	var out []int16
	for i := 0; i+1 < len(a); i += 2 {
		for j := 0; j+1 < len(b); j += 2 {
			lo := max16(a[i], b[j])
			hi := min16(a[i+1], b[j+1])
			if lo < hi {
				out = append(out, lo, hi)
			}
		}
	}
	return out
}

// differenceRow subtracts every interval of b from every interval of a,
// emitting the remaining fragments of a.
func differenceRow(a, b []int16) []int16 {
	type interval struct{ lo, hi int16 }
	var cur []interval
	for i := 0; i+1 < len(a); i += 2 {
		cur = append(cur, interval{a[i], a[i+1]})
	}
	for j := 0; j+1 < len(b); j += 2 {
		blo, bhi := b[j], b[j+1]
		var next []interval
		for _, iv := range cur {
			if bhi <= iv.lo || blo >= iv.hi {
				next = append(next, iv)
				continue
			}
			if blo > iv.lo {
				next = append(next, interval{iv.lo, blo})
			}
			if bhi < iv.hi {
				next = append(next, interval{bhi, iv.hi})
			}
		}
		cur = next
	}
	var out []int16
	for _, iv := range cur {
		out = append(out, iv.lo, iv.hi)
	}
	return out
}

type rowOp func(a, b []int16) []int16

// combine drives both regions' scanline cursors by Y, applying op to
// each row's active intervals, coalescing consecutive identical rows,
// and tracking a bounding box over whatever survives.
func combine(a, b Region, op rowOp) Region {
	ys := allBoundaryYs(a.Rows, b.Rows)
	var out Region
	var lastXs []int16
	haveLast := false
	haveBounds := false
	for _, y := range ys {
		av := rowIntervals(a.Rows, y)
		bv := rowIntervals(b.Rows, y)
		merged := op(av, bv)
		if haveLast && sameInts(merged, lastXs) {
			continue
		}
		if len(lastXs) > 0 {
			out.Bounds.Bottom = y // the band above this row ends here
		}
		out.Rows = append(out.Rows, Scanline{Y: y, Xs: merged})
		lastXs = merged
		haveLast = true
		if len(merged) > 0 {
			if !haveBounds {
				out.Bounds = Rect{Top: y, Bottom: y, Left: merged[0], Right: merged[len(merged)-1]}
				haveBounds = true
			} else {
				if y < out.Bounds.Top {
					out.Bounds.Top = y
				}
				if y > out.Bounds.Bottom {
					out.Bounds.Bottom = y
				}
				if merged[0] < out.Bounds.Left {
					out.Bounds.Left = merged[0]
				}
				if merged[len(merged)-1] > out.Bounds.Right {
					out.Bounds.Right = merged[len(merged)-1]
				}
			}
		}
	}
	// Drop a trailing empty-row-only region.
	if len(out.Rows) > 0 {
		allEmpty := true
		for _, row := range out.Rows {
			if len(row.Xs) > 0 {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			return Region{}
		}
	}
	return out
}

func sameInts(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UnionRegion returns the union of a and b.
func UnionRegion(a, b Region) Region { return combine(a, b, unionRow) }

// IntersectRegion returns the intersection of a and b.
func IntersectRegion(a, b Region) Region { return combine(a, b, intersectRow) }

// DifferenceRegion returns a with b's area removed.
func DifferenceRegion(a, b Region) Region { return combine(a, b, differenceRow) }

// ContainsPoint reports whether pt lies within the region.
func (r Region) ContainsPoint(pt Point) bool {
	xs := rowIntervals(r.Rows, pt.V)
	for i := 0; i+1 < len(xs); i += 2 {
		if pt.H >= xs[i] && pt.H < xs[i+1] {
			return true
		}
	}
	return false
}

// IntersectsRect reports whether the region overlaps rect at all.
func (r Region) IntersectsRect(rect Rect) bool {
	inter := IntersectRegion(r, NewRectRegion(rect))
	return !inter.IsEmpty()
}
