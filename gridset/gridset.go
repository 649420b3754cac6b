// Package gridset implements a sparse visited-set over lattice points whose
// members cluster along diagonals (constant Y-X), as A* visited-cells do:
// each diagonal is stored as a sorted list of disjoint, non-adjacent integer
// intervals rather than a per-point hash entry.
package gridset

import "sort"

// segment is an inclusive integer interval [Lo, Hi].
type segment struct{ lo, hi int }

// diagonal holds the disjoint, sorted-by-lo intervals for one diagonal.
type diagonal struct {
	segs []segment
}

// contains reports whether x falls in one of the diagonal's intervals.
func (d *diagonal) contains(x int) bool {
	i := sort.Search(len(d.segs), func(i int) bool { return d.segs[i].lo > x })
	if i == 0 {
		return false
	}
	return d.segs[i-1].hi >= x
}

// add inserts x, merging with adjacent intervals [x-1,x-1] and [x+1,x+1].
// Re-adding an already-contained x is a no-op.
func (d *diagonal) add(x int) {
	i := sort.Search(len(d.segs), func(i int) bool { return d.segs[i].lo > x })
	if i > 0 && d.segs[i-1].hi >= x {
		return // already contained
	}
	lo, hi := x, x
	start, end := i, i
	if i > 0 && d.segs[i-1].hi == x-1 {
		start = i - 1
		lo = d.segs[i-1].lo
	}
	if end < len(d.segs) && d.segs[end].lo == x+1 {
		hi = d.segs[end].hi
		end++
	}
	merged := make([]segment, 0, len(d.segs)-(end-start)+1)
	merged = append(merged, d.segs[:start]...)
	merged = append(merged, segment{lo, hi})
	merged = append(merged, d.segs[end:]...)
	d.segs = merged
}

// Point is the coordinate type gridset operates on; it mirrors
// lattice.Point's fields without importing lattice, keeping this package
// leaf-level and dependency-free.
type Point struct {
	X, Y int
}

// Set is a GridSet over a W x H rectangle: diagonal bucket
// d = Y - X + W, one *diagonal per bucket.
type Set struct {
	width, height int
	diags         []diagonal
}

// New returns an empty Set sized for points with 0<=x<=width, 0<=y<=height.
func New(width, height int) *Set {
	return &Set{width: width, height: height, diags: make([]diagonal, width+height+1)}
}

func (s *Set) bucket(p Point) int { return p.Y - p.X + s.width }

// Add records p as visited.
func (s *Set) Add(p Point) {
	if p.X < 0 || p.X > s.width || p.Y < 0 || p.Y > s.height {
		return // outside the configured rectangle: sentinel no-op, never visited
	}
	s.diags[s.bucket(p)].add(p.X)
}

// Contains reports whether p has been added.
func (s *Set) Contains(p Point) bool {
	b := s.bucket(p)
	if b < 0 || b >= len(s.diags) {
		return false
	}
	return s.diags[b].contains(p.X)
}
