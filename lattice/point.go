// Package lattice implements the monotonic grid path value type shared by
// the coarse search and corridor refinement passes: points, moves, and the
// run-length-encoded path that records a trajectory through the grid.
package lattice

import "fmt"

// Point is an integer coordinate on the alignment lattice. X indexes the
// first spectrogram's frames, Y the second's.
type Point struct {
	X, Y int
}

// Diff is X-Y, invariant along diagonal moves. Slice is X+Y, the
// antidiagonal index; the corridor pass processes antidiagonals in
// increasing Slice order.
func (p Point) Diff() int  { return p.X - p.Y }
func (p Point) Slice() int { return p.X + p.Y }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Apply returns the point reached from p by a single move.
func Apply(p Point, m Move) Point {
	dx, dy := m.Delta()
	return Point{p.X + dx, p.Y + dy}
}

// Unapply returns the point that a single move of m would have come from
// to reach p — i.e. the inverse of Apply.
func Unapply(p Point, m Move) Point {
	dx, dy := m.Delta()
	return Point{p.X - dx, p.Y - dy}
}
