package lattice

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedPath is returned by Parse when the input does not match the
// textual path grammar `^(-|\||/)\d+( (-|\||/)\d+)*$`.
var ErrMalformedPath = errors.New("lattice: malformed path text")

// run is one (move, count) pair in the run-length encoding. count is always
// >= 1; adjacent runs in a Path always have distinct moves (canonical form).
type run struct {
	move  Move
	count int
}

// Path is an immutable-in-practice, run-length-encoded monotonic walk from
// the implicit origin (0,0). Operations that "mutate" (Append) return a
// Path sharing no state with the receiver's backing array beyond what is
// safe to share; callers that need a separate copy should call Copy first.
type Path struct {
	runs []run
}

// New returns the empty path (the trivial walk staying at the origin).
func New() Path { return Path{} }

// FromRuns builds a Path directly from parallel move/count slices, which
// the caller must already guarantee are in canonical form (every count
// >= 1, no two adjacent entries sharing a move). It exists so internal
// path builders that already track runs themselves (e.g. align's runChain)
// can materialize a Path in one allocation instead of one Append per move.
func FromRuns(moves []Move, counts []int) Path {
	if len(moves) != len(counts) {
		panic("lattice: FromRuns requires equal-length slices")
	}
	runs := make([]run, len(moves))
	for i := range moves {
		runs[i] = run{moves[i], counts[i]}
	}
	return Path{runs}
}

// Len reports the number of runs (not the number of moves).
func (p Path) Len() int { return len(p.runs) }

// RunAt returns the move and count of the i-th run, 0 <= i < p.Len().
func (p Path) RunAt(i int) (Move, int) { return p.runs[i].move, p.runs[i].count }

// Append adds one move of m, merging into the trailing run if it already
// ends in m (canonical form), and returns the resulting path. The result
// always has its own backing array, so p itself is left untouched.
func (p Path) Append(m Move) Path {
	if n := len(p.runs); n > 0 && p.runs[n-1].move == m {
		out := make([]run, n)
		copy(out, p.runs)
		out[n-1].count++
		return Path{out}
	}
	out := make([]run, len(p.runs), len(p.runs)+1)
	copy(out, p.runs)
	out = append(out, run{m, 1})
	return Path{out}
}

// Copy returns a deep copy of p.
func (p Path) Copy() Path {
	out := make([]run, len(p.runs))
	copy(out, p.runs)
	return Path{out}
}

// Scale multiplies every run's count by k, representing the same
// trajectory on a k-times-finer lattice. k must be >= 1.
func (p Path) Scale(k int) Path {
	if k < 1 {
		panic("lattice: Scale requires k >= 1")
	}
	out := make([]run, len(p.runs))
	for i, r := range p.runs {
		out[i] = run{r.move, r.count * k}
	}
	return Path{out}
}

// End returns the point this path reaches from the origin.
func (p Path) End() Point {
	x, y := 0, 0
	for _, r := range p.runs {
		dx, dy := r.move.Delta()
		x += dx * r.count
		y += dy * r.count
	}
	return Point{x, y}
}

// LastMove returns the final move of the path and true, or the zero Move
// and false if the path is empty.
func (p Path) LastMove() (Move, bool) {
	if len(p.runs) == 0 {
		return 0, false
	}
	return p.runs[len(p.runs)-1].move, true
}

// PointsOnPath yields (0,0) then every point reached after each move. For
// an axial run (Horiz or Vert) of count n, only the run's final endpoint is
// emitted, not each of the n intermediate points — a deliberate asymmetry:
// during a vertical run X is constant and the X->Y mapping a consumer
// performs is one-to-many, so only the run's endpoints matter to it.
// Diagonal runs emit every point they pass through, one per move.
func (p Path) PointsOnPath() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		x, y := 0, 0
		if !yield(Point{x, y}) {
			return
		}
		for _, r := range p.runs {
			if r.move == Diag {
				for i := 0; i < r.count; i++ {
					x++
					y++
					if !yield(Point{x, y}) {
						return
					}
				}
				continue
			}
			dx, dy := r.move.Delta()
			x += dx * r.count
			y += dy * r.count
			if !yield(Point{x, y}) {
				return
			}
		}
	}
}

// pathRange mirrors the Python source's `_path_range`: the set of integer
// or half-integer antidiagonal offsets within radius of a position x.
func pathRange(xIsInt bool, radius int) []float64 {
	out := make([]float64, 0, 2*radius+1)
	if xIsInt {
		for i := -radius; i <= radius; i++ {
			out = append(out, float64(i))
		}
	} else {
		for i := -radius; i < radius; i++ {
			out = append(out, float64(i)+0.5)
		}
	}
	return out
}

// Corridor yields every lattice point within antidiagonal distance radius
// of the path, in the order the path visits them. A point p is in the
// radius-r corridor of a point q on the path iff |(p.X-q.X)-(q.Y-p.Y)| <= 2r
// measured along the antidiagonal the way pathRange does: diagonal moves
// are tracked at half-integer granularity (each diagonal step advances the
// running position by (0.5, 0.5)) so the corridor is symmetric around both
// axial and diagonal runs.
func (p Path) Corridor(radius int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		x, y := 0.0, 0.0
		for _, r := range p.runs {
			var dx, dy float64
			steps := r.count
			switch r.move {
			case Vert:
				dx, dy = 0, 1
			case Horiz:
				dx, dy = 1, 0
			case Diag:
				dx, dy = 0.5, 0.5
				steps = r.count * 2
			}
			for i := 0; i < steps; i++ {
				x += dx
				y += dy
				xIsInt := x == float64(int(x))
				for _, off := range pathRange(xIsInt, radius) {
					px := int(x + off)
					py := int(y - off)
					if !yield(Point{px, py}) {
						return
					}
				}
			}
		}
	}
}

// String serializes p to the textual form `<move><count>( <move><count>)*`.
func (p Path) String() string {
	parts := make([]string, len(p.runs))
	for i, r := range p.runs {
		parts[i] = fmt.Sprintf("%s%d", r.move, r.count)
	}
	return strings.Join(parts, " ")
}

// Parse parses the textual form produced by String. It rejects any input
// that does not match `^(-|\||/)\d+( (-|\||/)\d+)*$`, including an empty
// path that lacks an explicit length.
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, errors.WithMessage(ErrMalformedPath, "empty input")
	}
	tokens := strings.Fields(s)
	runs := make([]run, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 || !validMove(tok[0]) {
			return Path{}, errors.WithMessagef(ErrMalformedPath, "bad token %q", tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 1 {
			return Path{}, errors.WithMessagef(ErrMalformedPath, "bad count in token %q", tok)
		}
		runs = append(runs, run{Move(tok[0]), n})
	}
	return Path{runs}, nil
}

// Equal reports whether p and q represent the same canonical run sequence.
func (p Path) Equal(q Path) bool {
	if len(p.runs) != len(q.runs) {
		return false
	}
	for i := range p.runs {
		if p.runs[i] != q.runs[i] {
			return false
		}
	}
	return true
}
