package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genPath builds an arbitrary canonical Path by repeatedly appending random
// moves, draining one rapid.T per call.
func genPath(t *rapid.T) Path {
	n := rapid.IntRange(0, 40).Draw(t, "moves")
	p := New()
	moves := []Move{Horiz, Vert, Diag}
	for i := 0; i < n; i++ {
		m := moves[rapid.IntRange(0, 2).Draw(t, "move")]
		p = p.Append(m)
	}
	return p
}

// TestParseRoundTripKnown checks a known path round-trips byte-identical
// through String/Parse.
func TestParseRoundTripKnown(t *testing.T) {
	in := "-3 /10 |2"
	p, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, in, p.String())
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "x3", "-3x", "-0", "- ", "-3 /", "/3-4"} {
		_, err := Parse(s)
		assert.Error(t, err, "input %q should be rejected", s)
	}
}

// TestPropertyParseStringRoundTrip checks Parse(String(p)) == p for every
// canonical path.
func TestPropertyParseStringRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPath(t)
		if p.Len() == 0 {
			return // the empty path has no textual form to round-trip
		}
		q, err := Parse(p.String())
		require.NoError(t, err)
		assert.True(t, p.Equal(q))
	})
}

// TestPropertyPointsOnPathMonotone checks that PointsOnPath starts at
// origin, ends at End(), and is monotonically nondecreasing in both
// coordinates.
func TestPropertyPointsOnPathMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPath(t)
		var prev Point
		first := true
		var last Point
		for pt := range p.PointsOnPath() {
			if first {
				assert.Equal(t, Point{0, 0}, pt)
				first = false
			} else {
				assert.GreaterOrEqual(t, pt.X, prev.X)
				assert.GreaterOrEqual(t, pt.Y, prev.Y)
			}
			prev = pt
			last = pt
		}
		assert.Equal(t, p.End(), last)
	})
}

// TestPropertyScaleEquivariant checks that p.Scale(k).PointsOnPath visits
// the same trajectory as p.PointsOnPath scaled by k componentwise,
// restricted to multiples of k on axial segments (diagonal runs scale
// exactly; axial runs only have their endpoint emitted either way, so only
// the endpoints need to match).
func TestPropertyScaleEquivariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPath(t)
		k := rapid.IntRange(1, 5).Draw(t, "k")
		scaled := p.Scale(k)

		end := p.End()
		scaledEnd := scaled.End()
		assert.Equal(t, Point{end.X * k, end.Y * k}, scaledEnd)

		var origEnds, scaledEnds []Point
		x, y := 0, 0
		for _, r := range p.runs {
			dx, dy := r.move.Delta()
			x += dx * r.count
			y += dy * r.count
			origEnds = append(origEnds, Point{x, y})
		}
		x, y = 0, 0
		for _, r := range scaled.runs {
			dx, dy := r.move.Delta()
			x += dx * r.count
			y += dy * r.count
			scaledEnds = append(scaledEnds, Point{x, y})
		}
		require.Equal(t, len(origEnds), len(scaledEnds))
		for i := range origEnds {
			assert.Equal(t, Point{origEnds[i].X * k, origEnds[i].Y * k}, scaledEnds[i])
		}
	})
}

func TestAppendMergesRuns(t *testing.T) {
	p := New().Append(Diag).Append(Diag).Append(Horiz)
	assert.Equal(t, "/2 -1", p.String())
}

func TestIdentityPathEndpoint(t *testing.T) {
	// an identity path (same audio aligned to itself) is a single diagonal run
	p := New().Append(Diag)
	for i := 0; i < 5999; i++ {
		p = p.Append(Diag)
	}
	assert.Equal(t, Point{6000, 6000}, p.End())
	assert.Equal(t, 1, p.Len())
}

// TestCorridorMatchesBruteForce checks that p.Corridor(radius) yields
// exactly the set of lattice points within antidiagonal distance radius of
// some position on the path, by independently enumerating that set over a
// bounding box from the |(p.X-q.X)-(q.Y-p.Y)| <= 2*radius definition rather
// than re-deriving it through Corridor's own pathRange logic.
func TestCorridorMatchesBruteForce(t *testing.T) {
	p, err := Parse("/10 |10 /10")
	require.NoError(t, err)

	const radius = 2

	// Every continuous position the path passes through, at the same
	// half-integer granularity a diagonal run advances by.
	var positions []struct{ x, y float64 }
	x, y := 0.0, 0.0
	for i := 0; i < p.Len(); i++ {
		m, n := p.RunAt(i)
		var dx, dy float64
		steps := n
		switch m {
		case Vert:
			dx, dy = 0, 1
		case Horiz:
			dx, dy = 1, 0
		case Diag:
			dx, dy = 0.5, 0.5
			steps = n * 2
		}
		for s := 0; s < steps; s++ {
			x += dx
			y += dy
			positions = append(positions, struct{ x, y float64 }{x, y})
		}
	}
	require.NotEmpty(t, positions)

	end := p.End()
	bound := end.X
	if end.Y > bound {
		bound = end.Y
	}
	bound += radius + 1

	want := map[Point]bool{}
	for px := -radius - 1; px <= bound; px++ {
		for py := -radius - 1; py <= bound; py++ {
			for _, q := range positions {
				if math.Abs((float64(px)-q.x)-(q.y-float64(py))) <= float64(2*radius) {
					want[Point{px, py}] = true
					break
				}
			}
		}
	}

	got := map[Point]bool{}
	for pt := range p.Corridor(radius) {
		got[pt] = true
	}

	assert.Equal(t, want, got)
}
