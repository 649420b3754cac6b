package gridset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAddAndContainsBasic(t *testing.T) {
	s := New(20, 20)
	assert.False(t, s.Contains(Point{3, 5}))
	s.Add(Point{3, 5})
	assert.True(t, s.Contains(Point{3, 5}))
	assert.False(t, s.Contains(Point{3, 6}))
}

func TestAddMergesAdjacentOnSameDiagonal(t *testing.T) {
	s := New(20, 20)
	// points (2,2), (3,3), (4,4) all lie on diagonal bucket Y-X+W = W, and
	// are adjacent in X, so they should merge into one interval.
	s.Add(Point{2, 2})
	s.Add(Point{4, 4})
	s.Add(Point{3, 3})
	assert.True(t, s.Contains(Point{2, 2}))
	assert.True(t, s.Contains(Point{3, 3}))
	assert.True(t, s.Contains(Point{4, 4}))
	assert.Equal(t, 1, len(s.diags[s.bucket(Point{2, 2})].segs))
}

func TestLookupOutsideRectangleIsFalse(t *testing.T) {
	s := New(5, 5)
	assert.False(t, s.Contains(Point{-1, 0}))
	assert.False(t, s.Contains(Point{100, 100}))
	s.Add(Point{-1, 0}) // sentinel no-op
	assert.False(t, s.Contains(Point{-1, 0}))
}

// TestPropertyMembershipAndDisjointness checks that after an arbitrary
// sequence of adds, Contains(q) is true iff q equals one of the added
// points, and every diagonal's intervals stay disjoint and non-adjacent
// (fully merged).
func TestPropertyMembershipAndDisjointness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const w, h = 40, 40
		s := New(w, h)
		added := map[Point]bool{}

		n := rapid.IntRange(0, 80).Draw(t, "n")
		for i := 0; i < n; i++ {
			p := Point{
				X: rapid.IntRange(0, w).Draw(t, "x"),
				Y: rapid.IntRange(0, h).Draw(t, "y"),
			}
			s.Add(p)
			added[p] = true
		}

		for x := 0; x <= w; x++ {
			for y := 0; y <= h; y++ {
				p := Point{x, y}
				want := added[p]
				if got := s.Contains(p); got != want {
					t.Fatalf("Contains(%v) = %v, want %v", p, got, want)
				}
			}
		}

		for _, d := range s.diags {
			for i := 1; i < len(d.segs); i++ {
				if d.segs[i-1].hi+1 >= d.segs[i].lo {
					t.Fatalf("adjacent/overlapping segments not merged: %+v, %+v", d.segs[i-1], d.segs[i])
				}
			}
		}
	})
}
