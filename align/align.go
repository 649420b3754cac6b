// Package align implements the multi-resolution monotonic path finder:
// corridor-restricted dynamic programming under a transition-penalty
// regime, sequenced across progressively finer resolutions by a driver that
// seeds the coarsest pass with the boundary path. A standalone coarse A*
// search (AStar) is also provided; the driver does not call it.
package align

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/halvstad/timewarp/lattice"
	"github.com/halvstad/timewarp/spectro"
)

// ErrUnreachableGoal is returned when a search pass terminates (heap
// exhausted, or corridor traversal ends) without ever reaching the goal
// point with a finite, realized cost.
var ErrUnreachableGoal = errors.New("align: goal unreachable")

// Options carries the tunables for the search itself (as opposed to
// spectrogram construction, which is spectro.Params).
type Options struct {
	// SampleSize is the number of random frame pairs averaged to estimate
	// av_cost.
	SampleSize int
	// NonDiagKoef is the fixed multiplier on av_cost used as the cost of
	// every axial ('-' or '|') edge.
	NonDiagKoef float64
	// Radius is the antidiagonal corridor half-width for the DP refinement.
	Radius int
	// Penalty is the family-change charge for the DP refinement, in units
	// of av_cost.
	Penalty float64
	// Rng drives av_cost sampling. A nil Rng uses a package-level default
	// seeded at import time.
	Rng *rand.Rand
	// Logger receives progress diagnostics; a nil Logger disables them.
	Logger *log.Logger
	// ProgressInterval is how often a progress line is emitted during a
	// long search pass. Zero means the default of 10 seconds.
	ProgressInterval time.Duration
}

func (o Options) interval() time.Duration {
	if o.ProgressInterval <= 0 {
		return 10 * time.Second
	}
	return o.ProgressInterval
}

func (o Options) rng() *rand.Rand {
	if o.Rng != nil {
		return o.Rng
	}
	return defaultRng
}

var defaultRng = rand.New(rand.NewSource(31168))

// AverageCost estimates av_cost: the mean cos_log distance over SampleSize
// independent random frame pairs, one from each current view. This is the
// unit for axial-edge cost and the family-change penalty.
func AverageCost(x, y *spectro.Spectrogram, sampleSize int, rng *rand.Rand) float64 {
	if rng == nil {
		rng = defaultRng
	}
	var sum float64
	for i := 0; i < sampleSize; i++ {
		sum += spectro.CosLog(x.RandomFrame(rng), y.RandomFrame(rng))
	}
	return sum / float64(sampleSize)
}

// edgeCost is the cost of a single move originating at point from: the
// frame-pair cos_log for a diagonal move, or a fixed avCost*nonDiagKoef for
// an axial move.
func edgeCost(x, y *spectro.Spectrogram, avCost, nonDiagKoef float64, from lattice.Point, m lattice.Move) float64 {
	if m == lattice.Diag {
		return spectro.CosLog(x.Frame(from.X), y.Frame(from.Y))
	}
	return avCost * nonDiagKoef
}

// options returns the moves admissible from v toward goal: only '|' on the
// right edge, only '-' on the bottom edge, all three moves interior.
func options(v, goal lattice.Point) []lattice.Move {
	switch {
	case v.X == goal.X:
		return []lattice.Move{lattice.Vert}
	case v.Y == goal.Y:
		return []lattice.Move{lattice.Horiz}
	default:
		return []lattice.Move{lattice.Vert, lattice.Horiz, lattice.Diag}
	}
}

// optionsBack returns the moves that could have reached v (the predecessor
// is lattice.Unapply(v, move)), mirroring options but walking backward from
// the origin rather than forward toward the goal.
func optionsBack(v lattice.Point) []lattice.Move {
	switch {
	case v.X == 0:
		return []lattice.Move{lattice.Vert}
	case v.Y == 0:
		return []lattice.Move{lattice.Horiz}
	default:
		return []lattice.Move{lattice.Vert, lattice.Horiz, lattice.Diag}
	}
}
