package align

import (
	"github.com/halvstad/timewarp/lattice"
	"github.com/halvstad/timewarp/spectro"
)

// boundaryPath is the straight top-then-right-edge path "-N |M", the seed
// for the very first corridor pass when no coarser draft exists yet.
func boundaryPath(n, m int) lattice.Path {
	var moves []lattice.Move
	var counts []int
	if n > 0 {
		moves = append(moves, lattice.Horiz)
		counts = append(counts, n)
	}
	if m > 0 {
		moves = append(moves, lattice.Vert)
		counts = append(counts, m)
	}
	return lattice.FromRuns(moves, counts)
}

// largestPowerOfTwoAtMost returns the largest power of two <= n, or 1 if
// n < 1 (there must always be at least one pass).
func largestPowerOfTwoAtMost(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// Align runs the multi-resolution driver: it picks a starting resolution
// multiplier, then loops re-binning both spectrograms and running the
// corridor DP at progressively finer resolutions, seeding each pass with
// the previous pass's path scaled to the new lattice. It returns the final
// path scaled by Precision, so that its run counts are in units of one
// base tick.
func Align(x, y *spectro.Spectrogram, opt Options) (lattice.Path, error) {
	precision := x.Precision()
	tBase := x.BaseLen()
	if y.BaseLen() < tBase {
		tBase = y.BaseLen()
	}
	mult := largestPowerOfTwoAtMost(tBase / precision)

	var draft lattice.Path
	haveDraft := false

	for {
		x.RebinTo(mult)
		y.RebinTo(mult)

		seed := boundaryPath(x.Len(), y.Len())
		if haveDraft {
			seed = draft.Scale(2)
		}

		avCost := AverageCost(x, y, opt.SampleSize, opt.rng())
		if opt.Logger != nil {
			opt.Logger.Infof("alignment pass: mult=%d x_len=%d y_len=%d av_cost=%.6f", mult, x.Len(), y.Len(), avCost)
		}

		path, _, err := Corridor(x, y, seed, opt, avCost)
		if err != nil {
			return lattice.Path{}, err
		}
		draft = path
		haveDraft = true

		mult /= 2
		if mult == 0 {
			break
		}
	}

	return draft.Scale(precision), nil
}
