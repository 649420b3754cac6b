package align

import (
	"math"
	"time"

	"github.com/halvstad/timewarp/lattice"
	"github.com/halvstad/timewarp/spectro"
)

// cellState is the per-point DP record: the best cost and path reaching
// this point ending in a diagonal move, and separately ending in an axial
// move. Reachability is tracked explicitly rather than relying on
// arithmetic with a sentinel +Inf (see DESIGN.md).
type cellState struct {
	diagCost   float64
	diagChain  *runChain
	diagOK     bool
	axialCost  float64
	axialChain *runChain
	axialOK    bool
}

func unreachableCell() cellState {
	return cellState{diagCost: math.Inf(1), axialCost: math.Inf(1)}
}

// choose picks whichever of two (cost, chain) candidates is cheaper,
// treating an unreachable candidate (ok=false) as losing unconditionally,
// and breaking cost ties by preferring the shorter-run-count path — the
// same tie-break the Python source gets for free from Path.__lt__ when its
// (cost, Path) tuples compare equal on cost.
func choose(cost1 float64, chain1 *runChain, ok1 bool, cost2 float64, chain2 *runChain, ok2 bool) (float64, *runChain, bool) {
	switch {
	case !ok1 && !ok2:
		return math.Inf(1), nil, false
	case !ok1:
		return cost2, chain2, true
	case !ok2:
		return cost1, chain1, true
	case cost1 < cost2:
		return cost1, chain1, true
	case cost2 < cost1:
		return cost2, chain2, true
	default:
		if chainLen(chain1) <= chainLen(chain2) {
			return cost1, chain1, true
		}
		return cost2, chain2, true
	}
}

func chainLen(c *runChain) int {
	n := 0
	for ; c != nil; c = c.tail {
		n++
	}
	return n
}

// Corridor runs the penalty-charging corridor DP restricted to the
// antidiagonal corridor around draft, at x and y's current resolution, and
// returns the best path from (0,0) to (len(x),len(y)).
// avCost should be the estimate already sampled for this resolution (the
// driver samples it once per pass and reuses it here and for edge costs).
func Corridor(x, y *spectro.Spectrogram, draft lattice.Path, opt Options, avCost float64) (lattice.Path, float64, error) {
	n, m := x.Len(), y.Len()
	goal := lattice.Point{X: n, Y: m}
	penaltyCost := opt.Penalty * avCost

	origin := cellState{diagCost: 0, diagChain: nil, diagOK: true, axialCost: 0, axialChain: nil, axialOK: true}
	curr := map[lattice.Point]cellState{}
	prev1 := map[lattice.Point]cellState{{X: 0, Y: 0}: origin}
	prev2 := map[lattice.Point]cellState{}
	currentSlice := 1

	lastLog := time.Now()

	for p := range draft.Corridor(opt.Radius) {
		if opt.Logger != nil && time.Since(lastLog) > opt.interval() {
			opt.Logger.Debugf("corridor progress: point=%v slice=%d", p, currentSlice)
			lastLog = time.Now()
		}

		if p.Slice() > goal.Slice() {
			break
		}
		if p.Slice() > currentSlice {
			currentSlice = p.Slice()
			prev2, prev1, curr = prev1, curr, map[lattice.Point]cellState{}
		}
		if p.X < 0 || p.X > goal.X || p.Y < 0 || p.Y > goal.Y {
			continue
		}

		state := unreachableCell()
		for _, mv := range optionsBack(p) {
			from := lattice.Unapply(p, mv)
			if mv == lattice.Diag {
				ps, ok := prev2[from]
				if !ok {
					continue
				}
				cost, chain, ok2 := choose(ps.diagCost, ps.diagChain, ps.diagOK, ps.axialCost+penaltyCost, ps.axialChain, ps.axialOK)
				if !ok2 {
					continue
				}
				cost += edgeCost(x, y, avCost, opt.NonDiagKoef, from, mv)
				if cost < state.diagCost {
					state.diagCost, state.diagChain, state.diagOK = cost, chain.push(mv), true
				}
			} else {
				ps, ok := prev1[from]
				if !ok {
					continue
				}
				cost, chain, ok2 := choose(ps.axialCost, ps.axialChain, ps.axialOK, ps.diagCost+penaltyCost, ps.diagChain, ps.diagOK)
				if !ok2 {
					continue
				}
				cost += edgeCost(x, y, avCost, opt.NonDiagKoef, from, mv)
				if cost < state.axialCost {
					state.axialCost, state.axialChain, state.axialOK = cost, chain.push(mv), true
				}
			}
		}
		curr[p] = state
	}

	final, ok := curr[goal]
	if !ok {
		return lattice.Path{}, 0, ErrUnreachableGoal
	}
	cost, chain, ok := choose(final.diagCost, final.diagChain, final.diagOK, final.axialCost, final.axialChain, final.axialOK)
	if !ok {
		return lattice.Path{}, 0, ErrUnreachableGoal
	}
	return chain.materialize(), cost, nil
}
