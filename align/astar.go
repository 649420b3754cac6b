package align

import (
	"math"
	"time"

	"github.com/halvstad/timewarp/gridset"
	"github.com/halvstad/timewarp/lattice"
	"github.com/halvstad/timewarp/pqueue"
	"github.com/halvstad/timewarp/spectro"
)

// astarState is the value carried in the priority queue: the accumulated
// cost to reach a point and the (structurally shared) path that achieved
// it.
type astarState struct {
	cost  float64
	chain *runChain
}

// AStar computes an initial monotonic path from (0,0) to (len(x), len(y))
// at x and y's current resolution, minimizing total edge cost plus the
// admissible heuristic |diff-goal.diff|*av_cost. It returns the path, its
// realized cost, and the sampled av_cost (callers that go on to run
// Corridor want to reuse this estimate rather than resample it).
func AStar(x, y *spectro.Spectrogram, opt Options) (lattice.Path, float64, float64, error) {
	n, m := x.Len(), y.Len()
	goal := lattice.Point{X: n, Y: m}
	avCost := AverageCost(x, y, opt.SampleSize, opt.rng())

	pq := pqueue.New[lattice.Point, astarState]()
	visited := gridset.New(n, m)
	pq.Update(lattice.Point{}, 0, astarState{cost: 0, chain: nil})

	cycles := 0
	lastLog := time.Now()
	firstLog := lastLog

	for !pq.Empty() {
		top := pq.Pop()
		cur := top.Key
		state := top.Value

		if opt.Logger != nil && time.Since(lastLog) > opt.interval() {
			opt.Logger.Debugf("a* progress: point=%v heap_size=%d cycles=%d", cur, pq.Len(), cycles)
			lastLog = time.Now()
		}

		if cur == goal {
			if opt.Logger != nil {
				opt.Logger.Debugf("a* terminated: cycles=%d elapsed=%s", cycles, time.Since(firstLog))
			}
			return state.chain.materialize(), state.cost, avCost, nil
		}

		visited.Add(gridset.Point{X: cur.X, Y: cur.Y})

		for _, mv := range options(cur, goal) {
			next := lattice.Apply(cur, mv)
			ngp := gridset.Point{X: next.X, Y: next.Y}
			if visited.Contains(ngp) {
				continue
			}
			cost := edgeCost(x, y, avCost, opt.NonDiagKoef, cur, mv)
			newCost := state.cost + cost
			h := math.Abs(float64(next.Diff()-goal.Diff())) * avCost
			pq.Update(next, newCost+h, astarState{cost: newCost, chain: state.chain.push(mv)})
		}
		cycles++
	}
	return lattice.Path{}, 0, avCost, ErrUnreachableGoal
}
