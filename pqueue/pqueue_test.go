package pqueue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestUpdateInsertAndDecrease(t *testing.T) {
	q := New[string, int]()
	assert.True(t, q.Update("a", 5, 1))
	assert.True(t, q.Contains("a"))
	v, ok := q.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// higher priority: no-op
	assert.False(t, q.Update("a", 10, 2))
	v, _ = q.Peek("a")
	assert.Equal(t, 1, v)

	// strictly lower priority: overwrite
	assert.True(t, q.Update("a", 2, 3))
	v, _ = q.Peek("a")
	assert.Equal(t, 3, v)
}

func TestPopOrdersByPriority(t *testing.T) {
	q := New[int, int]()
	items := []float64{5, 1, 4, 2, 3}
	for i, p := range items {
		q.Update(i, p, i)
	}
	var out []float64
	for !q.Empty() {
		out = append(out, q.Pop().Priority)
	}
	assert.True(t, sortedAscending(out))
}

func sortedAscending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] > xs[i] {
			return false
		}
	}
	return true
}

// TestStressRandomUpdatesAndPops runs 10000 random updates interleaved with
// pops; popped sequence sorted, queue empties cleanly, and Contains stays
// consistent throughout.
func TestStressRandomUpdatesAndPops(t *testing.T) {
	rng := rand.New(rand.NewSource(31168))
	q := New[int, int]()
	present := map[int]bool{}
	var lastPopped float64 = -1
	var nextKey int

	for i := 0; i < 10000; i++ {
		switch {
		case q.Empty() || rng.Intn(3) != 0:
			key := nextKey
			if present[key] || rng.Intn(4) == 0 {
				// occasionally reuse an existing key to exercise decrease-key
				for k := range present {
					key = k
					break
				}
			} else {
				nextKey++
			}
			priority := rng.Float64() * 1000
			q.Update(key, priority, key)
			present[key] = true
			assert.True(t, q.Contains(key))
		default:
			top := q.Pop()
			assert.GreaterOrEqual(t, top.Priority, lastPopped)
			lastPopped = top.Priority
			delete(present, top.Key)
			assert.False(t, q.Contains(top.Key))
		}
	}
	for !q.Empty() {
		top := q.Pop()
		assert.GreaterOrEqual(t, top.Priority, lastPopped)
		lastPopped = top.Priority
	}
	assert.Equal(t, 0, q.Len())
}

// TestPropertyHeapInvariants checks that after any mixed sequence of
// Update/Pop, popped priorities are nondecreasing and Contains(k) tracks
// presence accurately.
func TestPropertyHeapInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := New[int, struct{}]()
		present := map[int]bool{}
		var popped []float64

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(present) > 0 && rapid.Bool().Draw(t, "pop") {
				top := q.Pop()
				popped = append(popped, top.Priority)
				delete(present, top.Key)
				continue
			}
			key := rapid.IntRange(0, 30).Draw(t, "key")
			priority := rapid.Float64Range(-1000, 1000).Draw(t, "priority")
			q.Update(key, priority, struct{}{})
			present[key] = true
			if !q.Contains(key) {
				t.Fatalf("key %d should be present after Update", key)
			}
		}
		for k := range present {
			if !q.Contains(k) {
				t.Fatalf("key %d should still be present", k)
			}
		}
		if !sortedAscending(popped) {
			t.Fatalf("popped sequence not sorted: %v", popped)
		}
	})
}
