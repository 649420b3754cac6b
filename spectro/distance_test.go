package spectro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestPropertyCosLogInvariants checks CosLog(u,u)=0 for nonzero u,
// CosLog(0,0)=0, CosLog(0,v)>0 for nonzero v and grows with ||v||, and that
// CosLog is symmetric.
func TestPropertyCosLogInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		u := make([]float64, n)
		v := make([]float64, n)
		for i := range u {
			u[i] = rapid.Float64Range(-10, 10).Draw(t, "u")
			v[i] = rapid.Float64Range(-10, 10).Draw(t, "v")
		}

		assert.InDelta(t, 0, CosLog(u, u), 1e-9)

		zero := make([]float64, n)
		assert.Equal(t, 0.0, CosLog(zero, zero))

		assert.InDelta(t, CosLog(u, v), CosLog(v, u), 1e-9)

		if floatsNonZero(v) {
			d := CosLog(zero, v)
			assert.Greater(t, d, 0.0)
			scaled := make([]float64, n)
			for i := range v {
				scaled[i] = v[i] * 2
			}
			assert.Greater(t, CosLog(zero, scaled), d)
		}
	})
}

func floatsNonZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

func TestCosSimRange(t *testing.T) {
	assert.Equal(t, 0.0, CosSim([]float64{0, 0}, []float64{0, 0}))
	assert.Equal(t, 1.0, CosSim([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 1.0, CosSim([]float64{1, 0}, []float64{0, 0}))
	assert.InDelta(t, 0.0, CosSim([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 2.0, CosSim([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}

func TestCosLogNotMetric(t *testing.T) {
	// Demonstrates the documented non-metric property: there exist
	// u, v, w with cos_log(u,w) > cos_log(u,v) + cos_log(v,w).
	u := []float64{1, 0}
	v := []float64{0, 0}
	w := []float64{-100, 0}
	uw := CosLog(u, w)
	uv := CosLog(u, v)
	vw := CosLog(v, w)
	assert.Greater(t, uw, uv+vw, "cos_log must not satisfy the triangle inequality here")
}
