package spectro

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CosSim is the cosine distance between two frames, robust to the
// zero-vector case: 1 - cos(angle) when both are nonzero, 1 when exactly
// one is the zero vector (treated as perpendicular to everything), 0 when
// both are zero. Range [0, 2].
func CosSim(u, v []float64) float64 {
	un, vn := floats.Norm(u, 2), floats.Norm(v, 2)
	switch {
	case un == 0 && vn == 0:
		return 0
	case un == 0 || vn == 0:
		return 1
	default:
		cos := floats.Dot(u, v) / (un * vn)
		// guard against floating-point drift pushing |cos| a hair past 1
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		return 1 - cos
	}
}

// CosLog is a pseudo-distance: the cosine distance weighted by the
// logarithmic loudness of both frames. It is symmetric,
// zero on aligned (same-direction) content regardless of loudness-
// normalization differences, and grows sublinearly with transient loud
// noise. It does NOT satisfy the triangle inequality — callers must not
// assume metric properties.
func CosLog(u, v []float64) float64 {
	return CosSim(u, v) * (math.Log1p(floats.Norm(u, 2)) + math.Log1p(floats.Norm(v, 2)))
}
