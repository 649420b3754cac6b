package spectro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(rate int, freqHz float64, seconds float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freqHz * float64(i) / float64(rate))
	}
	return out
}

func testParams() Params {
	return Params{BaseTick: 1, BOverlapDegree: 3, COverlapDegree: 3, Precision: 2}
}

func TestBuildRejectsEmptyWaveform(t *testing.T) {
	_, err := Build(nil, 4000, testParams())
	require.Error(t, err)
}

func TestBuildProducesFrames(t *testing.T) {
	wave := sineWave(4000, 220, 1.0)
	spec, err := Build(wave, 4000, testParams())
	require.NoError(t, err)
	assert.Greater(t, spec.BaseLen(), 0)
}

func TestRebinToShrinksLength(t *testing.T) {
	wave := sineWave(4000, 220, 2.0)
	spec, err := Build(wave, 4000, testParams())
	require.NoError(t, err)

	spec.RebinTo(4)
	coarse := spec.Len()
	spec.RebinTo(1)
	fine := spec.Len()
	assert.Greater(t, fine, coarse)
}

func TestIdenticalSignalsAreCloseInCosLog(t *testing.T) {
	wave := sineWave(4000, 220, 1.0)
	x, err := Build(wave, 4000, testParams())
	require.NoError(t, err)
	y, err := Build(wave, 4000, testParams())
	require.NoError(t, err)
	x.RebinTo(1)
	y.RebinTo(1)

	require.Equal(t, x.Len(), y.Len())
	for i := 0; i < x.Len(); i++ {
		d := CosLog(x.Frame(i), y.Frame(i))
		assert.InDelta(t, 0, d, 1e-6)
	}
}
