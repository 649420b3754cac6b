package transcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWAV(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   samples,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

// writeStereoTestWAV writes an interleaved 2-channel WAV: data must already
// be interleaved L,R,L,R,...
func writeStereoTestWAV(t *testing.T, data []int, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 2},
		Data:   data,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func TestDecodeWAVRoundTrips(t *testing.T) {
	samples := []int{0, 100, -100, 32767, -32768}
	path := writeTestWAV(t, samples, 8000)

	result, err := decodeWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, result.SampleRate)
	require.Len(t, result.Samples, len(samples))
	for i, want := range samples {
		assert.InDelta(t, float64(want), result.Samples[i], 1e-6)
	}
}

func TestDecodeWAVDownmixesStereoToLeftChannel(t *testing.T) {
	// interleaved L,R pairs: left channel is 0,100,-100, right is all 9999
	// so a correct downmix is distinguishable from an averaged or
	// interleaved-as-mono reading.
	left := []int{0, 100, -100}
	interleaved := make([]int, 0, len(left)*2)
	for _, v := range left {
		interleaved = append(interleaved, v, 9999)
	}
	path := writeStereoTestWAV(t, interleaved, 8000)

	result, err := decodeWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, result.SampleRate)
	require.Len(t, result.Samples, len(left))
	for i, want := range left {
		assert.InDelta(t, float64(want), result.Samples[i], 1e-6)
	}
}

func TestExtractReusesCachedWAVUnlessRewrite(t *testing.T) {
	path := writeTestWAV(t, []int{1, 2, 3}, 8000)
	src := path[:len(path)-len(".wav")] + ".mkv" // cached sibling is sample.wav

	tc := New(Options{})
	result, err := tc.Extract(t.Context(), src, 8000)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, result.Samples)
}
