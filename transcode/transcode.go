// Package transcode extracts mono PCM from arbitrary media by shelling out
// to ffmpeg and reading back the WAV it produces. Decoding/resampling
// itself is ffmpeg's job; this package only invokes it and parses its
// output.
package transcode

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// ErrTranscode wraps any failure to produce or read back a WAV file:
// ffmpeg's nonzero exit, or an unreadable/malformed WAV output.
var ErrTranscode = errors.New("transcode: extraction failed")

// Result is the mono PCM handed off to spectrogram construction.
type Result struct {
	SampleRate int
	Samples    []float64
}

// Options is the cache policy: RewriteWAV forces re-transcoding even if a
// cached sibling WAV exists; SaveWAV keeps the produced WAV around
// afterward instead of deleting it.
type Options struct {
	RewriteWAV bool
	SaveWAV    bool
}

// Transcoder extracts mono PCM at a target sample rate from a source media
// file via ffmpeg.
type Transcoder struct {
	opts Options
}

// New returns a Transcoder honoring opts.
func New(opts Options) *Transcoder {
	return &Transcoder{opts: opts}
}

// Extract produces mono PCM at hz from srcPath. If srcPath is already a
// .wav file it is decoded directly; otherwise a cached sibling "<name>.wav"
// is reused unless RewriteWAV is set, and the produced WAV is deleted
// afterward unless SaveWAV is set.
func (t *Transcoder) Extract(ctx context.Context, srcPath string, hz int) (Result, error) {
	if strings.EqualFold(filepath.Ext(srcPath), ".wav") {
		return decodeWAV(srcPath)
	}

	wavPath := strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".wav"
	_, statErr := os.Stat(wavPath)
	cached := statErr == nil
	needsTranscode := t.opts.RewriteWAV || !cached

	if needsTranscode {
		if err := t.runFFmpeg(ctx, srcPath, wavPath, hz); err != nil {
			return Result{}, err
		}
		if !t.opts.SaveWAV {
			defer os.Remove(wavPath)
		}
	}

	return decodeWAV(wavPath)
}

func (t *Transcoder) runFFmpeg(ctx context.Context, srcPath, wavPath string, hz int) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", srcPath, "-vn", "-ac", "1", "-ar", strconv.Itoa(hz), wavPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(ErrTranscode, "ffmpeg failed on %s: %s", srcPath, strings.TrimSpace(string(out)))
	}
	return nil
}

func decodeWAV(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, errors.Wrapf(ErrTranscode, "open %s", path)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Result{}, errors.Wrapf(ErrTranscode, "decode %s", path)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return Result{}, errors.Wrapf(ErrTranscode, "empty PCM in %s", path)
	}

	return Result{SampleRate: buf.Format.SampleRate, Samples: extractMono(buf)}, nil
}

// extractMono takes the first channel of an interleaved multi-channel
// buffer, the same way the source's extract_mono does. A .wav source
// decoded directly (bypassing ffmpeg's "-ac 1") still needs this:
// FullPCMBuffer returns interleaved samples for multi-channel input, and
// without this step a stereo file would be read as one garbled mono stream.
func extractMono(buf *audio.IntBuffer) []float64 {
	n := buf.Format.NumChannels
	if n < 1 {
		n = 1
	}
	frames := len(buf.Data) / n
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = float64(buf.Data[i*n])
	}
	return samples
}
