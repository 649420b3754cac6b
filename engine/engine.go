// Package engine is the programmatic entry point for embedders that want
// the transcode → spectrogram → alignment pipeline without cmd/timewarp's
// flags, config file, or log rotation.
package engine

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/halvstad/timewarp/align"
	"github.com/halvstad/timewarp/config"
	"github.com/halvstad/timewarp/lattice"
	"github.com/halvstad/timewarp/spectro"
	"github.com/halvstad/timewarp/transcode"
)

// Engine runs the full pipeline for a single Config.
type Engine struct {
	cfg config.Config
	// Logger receives progress diagnostics from the alignment passes; a
	// nil Logger (the zero value) disables them.
	Logger *log.Logger
}

// New returns an Engine configured by cfg. Callers that want progress
// diagnostics should set the returned Engine's Logger field before calling
// Align.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) spectroParams() spectro.Params {
	return spectro.Params{
		BaseTick:       e.cfg.BaseTick,
		BOverlapDegree: e.cfg.BOverlapDegree,
		COverlapDegree: e.cfg.COverlapDegree,
		Precision:      e.cfg.Precision,
	}
}

func (e *Engine) alignOptions() align.Options {
	return align.Options{
		SampleSize:  e.cfg.SampleSize,
		NonDiagKoef: e.cfg.NonDiagKoef,
		Radius:      e.cfg.Radius,
		Penalty:     e.cfg.Penalty,
		Logger:      e.Logger,
	}
}

// Align runs the pipeline and returns the computed path. If cfg.TextFile is
// set, it parses that file directly and skips transcoding and alignment
// entirely.
func (e *Engine) Align(ctx context.Context) (*lattice.Path, error) {
	if e.cfg.TextFile != "" {
		return e.loadTextPath()
	}

	tc := transcode.New(transcode.Options{RewriteWAV: e.cfg.RewriteWAV, SaveWAV: e.cfg.SaveWAV})

	xAudio, err := tc.Extract(ctx, e.cfg.Media[0], e.cfg.DefaultHz)
	if err != nil {
		return nil, err
	}
	yAudio, err := tc.Extract(ctx, e.cfg.Media[1], e.cfg.DefaultHz)
	if err != nil {
		return nil, err
	}

	x, err := spectro.Build(xAudio.Samples, xAudio.SampleRate, e.spectroParams())
	if err != nil {
		return nil, err
	}
	y, err := spectro.Build(yAudio.Samples, yAudio.SampleRate, e.spectroParams())
	if err != nil {
		return nil, err
	}

	path, err := align.Align(x, y, e.alignOptions())
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (e *Engine) loadTextPath() (*lattice.Path, error) {
	data, err := os.ReadFile(e.cfg.TextFile)
	if err != nil {
		return nil, errors.Wrapf(err, "engine: read text file %s", e.cfg.TextFile)
	}
	path, err := lattice.Parse(string(data))
	if err != nil {
		return nil, err
	}
	return &path, nil
}
