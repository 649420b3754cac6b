package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsWrongMediaCount(t *testing.T) {
	cfg := Default()
	cfg.Media = []string{"only-one.mkv"}
	cfg.TextFile = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMediaCount)
}

func TestValidateAcceptsTextFileWithoutMedia(t *testing.T) {
	cfg := Default()
	cfg.TextFile = "precomputed.path"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTunable(t *testing.T) {
	cfg := Default()
	cfg.TextFile = "precomputed.path"
	cfg.Radius = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTunable)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timewarp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("media: [a.mkv, b.mkv]\nradius: 9\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Media = []string{"a.mkv", "b.mkv"}
	want.Radius = 9
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlagsOverridesLogFile(t *testing.T) {
	cfg, err := ParseFlags([]string{"--log-file", "custom.out", "--hz", "8000"}, Default())
	require.NoError(t, err)
	assert.Equal(t, "custom.out", cfg.LogFile)
	assert.Equal(t, 8000, cfg.DefaultHz)
}

func TestParseFlagsConfigFlagReplacesBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timewarp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("media: [a.mkv, b.mkv]\nradius: 9\n"), 0o644))

	cfg, err := ParseFlags([]string{"--config", path, "--hz", "16000"}, Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mkv", "b.mkv"}, cfg.Media)
	assert.Equal(t, 9, cfg.Radius)
	assert.Equal(t, 16000, cfg.DefaultHz)
}
