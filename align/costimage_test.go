package align

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvstad/timewarp/spectro"
)

func TestCostImageDarkerForIdenticalFrames(t *testing.T) {
	wave := sineWave(4000, 220, 400)
	params := testParams()

	x, err := spectro.Build(wave, 4000, params)
	require.NoError(t, err)
	y, err := spectro.Build(wave, 4000, params)
	require.NoError(t, err)
	x.RebinTo(2)
	y.RebinTo(2)

	img, err := CostImage(x, y)
	require.NoError(t, err)
	require.Equal(t, x.Len(), img.Bounds().Dx())
	require.Equal(t, y.Len(), img.Bounds().Dy())

	diagonal := img.GrayAt(0, 0).Y
	if x.Len() > 1 && y.Len() > 1 {
		offDiagonal := img.GrayAt(x.Len()-1, 0).Y
		assert.LessOrEqual(t, diagonal, offDiagonal)
	}

	path := filepath.Join(t.TempDir(), "cost.png")
	require.NoError(t, SaveCostImagePNG(path, img))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
