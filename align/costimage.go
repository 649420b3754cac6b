package align

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/pkg/errors"

	"github.com/halvstad/timewarp/spectro"
)

func grayLevel(normalized float64) color.Gray {
	return color.Gray{Y: uint8(normalized * 255)}
}

// CostImage renders a diagnostic cost visualization: for every (i, j) in
// the full current-view grid, the normalized '/'-edge cost
// cos_log(x[i], y[j]) as a grayscale pixel, darker for cheaper (more
// similar) pairs. It is quadratic in grid size and is never called by the
// alignment path itself — a debugging aid for short clips.
func CostImage(x, y *spectro.Spectrogram) (*image.Gray, error) {
	n, m := x.Len(), y.Len()
	sampleSize := n * m
	if sampleSize > 2000 {
		sampleSize = 2000
	}
	if sampleSize < 1 {
		sampleSize = 1
	}
	avCost := AverageCost(x, y, sampleSize, defaultRng)
	if avCost <= 0 {
		avCost = 1
	}

	img := image.NewGray(image.Rect(0, 0, n, m))
	for i := 0; i < n; i++ {
		xf := x.Frame(i)
		for j := 0; j < m; j++ {
			cost := spectro.CosLog(xf, y.Frame(j))
			normalized := cost / (2 * avCost)
			if normalized > 1 {
				normalized = 1
			}
			if normalized < 0 {
				normalized = 0
			}
			img.SetGray(i, j, grayLevel(normalized))
		}
	}
	return img, nil
}

// SaveCostImagePNG encodes img as a PNG file at path.
func SaveCostImagePNG(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "align: create %s", path)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "align: encode PNG to %s", path)
	}
	return nil
}
