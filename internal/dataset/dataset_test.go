package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testBase = "/data/images"

// writePNG stores a w x h RGBA PNG whose red channel is red and green channel 255-red.
func writePNG(t *testing.T, fs afero.Fs, path string, w, h int, red uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: red, G: 255 - red, B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

// newImageTree creates base/positive and base/negative with the given PNG counts
// plus a non-image file in each.
func newImageTree(t *testing.T, positives, negatives int) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for i := 0; i < positives; i++ {
		writePNG(t, fs, filepath.Join(testBase, PositiveDir, fmt.Sprintf("pos_%03d.png", i)), 4, 3, 255)
	}
	for i := 0; i < negatives; i++ {
		writePNG(t, fs, filepath.Join(testBase, NegativeDir, fmt.Sprintf("neg_%03d.png", i)), 4, 3, 0)
	}
	for _, dir := range []string{PositiveDir, NegativeDir} {
		require.NoError(t, fs.MkdirAll(filepath.Join(testBase, dir), 0o755))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(testBase, dir, "notes.txt"), []byte("x"), 0o644))
	}
	return fs
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
