package dataset

import (
	"fmt"
	"image"
	_ "image/png" // register the PNG decoder

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

// Tensor is a dense (N, H, W, C) float32 array stored row-major.
type Tensor struct {
	N, H, W, C int
	Data       []float32
}

// At returns the value at sample n, row y, column x, channel c.
func (t Tensor) At(n, y, x, c int) float32 {
	return t.Data[((n*t.H+y)*t.W+x)*t.C+c]
}

// Shape returns the four dimensions.
func (t Tensor) Shape() [4]int {
	return [4]int{t.N, t.H, t.W, t.C}
}

// LoadImages decodes every image in paths, keeps its first color channel
// scaled to [0,1], and stacks them into an (N, H, W, 1) tensor. labels are
// returned as float32 in the same order. All images must share dimensions; the
// first decode failure aborts the load.
func LoadImages(fs afero.Fs, paths []string, labels []int) (Tensor, []float32, error) {
	if len(paths) != len(labels) {
		return Tensor{}, nil, fmt.Errorf("load images: %d paths but %d labels", len(paths), len(labels))
	}

	t := Tensor{N: len(paths), C: 1}
	for i, p := range paths {
		img, err := decodeFile(fs, p)
		if err != nil {
			return Tensor{}, nil, fmt.Errorf("load images: %w", err)
		}

		b := img.Bounds()
		if i == 0 {
			t.H, t.W = b.Dy(), b.Dx()
			t.Data = make([]float32, 0, t.N*t.H*t.W)
		} else if b.Dy() != t.H || b.Dx() != t.W {
			return Tensor{}, nil, fmt.Errorf("load images: %s is %dx%d, want %dx%d", p, b.Dx(), b.Dy(), t.W, t.H)
		}

		t.Data = appendFirstChannel(t.Data, img)
	}

	ys := make([]float32, len(labels))
	for i, l := range labels {
		ys[i] = float32(l)
	}
	return t, ys, nil
}

func decodeFile(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// appendFirstChannel appends channel 0 of the non-premultiplied pixels of img,
// divided by 255. For grayscale images channel 0 is the gray level.
func appendFirstChannel(dst []float32, img image.Image) []float32 {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			dst = append(dst, float32(row[x*4])/255)
		}
	}
	return dst
}
