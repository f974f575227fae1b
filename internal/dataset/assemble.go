// Package dataset builds labeled train/test splits from a directory of PNG
// images and loads them into normalized float tensors.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// PositiveDir and NegativeDir are the class subdirectories under the base directory.
	PositiveDir = "positive"
	NegativeDir = "negative"

	imageExt = "png"

	DefaultBaseDir       = "../training_data/images/"
	DefaultPositiveSplit = 0.5
)

// Sample is an image path and its binary label (1 positive, 0 negative).
type Sample struct {
	Path  string
	Label int
}

// Split holds parallel path/label slices for the train and test subsets.
type Split struct {
	TrainPaths  []string
	TrainLabels []int
	TestPaths   []string
	TestLabels  []int
}

// Options controls Build.
type Options struct {
	// NumImages is the requested total sample count across both classes.
	NumImages int
	// TrainingSplit is the fraction of samples assigned to the train subset.
	TrainingSplit float64
	// BaseDir holds the positive/ and negative/ subdirectories.
	BaseDir string
	// PositiveSplit is the fraction of NumImages drawn from positive/.
	PositiveSplit float64
}

func (o Options) validate() error {
	if o.NumImages < 0 {
		return fmt.Errorf("num images must be >= 0, got %d", o.NumImages)
	}
	if o.TrainingSplit < 0 || o.TrainingSplit > 1 {
		return fmt.Errorf("training split must be in [0,1], got %g", o.TrainingSplit)
	}
	if o.PositiveSplit < 0 || o.PositiveSplit > 1 {
		return fmt.Errorf("positive split must be in [0,1], got %g", o.PositiveSplit)
	}
	if o.BaseDir == "" {
		return errors.New("base dir is required")
	}
	return nil
}

// Build lists up to floor(NumImages*PositiveSplit) positive and the remaining
// count of negative PNGs, shuffles them with rng, and cuts the shuffled list at
// floor(len*TrainingSplit). A class directory with too few files contributes
// what it has. The two subsets are disjoint and together hold every sample.
func Build(fs afero.Fs, rng *rand.Rand, opts Options) (Split, error) {
	if err := opts.validate(); err != nil {
		return Split{}, fmt.Errorf("build dataset: %w", err)
	}

	numPositive := int(float64(opts.NumImages) * opts.PositiveSplit)
	numNegative := opts.NumImages - numPositive

	positives, err := listImages(fs, filepath.Join(opts.BaseDir, PositiveDir), numPositive)
	if err != nil {
		return Split{}, fmt.Errorf("build dataset: %w", err)
	}
	negatives, err := listImages(fs, filepath.Join(opts.BaseDir, NegativeDir), numNegative)
	if err != nil {
		return Split{}, fmt.Errorf("build dataset: %w", err)
	}

	samples := make([]Sample, 0, len(positives)+len(negatives))
	for _, p := range positives {
		samples = append(samples, Sample{Path: p, Label: 1})
	}
	for _, p := range negatives {
		samples = append(samples, Sample{Path: p, Label: 0})
	}

	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	idx := int(float64(len(samples)) * opts.TrainingSplit)
	return splitAt(samples, idx), nil
}

func splitAt(samples []Sample, idx int) Split {
	s := Split{
		TrainPaths:  make([]string, 0, idx),
		TrainLabels: make([]int, 0, idx),
		TestPaths:   make([]string, 0, len(samples)-idx),
		TestLabels:  make([]int, 0, len(samples)-idx),
	}
	for _, smp := range samples[:idx] {
		s.TrainPaths = append(s.TrainPaths, smp.Path)
		s.TrainLabels = append(s.TrainLabels, smp.Label)
	}
	for _, smp := range samples[idx:] {
		s.TestPaths = append(s.TestPaths, smp.Path)
		s.TestLabels = append(s.TestLabels, smp.Label)
	}
	return s
}

// listImages returns at most limit paths of regular *.png files directly in dir.
func listImages(fs afero.Fs, dir string, limit int) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	paths := make([]string, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(paths) == limit {
			break
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), imageExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
