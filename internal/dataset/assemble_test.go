package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDisjointAndLabeled(t *testing.T, s Split) {
	t.Helper()

	require.Len(t, s.TrainLabels, len(s.TrainPaths))
	require.Len(t, s.TestLabels, len(s.TestPaths))

	seen := map[string]bool{}
	check := func(paths []string, labels []int) {
		for i, p := range paths {
			assert.False(t, seen[p], "sample %s appears twice", p)
			seen[p] = true

			want := 0
			if strings.Contains(p, string(filepath.Separator)+PositiveDir+string(filepath.Separator)) {
				want = 1
			}
			assert.Equal(t, want, labels[i], "label for %s", p)
		}
	}
	check(s.TrainPaths, s.TrainLabels)
	check(s.TestPaths, s.TestLabels)
}

func countLabel(s Split, label int) int {
	n := 0
	for _, l := range append(append([]int(nil), s.TrainLabels...), s.TestLabels...) {
		if l == label {
			n++
		}
	}
	return n
}

func TestBuild_EvenSplit(t *testing.T) {
	fs := newImageTree(t, 10, 10)

	s, err := Build(fs, seeded(), Options{NumImages: 10, TrainingSplit: 0.8, BaseDir: testBase, PositiveSplit: 0.5})
	require.NoError(t, err)

	assert.Len(t, s.TrainPaths, 8)
	assert.Len(t, s.TestPaths, 2)
	assert.Equal(t, 5, countLabel(s, 1))
	assert.Equal(t, 5, countLabel(s, 0))
	assertDisjointAndLabeled(t, s)
}

func TestBuild_UnevenSplitStaysDisjoint(t *testing.T) {
	fs := newImageTree(t, 10, 10)

	s, err := Build(fs, seeded(), Options{NumImages: 7, TrainingSplit: 0.5, BaseDir: testBase, PositiveSplit: 0.5})
	require.NoError(t, err)

	// floor(7*0.5)=3 positives, 4 negatives; cut at floor(7*0.5)=3.
	assert.Len(t, s.TrainPaths, 3)
	assert.Len(t, s.TestPaths, 4)
	assert.Equal(t, 3, countLabel(s, 1))
	assert.Equal(t, 4, countLabel(s, 0))
	assertDisjointAndLabeled(t, s)
}

func TestBuild_ShortClassDirectory(t *testing.T) {
	fs := newImageTree(t, 2, 10)

	s, err := Build(fs, seeded(), Options{NumImages: 10, TrainingSplit: 0.8, BaseDir: testBase, PositiveSplit: 0.5})
	require.NoError(t, err)

	assert.Equal(t, 2, countLabel(s, 1))
	assert.Equal(t, 5, countLabel(s, 0))
	assert.Len(t, s.TrainPaths, 5)
	assert.Len(t, s.TestPaths, 2)
	assertDisjointAndLabeled(t, s)
}

func TestBuild_TakesFirstFilesInListingOrder(t *testing.T) {
	fs := newImageTree(t, 5, 5)

	s, err := Build(fs, seeded(), Options{NumImages: 4, TrainingSplit: 1, BaseDir: testBase, PositiveSplit: 0.5})
	require.NoError(t, err)

	assert.Empty(t, s.TestPaths)
	want := []string{
		filepath.Join(testBase, NegativeDir, "neg_000.png"),
		filepath.Join(testBase, NegativeDir, "neg_001.png"),
		filepath.Join(testBase, PositiveDir, "pos_000.png"),
		filepath.Join(testBase, PositiveDir, "pos_001.png"),
	}
	if diff := cmp.Diff(want, sortedCopy(s.TrainPaths)); diff != "" {
		t.Fatalf("train paths mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_IgnoresNonImages(t *testing.T) {
	fs := newImageTree(t, 1, 1)

	s, err := Build(fs, seeded(), Options{NumImages: 10, TrainingSplit: 0.5, BaseDir: testBase, PositiveSplit: 0.5})
	require.NoError(t, err)

	for _, p := range append(s.TrainPaths, s.TestPaths...) {
		assert.True(t, strings.HasSuffix(p, ".png"), p)
	}
	assert.Len(t, append(s.TrainPaths, s.TestPaths...), 2)
}

func TestBuild_DeterministicForSeed(t *testing.T) {
	fs := newImageTree(t, 10, 10)
	opts := Options{NumImages: 20, TrainingSplit: 0.75, BaseDir: testBase, PositiveSplit: 0.5}

	a, err := Build(fs, seeded(), opts)
	require.NoError(t, err)
	b, err := Build(fs, seeded(), opts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuild_SizesSumToSamples(t *testing.T) {
	fs := newImageTree(t, 10, 10)

	for _, split := range []float64{0, 0.1, 0.33, 0.5, 0.9, 1} {
		for n := 0; n <= 20; n++ {
			s, err := Build(fs, seeded(), Options{NumImages: n, TrainingSplit: split, BaseDir: testBase, PositiveSplit: 0.5})
			require.NoError(t, err)
			assert.Equal(t, n, len(s.TrainPaths)+len(s.TestPaths), "n=%d split=%g", n, split)
			assert.Equal(t, int(float64(n)*split), len(s.TrainPaths), "n=%d split=%g", n, split)
		}
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	fs := newImageTree(t, 1, 1)

	tests := []struct {
		name    string
		opts    Options
		errText string
	}{
		{"negative count", Options{NumImages: -1, TrainingSplit: 0.5, BaseDir: testBase, PositiveSplit: 0.5}, "num images"},
		{"training split above one", Options{NumImages: 2, TrainingSplit: 1.5, BaseDir: testBase, PositiveSplit: 0.5}, "training split"},
		{"negative positive split", Options{NumImages: 2, TrainingSplit: 0.5, BaseDir: testBase, PositiveSplit: -0.1}, "positive split"},
		{"missing base dir", Options{NumImages: 2, TrainingSplit: 0.5, PositiveSplit: 0.5}, "base dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(fs, seeded(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestBuild_MissingClassDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, filepath.Join(testBase, PositiveDir, "a.png"), 2, 2, 10)

	_, err := Build(fs, seeded(), Options{NumImages: 2, TrainingSplit: 0.5, BaseDir: testBase, PositiveSplit: 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), NegativeDir)
}
