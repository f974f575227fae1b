package main

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/couchcryptid/cyclone-imagery/internal/dataset"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/spf13/cobra"
)

type datasetFlags struct {
	numImages     int
	trainingSplit float64
	baseDir       string
	positiveSplit float64
	seed          int64
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.numImages, "num-images", "n", 100, "total images across both classes")
	cmd.Flags().Float64Var(&f.trainingSplit, "training-split", 0.8, "fraction of samples in the train subset")
	cmd.Flags().StringVar(&f.baseDir, "base-dir", dataset.DefaultBaseDir, "directory holding positive/ and negative/")
	cmd.Flags().Float64Var(&f.positiveSplit, "positive-split", dataset.DefaultPositiveSplit, "fraction of images drawn from positive/")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "shuffle seed (0 seeds from the clock)")
}

func (f *datasetFlags) build(a *app) (dataset.Split, error) {
	seed := f.seed
	if seed == 0 {
		seed = domain.Now().UnixNano()
	}
	a.logger.Debug("building dataset", "base_dir", f.baseDir, "num_images", f.numImages, "seed", seed)

	return dataset.Build(a.fs, rand.New(rand.NewSource(seed)), dataset.Options{
		NumImages:     f.numImages,
		TrainingSplit: f.trainingSplit,
		BaseDir:       f.baseDir,
		PositiveSplit: f.positiveSplit,
	})
}

func newDatasetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "assemble and inspect labeled image datasets",
	}
	cmd.AddCommand(markDataOutput(newDatasetSplitCmd(a)), markDataOutput(newDatasetStatsCmd(a)))
	return cmd
}

func newDatasetSplitCmd(a *app) *cobra.Command {
	var f datasetFlags
	cmd := &cobra.Command{
		Use:   "split",
		Short: "print a shuffled train/test split as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			split, err := f.build(a)
			if err != nil {
				return err
			}
			a.logger.Info("dataset split",
				"train", len(split.TrainPaths),
				"test", len(split.TestPaths),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(splitJSON{
				TrainPaths:  split.TrainPaths,
				TrainLabels: split.TrainLabels,
				TestPaths:   split.TestPaths,
				TestLabels:  split.TestLabels,
			})
		},
	}
	f.register(cmd)
	return cmd
}

type splitJSON struct {
	TrainPaths  []string `json:"train_paths"`
	TrainLabels []int    `json:"train_labels"`
	TestPaths   []string `json:"test_paths"`
	TestLabels  []int    `json:"test_labels"`
}

func newDatasetStatsCmd(a *app) *cobra.Command {
	var f datasetFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "load the train subset and print its shape and normalization parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			split, err := f.build(a)
			if err != nil {
				return err
			}

			x, y, err := dataset.LoadImages(a.fs, split.TrainPaths, split.TrainLabels)
			if err != nil {
				return err
			}
			params, _, err := dataset.Normalize(x)
			if err != nil {
				return err
			}

			var positives int
			for _, l := range y {
				if l == 1 {
					positives++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shape: %v\n", x.Shape())
			fmt.Fprintf(out, "positives: %d/%d\n", positives, len(y))
			fmt.Fprintf(out, "mean: %g\n", params.Mean)
			fmt.Fprintf(out, "std: %g\n", params.Std)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
