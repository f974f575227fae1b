package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/cyclone-imagery/internal/adapter/ibtracs"
	"github.com/couchcryptid/cyclone-imagery/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/spf13/cobra"
)

const publishBatchSize = 500

func newIBTrACSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ibtracs",
		Short: "download and process IBTrACS best-track files",
	}
	cmd.AddCommand(
		markDataOutput(newIBTrACSDownloadCmd(a)),
		markDataOutput(newIBTrACSReadCmd(a)),
		newIBTrACSGOESFilterCmd(a),
		newIBTrACSPublishCmd(a),
	)
	return cmd
}

func newIBTrACSDownloadCmd(a *app) *cobra.Command {
	var (
		basin     string
		dataDir   string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "download",
		Short: "download the CSV for a basin from NCEI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("data-dir") {
				dataDir = a.cfg.DataDir
			}
			d := ibtracs.NewDownloader(a.fs, a.cfg.HTTPTimeout, a.metrics, a.logger)
			path, err := d.Download(cmd.Context(), basin, dataDir, overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&basin, "basin", ibtracs.DefaultBasin, "IBTrACS basin code (NA, EP, WP, NI, SI, SP, SA, ALL)")
	cmd.Flags().StringVar(&dataDir, "data-dir", ibtracs.DefaultDataDir, "directory to store the file in (defaults to DATA_DIR)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "download even when the file already exists")
	return cmd
}

// trackInput binds the flags shared by commands that read a track file.
type trackInput struct {
	goes    bool
	seasons seasonFlags
}

func (in *trackInput) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&in.goes, "goes", false, "input is a GOES-filtered file without a units row")
	in.seasons.register(cmd)
}

func (in *trackInput) read(cmd *cobra.Command, a *app, path string) ([]domain.TrackRecord, error) {
	recs, err := ibtracs.ReadTracksFile(a.fs, path, ibtracs.ReadOptions{
		SkipUnitsRow: !in.goes,
		Seasons:      in.seasons.seasons(cmd),
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("tracks read", "path", path, "records", len(recs))
	return recs, nil
}

func newIBTrACSReadCmd(a *app) *cobra.Command {
	var in trackInput
	cmd := &cobra.Command{
		Use:   "read FILE",
		Short: "parse a track file and print the kept columns as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := in.read(cmd, a, args[0])
			if err != nil {
				return err
			}
			return ibtracs.WriteTracks(cmd.OutOrStdout(), recs)
		},
	}
	in.register(cmd)
	return cmd
}

func newIBTrACSGOESFilterCmd(a *app) *cobra.Command {
	var in trackInput
	cmd := &cobra.Command{
		Use:   "goes-filter FILE OUT",
		Short: "keep the observations inside the GOES-16 full disk and write them to OUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := in.read(cmd, a, args[0])
			if err != nil {
				return err
			}

			out := args[1]
			if err := a.fs.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			f, err := a.fs.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			n, err := ibtracs.WriteGOESTracks(f, recs)
			if err != nil {
				return err
			}
			a.logger.Info("goes tracks written", "path", out, "kept", n, "dropped", len(recs)-n)
			return f.Close()
		},
	}
	in.register(cmd)
	return cmd
}

func newIBTrACSPublishCmd(a *app) *cobra.Command {
	var in trackInput
	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "publish every observation to the Kafka track topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := in.read(cmd, a, args[0])
			if err != nil {
				return err
			}

			w := kafka.NewWriter(a.cfg, a.metrics, a.logger)
			defer func() {
				if err := w.Close(); err != nil {
					a.logger.Error("kafka writer close error", "error", err)
				}
			}()

			if err := publish(cmd.Context(), w, recs); err != nil {
				return err
			}
			a.logger.Info("tracks published", "topic", a.cfg.KafkaTrackTopic, "records", len(recs))
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func publish(ctx context.Context, w *kafka.Writer, recs []domain.TrackRecord) error {
	for start := 0; start < len(recs); start += publishBatchSize {
		end := min(start+publishBatchSize, len(recs))
		if err := w.LoadBatch(ctx, recs[start:end]); err != nil {
			return err
		}
	}
	return nil
}
