// Command cyclone assembles classifier datasets from labeled GOES imagery and
// downloads the IBTrACS tracks and GOES-16 scans they are cut from.
//
// Usage:
//
//	cyclone dataset split -n 1000 --training-split 0.8
//	cyclone ibtracs download --basin NA
//	cyclone ibtracs goes-filter data/ibtracs_NA.csv data/ibtracs_NA_goes.csv
//	cyclone goes fetch --date 2017-08-25T18:00:00Z
//	cyclone sync data/ibtracs_NA_goes.csv --goes --season-start 2017
package main

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/cyclone-imagery/internal/config"
	"github.com/couchcryptid/cyclone-imagery/internal/credentials"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/couchcryptid/cyclone-imagery/internal/observability"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the environment is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	fs      afero.Fs
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:           "cyclone",
		Short:         "tropical cyclone imagery toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if writesData(cmd) {
				a.logger = observability.NewStderrLogger(cfg)
			} else {
				a.logger = observability.NewLogger(cfg)
			}
			a.metrics = observability.NewMetrics()
			return nil
		},
	}

	root.AddCommand(
		newDatasetCmd(a),
		newIBTrACSCmd(a),
		newGOESCmd(a),
		newSyncCmd(a),
	)
	return root
}

const dataOutput = "data-output"

// markDataOutput flags cmd as writing its results to stdout, which moves
// logging to stderr.
func markDataOutput(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[dataOutput] = "true"
	return cmd
}

func writesData(cmd *cobra.Command) bool {
	return cmd.Annotations[dataOutput] == "true"
}

func (a *app) credentialLoader() *credentials.Loader {
	return credentials.NewLoader(a.fs, a.cfg.CredentialsFile)
}

// seasonFlags binds --season-start/--season-end. The filter is only enabled
// when either flag is set.
type seasonFlags struct {
	start, end int
}

func (s *seasonFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.start, "season-start", domain.AllSeasons.Start, "first season to keep (inclusive)")
	cmd.Flags().IntVar(&s.end, "season-end", domain.AllSeasons.End, "last season to keep (inclusive)")
}

func (s *seasonFlags) seasons(cmd *cobra.Command) *domain.SeasonRange {
	if !cmd.Flags().Changed("season-start") && !cmd.Flags().Changed("season-end") {
		return nil
	}
	return &domain.SeasonRange{Start: s.start, End: s.end}
}
