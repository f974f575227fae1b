package main

import (
	"fmt"
	"io"
	"math"
	"path"
	"path/filepath"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/adapter/goes"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/montanaflynn/stats"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15",
	"2006-01-02 15:04:05",
}

// parseDate reads date in any of dateLayouts as UTC.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DDTHH", s)
}

func (a *app) fetcher() *goes.Fetcher {
	return goes.NewFetcher(a.credentialLoader(), goes.Config{
		Bucket:  a.cfg.GOESBucket,
		Region:  a.cfg.AWSRegion,
		Timeout: a.cfg.HTTPTimeout,
	}, a.metrics, a.logger)
}

func newGOESCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goes",
		Short: "retrieve GOES-16 ABI scans",
	}
	cmd.AddCommand(markDataOutput(newGOESFetchCmd(a)))
	return cmd
}

func newGOESFetchCmd(a *app) *cobra.Command {
	var (
		date    string
		product string
		band    int
		out     string
		varName string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "fetch the first scan of an hour and list its variables, or save it with --out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			when := domain.PreviousHour()
			if date != "" {
				var err error
				if when, err = parseDate(date); err != nil {
					return err
				}
			}
			f := a.fetcher()

			if out != "" {
				key, data, err := f.FetchRaw(cmd.Context(), when, product, band)
				if err != nil {
					return err
				}
				dest := out
				if isDir, _ := afero.IsDir(a.fs, out); isDir {
					dest = filepath.Join(out, path.Base(key))
				}
				if err := afero.WriteFile(a.fs, dest, data, 0o644); err != nil {
					return fmt.Errorf("write scan: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dest)
				return nil
			}

			scan, err := f.Fetch(cmd.Context(), when, product, band)
			if err != nil {
				return err
			}
			defer func() {
				if err := scan.Close(); err != nil {
					a.logger.Warn("close scan", "error", err)
				}
			}()

			w := cmd.OutOrStdout()
			if varName != "" {
				v, err := scan.Variable(varName)
				if err != nil {
					return err
				}
				return printVariable(w, scan.Key, v)
			}

			vars, err := scan.Variables()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, scan.Key)
			for _, v := range vars {
				fmt.Fprintf(w, "  %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "scan hour, RFC 3339 or YYYY-MM-DDTHH in UTC (defaults to the previous full hour)")
	cmd.Flags().StringVar(&product, "product", domain.DefaultProduct, "ABI product")
	cmd.Flags().IntVar(&band, "band", domain.DefaultBand, "ABI band")
	cmd.Flags().StringVarP(&out, "out", "o", "", "save the raw scan to this file or directory instead of opening it")
	cmd.Flags().StringVar(&varName, "var", "", "summarize this variable, e.g. Rad, instead of listing variables")
	return cmd
}

// printVariable writes the shape of v and the range and mean of its non-fill values.
func printVariable(w io.Writer, key string, v goes.Variable) error {
	valid := make(stats.Float64Data, 0, len(v.Data))
	for _, x := range v.Data {
		if !math.IsNaN(float64(x)) {
			valid = append(valid, float64(x))
		}
	}

	fmt.Fprintln(w, key)
	fmt.Fprintf(w, "  %s %v valid=%d/%d\n", v.Name, v.Dims, len(valid), len(v.Data))
	if len(valid) == 0 {
		return nil
	}

	lo, err := stats.Min(valid)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", v.Name, err)
	}
	hi, err := stats.Max(valid)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", v.Name, err)
	}
	mean, err := stats.Mean(valid)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", v.Name, err)
	}
	fmt.Fprintf(w, "  min=%g max=%g mean=%g\n", lo, hi, mean)
	return nil
}
