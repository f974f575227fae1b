package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/cyclone-imagery/internal/adapter/http"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/couchcryptid/cyclone-imagery/internal/pipeline"
	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		in       trackInput
		outDir   string
		product  string
		band     int
		attempts int
		backoff  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sync FILE",
		Short: "store one GOES scan for every observation hour of a track file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = filepath.Join(a.cfg.DataDir, "goes")
			}
			recs, err := in.read(cmd, a, args[0])
			if err != nil {
				return err
			}

			p := pipeline.New(a.fetcher(), pipeline.NewFileStore(a.fs, outDir), a.logger, a.metrics,
				pipeline.WithProduct(product),
				pipeline.WithBand(band),
				pipeline.WithRetry(attempts, backoff, 30*time.Second),
			)
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Start HTTP server.
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("http server error", "error", err)
				}
			}()

			runErr := p.Run(ctx, recs)

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}

			progress := p.Progress()
			a.logger.Info("shutdown complete",
				"stored", progress.Stored,
				"skipped", progress.Skipped,
				"failed", progress.Failed,
			)
			return runErr
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "scan directory (defaults to DATA_DIR/goes)")
	cmd.Flags().StringVar(&product, "product", domain.DefaultProduct, "ABI product")
	cmd.Flags().IntVar(&band, "band", domain.DefaultBand, "ABI band")
	cmd.Flags().IntVar(&attempts, "attempts", 3, "fetch attempts per hour")
	cmd.Flags().DurationVar(&backoff, "retry-backoff", 2*time.Second, "wait before the first retry, doubled on each retry")
	return cmd
}
