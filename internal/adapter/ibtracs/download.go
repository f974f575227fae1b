// Package ibtracs downloads, parses, and writes IBTrACS best-track CSV files.
package ibtracs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/observability"
	"github.com/spf13/afero"
)

const (
	DefaultBasin   = "NA"
	DefaultDataDir = "./data/"

	nceiBaseURL = "https://www.ncei.noaa.gov/data/international-best-track-archive-for-climate-stewardship-ibtracs/v04r00/access/csv"

	metricsSource = "ibtracs"
)

// Downloader fetches per-basin IBTrACS CSV files from NCEI.
type Downloader struct {
	fs         afero.Fs
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDownloader creates a Downloader that writes through fs.
func NewDownloader(fs afero.Fs, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Downloader {
	return &Downloader{
		fs: fs,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: nceiBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// URL returns the NCEI download URL for basin.
func (d *Downloader) URL(basin string) string {
	return fmt.Sprintf("%s/ibtracs.%s.list.v04r00.csv", d.baseURL, basin)
}

// FilePath returns where the CSV for basin is stored under dataDir.
func FilePath(dataDir, basin string) string {
	return filepath.Join(dataDir, "ibtracs_"+basin+".csv")
}

// Download stores the basin CSV at FilePath(dataDir, basin) and returns that
// path. When overwrite is false and the file already exists, nothing is
// fetched.
func (d *Downloader) Download(ctx context.Context, basin, dataDir string, overwrite bool) (string, error) {
	path := FilePath(dataDir, basin)

	if !overwrite {
		exists, err := afero.Exists(d.fs, path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if exists {
			d.logger.Debug("ibtracs file present, skipping download", "path", path)
			return path, nil
		}
	}

	start := time.Now()
	n, err := d.fetchTo(ctx, d.URL(basin), path)
	if err != nil {
		d.metrics.DownloadErrors.WithLabelValues(metricsSource).Inc()
		return "", err
	}
	d.metrics.DownloadDuration.WithLabelValues(metricsSource).Observe(time.Since(start).Seconds())
	d.metrics.DownloadBytes.WithLabelValues(metricsSource).Add(float64(n))

	d.logger.Info("ibtracs downloaded", "basin", basin, "path", path, "bytes", n)
	return path, nil
}

func (d *Downloader) fetchTo(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ibtracs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("ibtracs download error: status %d: %s", resp.StatusCode, body)
	}

	if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}
	// The previous file stays in place until the new one is complete.
	part := path + ".part"
	f, err := d.fs.Create(part)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", part, err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = d.fs.Remove(part)
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	if err := d.fs.Rename(part, path); err != nil {
		_ = d.fs.Remove(part)
		return n, fmt.Errorf("rename %s: %w", part, err)
	}
	return n, nil
}
