// Package goes retrieves GOES-16 ABI scans from the public NOAA bucket.
package goes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	s3adapter "github.com/couchcryptid/cyclone-imagery/internal/adapter/s3"
	"github.com/couchcryptid/cyclone-imagery/internal/credentials"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/couchcryptid/cyclone-imagery/internal/observability"
	"github.com/spf13/afero"
)

// ErrNoScan is returned when no object matches the scan prefix.
var ErrNoScan = domain.ErrNoScan

const metricsSource = "goes"

// CredentialSource supplies the key pair used to list the bucket.
type CredentialSource interface {
	Load() (credentials.Credentials, error)
}

// ListerFactory builds an object lister authenticated with c.
type ListerFactory func(c credentials.Credentials) (s3adapter.ObjectLister, error)

// Config holds the Fetcher settings.
type Config struct {
	Bucket  string
	Region  string
	Timeout time.Duration
	// TempDir holds downloaded scans while they are open. Empty uses the OS default.
	TempDir string
}

// Fetcher finds the first scan of an hour and downloads it.
type Fetcher struct {
	creds      CredentialSource
	newLister  ListerFactory
	httpClient *http.Client
	bucket     string
	objectURL  func(bucket, key string) string
	fs         afero.Fs
	tempDir    string
	open       Opener
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher that lists cfg.Bucket with an S3 client built
// from freshly loaded credentials on every call.
func NewFetcher(creds CredentialSource, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = domain.DefaultBucket
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Fetcher{
		creds: creds,
		newLister: func(c credentials.Credentials) (s3adapter.ObjectLister, error) {
			return s3adapter.NewClient(c, cfg.Region, httpClient)
		},
		httpClient: httpClient,
		bucket:     bucket,
		objectURL:  domain.ObjectURL,
		fs:         afero.NewOsFs(),
		tempDir:    cfg.TempDir,
		open:       OpenHDF5,
		metrics:    metrics,
		logger:     logger,
	}
}

// FindKey returns the first key, in listing order, of the scans of product
// and band taken during the UTC hour of date.
func (f *Fetcher) FindKey(ctx context.Context, date time.Time, product string, band int) (string, error) {
	prefix := domain.ScanPrefix(product, date, band)

	c, err := f.creds.Load()
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	lister, err := f.newLister(c)
	if err != nil {
		return "", fmt.Errorf("create s3 client: %w", err)
	}

	key, ok, err := s3adapter.NewPaginator(lister, f.bucket, prefix, f.metrics).First(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: s3://%s/%s", ErrNoScan, f.bucket, prefix)
	}

	f.logger.Debug("goes scan found", "key", key, "prefix", prefix)
	return key, nil
}

// FetchRaw downloads the first scan of the hour and returns its key and bytes.
func (f *Fetcher) FetchRaw(ctx context.Context, date time.Time, product string, band int) (string, []byte, error) {
	key, err := f.FindKey(ctx, date, product, band)
	if err != nil {
		return "", nil, err
	}

	start := time.Now()
	data, err := f.download(ctx, key)
	if err != nil {
		f.metrics.DownloadErrors.WithLabelValues(metricsSource).Inc()
		return "", nil, err
	}
	f.metrics.DownloadDuration.WithLabelValues(metricsSource).Observe(time.Since(start).Seconds())
	f.metrics.DownloadBytes.WithLabelValues(metricsSource).Add(float64(len(data)))

	f.logger.Info("goes scan downloaded", "key", key, "bytes", len(data))
	return key, data, nil
}

// Fetch downloads the first scan of the hour and opens it. The caller must
// Close the returned Scan.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time, product string, band int) (*Scan, error) {
	key, data, err := f.FetchRaw(ctx, date, product, band)
	if err != nil {
		return nil, err
	}

	path, err := f.writeTemp(key, data)
	if err != nil {
		return nil, err
	}

	ds, err := f.open(path)
	if err != nil {
		_ = f.fs.Remove(path)
		return nil, fmt.Errorf("open scan %s: %w", key, err)
	}

	return &Scan{Key: key, Path: path, Dataset: ds, fs: f.fs}, nil
}

func (f *Fetcher) download(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.objectURL(f.bucket, key), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("goes request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("goes download error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (f *Fetcher) writeTemp(key string, data []byte) (string, error) {
	tmp, err := afero.TempFile(f.fs, f.tempDir, domain.ScanName(key)+"-*.nc")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = f.fs.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}
