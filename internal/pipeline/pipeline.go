// Package pipeline syncs GOES imagery for the observation hours of a track table.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/couchcryptid/cyclone-imagery/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Fetcher downloads the first scan of the UTC hour of date.
type Fetcher interface {
	FetchRaw(ctx context.Context, date time.Time, product string, band int) (key string, data []byte, err error)
}

// Store persists one scan per observation hour.
type Store interface {
	Has(hour time.Time) (bool, error)
	Save(hour time.Time, key string, data []byte) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProduct sets the ABI product to fetch.
func WithProduct(product string) Option {
	return func(p *Pipeline) { p.product = product }
}

// WithBand sets the ABI band to fetch.
func WithBand(band int) Option {
	return func(p *Pipeline) { p.band = band }
}

// WithRetry makes up to attempts fetches per hour, waiting backoff after the
// first failure and doubling the wait up to maxBackoff. Hours with no scan are
// not retried.
func WithRetry(attempts int, backoff, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.attempts = max(attempts, 1)
		p.backoff = backoff
		p.maxBackoff = maxBackoff
	}
}

// Progress is a snapshot of a sync run.
type Progress struct {
	Total   int64 `json:"total"`
	Done    int64 `json:"done"`
	Stored  int64 `json:"stored"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Pipeline walks observation hours in order and stores one scan for each.
type Pipeline struct {
	fetcher Fetcher
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
	product string
	band    int
	ready   atomic.Bool

	attempts            int
	backoff, maxBackoff time.Duration

	total, done, stored, skipped, failed atomic.Int64
}

// New creates a Pipeline fetching the default product and band unless
// overridden by opts.
func New(f Fetcher, s Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  f,
		store:    s,
		logger:   logger,
		metrics:  metrics,
		product:  domain.DefaultProduct,
		band:     domain.DefaultBand,
		attempts: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once at least one scan has been stored.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not stored any scans yet")
	}
	return nil
}

// Progress returns the counters of the current or last run.
func (p *Pipeline) Progress() Progress {
	return Progress{
		Total:   p.total.Load(),
		Done:    p.done.Load(),
		Stored:  p.stored.Load(),
		Skipped: p.skipped.Load(),
		Failed:  p.failed.Load(),
	}
}

// Run processes every distinct observation hour of records on or after
// domain.ArchiveStart, oldest first. Hours already in the store are skipped and
// failures are logged and skipped. Cancellation stops the run without error.
func (p *Pipeline) Run(ctx context.Context, records []domain.TrackRecord) error {
	hours := domain.ObservationHours(records)
	p.total.Store(int64(len(hours)))

	p.logger.Info("sync started", "hours", len(hours), "product", p.product, "band", p.band)
	p.metrics.SyncRunning.Set(1)
	defer p.metrics.SyncRunning.Set(0)

	for _, hour := range hours {
		if ctx.Err() != nil {
			p.logger.Info("sync stopping", "reason", ctx.Err())
			return nil
		}
		p.syncHour(ctx, hour)
	}

	p.logger.Info("sync finished",
		"stored", p.stored.Load(),
		"skipped", p.skipped.Load(),
		"failed", p.failed.Load(),
	)
	return nil
}

func (p *Pipeline) syncHour(ctx context.Context, hour time.Time) {
	has, err := p.store.Has(hour)
	if err != nil {
		p.fail(hour, "check store failed", err)
		return
	}
	if has {
		p.skipped.Add(1)
		p.done.Add(1)
		p.metrics.SyncHours.WithLabelValues("skipped").Inc()
		return
	}

	key, data, err := p.fetch(ctx, hour)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fail(hour, "fetch failed, skipping hour", err)
		return
	}

	if err := p.store.Save(hour, key, data); err != nil {
		p.fail(hour, "save failed, skipping hour", err)
		return
	}

	p.stored.Add(1)
	p.done.Add(1)
	p.metrics.SyncHours.WithLabelValues("stored").Inc()
	p.ready.Store(true)
	p.logger.Debug("scan stored", "hour", hour, "key", key)
}

func (p *Pipeline) fetch(ctx context.Context, hour time.Time) (string, []byte, error) {
	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		key, data, err := p.fetcher.FetchRaw(ctx, hour, p.product, p.band)
		if err == nil || attempt >= p.attempts || errors.Is(err, domain.ErrNoScan) || ctx.Err() != nil {
			return key, data, err
		}

		p.logger.Debug("fetch failed, retrying", "hour", hour, "attempt", attempt, "backoff", backoff, "error", err)
		p.metrics.FetchRetries.Inc()
		if !retry.SleepWithContext(ctx, backoff) {
			return "", nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
}

func (p *Pipeline) fail(hour time.Time, msg string, err error) {
	p.logger.Warn(msg, "error", err, "hour", hour)
	p.failed.Add(1)
	p.done.Add(1)
	p.metrics.SyncHours.WithLabelValues("failed").Inc()
}
