package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
)

// SampleIngestor fetches and decodes the sample table.
type SampleIngestor interface {
	Ingest(ctx context.Context) (domain.SampleBatch, error)
}

// Transformer reduces a decoded batch to a dataset snapshot.
type Transformer interface {
	Transform(batch domain.SampleBatch, version uint64) *domain.Dataset
}

// ProfilePublisher ships an extracted profile downstream.
type ProfilePublisher interface {
	PublishProfile(ctx context.Context, ds *domain.Dataset) error
}

const (
	defaultAttempts   = 3
	defaultBackoff    = 200 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAttempts sets how many times a transport failure is tried before the
// pass gives up. Values below 1 are treated as 1.
func WithAttempts(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.attempts = n
	}
}

// WithBackoff sets the initial and maximum retry delay.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.backoff = initial
		p.maxBackoff = maxBackoff
	}
}

// WithPublisher enables publishing each new dataset.
func WithPublisher(pub ProfilePublisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// Pipeline runs ingestion passes and holds the current dataset snapshot.
type Pipeline struct {
	ingestor    SampleIngestor
	transformer Transformer
	publisher   ProfilePublisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration

	mu      sync.Mutex // serializes passes
	version atomic.Uint64
	current atomic.Pointer[domain.Dataset]
	ready   atomic.Bool
	lastErr atomic.Pointer[error]
}

// New creates a Pipeline serving an empty dataset until the first pass succeeds.
func New(i SampleIngestor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		ingestor:    i,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
		attempts:    defaultAttempts,
		backoff:     defaultBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.current.Store(domain.EmptyDataset())
	return p
}

// Dataset returns the current snapshot. It is never nil.
func (p *Pipeline) Dataset() *domain.Dataset {
	return p.current.Load()
}

// Ready reports whether a pass has succeeded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil once a dataset has been loaded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() {
		return nil
	}
	if errp := p.lastErr.Load(); errp != nil {
		return fmt.Errorf("no dataset loaded: %w", *errp)
	}
	return errors.New("no dataset loaded yet")
}

// Run performs the initial pass and then blocks until ctx is cancelled.
// A failed pass is logged and the empty dataset stays in place.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "attempts", p.attempts)
	if _, err := p.Load(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("initial load failed", "error", err)
	}
	<-ctx.Done()
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// Load runs one fetch-decode-extract pass and swaps in the new snapshot.
// On failure the previous snapshot is kept.
func (p *Pipeline) Load(ctx context.Context) (*domain.Dataset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	batch, err := p.ingestWithRetry(ctx)
	if err != nil {
		p.metrics.LoadsTotal.WithLabelValues("error").Inc()
		p.lastErr.Store(&err)
		return nil, err
	}

	ds := p.transformer.Transform(batch, p.version.Add(1))
	p.current.Store(ds)
	p.ready.Store(true)
	p.lastErr.Store(nil)

	p.record(ds, batch, start)
	p.logger.Info("dataset loaded",
		"version", ds.Version,
		"source", ds.Source,
		"rows", batch.Rows,
		"points", len(ds.Points),
		"skipped", ds.Report.SkippedCount(),
	)

	p.publish(ctx, ds)
	return ds, nil
}

// ingestWithRetry retries transport failures with exponential backoff.
// Decode failures are returned immediately.
func (p *Pipeline) ingestWithRetry(ctx context.Context) (domain.SampleBatch, error) {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		var batch domain.SampleBatch
		batch, err = p.ingestor.Ingest(ctx)
		if err == nil {
			return batch, nil
		}
		if !errors.Is(err, domain.ErrSourceUnavailable) || ctx.Err() != nil {
			return domain.SampleBatch{}, err
		}
		if attempt == p.attempts {
			break
		}

		p.logger.Warn("fetch failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		p.metrics.FetchRetries.Inc()
		if !sleepWithContext(ctx, backoff) {
			return domain.SampleBatch{}, ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return domain.SampleBatch{}, fmt.Errorf("after %d attempts: %w", p.attempts, err)
}

func (p *Pipeline) record(ds *domain.Dataset, batch domain.SampleBatch, start time.Time) {
	p.metrics.LoadsTotal.WithLabelValues("success").Inc()
	p.metrics.LoadDuration.Observe(observability.Since(start))
	p.metrics.SamplesDecoded.Add(float64(batch.Rows))
	p.metrics.MalformedRows.Add(float64(batch.MalformedRows))
	p.metrics.StationsEmitted.Set(float64(len(ds.Points)))
	for _, s := range ds.Report.Skipped {
		p.metrics.StationsSkipped.WithLabelValues(string(s.Reason)).Inc()
	}
	p.metrics.DatasetVersion.Set(float64(ds.Version))
	p.metrics.PipelineReady.Set(1)
}

// publish failures never fail the pass; the snapshot is already served.
func (p *Pipeline) publish(ctx context.Context, ds *domain.Dataset) {
	if p.publisher == nil || ds.Empty() {
		return
	}
	if err := p.publisher.PublishProfile(ctx, ds); err != nil {
		p.logger.Error("publish profile failed", "error", err, "version", ds.Version)
		p.metrics.ProfilePublished.WithLabelValues("error").Inc()
		return
	}
	p.metrics.ProfilePublished.WithLabelValues("success").Inc()
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
