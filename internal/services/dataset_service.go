// Package services orchestrates the dataset pipeline for the HTTP layer:
// one-shot loads of the configured source, upload handling, and the
// memoized Dataset cache shared read-only by all consumers.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"clinicpulse/internal/config"
	"clinicpulse/internal/dataset"
	"clinicpulse/internal/infrastructure"
	"clinicpulse/internal/ingest"
)

// TableFetcher fetches a raw table from a source identifier.
type TableFetcher interface {
	Fetch(ctx context.Context, source string) (*ingest.Table, error)
}

// DatasetService builds and caches Datasets and answers the three
// presentation queries: full dataset, filtered range, and range summary.
//
// The cache is keyed by source identity (path or URL for addressable
// sources, content checksum for uploads) and has no eviction; a key always
// returns the same Dataset instance. Datasets are immutable, so sharing
// the instance across requests is safe. Concurrent first loads of one key
// are collapsed into a single fetch via singleflight.
type DatasetService struct {
	variant dataset.Variant
	source  string
	fetcher TableFetcher
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics

	group singleflight.Group

	mu      sync.RWMutex
	cache   map[string]*dataset.Dataset
	current string
}

// NewDatasetService creates the service for the configured source and
// variant. Metrics may be nil when telemetry is disabled.
func NewDatasetService(cfg config.DatasetConfig, fetcher TableFetcher, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (*DatasetService, error) {
	variant, err := dataset.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DatasetService{
		variant: variant,
		source:  cfg.Source,
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "dataset_service")),
		metrics: metrics,
		cache:   make(map[string]*dataset.Dataset),
		current: cfg.Source,
	}, nil
}

// Variant returns the schema variant this deployment ingests.
func (s *DatasetService) Variant() dataset.Variant {
	return s.variant
}

// Current returns the active Dataset, loading and caching it on first use.
// The active dataset is the configured source until an upload replaces it.
func (s *DatasetService) Current(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.RLock()
	key := s.current
	cached, ok := s.cache[key]
	s.mu.RUnlock()

	s.metrics.RecordCacheLookup(ctx, ok)
	if ok {
		return cached, nil
	}

	// The current key is only ever uncached for fetchable sources;
	// uploads enter the cache before becoming current.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.load(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// load runs fetch-validate-build for one source and caches the result.
func (s *DatasetService) load(ctx context.Context, source string) (*dataset.Dataset, error) {
	start := time.Now()

	table, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		s.metrics.RecordLoad(ctx, time.Since(start), 0, 0, false)
		return nil, err
	}

	ds, err := dataset.Build(s.variant, table)
	if err != nil {
		s.metrics.RecordLoad(ctx, time.Since(start), 0, 0, false)
		return nil, fmt.Errorf("failed to build dataset from %s: %w", source, err)
	}

	s.metrics.RecordLoad(ctx, time.Since(start), len(ds.Records), ds.Dropped, true)
	if ds.Dropped > 0 {
		s.logger.WarnContext(ctx, "rows dropped during dataset build",
			slog.String("source", source),
			slog.Int("dropped", ds.Dropped),
			slog.Int("retained", len(ds.Records)))
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.String("variant", s.variant.String()),
		slog.Int("records", len(ds.Records)),
		slog.Duration("took", time.Since(start)))

	s.mu.Lock()
	s.cache[source] = ds
	s.mu.Unlock()

	return ds, nil
}

// Upload builds a Dataset from an uploaded table and makes it the active
// one. The cache key is the content checksum, so re-uploading identical
// content reuses the previously built Dataset.
func (s *DatasetService) Upload(ctx context.Context, filename string, content []byte) (*dataset.Dataset, error) {
	if len(content) == 0 {
		return nil, ErrEmptyUpload
	}

	sum := sha256.Sum256(content)
	key := "upload:" + hex.EncodeToString(sum[:])

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	s.metrics.RecordCacheLookup(ctx, ok)

	if !ok {
		start := time.Now()
		table, err := ingest.DecodeUpload(filename, content)
		if err != nil {
			s.metrics.RecordLoad(ctx, time.Since(start), 0, 0, false)
			return nil, &ingest.SourceFetchError{Source: filename, Err: err}
		}

		cached, err = dataset.Build(s.variant, table)
		if err != nil {
			s.metrics.RecordLoad(ctx, time.Since(start), 0, 0, false)
			return nil, err
		}
		s.metrics.RecordLoad(ctx, time.Since(start), len(cached.Records), cached.Dropped, true)

		s.logger.InfoContext(ctx, "upload ingested",
			slog.String("filename", filename),
			slog.String("key", key),
			slog.Int("records", len(cached.Records)),
			slog.Int("dropped", cached.Dropped))

		s.mu.Lock()
		s.cache[key] = cached
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.current = key
	s.mu.Unlock()

	return cached, nil
}

// Range returns the records of the active Dataset whose period key lies in
// [from, to]. Empty bounds default to the dataset's own bounds, mirroring
// the dashboard slider's initial position.
func (s *DatasetService) Range(ctx context.Context, from, to string) ([]dataset.ObservationRecord, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	lo, hi, err := s.resolveBounds(ds, from, to)
	if err != nil {
		return nil, err
	}
	return ds.FilterRange(lo, hi), nil
}

// Summary returns the pooled summary metrics over [from, to] of the active
// Dataset. An empty range yields zero totals, never an error.
func (s *DatasetService) Summary(ctx context.Context, from, to string) (dataset.SummaryMetrics, error) {
	subset, err := s.Range(ctx, from, to)
	if err != nil {
		return dataset.SummaryMetrics{}, err
	}
	return dataset.Summarize(subset), nil
}

// resolveBounds parses the caller's bounds, substituting the dataset
// bounds for omitted ones.
func (s *DatasetService) resolveBounds(ds *dataset.Dataset, from, to string) (dataset.PeriodKey, dataset.PeriodKey, error) {
	min, max, ok := ds.Bounds()
	if !ok {
		// Empty dataset: any range filters to nothing.
		return 0, -1, nil
	}

	lo := min
	if from != "" {
		var err error
		if lo, err = s.variant.ParseKey(from); err != nil {
			return 0, 0, fmt.Errorf("%w: from=%q", ErrInvalidPeriodBound, from)
		}
	}

	hi := max
	if to != "" {
		var err error
		if hi, err = s.variant.ParseKey(to); err != nil {
			return 0, 0, fmt.Errorf("%w: to=%q", ErrInvalidPeriodBound, to)
		}
	}

	return lo, hi, nil
}
