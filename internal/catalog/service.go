// Package catalog orchestrates listing acquisition: cache lookup, fetch,
// decode, extraction and snapshot persistence.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmcdole/multiki/internal/domain"
	"github.com/mmcdole/multiki/internal/encoding"
	"github.com/mmcdole/multiki/internal/extractor"
	"github.com/mmcdole/multiki/internal/metrics"
)

// Result is one catalog request outcome.
type Result struct {
	Records   []domain.Record // never nil
	FromCache bool
	Strategy  string // winning extraction strategy, "" for cache hits and unrecognized pages
	Degraded  bool   // listing was decoded lossily
}

// Option configures a Service
type Option func(*Service)

// WithDecoder replaces the default encoding resolver.
func WithDecoder(d domain.Decoder) Option {
	return func(s *Service) { s.decoder = d }
}

// WithExtractor replaces the default strategy chain.
func WithExtractor(e domain.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithDetailSource replaces the default detail page fetcher.
func WithDetailSource(d domain.DetailSource) Option {
	return func(s *Service) { s.details = d }
}

// WithMetrics records request outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service serves the catalog to the presentation layer.
type Service struct {
	sourceURL string
	fetcher   domain.Fetcher
	decoder   domain.Decoder
	extractor domain.Extractor
	store     domain.CatalogStore
	details   domain.DetailSource
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService creates a catalog service for the listing at sourceURL.
func NewService(sourceURL string, fetcher domain.Fetcher, store domain.CatalogStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		sourceURL: sourceURL,
		fetcher:   fetcher,
		store:     store,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = encoding.NewResolver(nil, logger)
	}
	if s.extractor == nil {
		s.extractor = extractor.New(logger)
	}
	if s.details == nil {
		s.details = extractor.NewDetailFetcher(fetcher, s.decoder, logger)
	}
	return s
}

// GetCatalog returns the catalog, from a fresh snapshot when one exists.
// force discards the snapshot first and always fetches.
//
// The only error is one matching domain.ErrUnreachable; the stored snapshot is
// left as it was when the fetch fails.
func (s *Service) GetCatalog(ctx context.Context, force bool) (Result, error) {
	// 1. Freshness check
	if force {
		if err := s.store.Clear(); err != nil {
			s.logger.Error("failed to clear catalog snapshot", "error", err)
		}
	} else if records, ok := s.store.Load(); ok {
		s.logger.Debug("cache fresh", "count", len(records))
		s.metrics.ObserveRequest(metrics.SourceCache, len(records))
		if records == nil {
			records = []domain.Record{}
		}
		return Result{Records: records, FromCache: true}, nil
	}

	// 2. Fetch
	s.logger.Debug("fetching catalog", "url", s.sourceURL, "force", force)
	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, s.sourceURL)
	s.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to fetch catalog", "url", s.sourceURL, "error", err)
		return Result{}, asUnreachable(s.sourceURL, err)
	}

	// 3. Decode and extract
	text, degraded := s.decoder.Decode(raw)
	records, strategy := s.extractor.ExtractWithStrategy(text, s.sourceURL)
	if records == nil {
		records = []domain.Record{}
	}
	s.metrics.ObserveExtraction(strategy, degraded)
	if len(records) == 0 {
		s.logger.Warn("catalog page yielded no records", "url", s.sourceURL, "bytes", len(raw))
	}

	// 4. Persist
	if err := s.store.Save(records); err != nil {
		s.logger.Error("failed to save catalog snapshot", "error", err)
		s.metrics.SaveFailed()
	}

	s.metrics.ObserveRequest(metrics.SourceNetwork, len(records))
	s.logger.Info("fetched catalog", "count", len(records), "strategy", strategy, "degraded", degraded)
	return Result{Records: records, Strategy: strategy, Degraded: degraded}, nil
}

// FetchDetails returns best-effort enrichment for one record's detail page.
// It never fails; unknown fields are empty.
func (s *Service) FetchDetails(ctx context.Context, detailURL string) domain.DetailRecord {
	details := s.details.FetchDetails(ctx, detailURL)
	s.metrics.ObserveDetail(!details.IsEmpty())
	return details
}

// SourceURL returns the listing URL the service fetches.
func (s *Service) SourceURL() string {
	return s.sourceURL
}

func asUnreachable(sourceURL string, err error) error {
	if errors.Is(err, domain.ErrUnreachable) {
		return err
	}
	return &domain.UnreachableError{URL: sourceURL, Err: err}
}
