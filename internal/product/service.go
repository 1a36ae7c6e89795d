// Package product orchestrates a full extraction: fetch the page, resolve
// the product fields, classify the result, then persist and cache it.
package product

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cache "github.com/productlens/backend/internal/cache/redis"
	"github.com/productlens/backend/internal/classify"
	"github.com/productlens/backend/internal/extraction/generic"
	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
	"github.com/productlens/backend/internal/metrics"
	"github.com/productlens/backend/internal/storage/models"
	"github.com/productlens/backend/pkg/logger"
	"github.com/productlens/backend/pkg/utils"
)

// Result is the complete outcome of one extraction request.
type Result struct {
	ID             string                                      `json:"id"`
	URL            string                                      `json:"url"`
	Host           string                                      `json:"host"`
	Fields         map[resolver.Field]resolver.FieldResolution `json:"fields"`
	Classification classify.ClassificationResult               `json:"classification"`
	Cached         bool                                        `json:"cached"`
	LatencyMS      int                                         `json:"latency_ms"`
	CreatedAt      time.Time                                   `json:"created_at"`
}

// PageFetcher downloads and parses a product page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*page.Document, error)
}

// HistoryStore persists finished extractions.
type HistoryStore interface {
	InsertExtractionRecord(record *models.ExtractionRecord) error
	GetExtractionHistory(ctx context.Context, host string, limit int) ([]models.ExtractionRecord, error)
}

// ResultCache caches finished extractions keyed by URL hash. The redis
// client satisfies it; a nil cache disables caching.
type ResultCache interface {
	GetResult(ctx context.Context, key string, out interface{}) error
	SetResult(ctx context.Context, key string, value interface{}) error
}

type Service struct {
	fetcher  PageFetcher
	resolver *resolver.Resolver
	engine   *classify.Engine
	store    HistoryStore
	cache    ResultCache
}

func NewService(fetcher PageFetcher, r *resolver.Resolver, engine *classify.Engine, store HistoryStore, resultCache ResultCache) *Service {
	return &Service{
		fetcher:  fetcher,
		resolver: r,
		engine:   engine,
		store:    store,
		cache:    resultCache,
	}
}

// Extract runs the full pipeline for one product URL. When html is
// non-empty it is parsed directly and no fetch happens; the URL still
// names the page for host resolution and URL-derived classification
// signals.
func (s *Service) Extract(ctx context.Context, rawURL, html string) (*Result, error) {
	start := time.Now()

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid product url %q", rawURL)
	}
	host := parsed.Host

	cacheKey := utils.HashString(rawURL + html)
	if s.cache != nil {
		var cached Result
		err := s.cache.GetResult(ctx, cacheKey, &cached)
		if err == nil {
			cached.Cached = true
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("Result cache unavailable", zap.Error(err))
		}
	}

	doc, err := s.loadPage(ctx, rawURL, html)
	if err != nil {
		return nil, err
	}

	fields := s.resolver.ResolveAll(ctx, host, doc)
	classification := s.classifyFields(ctx, rawURL, doc, fields)

	result := &Result{
		ID:             uuid.New().String(),
		URL:            rawURL,
		Host:           host,
		Fields:         fields,
		Classification: classification,
		LatencyMS:      int(time.Since(start).Milliseconds()),
		CreatedAt:      time.Now().UTC(),
	}

	s.record(result, fields)
	s.observe(result, fields)

	if s.cache != nil {
		if err := s.cache.SetResult(ctx, cacheKey, result); err != nil {
			logger.Warn("Failed to cache extraction result", zap.Error(err))
		}
	}

	return result, nil
}

// ExtractStream runs the same pipeline but reports each field resolution
// through the callback as it completes, then the classification. Fields
// resolve sequentially here so the stream order is stable.
func (s *Service) ExtractStream(ctx context.Context, rawURL string, onField func(resolver.FieldResolution)) (*Result, error) {
	start := time.Now()

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid product url %q", rawURL)
	}
	host := parsed.Host

	doc, err := s.loadPage(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}

	fields := make(map[resolver.Field]resolver.FieldResolution, len(resolver.Fields))
	for _, field := range resolver.Fields {
		res := s.resolver.Resolve(ctx, field, host, doc)
		fields[field] = res
		onField(res)
	}

	classification := s.classifyFields(ctx, rawURL, doc, fields)

	result := &Result{
		ID:             uuid.New().String(),
		URL:            rawURL,
		Host:           host,
		Fields:         fields,
		Classification: classification,
		LatencyMS:      int(time.Since(start).Milliseconds()),
		CreatedAt:      time.Now().UTC(),
	}

	s.record(result, fields)
	s.observe(result, fields)
	return result, nil
}

// Classify classifies caller-supplied product data without fetching.
func (s *Service) Classify(ctx context.Context, data classify.ProductData) classify.ClassificationResult {
	return s.engine.Classify(ctx, data)
}

// History returns recent extractions, optionally filtered by host.
func (s *Service) History(ctx context.Context, host string, limit int) ([]models.ExtractionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetExtractionHistory(ctx, host, limit)
}

func (s *Service) loadPage(ctx context.Context, rawURL, html string) (*page.Document, error) {
	if html != "" {
		doc, err := page.NewDocument(html, rawURL)
		if err != nil {
			metrics.ExtractionErrors.WithLabelValues("parse").Inc()
			return nil, fmt.Errorf("failed to parse supplied html: %w", err)
		}
		return doc, nil
	}

	doc, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		metrics.ExtractionErrors.WithLabelValues("fetch").Inc()
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}
	return doc, nil
}

func (s *Service) classifyFields(ctx context.Context, rawURL string, doc *page.Document, fields map[resolver.Field]resolver.FieldResolution) classify.ClassificationResult {
	data := classify.ProductData{
		URL:         rawURL,
		Breadcrumbs: generic.BreadcrumbTrail(doc),
		Images:      fields[resolver.FieldImages].Images,
		Brand:       fields[resolver.FieldBrand].Value,
		Description: fields[resolver.FieldDescription].Value,
	}
	if title := fields[resolver.FieldTitle]; title.Found {
		data.Title = title.Value
	}
	return s.engine.Classify(ctx, data)
}

func (s *Service) record(result *Result, fields map[resolver.Field]resolver.FieldResolution) {
	if s.store == nil {
		return
	}

	record := &models.ExtractionRecord{
		ID:              result.ID,
		URL:             result.URL,
		Host:            result.Host,
		Title:           fields[resolver.FieldTitle].Value,
		Brand:           fields[resolver.FieldBrand].Value,
		Price:           fields[resolver.FieldPrice].Value,
		ImageCount:      len(fields[resolver.FieldImages].Images),
		PrimaryCategory: result.Classification.PrimaryCategory,
		Gender:          result.Classification.Gender,
		Confidence:      result.Classification.ConfidenceScore,
		LatencyMS:       result.LatencyMS,
		CreatedAt:       result.CreatedAt,
	}

	if err := s.store.InsertExtractionRecord(record); err != nil {
		logger.Error("Failed to persist extraction record",
			zap.String("extraction_id", result.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) observe(result *Result, fields map[resolver.Field]resolver.FieldResolution) {
	metrics.ExtractionDuration.Observe(float64(result.LatencyMS) / 1000)
	metrics.ClassificationConfidence.Observe(result.Classification.ConfidenceScore)

	for field, res := range fields {
		source := string(res.Source)
		if !res.Found {
			source = "none"
		}
		metrics.FieldSource.WithLabelValues(string(field), source).Inc()
	}
}
