package flightdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skytagbot/skytag/internal/db"
	"github.com/skytagbot/skytag/internal/domain"
	"github.com/skytagbot/skytag/internal/metrics"
)

// Renderer yields the rendered HTML of the flight data table for a URL,
// after the table exists, any loading placeholder is gone, and the settle
// delay has elapsed. Implementations map an exceeded wait budget to
// domain.ErrRenderTimeout.
type Renderer interface {
	RenderTable(ctx context.Context, url string) (string, error)
}

// Cache is the optional enrichment cache (ISP subset of db.Store).
type Cache interface {
	db.KVStore
}

// Lookup resolves a registration to its most recent landed flight and next
// estimated flight.
type Lookup struct {
	baseURL  string
	renderer Renderer
	schema   Schema
	logger   *zap.Logger

	cache    Cache
	cacheTTL time.Duration

	now func() time.Time
}

// NewLookup creates a flight status lookup against baseURL.
func NewLookup(baseURL string, renderer Renderer, logger *zap.Logger) *Lookup {
	return &Lookup{
		baseURL:  strings.TrimRight(baseURL, "/"),
		renderer: renderer,
		schema:   DefaultSchema(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithCache enables the enrichment cache. A hit skips the render entirely
// and keeps its original observation time.
func (l *Lookup) WithCache(cache Cache, ttl time.Duration) *Lookup {
	l.cache = cache
	l.cacheTTL = ttl
	return l
}

// WithSchema overrides the table schema. Used by tests and provider swaps.
func (l *Lookup) WithSchema(s Schema) *Lookup {
	l.schema = s
	return l
}

// URLFor derives the provider page URL: hyphens stripped, lowercased.
func (l *Lookup) URLFor(registration string) string {
	clean := strings.ToLower(strings.ReplaceAll(registration, "-", ""))
	return l.baseURL + "/" + clean
}

// Enrich renders the provider page for registration and extracts up to one
// recent and one next flight. On failure the returned result still carries
// the registration and source URL so the caller can report the sighting
// without flight detail.
func (l *Lookup) Enrich(ctx context.Context, registration string) (domain.EnrichmentResult, error) {
	sourceURL := l.URLFor(registration)
	result := domain.EnrichmentResult{
		Registration: registration,
		SourceURL:    sourceURL,
		ObservedAt:   l.now(),
	}

	if cached, ok := l.cacheGet(ctx, registration); ok {
		metrics.LookupsTotal.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	start := l.now()
	tableHTML, err := l.renderer.RenderTable(ctx, sourceURL)
	metrics.LookupDuration.Observe(l.now().Sub(start).Seconds())
	if err != nil {
		outcome := "extraction_error"
		if errors.Is(err, domain.ErrRenderTimeout) {
			outcome = "render_timeout"
		}
		metrics.LookupsTotal.WithLabelValues(outcome).Inc()
		return result, fmt.Errorf("render %s: %w", sourceURL, err)
	}

	recent, next, err := ExtractFlights(tableHTML, l.schema)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("extraction_error").Inc()
		return result, fmt.Errorf("extract %s: %w", sourceURL, err)
	}

	observed := l.now()
	if recent != nil {
		recent.ObservedAt = observed
	}
	if next != nil {
		next.ObservedAt = observed
	}
	result.RecentFlight = recent
	result.NextFlight = next
	result.ObservedAt = observed

	metrics.LookupsTotal.WithLabelValues("ok").Inc()
	l.cacheSet(ctx, registration, result)
	return result, nil
}

func cacheKey(registration string) string {
	return "skytag:flight:" + strings.ToLower(registration)
}

func (l *Lookup) cacheGet(ctx context.Context, registration string) (domain.EnrichmentResult, bool) {
	if l.cache == nil {
		return domain.EnrichmentResult{}, false
	}

	data, err := l.cache.Get(ctx, cacheKey(registration))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			l.logger.Warn("enrichment cache read failed", zap.String("registration", registration), zap.Error(err))
		}
		return domain.EnrichmentResult{}, false
	}

	var result domain.EnrichmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		l.logger.Warn("enrichment cache entry corrupt", zap.String("registration", registration), zap.Error(err))
		return domain.EnrichmentResult{}, false
	}
	return result, true
}

func (l *Lookup) cacheSet(ctx context.Context, registration string, result domain.EnrichmentResult) {
	if l.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := l.cache.SetWithTTL(ctx, cacheKey(registration), data, l.cacheTTL); err != nil {
		l.logger.Warn("enrichment cache write failed", zap.String("registration", registration), zap.Error(err))
	}
}
