package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScoringMetrics holds the instruments recorded during route scoring.
type ScoringMetrics struct {
	RoutesScored    metric.Int64Counter
	SegmentsScored  metric.Int64Counter
	SegmentsSkipped metric.Int64Counter
	ZoneCacheHits   metric.Int64Counter
	ZoneCacheMisses metric.Int64Counter
	ScoringDuration metric.Float64Histogram
}

// NewScoringMetrics creates the scoring instruments on the given meter.
func NewScoringMetrics(meter metric.Meter) (*ScoringMetrics, error) {
	routesScored, err := meter.Int64Counter("viasegura.routes.scored",
		metric.WithDescription("Number of route alternatives scored"),
	)
	if err != nil {
		return nil, err
	}

	segmentsScored, err := meter.Int64Counter("viasegura.segments.scored",
		metric.WithDescription("Number of route segments classified"),
	)
	if err != nil {
		return nil, err
	}

	segmentsSkipped, err := meter.Int64Counter("viasegura.segments.skipped",
		metric.WithDescription("Number of segments skipped due to model errors"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter("viasegura.zonecache.hits",
		metric.WithDescription("Zone resolution cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter("viasegura.zonecache.misses",
		metric.WithDescription("Zone resolution cache misses"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("viasegura.scoring.duration",
		metric.WithDescription("Route scoring duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ScoringMetrics{
		RoutesScored:    routesScored,
		SegmentsScored:  segmentsScored,
		SegmentsSkipped: segmentsSkipped,
		ZoneCacheHits:   cacheHits,
		ZoneCacheMisses: cacheMisses,
		ScoringDuration: duration,
	}, nil
}

// RecordRouteScored records one scored alternative with its safety level.
func (m *ScoringMetrics) RecordRouteScored(ctx context.Context, safetyLevel string, degraded bool) {
	if m == nil {
		return
	}
	m.RoutesScored.Add(ctx, 1, metric.WithAttributes(
		attribute.String("safety_level", safetyLevel),
		attribute.Bool("degraded", degraded),
	))
}

// RecordSegment records the outcome of one sampled segment classification.
func (m *ScoringMetrics) RecordSegment(ctx context.Context, skipped bool) {
	if m == nil {
		return
	}
	if skipped {
		m.SegmentsSkipped.Add(ctx, 1)
		return
	}
	m.SegmentsScored.Add(ctx, 1)
}

// RecordZoneLookup records whether a zone resolution was served from the
// memoized assignment cache.
func (m *ScoringMetrics) RecordZoneLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ZoneCacheHits.Add(ctx, 1)
		return
	}
	m.ZoneCacheMisses.Add(ctx, 1)
}
