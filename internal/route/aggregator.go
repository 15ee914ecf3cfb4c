package route

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/viasegura/viasegura/internal/risk"
	"github.com/viasegura/viasegura/internal/telemetry"
	"github.com/viasegura/viasegura/internal/zones"
)

const (
	// defaultMaxSamples bounds classifier invocations per route regardless of
	// how dense the provider's geometry is.
	defaultMaxSamples = 20

	// defaultConcurrency bounds parallel segment scoring; classifier
	// inference dominates latency so a small pool is enough.
	defaultConcurrency = 4
)

// AggregatorConfig holds configuration for the route risk aggregator.
type AggregatorConfig struct {
	// Resolver maps sampled coordinates to zones (required).
	Resolver *zones.Resolver

	// Scorer classifies sampled segments (required).
	Scorer *risk.Scorer

	// MaxSamples caps points scored per route. Default: 20.
	MaxSamples int

	// Concurrency bounds parallel segment scoring. Default: 4.
	Concurrency int

	// StrictZeroCoverage makes Aggregate return ErrNoCoverage when every
	// sampled segment failed to score. The default (lenient) policy returns a
	// zero-valued summary flagged Degraded instead.
	StrictZeroCoverage bool

	// Metrics records segment scored/skipped counters (optional).
	Metrics *telemetry.ScoringMetrics

	// Logger for aggregation operations.
	Logger zerolog.Logger
}

// Aggregator samples points along a route, scores each, and reduces them into
// a route-level risk summary.
type Aggregator struct {
	resolver    *zones.Resolver
	scorer      *risk.Scorer
	maxSamples  int
	concurrency int
	strict      bool
	metrics     *telemetry.ScoringMetrics
	logger      zerolog.Logger
}

// NewAggregator creates a route risk aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	maxSamples := cfg.MaxSamples
	if maxSamples <= 0 {
		maxSamples = defaultMaxSamples
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Aggregator{
		resolver:    cfg.Resolver,
		scorer:      cfg.Scorer,
		maxSamples:  maxSamples,
		concurrency: concurrency,
		strict:      cfg.StrictZeroCoverage,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Aggregate scores a route for a single departure time. Individual segment
// failures are skipped and logged, never aborting the aggregate. The error
// return is non-nil only for context cancellation or, under
// StrictZeroCoverage, total scoring failure.
func (a *Aggregator) Aggregate(ctx context.Context, geometry Geometry, departAt time.Time) (*RiskSummary, error) {
	samples := samplePoints(geometry.Points, a.maxSamples)
	temporal := risk.DeriveTemporal(departAt)

	// Segment scoring is independent per point; bound the fan-out and keep
	// results slotted by sample index so output order is deterministic.
	scored := make([]*risk.SegmentRisk, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, point := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			zone := a.resolver.Resolve(gctx, point.Lat, point.Lon)
			segment, err := a.scorer.Score(gctx, point.Lat, point.Lon, zone, temporal)
			if err != nil {
				// Skip-and-continue: partial information beats none.
				a.metrics.RecordSegment(gctx, true)
				a.logger.Warn().Err(err).
					Float64("lat", point.Lat).
					Float64("lon", point.Lon).
					Msg("segment scoring failed, skipping")
				return nil
			}

			a.metrics.RecordSegment(gctx, false)
			scored[i] = &segment
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := reduce(scored, geometry.Fidelity)

	if summary.SegmentsSampled == 0 {
		if a.strict {
			return nil, ErrNoCoverage
		}
		a.logger.Warn().
			Int("samples", len(samples)).
			Msg("no segments scored, returning degraded summary")
	}

	a.logger.Debug().
		Int("samples", len(samples)).
		Int("scored", summary.SegmentsSampled).
		Float64("average_risk", summary.AverageRisk).
		Str("safety_level", string(summary.SafetyLevel)).
		Msg("route risk aggregated")

	return summary, nil
}

// samplePoints selects at most limit evenly strided points, always at least
// one. The stride rounds up so the cap holds for any input density.
func samplePoints(points []Coordinate, limit int) []Coordinate {
	if len(points) == 0 {
		return nil
	}

	stride := (len(points) + limit - 1) / limit
	if stride < 1 {
		stride = 1
	}

	sampled := make([]Coordinate, 0, limit)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	return sampled
}

// reduce folds scored segments into the route summary. Failed (nil) slots are
// excluded from every statistic.
func reduce(scored []*risk.SegmentRisk, fidelity Fidelity) *RiskSummary {
	summary := &RiskSummary{
		GeometryFidelity: fidelity,
		SafetyLevel:      SafetyVerySafe,
	}

	var sum float64
	for _, segment := range scored {
		if segment == nil {
			continue
		}
		summary.Segments = append(summary.Segments, *segment)
		summary.SegmentsSampled++
		sum += segment.ProbabilityAccident
		if segment.ProbabilityAccident > summary.MaxRisk {
			summary.MaxRisk = segment.ProbabilityAccident
		}
		if segment.Prediction == 1 {
			summary.HighRiskSegments++
		}
	}

	if summary.SegmentsSampled == 0 {
		summary.Degraded = true
		return summary
	}

	summary.AverageRisk = sum / float64(summary.SegmentsSampled)
	summary.SafetyLevel = safetyLevelFor(summary.AverageRisk)
	return summary
}
