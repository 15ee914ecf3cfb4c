// Package scoring orchestrates route fetching, geometry normalization, risk
// aggregation and route selection into the operations the API exposes.
package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/history"
	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
	"github.com/viasegura/viasegura/internal/telemetry"
)

// Directions abstracts the routing layer so tests can stub it. The cached
// routing.Service satisfies it in production.
type Directions interface {
	GetAlternatives(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error)
}

// ServiceConfig holds configuration for the scoring service.
type ServiceConfig struct {
	// Directions fetches route alternatives (required for Recommend).
	Directions Directions

	// Aggregator scores normalized geometry (required).
	Aggregator *route.Aggregator

	// History persists assessments (optional).
	History history.Repository

	// Metrics records scoring instruments (optional).
	Metrics *telemetry.ScoringMetrics

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service scores route geometry and recommends the safest alternative.
type Service struct {
	directions Directions
	aggregator *route.Aggregator
	history    history.Repository
	metrics    *telemetry.ScoringMetrics
	logger     zerolog.Logger
}

// NewService creates a new scoring service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		directions: cfg.Directions,
		aggregator: cfg.Aggregator,
		history:    cfg.History,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// ScoreGeometry normalizes the given raw geometry and scores it for the given
// departure time.
func (s *Service) ScoreGeometry(ctx context.Context, raw route.RawGeometry, departAt time.Time) (*route.RiskSummary, error) {
	start := time.Now()

	geom, err := route.Normalize(raw)
	if err != nil {
		return nil, err
	}

	summary, err := s.aggregator.Aggregate(ctx, geom, departAt)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRouteScored(ctx, string(summary.SafetyLevel), summary.Degraded)
		s.metrics.ScoringDuration.Record(ctx, time.Since(start).Seconds())
	}

	return summary, nil
}

// ScoredAlternative pairs a provider alternative with the geometry that was
// actually scored and its risk assessment.
type ScoredAlternative struct {
	Alternative routing.Alternative
	Geometry    route.Geometry
	Risk        *route.RiskSummary
}

// Recommendation is the outcome of scoring all alternatives for a trip.
type Recommendation struct {
	SelectedIndex int
	Provider      string
	DepartAt      time.Time
	Routes        []ScoredAlternative
}

// Recommend fetches route alternatives between origin and destination, scores
// each one for the departure time and selects the safest.
//
// An alternative whose geometry cannot be normalized is not dropped: it is
// rescored on a straight origin to destination line so the comparison still
// covers every candidate the provider returned. The one exception is when
// even that line is degenerate (origin and destination collapse to a single
// point); such an alternative carries no scorable path and is skipped.
func (s *Service) Recommend(ctx context.Context, origin, destination routing.Coordinate, departAt time.Time, maxAlternatives int) (*Recommendation, error) {
	directions, err := s.directions.GetAlternatives(ctx, routing.DirectionsRequest{
		Origin:          origin,
		Destination:     destination,
		MaxAlternatives: maxAlternatives,
	})
	if err != nil {
		return nil, err
	}
	if len(directions.Alternatives) == 0 {
		return nil, routing.ErrNoRouteFound
	}

	scored := make([]ScoredAlternative, 0, len(directions.Alternatives))
	candidates := make([]route.ScoredRoute, 0, len(directions.Alternatives))

	for i, alt := range directions.Alternatives {
		geom, err := route.Normalize(alt.Geometry)
		if err != nil {
			if !errors.Is(err, route.ErrUnrecognizedGeometry) {
				return nil, err
			}
			s.logger.Warn().
				Int("alternative", i).
				Err(err).
				Msg("unrecognized route geometry, falling back to straight line")
			geom, err = route.StraightLine(
				route.Coordinate{Lat: origin.Lat, Lon: origin.Lon},
				route.Coordinate{Lat: destination.Lat, Lon: destination.Lon},
			)
			if err != nil {
				s.logger.Warn().
					Int("alternative", i).
					Err(err).
					Msg("straight line fallback degenerate, dropping alternative")
				continue
			}
		}

		summary, err := s.aggregator.Aggregate(ctx, geom, departAt)
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.RecordRouteScored(ctx, string(summary.SafetyLevel), summary.Degraded)
		}

		scored = append(scored, ScoredAlternative{Alternative: alt, Geometry: geom, Risk: summary})
		candidates = append(candidates, route.ScoredRoute{Geometry: geom, Summary: summary})
	}

	if len(candidates) == 0 {
		return nil, routing.ErrNoRouteFound
	}

	selected, err := route.SelectSafest(candidates)
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{
		SelectedIndex: selected,
		Provider:      directions.Provider,
		DepartAt:      departAt,
		Routes:        scored,
	}

	s.recordHistory(ctx, origin, destination, rec)

	return rec, nil
}

// recordHistory persists the recommendation outcome. Failures are logged,
// never surfaced; history is an audit trail, not part of the answer.
func (s *Service) recordHistory(ctx context.Context, origin, destination routing.Coordinate, rec *Recommendation) {
	if s.history == nil {
		return
	}

	best := rec.Routes[rec.SelectedIndex].Risk

	record := history.NewScoreRecord()
	record.OriginLat = origin.Lat
	record.OriginLon = origin.Lon
	record.DestinationLat = destination.Lat
	record.DestinationLon = destination.Lon
	record.DepartAt = rec.DepartAt
	record.Provider = rec.Provider
	record.Alternatives = len(rec.Routes)
	record.SelectedIndex = rec.SelectedIndex
	record.AverageRisk = best.AverageRisk
	record.MaxRisk = best.MaxRisk
	record.SafetyLevel = string(best.SafetyLevel)
	record.SegmentsSampled = best.SegmentsSampled
	record.HighRiskCount = best.HighRiskSegments
	record.Degraded = best.Degraded

	if err := s.history.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist score record")
	}
}
