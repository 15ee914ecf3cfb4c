package risk

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/zones"
)

// FeatureVector is the exact ordered input the deployed classifier was
// trained on: [shift, weekday, neighborhoodCode].
//
// This order is a pinned contract. The training pipeline also computed
// district, hour, and month but the deployed model revision does not consume
// them; they are carried only in the debug snapshot. Do not reorder or extend
// this vector without retraining and redeploying the model.
type FeatureVector [3]float64

// NewFeatureVector assembles the classifier input in training order.
func NewFeatureVector(temporal TemporalFeatures, zone zones.ZoneAssignment) FeatureVector {
	return FeatureVector{
		float64(temporal.Shift),
		float64(temporal.Weekday),
		float64(zone.NeighborhoodCode),
	}
}

// Slice returns the vector as the []float64 the Classifier boundary accepts.
func (v FeatureVector) Slice() []float64 {
	return v[:]
}

// FeatureSnapshot records everything derived for a segment, including the
// features the deployed model does not consume, for debugging and audits.
type FeatureSnapshot struct {
	Hour             int `json:"hour"`
	Month            int `json:"month"`
	Shift            int `json:"shift"`
	Weekday          int `json:"weekday"`
	DistrictCode     int `json:"districtCode"`
	NeighborhoodCode int `json:"neighborhoodCode"`
}

// SegmentRisk is the scored result for one sampled route point. Immutable
// once produced.
type SegmentRisk struct {
	Lat                 float64         `json:"lat"`
	Lon                 float64         `json:"lon"`
	Prediction          int             `json:"prediction"`
	ProbabilityAccident float64         `json:"probabilityAccident"`
	ProbabilitySafe     float64         `json:"probabilitySafe"`
	Features            FeatureSnapshot `json:"features"`
}

// ScorerConfig holds configuration for the segment scorer.
type ScorerConfig struct {
	// Classifier is the deployed model handle (required). Injected once at
	// startup and shared immutably across all scoring calls.
	Classifier Classifier

	// Logger for scorer operations.
	Logger zerolog.Logger
}

// Scorer assembles feature vectors and invokes the classifier.
type Scorer struct {
	classifier Classifier
	logger     zerolog.Logger
}

// NewScorer creates a segment scorer around a classifier handle.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
	}
}

// Score classifies a single segment given its resolved zone and temporal
// features. Returns a wrapped ErrModelInference when the classifier fails;
// that failure is per-segment and must not abort an enclosing aggregation.
func (s *Scorer) Score(ctx context.Context, lat, lon float64, zone zones.ZoneAssignment, temporal TemporalFeatures) (SegmentRisk, error) {
	vector := NewFeatureVector(temporal, zone)

	prediction, err := s.classifier.Predict(ctx, vector.Slice())
	if err != nil {
		return SegmentRisk{}, fmt.Errorf("%w: %w", ErrModelInference, err)
	}

	return SegmentRisk{
		Lat:                 lat,
		Lon:                 lon,
		Prediction:          prediction.Class,
		ProbabilityAccident: prediction.Probabilities[1],
		ProbabilitySafe:     prediction.Probabilities[0],
		Features: FeatureSnapshot{
			Hour:             temporal.Hour,
			Month:            temporal.Month,
			Shift:            temporal.Shift,
			Weekday:          temporal.Weekday,
			DistrictCode:     zone.DistrictCode,
			NeighborhoodCode: zone.NeighborhoodCode,
		},
	}, nil
}
