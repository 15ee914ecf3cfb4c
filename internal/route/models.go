// Package route normalizes raw route geometry, aggregates per-segment
// accident risk into route-level summaries, and selects the safest of several
// alternatives.
package route

import (
	"errors"

	"github.com/viasegura/viasegura/internal/risk"
)

// Sentinel errors for route operations.
var (
	// ErrUnrecognizedGeometry indicates none of the known geometry encodings
	// matched the input. Fatal to that route's normalization only; sibling
	// alternatives are unaffected.
	ErrUnrecognizedGeometry = errors.New("unrecognized route geometry")

	// ErrNoCandidates indicates the selector was given zero routes.
	ErrNoCandidates = errors.New("no candidate routes")

	// ErrNoCoverage indicates every sampled segment failed to score and the
	// aggregator is configured for strict zero-coverage handling.
	ErrNoCoverage = errors.New("no segments could be scored")
)

// Coordinate is a geographic point in latitude-first order.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Fidelity describes how faithfully a normalized geometry represents the
// actual path shape.
type Fidelity string

const (
	// FidelityFull means the geometry carries the real path vertices.
	FidelityFull Fidelity = "FULL"
	// FidelityApproximate means only endpoints could be recovered (bounding
	// box fallback); risk aggregated over it is far less meaningful.
	FidelityApproximate Fidelity = "APPROXIMATE"
)

// Geometry is a canonical ordered path of at least two distinct points.
// DistanceMeters is the great-circle length of the path, not the provider's
// road distance; for APPROXIMATE geometry it understates the real trip.
type Geometry struct {
	Points         []Coordinate `json:"points"`
	Fidelity       Fidelity     `json:"fidelity"`
	DistanceMeters float64      `json:"distanceMeters"`
}

// SafetyLevel is the discrete classification of a route's average risk.
type SafetyLevel string

const (
	SafetyVerySafe SafetyLevel = "VERY_SAFE"
	SafetySafe     SafetyLevel = "SAFE"
	SafetyModerate SafetyLevel = "MODERATE"
	SafetyHigh     SafetyLevel = "HIGH_RISK"
	SafetyVeryHigh SafetyLevel = "VERY_HIGH_RISK"
)

// safetyLevelFor classifies an average risk using fixed breakpoints. The top
// band is closed at 1.0.
func safetyLevelFor(averageRisk float64) SafetyLevel {
	switch {
	case averageRisk < 0.2:
		return SafetyVerySafe
	case averageRisk < 0.4:
		return SafetySafe
	case averageRisk < 0.6:
		return SafetyModerate
	case averageRisk < 0.8:
		return SafetyHigh
	default:
		return SafetyVeryHigh
	}
}

// RiskSummary is the aggregated risk for one route, recomputed on every
// scoring request and never mutated afterwards.
type RiskSummary struct {
	AverageRisk      float64            `json:"averageRisk"`
	MaxRisk          float64            `json:"maxRisk"`
	SegmentsSampled  int                `json:"segmentsSampled"`
	HighRiskSegments int                `json:"highRiskSegments"`
	SafetyLevel      SafetyLevel        `json:"safetyLevel"`
	Degraded         bool               `json:"degraded"`
	GeometryFidelity Fidelity           `json:"geometryFidelity"`
	Segments         []risk.SegmentRisk `json:"segments"`
}

// ScoredRoute pairs a normalized geometry with its risk summary for selection.
type ScoredRoute struct {
	Geometry Geometry
	Summary  *RiskSummary
}
