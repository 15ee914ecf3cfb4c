package models

// GeometryInput is the geometry portion of a score request. Exactly one of
// the three encodings must be set.
type GeometryInput struct {
	// Coordinates is a list of [lon, lat] pairs (GeoJSON order).
	Coordinates [][]float64 `json:"coordinates,omitempty"`

	// Polyline is an encoded polyline string (precision 5).
	Polyline string `json:"polyline,omitempty"`

	// BBox is [minLon, minLat, maxLon, maxLat].
	BBox []float64 `json:"bbox,omitempty"`
}

// ScoreRouteRequest is the request body for POST /v1/routes:score.
type ScoreRouteRequest struct {
	Geometry GeometryInput `json:"geometry"`

	// DepartAt is the departure time; defaults to now.
	DepartAt *Timestamp `json:"departAt,omitempty"`
}

// SegmentRiskResponse is one sampled point's risk assessment.
type SegmentRiskResponse struct {
	Point               Point   `json:"point"`
	ProbabilityAccident float64 `json:"probabilityAccident"`
	District            string  `json:"district,omitempty"`
	Neighborhood        string  `json:"neighborhood,omitempty"`
}

// RiskSummaryResponse is the aggregated risk assessment for one route.
type RiskSummaryResponse struct {
	AverageRisk      float64               `json:"averageRisk"`
	MaxRisk          float64               `json:"maxRisk"`
	SafetyLevel      string                `json:"safetyLevel"`
	SegmentsSampled  int                   `json:"segmentsSampled"`
	HighRiskSegments int                   `json:"highRiskSegments"`
	Degraded         bool                  `json:"degraded"`
	GeometryFidelity string                `json:"geometryFidelity"`
	Segments         []SegmentRiskResponse `json:"segments,omitempty"`
}

// ScoreRouteResponse is the response body for POST /v1/routes:score.
type ScoreRouteResponse struct {
	DepartAt Timestamp           `json:"departAt"`
	Risk     RiskSummaryResponse `json:"risk"`
}

// RecommendRouteRequest is the request body for POST /v1/routes:recommend.
type RecommendRouteRequest struct {
	Origin      Point `json:"origin"`
	Destination Point `json:"destination"`

	// DepartAt is the departure time; defaults to now.
	DepartAt *Timestamp `json:"departAt,omitempty"`

	// MaxAlternatives caps how many routes are requested (default 3).
	MaxAlternatives int `json:"maxAlternatives,omitempty"`
}

// RouteAlternativeResponse is one scored route alternative. Polyline carries
// the path that was actually scored, so clients can render the assessment
// even when the provider geometry was degraded to a fallback.
type RouteAlternativeResponse struct {
	Index           int                 `json:"index"`
	Summary         string              `json:"summary,omitempty"`
	Polyline        string              `json:"polyline,omitempty"`
	DistanceMeters  int                 `json:"distanceMeters,omitempty"`
	DurationSeconds int                 `json:"durationSeconds,omitempty"`
	Risk            RiskSummaryResponse `json:"risk"`
}

// RecommendRouteResponse is the response body for POST /v1/routes:recommend.
type RecommendRouteResponse struct {
	RecommendedIndex int                        `json:"recommendedIndex"`
	DepartAt         Timestamp                  `json:"departAt"`
	Provider         string                     `json:"provider"`
	Routes           []RouteAlternativeResponse `json:"routes"`
}
