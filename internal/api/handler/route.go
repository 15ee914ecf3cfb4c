package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/viasegura/viasegura/internal/api/models"
	"github.com/viasegura/viasegura/internal/api/response"
	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
	"github.com/viasegura/viasegura/internal/scoring"
	"github.com/viasegura/viasegura/internal/zones"
)

// RouteHandler handles route scoring endpoints.
type RouteHandler struct {
	scoring *scoring.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(svc *scoring.Service) *RouteHandler {
	return &RouteHandler{scoring: svc}
}

// ScoreRoute handles POST /v1/routes:score.
func (h *RouteHandler) ScoreRoute(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	raw, fieldErrs := rawGeometryFromInput(req.Geometry)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid geometry", fieldErrs)
		return
	}

	departAt := time.Now()
	if req.DepartAt != nil {
		departAt = req.DepartAt.Time()
	}

	summary, err := h.scoring.ScoreGeometry(r.Context(), raw, departAt)
	if err != nil {
		h.writeScoringError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ScoreRouteResponse{
		DepartAt: models.Timestamp(departAt),
		Risk:     riskSummaryResponse(summary),
	})
}

// RecommendRoutes handles POST /v1/routes:recommend.
func (h *RouteHandler) RecommendRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	var fieldErrs []models.FieldError
	origin := routing.Coordinate{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
	destination := routing.Coordinate{Lat: req.Destination.Lat, Lon: req.Destination.Lon}
	if err := routing.ValidateCoordinate(origin); err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "origin", Message: "coordinates out of range"})
	}
	if err := routing.ValidateCoordinate(destination); err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "destination", Message: "coordinates out of range"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	departAt := time.Now()
	if req.DepartAt != nil {
		departAt = req.DepartAt.Time()
	}

	rec, err := h.scoring.Recommend(r.Context(), origin, destination, departAt, req.MaxAlternatives)
	if err != nil {
		h.writeScoringError(w, r, err)
		return
	}

	resp := models.RecommendRouteResponse{
		RecommendedIndex: rec.SelectedIndex,
		DepartAt:         models.Timestamp(rec.DepartAt),
		Provider:         rec.Provider,
		Routes:           make([]models.RouteAlternativeResponse, 0, len(rec.Routes)),
	}
	for i, scored := range rec.Routes {
		// The provider distance is authoritative; the great-circle length of
		// the scored path stands in when the provider did not report one.
		distance := scored.Alternative.DistanceMeters
		if distance == 0 {
			distance = int(math.Round(scored.Geometry.DistanceMeters))
		}
		resp.Routes = append(resp.Routes, models.RouteAlternativeResponse{
			Index:           i,
			Summary:         scored.Alternative.Summary,
			Polyline:        route.EncodePath(scored.Geometry),
			DistanceMeters:  distance,
			DurationSeconds: scored.Alternative.DurationSeconds,
			Risk:            riskSummaryResponse(scored.Risk),
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// writeScoringError maps scoring and routing failures to problem responses.
func (h *RouteHandler) writeScoringError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, route.ErrUnrecognizedGeometry):
		response.BadRequest(w, r, "unrecognized route geometry", nil)
	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
	case errors.Is(err, routing.ErrNoRouteFound):
		response.NoRoute(w, r, "no route found between the given points")
	case errors.Is(err, route.ErrNoCoverage):
		response.ServiceUnavailable(w, r, "risk model unavailable for this route")
	case errors.Is(err, routing.ErrRateLimitExceeded),
		errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "routing provider unavailable")
	default:
		response.InternalError(w, r, "failed to score route")
	}
}

// rawGeometryFromInput validates a geometry input and maps it to the internal
// tagged encoding. Exactly one encoding must be present.
func rawGeometryFromInput(in models.GeometryInput) (route.RawGeometry, []models.FieldError) {
	set := 0
	if len(in.Coordinates) > 0 {
		set++
	}
	if in.Polyline != "" {
		set++
	}
	if len(in.BBox) > 0 {
		set++
	}
	if set != 1 {
		return route.RawGeometry{}, []models.FieldError{{
			Field:   "geometry",
			Message: "exactly one of coordinates, polyline or bbox must be set",
		}}
	}

	switch {
	case len(in.Coordinates) > 0:
		return route.RawGeometry{Kind: route.GeometryCoordinates, LonLatPairs: in.Coordinates}, nil
	case in.Polyline != "":
		return route.RawGeometry{Kind: route.GeometryPolyline, Polyline: in.Polyline}, nil
	default:
		if len(in.BBox) != 4 {
			return route.RawGeometry{}, []models.FieldError{{
				Field:   "geometry.bbox",
				Message: "bbox must be [minLon, minLat, maxLon, maxLat]",
			}}
		}
		return route.RawGeometry{
			Kind: route.GeometryBoundingBox,
			BBox: &route.BoundingBox{
				MinLon: in.BBox[0],
				MinLat: in.BBox[1],
				MaxLon: in.BBox[2],
				MaxLat: in.BBox[3],
			},
		}, nil
	}
}

// riskSummaryResponse maps an aggregated assessment to its API shape.
func riskSummaryResponse(summary *route.RiskSummary) models.RiskSummaryResponse {
	resp := models.RiskSummaryResponse{
		AverageRisk:      summary.AverageRisk,
		MaxRisk:          summary.MaxRisk,
		SafetyLevel:      string(summary.SafetyLevel),
		SegmentsSampled:  summary.SegmentsSampled,
		HighRiskSegments: summary.HighRiskSegments,
		Degraded:         summary.Degraded,
		GeometryFidelity: string(summary.GeometryFidelity),
	}

	for _, seg := range summary.Segments {
		segResp := models.SegmentRiskResponse{
			Point:               models.Point{Lat: seg.Lat, Lon: seg.Lon},
			ProbabilityAccident: seg.ProbabilityAccident,
		}
		if name, ok := zones.DistrictName(seg.Features.DistrictCode); ok {
			segResp.District = name
		}
		if name, ok := zones.NeighborhoodName(seg.Features.NeighborhoodCode); ok {
			segResp.Neighborhood = name
		}
		resp.Segments = append(resp.Segments, segResp)
	}

	return resp
}
