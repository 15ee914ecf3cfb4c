package handler

import (
	"net/http"
	"strconv"

	"github.com/viasegura/viasegura/internal/api/models"
	"github.com/viasegura/viasegura/internal/api/response"
	"github.com/viasegura/viasegura/internal/zones"
)

// ZoneHandler handles zone resolution endpoints.
type ZoneHandler struct {
	resolver *zones.Resolver
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(resolver *zones.Resolver) *ZoneHandler {
	return &ZoneHandler{resolver: resolver}
}

// ResolveZone handles GET /v1/zones/resolve?lat=..&lon=..
func (h *ZoneHandler) ResolveZone(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)

	var fieldErrs []models.FieldError
	if latErr != nil || lat < -90 || lat > 90 {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lat", Message: "must be a number in [-90, 90]"})
	}
	if lonErr != nil || lon < -180 || lon > 180 {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lon", Message: "must be a number in [-180, 180]"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	assignment := h.resolver.Resolve(r.Context(), lat, lon)

	resp := models.ZoneResponse{
		Point:            models.Point{Lat: lat, Lon: lon},
		DistrictCode:     assignment.DistrictCode,
		NeighborhoodCode: assignment.NeighborhoodCode,
		Source:           string(assignment.Source),
	}
	if name, ok := zones.DistrictName(assignment.DistrictCode); ok {
		resp.DistrictName = name
	}
	if name, ok := zones.NeighborhoodName(assignment.NeighborhoodCode); ok {
		resp.NeighborhoodName = name
	}

	response.JSON(w, r, http.StatusOK, resp)
}
