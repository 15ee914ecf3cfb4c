package handler

import (
	"net/http"
	"strconv"

	"github.com/viasegura/viasegura/internal/api/models"
	"github.com/viasegura/viasegura/internal/api/response"
	"github.com/viasegura/viasegura/internal/history"
)

const maxHistoryLimit = 100

// HistoryHandler handles score history endpoints.
type HistoryHandler struct {
	repo history.Repository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(repo history.Repository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// RecentHistory handles GET /v1/history/recent?limit=N
func (h *HistoryHandler) RecentHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.repo.Recent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to load history")
		return
	}

	resp := models.HistoryResponse{Items: make([]models.HistoryRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Items = append(resp.Items, models.HistoryRecordResponse{
			ID:               rec.ID,
			Origin:           models.Point{Lat: rec.OriginLat, Lon: rec.OriginLon},
			Destination:      models.Point{Lat: rec.DestinationLat, Lon: rec.DestinationLon},
			DepartAt:         models.Timestamp(rec.DepartAt),
			Provider:         rec.Provider,
			Alternatives:     rec.Alternatives,
			SelectedIndex:    rec.SelectedIndex,
			AverageRisk:      rec.AverageRisk,
			MaxRisk:          rec.MaxRisk,
			SafetyLevel:      rec.SafetyLevel,
			SegmentsSampled:  rec.SegmentsSampled,
			HighRiskSegments: rec.HighRiskCount,
			Degraded:         rec.Degraded,
			CreatedAt:        models.Timestamp(rec.CreatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}
