// Package history persists route scoring results so recent assessments can
// be reviewed and compared over time.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound indicates the requested record does not exist.
var ErrRecordNotFound = errors.New("history record not found")

// ScoreRecord is one persisted route assessment.
type ScoreRecord struct {
	ID              string    `json:"id"`
	OriginLat       float64   `json:"origin_lat"`
	OriginLon       float64   `json:"origin_lon"`
	DestinationLat  float64   `json:"destination_lat"`
	DestinationLon  float64   `json:"destination_lon"`
	DepartAt        time.Time `json:"depart_at"`
	Provider        string    `json:"provider"`
	Alternatives    int       `json:"alternatives"`
	SelectedIndex   int       `json:"selected_index"`
	AverageRisk     float64   `json:"average_risk"`
	MaxRisk         float64   `json:"max_risk"`
	SafetyLevel     string    `json:"safety_level"`
	SegmentsSampled int       `json:"segments_sampled"`
	HighRiskCount   int       `json:"high_risk_count"`
	Degraded        bool      `json:"degraded"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewScoreRecord creates a record with a fresh ID and creation timestamp.
func NewScoreRecord() *ScoreRecord {
	return &ScoreRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}
