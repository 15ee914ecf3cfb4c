package models

// HistoryRecordResponse is one persisted route assessment.
type HistoryRecordResponse struct {
	ID               string    `json:"id"`
	Origin           Point     `json:"origin"`
	Destination      Point     `json:"destination"`
	DepartAt         Timestamp `json:"departAt"`
	Provider         string    `json:"provider"`
	Alternatives     int       `json:"alternatives"`
	SelectedIndex    int       `json:"selectedIndex"`
	AverageRisk      float64   `json:"averageRisk"`
	MaxRisk          float64   `json:"maxRisk"`
	SafetyLevel      string    `json:"safetyLevel"`
	SegmentsSampled  int       `json:"segmentsSampled"`
	HighRiskSegments int       `json:"highRiskSegments"`
	Degraded         bool      `json:"degraded"`
	CreatedAt        Timestamp `json:"createdAt"`
}

// HistoryResponse is the response body for GET /v1/history/recent.
type HistoryResponse struct {
	Items []HistoryRecordResponse `json:"items"`
}
