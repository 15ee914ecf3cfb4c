package models

// ZoneResponse is the response body for GET /v1/zones/resolve.
type ZoneResponse struct {
	Point            Point  `json:"point"`
	DistrictCode     int    `json:"districtCode"`
	DistrictName     string `json:"districtName,omitempty"`
	NeighborhoodCode int    `json:"neighborhoodCode"`
	NeighborhoodName string `json:"neighborhoodName,omitempty"`
	Source           string `json:"source"`
}
