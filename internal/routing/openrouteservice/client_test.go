package openrouteservice_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
	"github.com/viasegura/viasegura/internal/routing/openrouteservice"
)

type fakeDoer struct {
	status  int
	body    string
	lastReq *http.Request
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(doer *fakeDoer) *openrouteservice.Client {
	return openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    "http://ors.test",
		HTTPClient: doer,
		Logger:     zerolog.Nop(),
	})
}

func barcelonaRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      routing.Coordinate{Lat: 41.3874, Lon: 2.1686},
		Destination: routing.Coordinate{Lat: 41.4036, Lon: 2.1744},
	}
}

const directionsBody = `{
	"routes": [
		{
			"summary": {"distance": 2400.5, "duration": 421.7},
			"geometry": "mfp{Fgbil@hCdCbDzC",
			"bbox": [2.1686, 41.3874, 2.1744, 41.4036],
			"segments": [
				{
					"distance": 2400.5,
					"duration": 421.7,
					"steps": [
						{"distance": 120.0, "duration": 30.0, "name": "-", "instruction": "Head north"},
						{"distance": 1800.0, "duration": 300.0, "name": "Carrer de Mallorca", "instruction": "Continue"},
						{"distance": 480.5, "duration": 91.7, "name": "Carrer de Provença", "instruction": "Turn right"}
					]
				}
			]
		},
		{
			"summary": {"distance": 2900.0, "duration": 510.0},
			"geometry": "",
			"bbox": [2.1650, 41.3850, 2.1800, 41.4050]
		}
	]
}`

func TestGetAlternatives(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: directionsBody}
	client := newTestClient(doer)

	resp, err := client.GetAlternatives(context.Background(), barcelonaRequest())
	require.NoError(t, err)

	assert.Equal(t, "openrouteservice", resp.Provider)
	require.Len(t, resp.Alternatives, 2)

	first := resp.Alternatives[0]
	assert.Equal(t, route.GeometryPolyline, first.Geometry.Kind)
	assert.Equal(t, "mfp{Fgbil@hCdCbDzC", first.Geometry.Polyline)
	assert.Equal(t, 2400, first.DistanceMeters)
	assert.Equal(t, 421, first.DurationSeconds)
	assert.Equal(t, "Carrer de Mallorca", first.Summary)

	// No geometry string: the route's bounding box is kept as fallback.
	second := resp.Alternatives[1]
	assert.Equal(t, route.GeometryBoundingBox, second.Geometry.Kind)
	require.NotNil(t, second.Geometry.BBox)
	assert.Equal(t, 2.1650, second.Geometry.BBox.MinLon)
	assert.Equal(t, 41.3850, second.Geometry.BBox.MinLat)
	assert.Equal(t, 2.1800, second.Geometry.BBox.MaxLon)
	assert.Equal(t, 41.4050, second.Geometry.BBox.MaxLat)
}

func TestGetAlternativesRequestShape(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"routes": []}`}
	client := newTestClient(doer)

	req := barcelonaRequest()
	req.MaxAlternatives = 2

	_, err := client.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, doer.lastReq)
	assert.Equal(t, http.MethodPost, doer.lastReq.Method)
	assert.Equal(t, "http://ors.test/v2/directions/driving-car", doer.lastReq.URL.String())
	assert.Equal(t, "test-key", doer.lastReq.Header.Get("Authorization"))

	sent, err := io.ReadAll(doer.lastReq.Body)
	require.NoError(t, err)

	var payload struct {
		Coordinates       [][]float64 `json:"coordinates"`
		AlternativeRoutes struct {
			TargetCount int     `json:"target_count"`
			ShareFactor float64 `json:"share_factor"`
		} `json:"alternative_routes"`
		Language string `json:"language"`
	}
	require.NoError(t, json.Unmarshal(sent, &payload))

	// Wire order is [lon, lat].
	require.Len(t, payload.Coordinates, 2)
	assert.Equal(t, []float64{2.1686, 41.3874}, payload.Coordinates[0])
	assert.Equal(t, []float64{2.1744, 41.4036}, payload.Coordinates[1])
	assert.Equal(t, 2, payload.AlternativeRoutes.TargetCount)
	assert.Equal(t, 0.6, payload.AlternativeRoutes.ShareFactor)
	assert.Equal(t, "es", payload.Language)
}

func TestGetAlternativesDefaultsAlternativeCount(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"routes": []}`}
	client := newTestClient(doer)

	_, err := client.GetAlternatives(context.Background(), barcelonaRequest())
	require.NoError(t, err)

	sent, err := io.ReadAll(doer.lastReq.Body)
	require.NoError(t, err)

	var payload struct {
		AlternativeRoutes struct {
			TargetCount int `json:"target_count"`
		} `json:"alternative_routes"`
	}
	require.NoError(t, json.Unmarshal(sent, &payload))
	assert.Equal(t, 3, payload.AlternativeRoutes.TargetCount)
}

func TestGetAlternativesInvalidCoordinates(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"routes": []}`}
	client := newTestClient(doer)

	req := barcelonaRequest()
	req.Origin.Lat = 91

	_, err := client.GetAlternatives(context.Background(), req)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
	assert.Nil(t, doer.lastReq)
}

func TestGetAlternativesErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, routing.ErrRateLimitExceeded},
		{"forbidden", http.StatusForbidden, `{}`, routing.ErrProviderUnavailable},
		{"unauthorized", http.StatusUnauthorized, `{}`, routing.ErrProviderUnavailable},
		{"not found", http.StatusNotFound, `{}`, routing.ErrNoRouteFound},
		{"route not found code", http.StatusBadRequest, `{"error": {"code": 2009, "message": "unable to find a route"}}`, routing.ErrNoRouteFound},
		{"bad request", http.StatusBadRequest, `{"error": {"code": 2003, "message": "parameter out of range"}}`, routing.ErrInvalidCoordinates},
		{"server error", http.StatusInternalServerError, `{}`, routing.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{status: tt.status, body: tt.body}
			client := newTestClient(doer)

			_, err := client.GetAlternatives(context.Background(), barcelonaRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var provErr *routing.Error
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, "openrouteservice", provErr.Provider)
		})
	}
}

func TestClientName(t *testing.T) {
	client := newTestClient(&fakeDoer{})
	assert.Equal(t, openrouteservice.ProviderName, client.Name())
}
