package scoring_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/history"
	"github.com/viasegura/viasegura/internal/risk"
	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
	"github.com/viasegura/viasegura/internal/scoring"
	"github.com/viasegura/viasegura/internal/zones"
)

// queueClassifier returns scripted accident probabilities in call order.
type queueClassifier struct {
	mu    sync.Mutex
	queue []float64
	calls int
}

func (q *queueClassifier) Predict(_ context.Context, _ []float64) (risk.Prediction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	prob := 0.1
	if q.calls < len(q.queue) {
		prob = q.queue[q.calls]
	}
	q.calls++

	class := 0
	if prob >= 0.5 {
		class = 1
	}
	return risk.Prediction{Class: class, Probabilities: [2]float64{1 - prob, prob}}, nil
}

type stubDirections struct {
	resp *routing.DirectionsResponse
	err  error
}

func (s *stubDirections) GetAlternatives(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestService(t *testing.T, directions scoring.Directions, classifier risk.Classifier, repo history.Repository) *scoring.Service {
	t.Helper()

	aggregator := route.NewAggregator(route.AggregatorConfig{
		Resolver:    zones.NewResolver(zones.ResolverConfig{Logger: zerolog.Nop()}),
		Scorer:      risk.NewScorer(risk.ScorerConfig{Classifier: classifier, Logger: zerolog.Nop()}),
		Concurrency: 1,
		Logger:      zerolog.Nop(),
	})

	return scoring.NewService(scoring.ServiceConfig{
		Directions: directions,
		Aggregator: aggregator,
		History:    repo,
		Logger:     zerolog.Nop(),
	})
}

// twoPointAlternative yields exactly two scored segments per route, keeping
// the scripted classifier aligned with alternatives.
func twoPointAlternative(latOffset float64) routing.Alternative {
	return routing.Alternative{
		Geometry: route.RawGeometry{
			Kind: route.GeometryCoordinates,
			LonLatPairs: [][]float64{
				{2.16, 41.38 + latOffset},
				{2.17, 41.39 + latOffset},
			},
		},
		DistanceMeters:  2000,
		DurationSeconds: 400,
		Summary:         "Gran Via",
	}
}

var departAt = time.Date(2024, time.March, 14, 8, 30, 0, 0, time.UTC)

var tripOrigin = routing.Coordinate{Lat: 41.3874, Lon: 2.1686}
var tripDestination = routing.Coordinate{Lat: 41.4036, Lon: 2.1744}

func TestScoreGeometry(t *testing.T) {
	classifier := &queueClassifier{queue: []float64{0.2, 0.6}}
	service := newTestService(t, nil, classifier, nil)

	summary, err := service.ScoreGeometry(context.Background(), route.RawGeometry{
		Kind: route.GeometryCoordinates,
		LonLatPairs: [][]float64{
			{2.1686, 41.3874},
			{2.1744, 41.4036},
		},
	}, departAt)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SegmentsSampled)
	assert.InDelta(t, 0.4, summary.AverageRisk, 1e-9)
	assert.Equal(t, 1, summary.HighRiskSegments)
}

func TestScoreGeometryRejectsUnknownEncoding(t *testing.T) {
	service := newTestService(t, nil, &queueClassifier{}, nil)

	_, err := service.ScoreGeometry(context.Background(), route.RawGeometry{Kind: 42}, departAt)
	assert.ErrorIs(t, err, route.ErrUnrecognizedGeometry)
}

func TestRecommendSelectsSafest(t *testing.T) {
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider: "openrouteservice",
		Alternatives: []routing.Alternative{
			twoPointAlternative(0),
			twoPointAlternative(0.01),
			twoPointAlternative(0.02),
		},
	}}
	// Two segments per alternative: averages 0.6, 0.1, 0.3.
	classifier := &queueClassifier{queue: []float64{0.6, 0.6, 0.1, 0.1, 0.3, 0.3}}
	repo := history.NewInMemoryRepository()
	service := newTestService(t, directions, classifier, repo)

	rec, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.SelectedIndex)
	assert.Equal(t, "openrouteservice", rec.Provider)
	assert.Equal(t, departAt, rec.DepartAt)
	require.Len(t, rec.Routes, 3)
	assert.InDelta(t, 0.1, rec.Routes[1].Risk.AverageRisk, 1e-9)

	records, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].SelectedIndex)
	assert.Equal(t, 3, records[0].Alternatives)
	assert.InDelta(t, 0.1, records[0].AverageRisk, 1e-9)
	assert.Equal(t, tripOrigin.Lat, records[0].OriginLat)
	assert.Equal(t, tripDestination.Lon, records[0].DestinationLon)
}

func TestRecommendStraightLineFallback(t *testing.T) {
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider: "openrouteservice",
		Alternatives: []routing.Alternative{
			twoPointAlternative(0),
			{Geometry: route.RawGeometry{Kind: 0}}, // unrecognized encoding
		},
	}}
	classifier := &queueClassifier{queue: []float64{0.5, 0.5, 0.2, 0.2}}
	service := newTestService(t, directions, classifier, nil)

	rec, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 2)
	require.NoError(t, err)

	// The degraded alternative is still scored and wins on average risk.
	require.Len(t, rec.Routes, 2)
	assert.Equal(t, 1, rec.SelectedIndex)
	assert.Equal(t, 2, rec.Routes[1].Risk.SegmentsSampled)
}

func TestRecommendDropsDegenerateFallback(t *testing.T) {
	// Same point for origin and destination: the straight line fallback
	// cannot produce a path, so only the alternative with usable geometry
	// stays in the comparison.
	point := routing.Coordinate{Lat: 41.3874, Lon: 2.1686}
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider: "openrouteservice",
		Alternatives: []routing.Alternative{
			{Geometry: route.RawGeometry{Kind: 0}, Summary: "broken"},
			twoPointAlternative(0),
		},
	}}
	classifier := &queueClassifier{queue: []float64{0.2, 0.2}}
	service := newTestService(t, directions, classifier, nil)

	rec, err := service.Recommend(context.Background(), point, point, departAt, 2)
	require.NoError(t, err)

	require.Len(t, rec.Routes, 1)
	assert.Equal(t, 0, rec.SelectedIndex)
	assert.Equal(t, "Gran Via", rec.Routes[0].Alternative.Summary)
	assert.Equal(t, 2, rec.Routes[0].Risk.SegmentsSampled)
}

func TestRecommendAllAlternativesDegenerate(t *testing.T) {
	point := routing.Coordinate{Lat: 41.3874, Lon: 2.1686}
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider: "openrouteservice",
		Alternatives: []routing.Alternative{
			{Geometry: route.RawGeometry{Kind: 0}},
			{Geometry: route.RawGeometry{Kind: 99}},
		},
	}}
	service := newTestService(t, directions, &queueClassifier{}, nil)

	_, err := service.Recommend(context.Background(), point, point, departAt, 2)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestRecommendCarriesScoredGeometry(t *testing.T) {
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider:     "openrouteservice",
		Alternatives: []routing.Alternative{twoPointAlternative(0)},
	}}
	service := newTestService(t, directions, &queueClassifier{}, nil)

	rec, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 1)
	require.NoError(t, err)

	require.Len(t, rec.Routes, 1)
	assert.Len(t, rec.Routes[0].Geometry.Points, 2)
	assert.Equal(t, route.FidelityFull, rec.Routes[0].Geometry.Fidelity)
	assert.Greater(t, rec.Routes[0].Geometry.DistanceMeters, 0.0)
}

func TestRecommendNoAlternatives(t *testing.T) {
	directions := &stubDirections{resp: &routing.DirectionsResponse{Provider: "openrouteservice"}}
	service := newTestService(t, directions, &queueClassifier{}, nil)

	_, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 3)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestRecommendPropagatesDirectionsError(t *testing.T) {
	directions := &stubDirections{err: routing.ErrProviderUnavailable}
	service := newTestService(t, directions, &queueClassifier{}, nil)

	_, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 3)
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}

func TestRecommendHistoryFailureDoesNotSurface(t *testing.T) {
	directions := &stubDirections{resp: &routing.DirectionsResponse{
		Provider:     "openrouteservice",
		Alternatives: []routing.Alternative{twoPointAlternative(0)},
	}}
	service := newTestService(t, directions, &queueClassifier{}, failingRepository{})

	_, err := service.Recommend(context.Background(), tripOrigin, tripDestination, departAt, 1)
	assert.NoError(t, err)
}

type failingRepository struct{}

func (failingRepository) Create(context.Context, *history.ScoreRecord) error {
	return assert.AnError
}

func (failingRepository) Get(context.Context, string) (*history.ScoreRecord, error) {
	return nil, history.ErrRecordNotFound
}

func (failingRepository) Recent(context.Context, int) ([]*history.ScoreRecord, error) {
	return nil, nil
}
