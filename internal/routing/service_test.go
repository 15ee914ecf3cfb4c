package routing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
)

// fakeProvider counts upstream calls and returns a canned response or error.
type fakeProvider struct {
	mu    sync.Mutex
	calls int
	resp  *routing.DirectionsResponse
	err   error
}

func (f *fakeProvider) GetAlternatives(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func testResponse() *routing.DirectionsResponse {
	return &routing.DirectionsResponse{
		Alternatives: []routing.Alternative{
			{
				Geometry: route.RawGeometry{
					Kind: route.GeometryCoordinates,
					LonLatPairs: [][]float64{
						{2.1686, 41.3874},
						{2.1744, 41.4036},
					},
				},
				DistanceMeters:  2400,
				DurationSeconds: 420,
				Summary:         "Carrer de Mallorca",
			},
		},
		Provider:  "fake",
		FetchedAt: time.Now(),
	}
}

func testRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      routing.Coordinate{Lat: 41.3874, Lon: 2.1686},
		Destination: routing.Coordinate{Lat: 41.4036, Lon: 2.1744},
	}
}

func TestServiceCachesDirections(t *testing.T) {
	provider := &fakeProvider{resp: testResponse()}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	first, err := service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	second, err := service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.callCount())
	assert.Same(t, first, second)
}

func TestServiceCacheKeyIncludesMaxAlternatives(t *testing.T) {
	provider := &fakeProvider{resp: testResponse()}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	req := testRequest()
	_, err := service.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	req.MaxAlternatives = 5
	_, err = service.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.callCount())
}

func TestServiceInvalidateCache(t *testing.T) {
	provider := &fakeProvider{resp: testResponse()}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)

	service.InvalidateCache()

	_, err = service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount())
}

func TestServiceRejectsInvalidCoordinates(t *testing.T) {
	provider := &fakeProvider{resp: testResponse()}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	req := testRequest()
	req.Origin.Lat = 95

	_, err := service.GetAlternatives(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
	assert.Zero(t, provider.callCount())

	req = testRequest()
	req.Destination.Lon = -181

	_, err = service.GetAlternatives(context.Background(), req)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
}

func TestServiceServesStaleOnProviderError(t *testing.T) {
	provider := &fakeProvider{resp: testResponse()}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		// Immediate expiry forces a refetch; stale window stays open.
		CacheTTL:        time.Nanosecond,
		StaleIfErrorTTL: time.Hour,
	})

	first, err := service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	provider.setError(routing.ErrProviderUnavailable)

	second, err := service.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, provider.callCount())
}

func TestServicePropagatesErrorWithoutCache(t *testing.T) {
	provider := &fakeProvider{err: routing.ErrNoRouteFound}
	service := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := service.GetAlternatives(context.Background(), testRequest())
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestServiceProviderName(t *testing.T) {
	service := routing.NewService(routing.ServiceConfig{
		Provider: &fakeProvider{},
		Logger:   zerolog.Nop(),
	})
	assert.Equal(t, "fake", service.ProviderName())
}
