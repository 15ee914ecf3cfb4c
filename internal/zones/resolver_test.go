package zones_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/viasegura/viasegura/internal/telemetry"
	"github.com/viasegura/viasegura/internal/zones"
)

// fakeGeocoder returns a fixed place or error.
type fakeGeocoder struct {
	place *zones.Place
	err   error
	calls int
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (*zones.Place, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.place, nil
}

func TestResolver_HeuristicFallback(t *testing.T) {
	resolver := zones.NewResolver(zones.ResolverConfig{})
	ctx := context.Background()

	tests := []struct {
		name         string
		lat, lon     float64
		district     int
		neighborhood int
	}{
		{"placa catalunya", 41.3874, 2.1686, zones.DistrictEixample, 8},
		{"camp nou", 41.3809, 2.1206, zones.DistrictSantsMontjuic, 17},
		{"sagrada familia area", 41.4036, 2.1744, zones.DistrictSantMarti, 67},
		{"montjuic", 41.3641, 2.1580, zones.DistrictCiutatVella, 3},
		{"poble sec", 41.3734, 2.1400, zones.DistrictSantsMontjuic, 11},
		{"horta", 41.4300, 2.1300, zones.DistrictHortaGuinardo, 42},
		{"gracia", 41.4300, 2.1500, zones.DistrictGracia, 30},
		{"clot", 41.4300, 2.1900, zones.DistrictSantMarti, 64},
		{"sarria", 41.4010, 2.1200, zones.DistrictSarriaSantGervasi, 22},
		{"les corts", 41.4010, 2.1400, zones.DistrictLesCorts, 18},
		{"dreta eixample", 41.4010, 2.1600, zones.DistrictEixample, 5},
		{"canyelles", 41.4600, 2.1000, zones.DistrictNouBarris, 48},
		{"sagrera", 41.4600, 2.1900, zones.DistrictSantAndreu, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(ctx, tt.lat, tt.lon)
			assert.Equal(t, tt.district, got.DistrictCode)
			assert.Equal(t, tt.neighborhood, got.NeighborhoodCode)
			assert.Equal(t, zones.SourceHeuristic, got.Source)
		})
	}
}

func TestResolver_Totality(t *testing.T) {
	resolver := zones.NewResolver(zones.ResolverConfig{})
	ctx := context.Background()

	// Every coordinate on the planet gets a valid assignment.
	for lat := -90.0; lat <= 90.0; lat += 18.0 {
		for lon := -180.0; lon <= 180.0; lon += 36.0 {
			got := resolver.Resolve(ctx, lat, lon)
			_, districtKnown := zones.DistrictName(got.DistrictCode)
			_, neighborhoodKnown := zones.NeighborhoodName(got.NeighborhoodCode)
			assert.True(t, districtKnown, "district code %d at (%v, %v)", got.DistrictCode, lat, lon)
			assert.True(t, neighborhoodKnown, "neighborhood code %d at (%v, %v)", got.NeighborhoodCode, lat, lon)
		}
	}
}

func TestResolver_CachesAssignments(t *testing.T) {
	resolver := zones.NewResolver(zones.ResolverConfig{})
	ctx := context.Background()

	first := resolver.Resolve(ctx, 41.3874, 2.1686)
	assert.Equal(t, zones.SourceHeuristic, first.Source)
	assert.Equal(t, 1, resolver.CacheSize())

	second := resolver.Resolve(ctx, 41.3874, 2.1686)
	assert.Equal(t, zones.SourceCache, second.Source)
	assert.Equal(t, first.DistrictCode, second.DistrictCode)
	assert.Equal(t, first.NeighborhoodCode, second.NeighborhoodCode)
	assert.Equal(t, 1, resolver.CacheSize())
}

func TestResolver_RecordsCacheCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewScoringMetrics(provider.Meter("test"))
	require.NoError(t, err)

	resolver := zones.NewResolver(zones.ResolverConfig{Metrics: metrics})
	ctx := context.Background()

	resolver.Resolve(ctx, 41.3874, 2.1686)
	resolver.Resolve(ctx, 41.3874, 2.1686)
	resolver.Resolve(ctx, 41.3874, 2.1686)
	resolver.Resolve(ctx, 41.4036, 2.1744)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(2), cacheCounter(t, rm, "viasegura.zonecache.hits"))
	assert.Equal(t, int64(2), cacheCounter(t, rm, "viasegura.zonecache.misses"))
}

func cacheCounter(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestResolver_GeocoderMapped(t *testing.T) {
	geocoder := &fakeGeocoder{
		place: &zones.Place{District: "Eixample", Neighborhood: "la Sagrada Família"},
	}
	resolver := zones.NewResolver(zones.ResolverConfig{Geocoder: geocoder})

	got := resolver.Resolve(context.Background(), 41.4036, 2.1744)

	assert.Equal(t, zones.DistrictEixample, got.DistrictCode)
	assert.Equal(t, 9, got.NeighborhoodCode)
	assert.Equal(t, zones.SourceGeocoder, got.Source)
	assert.Equal(t, 1, geocoder.calls)
}

func TestResolver_GeocoderErrorFallsThrough(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("timeout")}
	resolver := zones.NewResolver(zones.ResolverConfig{Geocoder: geocoder})

	got := resolver.Resolve(context.Background(), 41.3874, 2.1686)

	assert.Equal(t, zones.SourceHeuristic, got.Source)
	assert.Equal(t, zones.DistrictEixample, got.DistrictCode)
}

func TestResolver_GeocoderUnmappedNamesFallThrough(t *testing.T) {
	geocoder := &fakeGeocoder{
		place: &zones.Place{District: "Hospitalet", Neighborhood: "Bellvitge"},
	}
	resolver := zones.NewResolver(zones.ResolverConfig{Geocoder: geocoder})

	got := resolver.Resolve(context.Background(), 41.3597, 2.1081)

	assert.Equal(t, zones.SourceHeuristic, got.Source)
}

func TestResolver_GeocoderNotCalledAfterCache(t *testing.T) {
	geocoder := &fakeGeocoder{
		place: &zones.Place{District: "Gràcia", Neighborhood: "la Vila de Gràcia"},
	}
	resolver := zones.NewResolver(zones.ResolverConfig{Geocoder: geocoder})
	ctx := context.Background()

	resolver.Resolve(ctx, 41.4030, 2.1561)
	resolver.Resolve(ctx, 41.4030, 2.1561)

	assert.Equal(t, 1, geocoder.calls)
}

func TestResolver_PolygonsWin(t *testing.T) {
	// A square around central Barcelona mapped to Eixample.
	districtGeoJSON := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"name": "Eixample", "code": 2},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[2.15, 41.38], [2.18, 41.38], [2.18, 41.40], [2.15, 41.40], [2.15, 41.38]]]
			}
		}]
	}`)
	neighborhoodGeoJSON := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"name": "la Dreta de l'Eixample", "code": 5},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[2.15, 41.38], [2.18, 41.38], [2.18, 41.40], [2.15, 41.40], [2.15, 41.38]]]
			}
		}]
	}`)

	districts, err := zones.ParsePolygonSet(districtGeoJSON)
	require.NoError(t, err)
	neighborhoods, err := zones.ParsePolygonSet(neighborhoodGeoJSON)
	require.NoError(t, err)

	geocoder := &fakeGeocoder{place: &zones.Place{District: "Gràcia", Neighborhood: "la Vila de Gràcia"}}
	resolver := zones.NewResolver(zones.ResolverConfig{
		Districts:     districts,
		Neighborhoods: neighborhoods,
		Geocoder:      geocoder,
	})

	got := resolver.Resolve(context.Background(), 41.39, 2.165)

	assert.Equal(t, zones.SourcePolygon, got.Source)
	assert.Equal(t, 2, got.DistrictCode)
	assert.Equal(t, 5, got.NeighborhoodCode)
	assert.Zero(t, geocoder.calls, "geocoder should not be consulted when polygons match")
}

func TestResolver_PolygonDistrictWithHeuristicNeighborhood(t *testing.T) {
	districtGeoJSON := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"name": "Eixample", "code": 2},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[2.15, 41.38], [2.18, 41.38], [2.18, 41.40], [2.15, 41.40], [2.15, 41.38]]]
			}
		}]
	}`)
	districts, err := zones.ParsePolygonSet(districtGeoJSON)
	require.NoError(t, err)

	resolver := zones.NewResolver(zones.ResolverConfig{Districts: districts})

	got := resolver.Resolve(context.Background(), 41.39, 2.165)

	assert.Equal(t, zones.SourcePolygon, got.Source)
	assert.Equal(t, 2, got.DistrictCode)
	// Neighborhood backfilled from the band heuristic: 41.39/2.165 falls in
	// the Sant Antoni cell.
	assert.Equal(t, 8, got.NeighborhoodCode)
}
