package zones

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/telemetry"
)

// Place is a reverse-geocoding answer: raw district and neighborhood names as
// returned by the provider, still to be mapped to model codes.
type Place struct {
	District     string
	Neighborhood string
}

// ReverseGeocoder looks up place names for a coordinate. Implementations live
// behind this boundary so network failures can fall through silently.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error)
}

// ResolverConfig holds configuration for the zone resolver.
type ResolverConfig struct {
	// Districts are authoritative district boundary polygons (optional).
	Districts *PolygonSet

	// Neighborhoods are authoritative neighborhood boundary polygons (optional).
	Neighborhoods *PolygonSet

	// Geocoder is an optional reverse-geocoding lookup tried before the band
	// heuristic. Errors never propagate; they fall through to the heuristic.
	Geocoder ReverseGeocoder

	// Metrics records cache hit/miss counters (optional).
	Metrics *telemetry.ScoringMetrics

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Resolver maps coordinates to zone assignments. Resolution is total: every
// coordinate gets an assignment, falling back through polygons, the geocoder,
// and finally the fixed band heuristic.
//
// Assignments are memoized keyed by the coordinate rounded to 6 decimals
// (roughly 0.1m); a zone for a fixed coordinate never changes at runtime, so
// the cache lives for the process lifetime.
type Resolver struct {
	districts     *PolygonSet
	neighborhoods *PolygonSet
	geocoder      ReverseGeocoder
	metrics       *telemetry.ScoringMetrics
	logger        zerolog.Logger

	mu    sync.RWMutex
	cache map[string]ZoneAssignment
}

// NewResolver creates a zone resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		districts:     cfg.Districts,
		neighborhoods: cfg.Neighborhoods,
		geocoder:      cfg.Geocoder,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		cache:         make(map[string]ZoneAssignment),
	}
}

// Resolve returns the zone assignment for a coordinate. It never fails.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) ZoneAssignment {
	key := cacheKey(lat, lon)

	r.mu.RLock()
	if cached, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		r.metrics.RecordZoneLookup(ctx, true)
		cached.Source = SourceCache
		return cached
	}
	r.mu.RUnlock()

	r.metrics.RecordZoneLookup(ctx, false)
	assignment := r.resolve(ctx, lat, lon)

	r.mu.Lock()
	r.cache[key] = assignment
	r.mu.Unlock()

	return assignment
}

// CacheSize returns the number of memoized assignments.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Resolver) resolve(ctx context.Context, lat, lon float64) ZoneAssignment {
	// Authoritative polygons first.
	if districtCode, ok := r.districts.Find(lat, lon); ok {
		assignment := ZoneAssignment{
			DistrictCode: districtCode,
			Source:       SourcePolygon,
		}
		if neighborhoodCode, ok := r.neighborhoods.Find(lat, lon); ok {
			assignment.NeighborhoodCode = neighborhoodCode
			return assignment
		}
		// District matched but no neighborhood polygon did; take the
		// neighborhood from the heuristic so both codes are always set.
		assignment.NeighborhoodCode = heuristicZone(lat, lon).NeighborhoodCode
		return assignment
	}

	// Reverse geocoder next, names mapped through the normalized code tables.
	if r.geocoder != nil {
		if assignment, ok := r.geocode(ctx, lat, lon); ok {
			return assignment
		}
	}

	return heuristicZone(lat, lon)
}

// geocode asks the reverse geocoder and maps its names to codes. Any failure
// (network, unmapped name) reports not-ok so the caller falls through.
func (r *Resolver) geocode(ctx context.Context, lat, lon float64) (ZoneAssignment, bool) {
	place, err := r.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		r.logger.Debug().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("reverse geocoding failed, falling back to heuristic")
		return ZoneAssignment{}, false
	}

	districtCode, dok := DistrictCode(place.District)
	neighborhoodCode, nok := NeighborhoodCode(place.Neighborhood)
	if !dok || !nok {
		r.logger.Debug().
			Str("district", place.District).
			Str("neighborhood", place.Neighborhood).
			Msg("geocoder returned unmapped place names")
		return ZoneAssignment{}, false
	}

	return ZoneAssignment{
		DistrictCode:     districtCode,
		NeighborhoodCode: neighborhoodCode,
		Source:           SourceGeocoder,
	}, true
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}
